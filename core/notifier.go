package core

import "context"

// EmailSender delivers e-mail messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// ConfessionStore persists confession texts submitted through the terminal role.
type ConfessionStore interface {
	StoreConfession(ctx context.Context, sessionID, text string) error
}

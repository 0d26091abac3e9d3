package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/folio/core"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a notification exceeds its rate limit.
var ErrRateLimited = errors.New("notification rate limit exceeded")

// RateLimitOptions configure the global and per-recipient token buckets.
type RateLimitOptions struct {
	// Global limits all deliveries; zero disables the global bucket.
	Global      rate.Limit
	GlobalBurst int
	// PerRecipient limits deliveries to one address or number.
	PerRecipient      rate.Limit
	PerRecipientBurst int
}

// DefaultRateLimitOptions allows one message per recipient per minute and
// bursts of ten overall.
func DefaultRateLimitOptions() RateLimitOptions {
	return RateLimitOptions{
		Global:            rate.Limit(1),
		GlobalBurst:       10,
		PerRecipient:      rate.Limit(1.0 / 60),
		PerRecipientBurst: 1,
	}
}

type limiter struct {
	opts RateLimitOptions

	mu       sync.Mutex
	global   *rate.Limiter
	limiters map[string]*rate.Limiter
}

func newLimiter(opts RateLimitOptions) *limiter {
	l := &limiter{opts: opts, limiters: make(map[string]*rate.Limiter)}
	if opts.Global > 0 {
		l.global = rate.NewLimiter(opts.Global, max(opts.GlobalBurst, 1))
	}
	return l
}

// allow never blocks; notifications are off the critical path and are
// dropped rather than queued.
func (l *limiter) allow(recipient string) error {
	if l.global != nil && !l.global.Allow() {
		return fmt.Errorf("%w: global", ErrRateLimited)
	}
	if l.opts.PerRecipient <= 0 {
		return nil
	}
	l.mu.Lock()
	rl, ok := l.limiters[recipient]
	if !ok {
		rl = rate.NewLimiter(l.opts.PerRecipient, max(l.opts.PerRecipientBurst, 1))
		l.limiters[recipient] = rl
	}
	l.mu.Unlock()
	if !rl.Allow() {
		return fmt.Errorf("%w: recipient %s", ErrRateLimited, recipient)
	}
	return nil
}

// RateLimitedEmail decorates an EmailSender with token bucket limits.
type RateLimitedEmail struct {
	next core.EmailSender
	l    *limiter
}

var _ core.EmailSender = (*RateLimitedEmail)(nil)

// NewRateLimitedEmail wraps next.
func NewRateLimitedEmail(next core.EmailSender, opts RateLimitOptions) *RateLimitedEmail {
	return &RateLimitedEmail{next: next, l: newLimiter(opts)}
}

// SendEmail implements core.EmailSender.
func (r *RateLimitedEmail) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := r.l.allow(to); err != nil {
		return err
	}
	return r.next.SendEmail(ctx, to, subject, body)
}

// RateLimitedSMS decorates an SMSSender with token bucket limits.
type RateLimitedSMS struct {
	next core.SMSSender
	l    *limiter
}

var _ core.SMSSender = (*RateLimitedSMS)(nil)

// NewRateLimitedSMS wraps next.
func NewRateLimitedSMS(next core.SMSSender, opts RateLimitOptions) *RateLimitedSMS {
	return &RateLimitedSMS{next: next, l: newLimiter(opts)}
}

// SendSMS implements core.SMSSender.
func (r *RateLimitedSMS) SendSMS(ctx context.Context, to, message string) error {
	if err := r.l.allow(to); err != nil {
		return err
	}
	return r.next.SendSMS(ctx, to, message)
}

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/folio/core"
)

// Message is one delivery captured by a Recorder.
type Message struct {
	Channel   string // "email", "sms" or "confession"
	To        string
	Subject   string
	Body      string
	Timestamp time.Time
}

// Recorder captures deliveries in memory. It implements core.EmailSender,
// core.SMSSender and core.ConfessionStore. Set the Fail* fields to inject
// failures; Delay simulates a slow backend and honours cancellation.
type Recorder struct {
	FailEmail      error
	FailSMS        error
	FailConfession error
	Delay          time.Duration

	mu       sync.Mutex
	messages []Message
	attempts map[string]int
}

var (
	_ core.EmailSender     = (*Recorder)(nil)
	_ core.SMSSender       = (*Recorder)(nil)
	_ core.ConfessionStore = (*Recorder)(nil)
)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{attempts: map[string]int{}}
}

func (r *Recorder) record(ctx context.Context, fail error, m Message) error {
	r.mu.Lock()
	if r.attempts == nil {
		r.attempts = map[string]int{}
	}
	r.attempts[m.Channel]++
	r.mu.Unlock()

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail != nil {
		return fail
	}
	m.Timestamp = time.Now().UTC()
	r.mu.Lock()
	r.messages = append(r.messages, m)
	r.mu.Unlock()
	return nil
}

// SendEmail implements core.EmailSender.
func (r *Recorder) SendEmail(ctx context.Context, to, subject, body string) error {
	return r.record(ctx, r.FailEmail, Message{Channel: "email", To: to, Subject: subject, Body: body})
}

// SendSMS implements core.SMSSender.
func (r *Recorder) SendSMS(ctx context.Context, to, message string) error {
	return r.record(ctx, r.FailSMS, Message{Channel: "sms", To: to, Body: message})
}

// StoreConfession implements core.ConfessionStore.
func (r *Recorder) StoreConfession(ctx context.Context, sessionID, text string) error {
	return r.record(ctx, r.FailConfession, Message{Channel: "confession", To: sessionID, Body: text})
}

// Messages returns the successful deliveries, optionally filtered by channel.
func (r *Recorder) Messages(channel string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.messages {
		if channel == "" || m.Channel == channel {
			out = append(out, m)
		}
	}
	return out
}

// Attempts returns the number of delivery attempts on channel, including failures.
func (r *Recorder) Attempts(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[channel]
}

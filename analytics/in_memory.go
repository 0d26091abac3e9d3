package analytics

import (
	"context"
	"sync"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/logging"
)

// InMemorySink keeps events and confessions in memory.
type InMemorySink struct {
	mu          sync.RWMutex
	events      []core.AnalyticsEvent
	confessions []string
	// Err, if set, is returned by every Write.
	Err error
}

var (
	_ core.AnalyticsSink   = (*InMemorySink)(nil)
	_ core.ConfessionStore = (*InMemorySink)(nil)
)

// NewInMemorySink creates an empty sink.
func NewInMemorySink() *InMemorySink { return &InMemorySink{} }

// Write implements core.AnalyticsSink.
func (s *InMemorySink) Write(ctx context.Context, ev core.AnalyticsEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of the written events, optionally filtered by session.
func (s *InMemorySink) Events(sessionID string) []core.AnalyticsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.AnalyticsEvent
	for _, ev := range s.events {
		if sessionID == "" || ev.SessionID == sessionID {
			out = append(out, ev)
		}
	}
	return out
}

// StoreConfession implements core.ConfessionStore. Only the text is kept.
func (s *InMemorySink) StoreConfession(ctx context.Context, _ string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confessions = append(s.confessions, text)
	return nil
}

// Confessions returns a copy of the stored confession texts.
func (s *InMemorySink) Confessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.confessions))
	copy(out, s.confessions)
	return out
}

// LogSink writes events to a logger. Useful when no store is configured.
type LogSink struct {
	Logger logging.Logger
}

var _ core.AnalyticsSink = LogSink{}

// Write implements core.AnalyticsSink.
func (s LogSink) Write(_ context.Context, ev core.AnalyticsEvent) error {
	logging.OrNoOp(s.Logger).Info("analytics event",
		"event_id", ev.ID,
		"session_id", ev.SessionID,
		"role", string(ev.Role),
		"latency_ms", ev.LatencyMS,
		"tokens", ev.Tokens,
		"retrieval_scores", ev.RetrievalScores,
		"executed_actions", ev.ExecutedActions,
		"failed_actions", ev.FailedActions,
		"degraded", ev.Degraded,
	)
	return nil
}

package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AnalyticsEvent is the per-turn record handed to the analytics sink after
// generation completes. The core does not retain it afterwards.
type AnalyticsEvent struct {
	ID              string       `json:"id"`
	SessionID       string       `json:"session_id"`
	Role            RoleID       `json:"role"`
	Query           string       `json:"query"`
	Answer          string       `json:"answer"`
	LatencyMS       int64        `json:"latency_ms"`
	Tokens          int          `json:"tokens"`
	RetrievalScores []float64    `json:"retrieval_scores"`
	ExecutedActions []ActionKind `json:"executed_actions"`
	FailedActions   []ActionKind `json:"failed_actions,omitempty"`
	// Degraded lists the stages that fell back (e.g. "retrieval", "generation").
	Degraded  []string  `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAnalyticsEvent creates an event with a fresh id and UTC timestamp.
func NewAnalyticsEvent(sessionID string, role RoleID) AnalyticsEvent {
	return AnalyticsEvent{
		ID:        NewID(),
		SessionID: sessionID,
		Role:      role,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for events and turns.
func NewID() string { return uuid.NewString() }

// AnalyticsSink accepts analytics events. A failed write must never fail the turn.
type AnalyticsSink interface {
	Write(ctx context.Context, ev AnalyticsEvent) error
}

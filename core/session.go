package core

import (
	"context"
	"time"
)

// Turn is one query/answer exchange.
type Turn struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Role      RoleID    `json:"role"`
}

// ConversationState is the per-session state owned by the flow controller for
// the duration of one turn and persisted externally between turns.
//
// Contract:
//   - Executed records action kinds that already ran in this session; they are
//     never planned again
//   - Clone performs deep copies of maps/slices for safe divergence
//   - Mutations must happen under the session's single-writer lock
type ConversationState struct {
	SessionID string                   `json:"session_id"`
	Turns     []Turn                   `json:"turns"`
	Executed  map[ActionKind]time.Time `json:"executed"`
	Created   time.Time                `json:"created"`
	Updated   time.Time                `json:"updated"`
}

// NewConversationState creates an empty state for the given session.
func NewConversationState(sessionID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		SessionID: sessionID,
		Turns:     []Turn{},
		Executed:  map[ActionKind]time.Time{},
		Created:   now,
		Updated:   now,
	}
}

// TurnNumber returns the 1-based number of the turn currently being handled,
// i.e. the count of completed turns plus one.
func (s *ConversationState) TurnNumber() int { return len(s.Turns) + 1 }

// HasExecuted reports whether k already ran in this session.
func (s *ConversationState) HasExecuted(k ActionKind) bool {
	_, ok := s.Executed[k]
	return ok
}

// MarkExecuted records k as executed at the given time.
func (s *ConversationState) MarkExecuted(k ActionKind, at time.Time) {
	if s.Executed == nil {
		s.Executed = map[ActionKind]time.Time{}
	}
	if _, ok := s.Executed[k]; ok {
		return
	}
	s.Executed[k] = at
	s.Updated = at
}

// ExecutedKinds returns the executed set sorted by name.
func (s *ConversationState) ExecutedKinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(s.Executed))
	for k := range s.Executed {
		kinds = append(kinds, k)
	}
	SortKinds(kinds)
	return kinds
}

// AppendTurn adds a completed turn to the history.
func (s *ConversationState) AppendTurn(t Turn) {
	s.Turns = append(s.Turns, t)
	s.Updated = t.Timestamp
}

// History returns up to the last n turns (all turns when n <= 0) as a copy.
func (s *ConversationState) History(n int) []Turn {
	start := 0
	if n > 0 && len(s.Turns) > n {
		start = len(s.Turns) - n
	}
	out := make([]Turn, len(s.Turns)-start)
	copy(out, s.Turns[start:])
	return out
}

// Clone returns a deep copy of the state safe for independent mutation.
func (s *ConversationState) Clone() *ConversationState {
	c := &ConversationState{
		SessionID: s.SessionID,
		Turns:     make([]Turn, len(s.Turns)),
		Executed:  make(map[ActionKind]time.Time, len(s.Executed)),
		Created:   s.Created,
		Updated:   s.Updated,
	}
	copy(c.Turns, s.Turns)
	for k, v := range s.Executed {
		c.Executed[k] = v
	}
	return c
}

// StateStore persists conversation state between turns. Load returns a fresh
// state when the session is unknown.
type StateStore interface {
	Load(ctx context.Context, sessionID string) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
}

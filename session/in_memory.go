package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/folio/core"
)

// InMemoryStore is a volatile StateStore storing conversation states in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. States are cloned on the way in and out
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.ConversationState
}

var _ core.StateStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.ConversationState)}
}

// Load returns a clone of the stored state or a fresh state for unknown ids.
func (s *InMemoryStore) Load(_ context.Context, sessionID string) (*core.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[sessionID]; ok {
		return st.Clone(), nil
	}
	return core.NewConversationState(sessionID), nil
}

// Save stores a clone of state.
func (s *InMemoryStore) Save(_ context.Context, state *core.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return fmt.Errorf("state must carry a session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state.Clone()
	return nil
}

// Delete removes a session.
func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

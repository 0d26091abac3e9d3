package testutil

import (
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
)

// StateBuilder helps construct conversation states with fluent chaining.
// Example:
//
//	st := NewStateBuilder("sess-1").Turns(1).Executed(core.ActionOfferResume).Build()
type StateBuilder struct {
	id       string
	role     core.RoleID
	turns    []core.Turn
	executed []core.ActionKind
	clock    time.Time
}

// NewStateBuilder creates a builder for a session with the given id.
func NewStateBuilder(id string) *StateBuilder {
	return &StateBuilder{
		id:    id,
		role:  core.RoleCasualVisitor,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Role sets the role recorded on subsequently added turns (chainable).
func (b *StateBuilder) Role(r core.RoleID) *StateBuilder { b.role = r; return b }

// Turn appends one prior turn (chainable).
func (b *StateBuilder) Turn(query, answer string) *StateBuilder {
	b.clock = b.clock.Add(time.Minute)
	b.turns = append(b.turns, core.Turn{Query: query, Answer: answer, Timestamp: b.clock, Role: b.role})
	return b
}

// Turns appends n generic prior turns (chainable).
func (b *StateBuilder) Turns(n int) *StateBuilder {
	for i := 0; i < n; i++ {
		b.Turn(fmt.Sprintf("question %d", len(b.turns)+1), fmt.Sprintf("answer %d", len(b.turns)+1))
	}
	return b
}

// Executed marks action kinds as already executed (chainable).
func (b *StateBuilder) Executed(kinds ...core.ActionKind) *StateBuilder {
	b.executed = append(b.executed, kinds...)
	return b
}

// Build returns the conversation state.
func (b *StateBuilder) Build() *core.ConversationState {
	s := core.NewConversationState(b.id)
	for _, t := range b.turns {
		s.AppendTurn(t)
	}
	for _, k := range b.executed {
		s.MarkExecuted(k, b.clock)
	}
	return s
}

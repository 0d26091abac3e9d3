package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateStart, StateRetrieving, true},
		{StateStart, StateConfessionShortCircuit, true},
		{StateRetrieving, StatePlanning, true},
		{StateGenerating, StateExecuting, true},
		{StateLogging, StateDone, true},
		{StateStart, StateGenerating, false},
		{StateRetrieving, StateConfessionShortCircuit, false},
		{StateExecuting, StateGenerating, false},
		{StateDone, StateStart, false},
		{StateConfessionShortCircuit, StateRetrieving, false},
		{State("bogus"), StateDone, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, StateDone.IsTerminal())
	assert.True(t, StateConfessionShortCircuit.IsTerminal())
	assert.False(t, StateStart.IsTerminal())
	assert.False(t, State("bogus").IsTerminal())
}

func TestMachine_RejectsIllegalTransition(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newMachine(func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	})

	spent, err := m.advance(StateRetrieving)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, spent)

	_, err = m.advance(StateDone)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StateRetrieving, m.current)
	assert.Equal(t, []State{StateStart, StateRetrieving}, m.states())
}

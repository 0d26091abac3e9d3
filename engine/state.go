package engine

import (
	"errors"
	"fmt"
	"time"
)

// State is a node of the turn state machine.
type State string

const (
	StateStart                  State = "start"
	StateRetrieving             State = "retrieving"
	StatePlanning               State = "planning"
	StateEnriching              State = "enriching"
	StateGenerating             State = "generating"
	StateExecuting              State = "executing"
	StateLogging                State = "logging"
	StateDone                   State = "done"
	StateConfessionShortCircuit State = "confession_short_circuit"
)

// ErrIllegalTransition is returned when the flow attempts a transition
// that is not listed in the transition table.
var ErrIllegalTransition = errors.New("illegal state transition")

// transitions lists every legal successor of a state.
var transitions = map[State][]State{
	StateStart:                  {StateRetrieving, StateConfessionShortCircuit},
	StateRetrieving:             {StatePlanning},
	StatePlanning:               {StateEnriching},
	StateEnriching:              {StateGenerating},
	StateGenerating:             {StateExecuting},
	StateExecuting:              {StateLogging},
	StateLogging:                {StateDone},
	StateDone:                   {},
	StateConfessionShortCircuit: {},
}

// CanTransition reports whether the table allows moving from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transitions leave s.
func (s State) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// machine tracks the current state of a single turn and the path taken so far.
type machine struct {
	current State
	entered time.Time
	path    []State
	now     func() time.Time
}

func newMachine(now func() time.Time) *machine {
	return &machine{
		current: StateStart,
		entered: now(),
		path:    []State{StateStart},
		now:     now,
	}
}

// advance moves to the next state and returns the time spent in the previous one.
func (m *machine) advance(to State) (time.Duration, error) {
	if !CanTransition(m.current, to) {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, to)
	}
	at := m.now()
	spent := at.Sub(m.entered)
	m.current = to
	m.entered = at
	m.path = append(m.path, to)
	return spent, nil
}

func (m *machine) states() []State {
	out := make([]State, len(m.path))
	copy(out, m.path)
	return out
}

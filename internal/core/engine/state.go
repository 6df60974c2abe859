package engine

import (
	"errors"
	"time"
)

// State is the lifecycle state of an iterator.
type State string

const (
	// StateReady means no invocation has been pulled yet.
	StateReady State = "ready"
	// StateHasMore means tuples or retry budget remain.
	StateHasMore State = "has_more"
	// StateExhausted is terminal: every tuple is committed.
	StateExhausted State = "exhausted"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// ValidTransitions defines allowed state transitions.
var ValidTransitions = map[State][]State{
	StateReady:   {StateHasMore, StateExhausted},
	StateHasMore: {StateExhausted},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Transition represents a state change with metadata.
type Transition struct {
	From      State
	To        State
	Reason    string
	Timestamp time.Time
}

// NewTransition creates a new transition record.
func NewTransition(from, to State, reason string) Transition {
	return Transition{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// IsValid returns true if this transition is allowed by the state machine.
func (t Transition) IsValid() bool {
	return CanTransition(t.From, t.To)
}

// IterationState is a snapshot of the iterator's cursors.
type IterationState struct {
	State            State
	TupleCursor      int  // index of the tuple being attempted
	AttemptCursor    int  // attempts handed out for that tuple
	RetryablePending bool // last reported outcome was retryable
}

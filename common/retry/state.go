package retry

import "fmt"

// State identifies a phase of one Execute call's attempt loop.
type State string

const (
	// StateIdle is the phase before the first attempt runs.
	StateIdle State = "idle"
	// StateAttempting is the phase while the task is being invoked.
	StateAttempting State = "attempting"
	// StateAwaitingBackoff is the phase while the executor waits between
	// failed attempts.
	StateAwaitingBackoff State = "awaiting_backoff"
	// StateSucceeded is the terminal phase after a successful attempt.
	StateSucceeded State = "succeeded"
	// StateFailed is the terminal phase after the budget is exhausted or the
	// policy vetoes further attempts.
	StateFailed State = "failed"
	// StateInterrupted is the terminal phase after cancellation during a
	// backoff wait.
	StateInterrupted State = "interrupted"
)

// ParseState validates and converts a raw string state.
func ParseState(raw string) (State, error) {
	state := State(raw)

	if !state.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrStateInvalid, raw)
	}

	return state, nil
}

// IsValid reports whether the state is part of the execution lifecycle.
func (state State) IsValid() bool {
	switch state {
	case StateIdle, StateAttempting, StateAwaitingBackoff, StateSucceeded, StateFailed, StateInterrupted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the state ends an Execute call.
func (state State) IsTerminal() bool {
	switch state {
	case StateSucceeded, StateFailed, StateInterrupted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a transition from state to next is allowed.
func (state State) CanTransitionTo(next State) bool {
	switch state {
	case StateIdle:
		return next == StateAttempting
	case StateAttempting:
		return next == StateSucceeded || next == StateAwaitingBackoff || next == StateFailed || next == StateInterrupted
	case StateAwaitingBackoff:
		return next == StateAttempting || next == StateInterrupted
	case StateSucceeded, StateFailed, StateInterrupted:
		return false
	default:
		return false
	}
}

func (state State) String() string {
	return string(state)
}

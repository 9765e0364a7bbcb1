package retry

import "fmt"

// Outcome is the closed terminal result of one Execute call: a success
// carrying a value, a failure carrying the classified error, or an
// interruption honoring the caller's cancellation. Exactly one Outcome is
// produced per call and its attempt count never exceeds the configured
// budget.
//
// Outcomes are only constructed by the executor; callers inspect them
// through the accessors or convert them to an idiomatic (value, error) pair
// with Result.
type Outcome[V any] struct {
	state        State
	value        V
	err          error
	attemptsMade int
}

func successOutcome[V any](value V, attemptsMade int) Outcome[V] {
	return Outcome[V]{state: StateSucceeded, value: value, attemptsMade: attemptsMade}
}

func failureOutcome[V any](err error, attemptsMade int) Outcome[V] {
	return Outcome[V]{state: StateFailed, err: err, attemptsMade: attemptsMade}
}

func interruptedOutcome[V any](err error, attemptsMade int) Outcome[V] {
	return Outcome[V]{state: StateInterrupted, err: err, attemptsMade: attemptsMade}
}

// State returns the terminal state: StateSucceeded, StateFailed, or
// StateInterrupted.
func (outcome Outcome[V]) State() State {
	return outcome.state
}

// Value returns the task's value for a successful outcome and the zero
// value otherwise.
func (outcome Outcome[V]) Value() V {
	return outcome.value
}

// Err returns nil for a successful outcome, a *Error for a failure, and a
// *InterruptedError for an interruption.
func (outcome Outcome[V]) Err() error {
	return outcome.err
}

// AttemptsMade returns how many task invocations the call consumed.
func (outcome Outcome[V]) AttemptsMade() int {
	return outcome.attemptsMade
}

// Succeeded reports whether the task produced a value.
func (outcome Outcome[V]) Succeeded() bool {
	return outcome.state == StateSucceeded
}

// Failed reports whether the call ended in exhaustion or a policy veto.
func (outcome Outcome[V]) Failed() bool {
	return outcome.state == StateFailed
}

// Interrupted reports whether cancellation ended the call during a backoff
// wait.
func (outcome Outcome[V]) Interrupted() bool {
	return outcome.state == StateInterrupted
}

// Result converts the outcome to an idiomatic (value, error) pair.
func (outcome Outcome[V]) Result() (V, error) {
	return outcome.value, outcome.err
}

// String summarizes the outcome for logs and test failures.
func (outcome Outcome[V]) String() string {
	if outcome.err != nil {
		return fmt.Sprintf("%s after %d attempts: %v", outcome.state, outcome.attemptsMade, outcome.err)
	}

	return fmt.Sprintf("%s after %d attempts", outcome.state, outcome.attemptsMade)
}

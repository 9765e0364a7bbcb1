package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the sentinel wrapped by every configuration
	// validation failure.
	ErrInvalidConfig = errors.New("invalid retry config")
	// ErrNilTask is returned when an executor is constructed without a task.
	ErrNilTask = errors.New("retry task is required")
	// ErrNilExecutor is returned when Execute is called on a nil executor.
	ErrNilExecutor = errors.New("retry executor is required")
	// ErrTaskPanic is the sentinel wrapped around a recovered task panic.
	ErrTaskPanic = errors.New("retry task panicked")
	// ErrStateInvalid is returned when a raw string is not an execution state.
	ErrStateInvalid = errors.New("invalid execution state")
)

// Error is the terminal failure kind shared by the two non-success, non-
// cancellation endings of an Execute call: the retry budget was exhausted,
// or the policy vetoed further attempts. The two cases carry the same kind
// and differ only in message and the Vetoed flag.
type Error struct {
	// Attempts is the total number of task invocations made.
	Attempts int
	// Vetoed is true when the policy stopped the loop before the budget ran
	// out, false when the final permitted attempt failed.
	Vetoed bool
	// Cause is the error returned by the last task invocation.
	Cause error
}

// Error returns the formatted terminal failure message.
func (failure *Error) Error() string {
	if failure.Vetoed {
		return fmt.Sprintf("retry vetoed by policy after %d attempts: %v", failure.Attempts, failure.Cause)
	}

	return fmt.Sprintf("task failed after all %d attempts: %v", failure.Attempts, failure.Cause)
}

// Unwrap returns the final task error so callers can match the cause chain
// with errors.Is and errors.As.
func (failure *Error) Unwrap() error {
	return failure.Cause
}

// AsError extracts the terminal failure from err's chain, reporting whether
// one was present.
func AsError(err error) (*Error, bool) {
	var failure *Error

	return failure, errors.As(err, &failure)
}

// InterruptedError reports that the caller's own cancellation signal ended
// an Execute call during a backoff wait. It is a distinct kind from Error:
// it reflects caller intent, not task failure.
type InterruptedError struct {
	// Attempts is the number of task invocations completed before the
	// interruption.
	Attempts int
	// Cause is the context error observed during the wait.
	Cause error
}

// Error returns the formatted interruption message.
func (interruption *InterruptedError) Error() string {
	return fmt.Sprintf("retry interrupted during backoff after %d attempts: %v", interruption.Attempts, interruption.Cause)
}

// Unwrap returns the context error so errors.Is(err, context.Canceled) and
// errors.Is(err, context.DeadlineExceeded) hold.
func (interruption *InterruptedError) Unwrap() error {
	return interruption.Cause
}

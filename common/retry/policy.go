package retry

import "errors"

// Policy decides, after a failed attempt, whether another attempt is
// warranted. The executor consults it only when the failed attempt is not
// the last permitted one; failure at the final attempt is unconditionally
// terminal and the policy is never asked about it.
//
// Implementations must be pure predicates over the cause and the counters:
// no side effects, safe for concurrent use.
type Policy interface {
	CanRetry(cause error, attempt, maxAttempts int) bool
}

// PolicyFunc adapts a plain predicate to the Policy interface.
type PolicyFunc func(cause error, attempt, maxAttempts int) bool

// CanRetry calls the wrapped predicate. A nil function allows the retry.
func (fn PolicyFunc) CanRetry(cause error, attempt, maxAttempts int) bool {
	if fn == nil {
		return true
	}

	return fn(cause, attempt, maxAttempts)
}

// AlwaysRetry returns the default policy: every failure is retried until
// the budget is exhausted.
//
//nolint:ireturn
func AlwaysRetry() Policy {
	return PolicyFunc(func(_ error, _, _ int) bool {
		return true
	})
}

// SkipNonRetryable returns a policy that vetoes causes marked with
// NonRetryable and allows everything else.
//
//nolint:ireturn
func SkipNonRetryable() Policy {
	return PolicyFunc(func(cause error, _, _ int) bool {
		return !IsNonRetryable(cause)
	})
}

// RetryOn returns a policy that allows a retry only when the cause matches
// one of the target errors via errors.Is.
//
//nolint:ireturn
func RetryOn(targets ...error) Policy {
	return PolicyFunc(func(cause error, _, _ int) bool {
		for _, target := range targets {
			if errors.Is(cause, target) {
				return true
			}
		}

		return false
	})
}

// SkipOn returns a policy that vetoes a retry when the cause matches one of
// the target errors via errors.Is and allows everything else.
//
//nolint:ireturn
func SkipOn(targets ...error) Policy {
	return PolicyFunc(func(cause error, _, _ int) bool {
		for _, target := range targets {
			if errors.Is(cause, target) {
				return false
			}
		}

		return true
	})
}

// All combines policies so a retry is allowed only when every policy allows
// it. With no policies it allows the retry.
//
//nolint:ireturn
func All(policies ...Policy) Policy {
	return PolicyFunc(func(cause error, attempt, maxAttempts int) bool {
		for _, policy := range policies {
			if policy != nil && !policy.CanRetry(cause, attempt, maxAttempts) {
				return false
			}
		}

		return true
	})
}

// Any combines policies so a retry is allowed when at least one policy
// allows it. With no policies it vetoes the retry.
//
//nolint:ireturn
func Any(policies ...Policy) Policy {
	return PolicyFunc(func(cause error, attempt, maxAttempts int) bool {
		for _, policy := range policies {
			if policy != nil && policy.CanRetry(cause, attempt, maxAttempts) {
				return true
			}
		}

		return false
	})
}

// Not inverts a policy's decision.
//
//nolint:ireturn
func Not(policy Policy) Policy {
	return PolicyFunc(func(cause error, attempt, maxAttempts int) bool {
		if policy == nil {
			return false
		}

		return !policy.CanRetry(cause, attempt, maxAttempts)
	})
}

// NonRetryableError marks a cause that should never be retried. Tasks wrap
// terminal failures with NonRetryable so a SkipNonRetryable policy (or any
// backend policy built on IsNonRetryable) stops the loop immediately.
type NonRetryableError struct {
	Err error
}

// Error returns the wrapped error's message.
func (marked *NonRetryableError) Error() string {
	if marked.Err == nil {
		return "non-retryable"
	}

	return marked.Err.Error()
}

// Unwrap returns the wrapped error.
func (marked *NonRetryableError) Unwrap() error {
	return marked.Err
}

// NonRetryable marks err as not worth retrying. A nil err stays nil.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}

	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err carries the NonRetryable marker.
func IsNonRetryable(err error) bool {
	var marked *NonRetryableError

	return errors.As(err, &marked)
}

package circuitbreaker

import (
	"context"

	"github.com/revelfire/common-lib/common/retry"
)

// Policy returns a retry policy that vetoes further attempts while the
// breaker rejects calls: either the failed attempt itself was a breaker
// rejection, or the breaker has opened since. Retrying into an open circuit
// would only burn the remaining budget on waits, so the loop stops with a
// vetoed failure instead. A nil breaker never vetoes.
//
//nolint:ireturn
func Policy(breaker *Breaker) retry.Policy {
	return retry.PolicyFunc(func(cause error, _, _ int) bool {
		if breaker == nil {
			return true
		}

		if Rejected(cause) {
			return false
		}

		return breaker.State() != StateOpen
	})
}

// Guard wraps a task so every attempt runs through the breaker. Attempt
// failures trip the circuit like any guarded call; once open, attempts fail
// immediately with a rejection error instead of reaching the task. Combine
// with Policy so the retry loop stops on the first rejection.
//
//nolint:ireturn
func Guard[V any](breaker *Breaker, task retry.Task[V]) retry.Task[V] {
	return retry.TaskFunc[V](func(ctx context.Context, attempt int) (V, error) {
		var zero V

		if breaker == nil {
			return zero, ErrNilBreaker
		}

		if task == nil {
			return zero, retry.ErrNilTask
		}

		result, err := breaker.Execute(func() (any, error) {
			return task.Attempt(ctx, attempt)
		})
		if err != nil {
			return zero, err
		}

		value, ok := result.(V)
		if !ok {
			return zero, nil
		}

		return value, nil
	})
}

// Package retry executes a fallible task repeatedly until it succeeds,
// exhausts its attempt budget, is vetoed by a policy, or is cancelled while
// waiting between attempts.
//
// The executor owns a single authoritative loop; only three collaborators
// are pluggable: the Task being run, the Policy deciding whether a failure
// is worth another attempt, and the backoff.Strategy shaping the delay
// between attempts.
//
// # Basic Usage
//
//	task := retry.TaskFunc[string](func(ctx context.Context, attempt int) (string, error) {
//		return fetchToken(ctx)
//	})
//
//	executor, err := retry.New(task, retry.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	outcome := executor.Execute(ctx)
//	if outcome.Succeeded() {
//		use(outcome.Value())
//	}
//
// Execute returns a closed Outcome; callers preferring a plain pair use
// Run, which yields (value, error) directly.
//
// # Outcomes
//
// Every Execute call ends in exactly one of three terminal states. Success
// carries the task's value. Failure carries a *Error whose Vetoed flag
// distinguishes an exhausted budget from a policy veto; both wrap the final
// cause. Interruption carries a *InterruptedError that unwraps to the
// context error, so errors.Is(err, context.Canceled) holds. Cancellation is
// only observed during backoff waits: the first attempt always runs, and a
// task needing earlier cancellation checks its own context.
//
// # Policies
//
// The default policy retries every failure until the budget runs out.
// Custom policies veto retries for terminal causes; the postgres, redis,
// rabbitmq, mongo, and grpc packages provide ready-made policies for their
// backends, and RetryOn, SkipOn, All, Any, and Not compose them.
//
// # Backoff
//
// Delays grow geometrically by default: each wait is the previous wait
// multiplied by the configured factor, starting from the initial delay.
// The backoff package provides linear, constant, capped, and jittered
// variants satisfying the same Strategy interface.
//
// # Concurrency
//
// An Executor holds no per-call state; all loop state lives in the Execute
// frame. Concurrent Execute calls on one executor are fully independent.
// The executor never retries concurrently and never reorders attempts.
package retry

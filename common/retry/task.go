package retry

import "context"

// Task is the caller-supplied operation an executor drives. The executor
// only ever holds the reference for the lifetime of one Execute call and
// may invoke it several times; whether repeated invocations are safe
// (idempotent) is the caller's responsibility.
//
// Attempt receives the zero-based index of the current invocation. Tasks
// that need to stop a run before the next invocation begins can check ctx
// themselves and return its error.
type Task[V any] interface {
	Attempt(ctx context.Context, attempt int) (V, error)
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc[V any] func(ctx context.Context, attempt int) (V, error)

// Attempt calls the wrapped function.
func (fn TaskFunc[V]) Attempt(ctx context.Context, attempt int) (V, error) {
	return fn(ctx, attempt)
}

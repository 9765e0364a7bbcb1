package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/revelfire/common-lib/common"
	"github.com/revelfire/common-lib/common/backoff"
	"github.com/revelfire/common-lib/common/internal/nilcheck"
	"github.com/revelfire/common-lib/common/log"
	"go.opentelemetry.io/otel/metric"
)

// Executor drives the retry loop for one task: invoke, classify, consult
// the policy and the backoff strategy, wait, and produce exactly one
// terminal Outcome per Execute call.
//
// The loop itself is fixed; only the task, the policy, and the strategy are
// pluggable. An Executor holds no per-call state, so concurrent Execute
// calls on the same instance are independent and need no synchronization.
type Executor[V any] struct {
	task     Task[V]
	config   Config
	settings settings
	metrics  executorMetrics
}

// settings carries the pluggable collaborators shared by every Execute
// call. Options mutate it at construction only.
type settings struct {
	policy        Policy
	strategy      backoff.Strategy
	logger        log.Logger
	meterProvider metric.MeterProvider
	wait          func(ctx context.Context, delay time.Duration) error
	onRetry       func(ctx context.Context, attempt int, cause error, delay time.Duration)
}

// attemptContext is the mutable state of a single Execute call: the current
// attempt index, the current delay, and the loop phase. It lives in the
// call's own frame and is never shared.
type attemptContext struct {
	attempt int
	delay   time.Duration
	state   State
}

// New creates an executor for the given task and configuration. It fails
// with ErrNilTask for a missing task and with an ErrInvalidConfig-wrapped
// error naming the offending parameter for a bad config; no partially
// constructed executor is ever returned.
func New[V any](task Task[V], config Config, opts ...Option) (*Executor[V], error) {
	if nilcheck.Interface(task) {
		return nil, ErrNilTask
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	executor := &Executor[V]{
		task:   task,
		config: config,
		settings: settings{
			policy:   AlwaysRetry(),
			strategy: backoff.Geometric(),
			wait:     backoff.WaitContext,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&executor.settings)
		}
	}

	metrics, err := newExecutorMetrics(executor.settings.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("init retry metrics: %w", err)
	}

	executor.metrics = metrics

	return executor, nil
}

// Execute runs the attempt loop until the task succeeds, the budget is
// exhausted, the policy vetoes another attempt, or cancellation interrupts
// a backoff wait. The first attempt always runs; cancellation is only
// observed while waiting. The call blocks the calling goroutine and the
// returned Outcome is terminal.
func (executor *Executor[V]) Execute(ctx context.Context) Outcome[V] {
	if executor == nil {
		return failureOutcome[V](ErrNilExecutor, 0)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	logger := executor.resolveLogger(ctx).With(log.String("run_id", uuid.New().String()))

	run := attemptContext{state: StateIdle, delay: executor.config.InitialDelay}

	for {
		run.state = StateAttempting
		executor.metrics.recordAttempt(ctx, run.attempt)

		value, cause := executor.attemptTask(ctx, run.attempt)
		if cause == nil {
			run.state = StateSucceeded
			executor.metrics.recordOutcome(ctx, StateSucceeded, false)
			logger.Log(ctx, log.LevelDebug, "task succeeded",
				log.Int("attempt", run.attempt+1),
				log.Int("max_attempts", executor.config.MaxAttempts))

			return successOutcome(value, run.attempt+1)
		}

		logger.Log(ctx, log.LevelWarn, "attempt failed",
			log.Int("attempt", run.attempt+1),
			log.Int("max_attempts", executor.config.MaxAttempts),
			log.Err(cause))

		// Failure at the last permitted attempt is unconditionally terminal;
		// the policy is never consulted for it.
		if run.attempt == executor.config.MaxAttempts-1 {
			run.state = StateFailed
			executor.metrics.recordOutcome(ctx, StateFailed, false)
			logger.Log(ctx, log.LevelError, "retry budget exhausted",
				log.Int("attempts", run.attempt+1),
				log.Err(cause))

			return failureOutcome[V](&Error{Attempts: run.attempt + 1, Cause: cause}, run.attempt+1)
		}

		if !executor.settings.policy.CanRetry(cause, run.attempt, executor.config.MaxAttempts) {
			run.state = StateFailed
			executor.metrics.recordOutcome(ctx, StateFailed, true)
			logger.Log(ctx, log.LevelError, "retry vetoed by policy",
				log.Int("attempts", run.attempt+1),
				log.Err(cause))

			return failureOutcome[V](&Error{Attempts: run.attempt + 1, Vetoed: true, Cause: cause}, run.attempt+1)
		}

		run.state = StateAwaitingBackoff

		if executor.settings.onRetry != nil {
			executor.settings.onRetry(ctx, run.attempt, cause, run.delay)
		}

		logger.Log(ctx, log.LevelDebug, "awaiting backoff",
			log.Int("attempt", run.attempt+1),
			log.Duration("delay", run.delay))
		executor.metrics.recordWait(ctx, run.delay)

		if waitErr := executor.settings.wait(ctx, run.delay); waitErr != nil {
			return executor.interrupt(ctx, logger, &run, waitErr)
		}

		// A completed wait can race the cancellation signal; check once more
		// before invoking the task again.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return executor.interrupt(ctx, logger, &run, ctxErr)
		}

		// The first wait is the configured initial delay; growth applies
		// between waits.
		run.delay = executor.settings.strategy.NextDelay(run.delay, executor.config.DelayFactor, run.attempt)
		run.attempt++
	}
}

// Run executes the loop and converts the Outcome to an idiomatic
// (value, error) pair.
func (executor *Executor[V]) Run(ctx context.Context) (V, error) {
	return executor.Execute(ctx).Result()
}

// attemptTask invokes one task attempt, converting a panic into an
// ErrTaskPanic-wrapped failure so the loop can classify it like any other
// cause.
func (executor *Executor[V]) attemptTask(ctx context.Context, attempt int) (value V, cause error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			cause = fmt.Errorf("%w: %v", ErrTaskPanic, recovered)
		}
	}()

	return executor.task.Attempt(ctx, attempt)
}

// interrupt finishes the call in StateInterrupted, preferring the context's
// own error as the cause so callers can match context.Canceled and
// context.DeadlineExceeded.
func (executor *Executor[V]) interrupt(ctx context.Context, logger log.Logger, run *attemptContext, waitErr error) Outcome[V] {
	run.state = StateInterrupted

	cause := ctx.Err()
	if cause == nil {
		cause = waitErr
	}

	executor.metrics.recordOutcome(ctx, StateInterrupted, false)
	logger.Log(ctx, log.LevelInfo, "backoff wait interrupted",
		log.Int("attempts", run.attempt+1),
		log.Err(cause))

	return interruptedOutcome[V](&InterruptedError{Attempts: run.attempt + 1, Cause: cause}, run.attempt+1)
}

// resolveLogger prefers the configured logger and falls back to the one
// carried by ctx (which itself falls back to a no-op).
//
//nolint:ireturn
func (executor *Executor[V]) resolveLogger(ctx context.Context) log.Logger {
	if executor.settings.logger != nil {
		return executor.settings.logger
	}

	return common.LoggerFromContext(ctx)
}

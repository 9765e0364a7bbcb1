//go:build unit

package retry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/revelfire/common-lib/common/backoff"
	"github.com/revelfire/common-lib/common/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAttemptFailed = errors.New("attempt failed")

// scriptedTask fails for the first failures invocations and then succeeds,
// counting every invocation and recording the attempt indexes it saw.
type scriptedTask struct {
	mu          sync.Mutex
	failures    int
	value       string
	invocations int32
	seenIndexes []int
}

func (task *scriptedTask) Attempt(_ context.Context, attempt int) (string, error) {
	atomic.AddInt32(&task.invocations, 1)

	task.mu.Lock()
	task.seenIndexes = append(task.seenIndexes, attempt)
	task.mu.Unlock()

	if attempt < task.failures {
		return "", errAttemptFailed
	}

	return task.value, nil
}

func (task *scriptedTask) invoked() int {
	return int(atomic.LoadInt32(&task.invocations))
}

// instantWait replaces the real backoff wait so unit tests never sleep.
func instantWait(_ context.Context, _ time.Duration) error {
	return nil
}

// delayRecorder collects the delay handed to each wait without sleeping.
type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (recorder *delayRecorder) wait(_ context.Context, delay time.Duration) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	recorder.delays = append(recorder.delays, delay)

	return nil
}

func (recorder *delayRecorder) recorded() []time.Duration {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	return append([]time.Duration(nil), recorder.delays...)
}

func TestNew_NilTask(t *testing.T) {
	t.Parallel()

	executor, err := New[string](nil, DefaultConfig())

	require.ErrorIs(t, err, ErrNilTask)
	assert.Nil(t, executor)
}

func TestNew_TypedNilTask(t *testing.T) {
	t.Parallel()

	var task *scriptedTask

	executor, err := New[string](task, DefaultConfig())

	require.ErrorIs(t, err, ErrNilTask)
	assert.Nil(t, executor)
}

func TestNew_InvalidConfigFailsBeforeAnyInvocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config Config
	}{
		{name: "zero max attempts", config: Config{MaxAttempts: 0, InitialDelay: time.Millisecond, DelayFactor: 2}},
		{name: "zero initial delay", config: Config{MaxAttempts: 3, InitialDelay: 0, DelayFactor: 2}},
		{name: "zero delay factor", config: Config{MaxAttempts: 3, InitialDelay: time.Millisecond, DelayFactor: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := &scriptedTask{}

			executor, err := New[string](task, tt.config)

			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, executor)
			assert.Zero(t, task.invoked())
		})
	}
}

func TestExecute_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()

	for _, maxAttempts := range []int{1, 2, 5, 10} {
		task := &scriptedTask{value: "ok"}

		executor, err := New[string](task,
			Config{MaxAttempts: maxAttempts, InitialDelay: time.Millisecond, DelayFactor: 5},
			WithWaitFunc(instantWait))
		require.NoError(t, err)

		outcome := executor.Execute(context.Background())

		require.True(t, outcome.Succeeded(), "maxAttempts=%d: %s", maxAttempts, outcome)
		assert.Equal(t, "ok", outcome.Value())
		assert.Equal(t, 1, outcome.AttemptsMade())
		assert.Equal(t, 1, task.invoked())
		require.NoError(t, outcome.Err())
	}
}

func TestExecute_AlwaysFailingTaskConsumesExactBudget(t *testing.T) {
	t.Parallel()

	for _, maxAttempts := range []int{1, 2, 3, 7} {
		task := &scriptedTask{failures: maxAttempts + 100}

		executor, err := New[string](task,
			Config{MaxAttempts: maxAttempts, InitialDelay: time.Millisecond, DelayFactor: 5},
			WithWaitFunc(instantWait))
		require.NoError(t, err)

		outcome := executor.Execute(context.Background())

		require.True(t, outcome.Failed(), "maxAttempts=%d: %s", maxAttempts, outcome)
		assert.Equal(t, maxAttempts, outcome.AttemptsMade())
		assert.Equal(t, maxAttempts, task.invoked())

		var failure *Error
		require.ErrorAs(t, outcome.Err(), &failure)
		assert.Equal(t, maxAttempts, failure.Attempts)
		assert.False(t, failure.Vetoed)
		require.ErrorIs(t, outcome.Err(), errAttemptFailed)
	}
}

func TestExecute_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	// Fails k times with k < MaxAttempts, then succeeds: exactly k+1
	// invocations and a Success outcome.
	for _, failures := range []int{1, 2, 4} {
		task := &scriptedTask{failures: failures, value: "eventually"}

		executor, err := New[string](task,
			Config{MaxAttempts: 5, InitialDelay: time.Millisecond, DelayFactor: 5},
			WithWaitFunc(instantWait))
		require.NoError(t, err)

		outcome := executor.Execute(context.Background())

		require.True(t, outcome.Succeeded(), "failures=%d: %s", failures, outcome)
		assert.Equal(t, "eventually", outcome.Value())
		assert.Equal(t, failures+1, outcome.AttemptsMade())
		assert.Equal(t, failures+1, task.invoked())
	}
}

func TestExecute_SingleAttemptBudget(t *testing.T) {
	t.Parallel()

	// MaxAttempts=1 means zero retries: one invocation, no waits, and the
	// policy is never consulted.
	task := &scriptedTask{failures: 10}
	recorder := &delayRecorder{}
	policyCalls := 0

	executor, err := New[string](task,
		Config{MaxAttempts: 1, InitialDelay: time.Millisecond, DelayFactor: 5},
		WithWaitFunc(recorder.wait),
		WithPolicy(PolicyFunc(func(_ error, _, _ int) bool {
			policyCalls++

			return true
		})))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Failed())
	assert.Equal(t, 1, outcome.AttemptsMade())
	assert.Equal(t, 1, task.invoked())
	assert.Zero(t, policyCalls)
	assert.Empty(t, recorder.recorded())
}

func TestExecute_PolicyNeverConsultedForLastAttempt(t *testing.T) {
	t.Parallel()

	task := &scriptedTask{failures: 10}

	var consultedAt []int

	executor, err := New[string](task,
		Config{MaxAttempts: 4, InitialDelay: time.Millisecond, DelayFactor: 5},
		WithWaitFunc(instantWait),
		WithPolicy(PolicyFunc(func(_ error, attempt, maxAttempts int) bool {
			consultedAt = append(consultedAt, attempt)
			assert.Equal(t, 4, maxAttempts)

			return true
		})))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Failed())
	// Attempts 0, 1, 2 are consultable; failure at index 3 is terminal.
	assert.Equal(t, []int{0, 1, 2}, consultedAt)
}

func TestExecute_PolicyVetoStopsImmediately(t *testing.T) {
	t.Parallel()

	vetoAt := 1
	task := &scriptedTask{failures: 10}

	executor, err := New[string](task,
		Config{MaxAttempts: 5, InitialDelay: time.Millisecond, DelayFactor: 5},
		WithWaitFunc(instantWait),
		WithPolicy(PolicyFunc(func(_ error, attempt, _ int) bool {
			return attempt < vetoAt
		})))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Failed())
	assert.Equal(t, vetoAt+1, outcome.AttemptsMade())
	assert.Equal(t, vetoAt+1, task.invoked())

	var failure *Error
	require.ErrorAs(t, outcome.Err(), &failure)
	assert.True(t, failure.Vetoed)
	assert.Contains(t, failure.Error(), "vetoed by policy")
}

func TestExecute_GeometricDelaySequence(t *testing.T) {
	t.Parallel()

	// initialDelay=100ms, factor=5: successive waits are 100ms, 500ms,
	// 2500ms, 12500ms.
	task := &scriptedTask{failures: 10}
	recorder := &delayRecorder{}

	executor, err := New[string](task,
		Config{MaxAttempts: 5, InitialDelay: 100 * time.Millisecond, DelayFactor: 5},
		WithWaitFunc(recorder.wait))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Failed())
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		500 * time.Millisecond,
		2500 * time.Millisecond,
		12500 * time.Millisecond,
	}, recorder.recorded())
}

func TestExecute_ConcreteScenarioTwoFailuresThenSuccess(t *testing.T) {
	t.Parallel()

	// maxAttempts=3, initialDelay=100ms, factor=5; attempts 0 and 1 fail,
	// attempt 2 succeeds: waits of 100ms then 500ms, 3 invocations, Success.
	task := &scriptedTask{failures: 2, value: "third time lucky"}
	recorder := &delayRecorder{}

	executor, err := New[string](task,
		Config{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond, DelayFactor: 5},
		WithWaitFunc(recorder.wait))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Succeeded())
	assert.Equal(t, "third time lucky", outcome.Value())
	assert.Equal(t, 3, outcome.AttemptsMade())
	assert.Equal(t, 3, task.invoked())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 500 * time.Millisecond}, recorder.recorded())
	assert.Equal(t, []int{0, 1, 2}, task.seenIndexes)
}

func TestExecute_DelayStateDoesNotLeakAcrossCalls(t *testing.T) {
	t.Parallel()

	// Two sequential Execute calls on the same executor each start from the
	// configured initial delay.
	recorder := &delayRecorder{}

	executor, err := New[string](
		TaskFunc[string](func(_ context.Context, _ int) (string, error) {
			return "", errAttemptFailed
		}),
		Config{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond, DelayFactor: 5},
		WithWaitFunc(recorder.wait))
	require.NoError(t, err)

	executor.Execute(context.Background())
	executor.Execute(context.Background())

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond, 500 * time.Millisecond,
		100 * time.Millisecond, 500 * time.Millisecond,
	}, recorder.recorded())
}

func TestExecute_CancellationDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	task := &scriptedTask{failures: 10}

	// The first wait cancels the context instead of completing, as a real
	// cancelled backoff.WaitContext would.
	executor, err := New[string](task,
		Config{MaxAttempts: 5, InitialDelay: time.Hour, DelayFactor: 5},
		WithWaitFunc(func(ctx context.Context, _ time.Duration) error {
			cancel()

			return ctx.Err()
		}))
	require.NoError(t, err)

	outcome := executor.Execute(ctx)

	require.True(t, outcome.Interrupted())
	assert.False(t, outcome.Failed())
	assert.Equal(t, 1, outcome.AttemptsMade())
	assert.Equal(t, 1, task.invoked())

	var interruption *InterruptedError
	require.ErrorAs(t, outcome.Err(), &interruption)
	assert.Equal(t, 1, interruption.Attempts)
	require.ErrorIs(t, outcome.Err(), context.Canceled)

	// Interruption is never conflated with a task failure.
	var failure *Error

	assert.False(t, errors.As(outcome.Err(), &failure))
}

func TestExecute_RealWaitCancellationIsPrompt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	task := &scriptedTask{failures: 10}

	executor, err := New[string](task,
		Config{MaxAttempts: 3, InitialDelay: time.Hour, DelayFactor: 5})
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	outcome := executor.Execute(ctx)
	elapsed := time.Since(started)

	require.True(t, outcome.Interrupted())
	assert.Equal(t, 1, outcome.AttemptsMade())
	// The hour-long wait must end promptly once the context is cancelled.
	assert.Less(t, elapsed, 10*time.Second)
}

func TestExecute_CancellationAfterCompletedWaitSkipsNextAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	task := &scriptedTask{failures: 10}

	// The wait itself completes, but the context is cancelled by the time it
	// returns; the executor must not invoke the task again.
	executor, err := New[string](task,
		Config{MaxAttempts: 5, InitialDelay: time.Millisecond, DelayFactor: 5},
		WithWaitFunc(func(_ context.Context, _ time.Duration) error {
			cancel()

			return nil
		}))
	require.NoError(t, err)

	outcome := executor.Execute(ctx)

	require.True(t, outcome.Interrupted())
	assert.Equal(t, 1, task.invoked())
	require.ErrorIs(t, outcome.Err(), context.Canceled)
}

func TestExecute_DeadlineExceededSurfacesThroughInterruption(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	executor, err := New[string](
		TaskFunc[string](func(_ context.Context, _ int) (string, error) {
			return "", errAttemptFailed
		}),
		Config{MaxAttempts: 3, InitialDelay: time.Hour, DelayFactor: 5})
	require.NoError(t, err)

	outcome := executor.Execute(ctx)

	require.True(t, outcome.Interrupted())
	require.ErrorIs(t, outcome.Err(), context.DeadlineExceeded)
}

func TestExecute_FirstAttemptAlwaysRuns(t *testing.T) {
	t.Parallel()

	// Cancellation is only observed while waiting; a pre-cancelled context
	// still gets one task invocation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := &scriptedTask{value: "ran anyway"}

	executor, err := New[string](task,
		Config{MaxAttempts: 3, InitialDelay: time.Millisecond, DelayFactor: 5})
	require.NoError(t, err)

	outcome := executor.Execute(ctx)

	require.True(t, outcome.Succeeded())
	assert.Equal(t, 1, task.invoked())
}

func TestExecute_PanickingTaskIsContained(t *testing.T) {
	t.Parallel()

	invocations := 0

	executor, err := New[string](
		TaskFunc[string](func(_ context.Context, _ int) (string, error) {
			invocations++
			panic("boom")
		}),
		Config{MaxAttempts: 2, InitialDelay: time.Millisecond, DelayFactor: 5},
		WithWaitFunc(instantWait))
	require.NoError(t, err)

	var outcome Outcome[string]

	require.NotPanics(t, func() {
		outcome = executor.Execute(context.Background())
	})

	require.True(t, outcome.Failed())
	assert.Equal(t, 2, invocations)
	require.ErrorIs(t, outcome.Err(), ErrTaskPanic)
	assert.Contains(t, outcome.Err().Error(), "boom")
}

func TestExecute_OnRetryHook(t *testing.T) {
	t.Parallel()

	type retryEvent struct {
		attempt int
		delay   time.Duration
	}

	var events []retryEvent

	executor, err := New[string](
		&scriptedTask{failures: 2, value: "ok"},
		Config{MaxAttempts: 5, InitialDelay: 100 * time.Millisecond, DelayFactor: 5},
		WithWaitFunc(instantWait),
		WithOnRetry(func(_ context.Context, attempt int, cause error, delay time.Duration) {
			require.ErrorIs(t, cause, errAttemptFailed)
			events = append(events, retryEvent{attempt: attempt, delay: delay})
		}))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Succeeded())
	assert.Equal(t, []retryEvent{
		{attempt: 0, delay: 100 * time.Millisecond},
		{attempt: 1, delay: 500 * time.Millisecond},
	}, events)
}

func TestExecute_CustomStrategy(t *testing.T) {
	t.Parallel()

	recorder := &delayRecorder{}

	executor, err := New[string](
		&scriptedTask{failures: 3, value: "ok"},
		Config{MaxAttempts: 5, InitialDelay: 40 * time.Millisecond, DelayFactor: 5},
		WithStrategy(backoff.Constant()),
		WithWaitFunc(recorder.wait))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Succeeded())
	assert.Equal(t, []time.Duration{
		40 * time.Millisecond,
		40 * time.Millisecond,
		40 * time.Millisecond,
	}, recorder.recorded())
}

func TestExecute_AttemptsNeverExceedBudget(t *testing.T) {
	t.Parallel()

	for _, failures := range []int{0, 1, 3, 5, 50} {
		task := &scriptedTask{failures: failures, value: "ok"}

		executor, err := New[string](task,
			Config{MaxAttempts: 4, InitialDelay: time.Millisecond, DelayFactor: 2},
			WithWaitFunc(instantWait))
		require.NoError(t, err)

		outcome := executor.Execute(context.Background())

		assert.LessOrEqual(t, outcome.AttemptsMade(), 4, "failures=%d", failures)
		assert.LessOrEqual(t, task.invoked(), 4, "failures=%d", failures)
	}
}

func TestExecute_NilReceiverAndNilContext(t *testing.T) {
	t.Parallel()

	var executor *Executor[string]

	outcome := executor.Execute(context.Background())
	require.True(t, outcome.Failed())
	require.ErrorIs(t, outcome.Err(), ErrNilExecutor)
	assert.Zero(t, outcome.AttemptsMade())

	valid, err := New[string](&scriptedTask{value: "ok"}, DefaultConfig())
	require.NoError(t, err)

	//nolint:staticcheck // nil context fallback is part of the contract
	result := valid.Execute(nil)
	require.True(t, result.Succeeded())
}

func TestExecute_ConcurrentCallsAreIndependent(t *testing.T) {
	t.Parallel()

	recorder := &delayRecorder{}

	executor, err := New[string](
		TaskFunc[string](func(_ context.Context, attempt int) (string, error) {
			if attempt < 2 {
				return "", errAttemptFailed
			}

			return "done", nil
		}),
		Config{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond, DelayFactor: 5},
		WithWaitFunc(recorder.wait))
	require.NoError(t, err)

	const goroutines = 8

	var wg sync.WaitGroup

	outcomes := make([]Outcome[string], goroutines)

	for i := range goroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			outcomes[i] = executor.Execute(context.Background())
		}()
	}

	wg.Wait()

	for i, outcome := range outcomes {
		require.True(t, outcome.Succeeded(), "goroutine %d: %s", i, outcome)
		assert.Equal(t, 3, outcome.AttemptsMade())
	}

	// Every call walked its own 100ms -> 500ms sequence; no call observed
	// another call's grown delay.
	delays := recorder.recorded()
	require.Len(t, delays, goroutines*2)

	short, long := 0, 0

	for _, delay := range delays {
		switch delay {
		case 100 * time.Millisecond:
			short++
		case 500 * time.Millisecond:
			long++
		default:
			t.Fatalf("unexpected delay %s", delay)
		}
	}

	assert.Equal(t, goroutines, short)
	assert.Equal(t, goroutines, long)
}

func TestRun_ConvertsOutcome(t *testing.T) {
	t.Parallel()

	success, err := New[string](&scriptedTask{value: "plain"}, DefaultConfig(), WithWaitFunc(instantWait))
	require.NoError(t, err)

	value, runErr := success.Run(context.Background())
	require.NoError(t, runErr)
	assert.Equal(t, "plain", value)

	failing, err := New[string](&scriptedTask{failures: 10},
		Config{MaxAttempts: 2, InitialDelay: time.Millisecond, DelayFactor: 2},
		WithWaitFunc(instantWait))
	require.NoError(t, err)

	value, runErr = failing.Run(context.Background())
	require.Error(t, runErr)
	assert.Empty(t, value)

	var failure *Error
	require.ErrorAs(t, runErr, &failure)
	assert.Equal(t, 2, failure.Attempts)
}

func TestExecute_UsesConfiguredLogger(t *testing.T) {
	t.Parallel()

	logger := &capturingLogger{}

	executor, err := New[string](&scriptedTask{failures: 1, value: "ok"},
		Config{MaxAttempts: 3, InitialDelay: time.Millisecond, DelayFactor: 2},
		WithLogger(logger),
		WithWaitFunc(instantWait))
	require.NoError(t, err)

	outcome := executor.Execute(context.Background())

	require.True(t, outcome.Succeeded())
	assert.Contains(t, logger.messages(), "attempt failed")
	assert.Contains(t, logger.messages(), "task succeeded")
}

// capturingLogger records messages for assertions; With returns the same
// recorder so run_id enrichment keeps writing into it.
type capturingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (logger *capturingLogger) Log(_ context.Context, _ log.Level, msg string, _ ...log.Field) {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	logger.msgs = append(logger.msgs, msg)
}

//nolint:ireturn
func (logger *capturingLogger) With(_ ...log.Field) log.Logger { return logger }

func (logger *capturingLogger) Enabled(_ log.Level) bool { return true }

func (logger *capturingLogger) Sync(_ context.Context) error { return nil }

func (logger *capturingLogger) messages() []string {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	return append([]string(nil), logger.msgs...)
}

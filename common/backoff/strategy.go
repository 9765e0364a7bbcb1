package backoff

import (
	"math"
	"time"
)

// Strategy computes the delay inserted before the next retry attempt.
//
// NextDelay receives the previous delay (the configured initial delay on the
// first call), the configured growth factor, and the zero-based index of the
// attempt that just failed. Implementations must be pure: no side effects
// and no dependence on task state. The executor feeds each returned delay
// back in as the previous delay of the following call.
type Strategy interface {
	NextDelay(previous time.Duration, factor float64, attempt int) time.Duration
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(previous time.Duration, factor float64, attempt int) time.Duration

// NextDelay calls the wrapped function.
func (strategy StrategyFunc) NextDelay(previous time.Duration, factor float64, attempt int) time.Duration {
	return strategy(previous, factor, attempt)
}

// Geometric returns the default strategy: each delay is the previous delay
// multiplied by the growth factor. The attempt index is ignored. Growth
// saturates at the maximum duration instead of overflowing.
//
//nolint:ireturn
func Geometric() Strategy {
	return StrategyFunc(func(previous time.Duration, factor float64, _ int) time.Duration {
		return scale(previous, factor)
	})
}

// Linear returns a strategy that grows the delay by a fixed step each
// attempt, ignoring the growth factor.
//
//nolint:ireturn
func Linear(step time.Duration) Strategy {
	return StrategyFunc(func(previous time.Duration, _ float64, _ int) time.Duration {
		if step <= 0 {
			return previous
		}

		if previous > math.MaxInt64-step {
			return time.Duration(math.MaxInt64)
		}

		return previous + step
	})
}

// Constant returns a strategy that keeps the delay unchanged between
// attempts.
//
//nolint:ireturn
func Constant() Strategy {
	return StrategyFunc(func(previous time.Duration, _ float64, _ int) time.Duration {
		return previous
	})
}

// WithCap decorates a strategy so the computed delay never exceeds max.
//
//nolint:ireturn
func WithCap(inner Strategy, max time.Duration) Strategy {
	return StrategyFunc(func(previous time.Duration, factor float64, attempt int) time.Duration {
		delay := inner.NextDelay(previous, factor, attempt)
		if max > 0 && delay > max {
			return max
		}

		return delay
	})
}

// WithFullJitter decorates a strategy so the computed delay is replaced by a
// random duration in [0, delay). Because the executor chains delays through
// the strategy, successive delays decorrelate rather than growing strictly;
// combine with WithCap to bound the spread.
//
//nolint:ireturn
func WithFullJitter(inner Strategy) Strategy {
	return StrategyFunc(func(previous time.Duration, factor float64, attempt int) time.Duration {
		return FullJitter(inner.NextDelay(previous, factor, attempt))
	})
}

// WithEqualJitter decorates a strategy so the computed delay keeps half its
// value and randomizes the other half, trading some decorrelation for a
// guaranteed minimum wait.
//
//nolint:ireturn
func WithEqualJitter(inner Strategy) Strategy {
	return StrategyFunc(func(previous time.Duration, factor float64, attempt int) time.Duration {
		delay := inner.NextDelay(previous, factor, attempt)
		if delay <= 0 {
			return 0
		}

		half := delay / 2

		return half + FullJitter(delay-half)
	})
}

// scale multiplies a duration by a factor, saturating at the maximum
// duration and clamping non-positive inputs to zero.
func scale(duration time.Duration, factor float64) time.Duration {
	if duration <= 0 || factor <= 0 {
		return 0
	}

	scaled := float64(duration) * factor
	if scaled >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(scaled)
}

package retry

import (
	"context"
	"time"

	"github.com/revelfire/common-lib/common/backoff"
	"github.com/revelfire/common-lib/common/internal/nilcheck"
	"github.com/revelfire/common-lib/common/log"
	"go.opentelemetry.io/otel/metric"
)

// Option mutates executor collaborators at construction.
type Option func(*settings)

// WithPolicy sets the retry policy. Passing nil keeps the default
// always-retry policy.
func WithPolicy(policy Policy) Option {
	return func(cfg *settings) {
		if nilcheck.Interface(policy) {
			return
		}

		cfg.policy = policy
	}
}

// WithStrategy sets the backoff strategy. Passing nil keeps the default
// geometric strategy.
func WithStrategy(strategy backoff.Strategy) Option {
	return func(cfg *settings) {
		if nilcheck.Interface(strategy) {
			return
		}

		cfg.strategy = strategy
	}
}

// WithLogger sets the logger used by Execute calls. Passing nil keeps the
// default, which resolves the logger from the call's context.
func WithLogger(logger log.Logger) Option {
	return func(cfg *settings) {
		if nilcheck.Interface(logger) {
			return
		}

		cfg.logger = logger
	}
}

// WithMeterProvider injects a custom meter provider for executor metrics.
// Passing nil keeps the default global OpenTelemetry meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *settings) {
		if nilcheck.Interface(provider) {
			return
		}

		cfg.meterProvider = provider
	}
}

// WithWaitFunc replaces the cancellable wait primitive used between
// attempts. Tests inject a recording waiter here to observe exact delay
// sequences without sleeping. Passing nil keeps backoff.WaitContext.
func WithWaitFunc(wait func(ctx context.Context, delay time.Duration) error) Option {
	return func(cfg *settings) {
		if wait == nil {
			return
		}

		cfg.wait = wait
	}
}

// WithOnRetry registers an observation callback invoked after a retry is
// decided and before its backoff wait begins, with the zero-based index of
// the failed attempt, its cause, and the upcoming delay. The callback must
// not block for long; it runs inline in the loop.
func WithOnRetry(fn func(ctx context.Context, attempt int, cause error, delay time.Duration)) Option {
	return func(cfg *settings) {
		if fn == nil {
			return
		}

		cfg.onRetry = fn
	}
}

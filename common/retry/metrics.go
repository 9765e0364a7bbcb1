package retry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type executorMetrics struct {
	attempts     metric.Int64Counter
	outcomes     metric.Int64Counter
	waitDuration metric.Float64Histogram
}

func newExecutorMetrics(provider metric.MeterProvider) (executorMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter("common.retry.executor")

	var (
		metrics executorMetrics
		err     error
	)

	metrics.attempts, err = meter.Int64Counter(
		"retry.attempts",
		metric.WithDescription("Number of task invocations across all Execute calls"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return executorMetrics{}, fmt.Errorf("create retry.attempts counter: %w", err)
	}

	metrics.outcomes, err = meter.Int64Counter(
		"retry.outcomes",
		metric.WithDescription("Number of terminal outcomes by state"),
		metric.WithUnit("{outcome}"),
	)
	if err != nil {
		return executorMetrics{}, fmt.Errorf("create retry.outcomes counter: %w", err)
	}

	metrics.waitDuration, err = meter.Float64Histogram(
		"retry.backoff.wait",
		metric.WithDescription("Backoff wait durations between attempts"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return executorMetrics{}, fmt.Errorf("create retry.backoff.wait histogram: %w", err)
	}

	return metrics, nil
}

func (metrics executorMetrics) recordAttempt(ctx context.Context, attempt int) {
	if metrics.attempts == nil {
		return
	}

	metrics.attempts.Add(ctx, 1, metric.WithAttributes(attribute.Int("retry.attempt", attempt)))
}

func (metrics executorMetrics) recordOutcome(ctx context.Context, state State, vetoed bool) {
	if metrics.outcomes == nil {
		return
	}

	metrics.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("retry.outcome", state.String()),
		attribute.Bool("retry.vetoed", vetoed),
	))
}

func (metrics executorMetrics) recordWait(ctx context.Context, delay time.Duration) {
	if metrics.waitDuration == nil {
		return
	}

	metrics.waitDuration.Record(ctx, delay.Seconds())
}

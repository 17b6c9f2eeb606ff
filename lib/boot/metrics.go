package boot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metrics instruments for bootstrap operations.
type Metrics struct {
	SequenceDuration metric.Float64Histogram
	ProcessesTotal   metric.Int64Counter
	FailuresTotal    metric.Int64Counter
}

// BootMetrics is the global metrics instance for the boot package.
// Set this via SetMetrics() during application initialization.
var BootMetrics *Metrics

// SetMetrics sets the global metrics instance.
func SetMetrics(m *Metrics) {
	BootMetrics = m
}

// NewMetrics creates bootstrap metrics instruments.
// If meter is nil, returns nil (metrics disabled).
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, nil
	}

	sequenceDuration, err := meter.Float64Histogram(
		"bootpack_bootstrap_duration_seconds",
		metric.WithDescription("Bootstrap sequence duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	processesTotal, err := meter.Int64Counter(
		"bootpack_bootstrap_processes_total",
		metric.WithDescription("Total number of process-creation requests submitted"),
	)
	if err != nil {
		return nil, err
	}

	failuresTotal, err := meter.Int64Counter(
		"bootpack_bootstrap_failures_total",
		metric.WithDescription("Total number of failed process-creation requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		SequenceDuration: sequenceDuration,
		ProcessesTotal:   processesTotal,
		FailuresTotal:    failuresTotal,
	}, nil
}

// RecordProcess records the outcome of a single process-creation request.
func (m *Metrics) RecordProcess(ctx context.Context, name string, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
		m.FailuresTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("name", name)))
	}

	m.ProcessesTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("name", name),
			attribute.String("status", status),
		))
}

// RecordSequence records the duration and outcome of a bootstrap run.
func (m *Metrics) RecordSequence(ctx context.Context, start time.Time, submitted int, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.SequenceDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.Int("submitted", submitted),
		))
}

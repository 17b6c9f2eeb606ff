package bundler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Metrics holds the metrics instruments for bundler operations.
type Metrics struct {
	BuildDuration metric.Float64Histogram
	BuildsTotal   metric.Int64Counter
	PayloadSize   metric.Int64Histogram
	Tracer        trace.Tracer
}

// BundlerMetrics is the global metrics instance for the bundler package.
// Set this via SetMetrics() during application initialization.
var BundlerMetrics *Metrics

// SetMetrics sets the global metrics instance.
func SetMetrics(m *Metrics) {
	BundlerMetrics = m
}

// NewMetrics creates bundler metrics instruments. The tracer may be nil, in
// which case build operations run unspanned.
// If meter is nil, returns nil (metrics disabled).
func NewMetrics(meter metric.Meter, tracer trace.Tracer) (*Metrics, error) {
	if meter == nil {
		return nil, nil
	}

	buildDuration, err := meter.Float64Histogram(
		"bootpack_build_duration_seconds",
		metric.WithDescription("Payload assembly duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	buildsTotal, err := meter.Int64Counter(
		"bootpack_builds_total",
		metric.WithDescription("Total number of payload build operations"),
	)
	if err != nil {
		return nil, err
	}

	payloadSize, err := meter.Int64Histogram(
		"bootpack_payload_size_bytes",
		metric.WithDescription("Size of assembled payload artifacts"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		BuildDuration: buildDuration,
		BuildsTotal:   buildsTotal,
		PayloadSize:   payloadSize,
		Tracer:        tracer,
	}, nil
}

// RecordBuild records the duration, size, and status of a build operation.
func (m *Metrics) RecordBuild(ctx context.Context, operation string, start time.Time, sizeBytes int64, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.BuildsTotal.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err == nil && sizeBytes > 0 {
		m.PayloadSize.Record(ctx, sizeBytes, metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package noop provides exporters which discard all telemetry. They
// are meant for tests and for environments where no collector exists.
package noop

import (
	"context"

	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
)

// SpanExporter discards all spans.
type SpanExporter struct{}

var _ trace.SpanExporter = SpanExporter{}

// ExportSpans implements the [trace.SpanExporter] interface.
func (SpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

// Shutdown implements the [trace.SpanExporter] interface.
func (SpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// MetricExporter discards all metrics.
type MetricExporter struct{}

var _ metric.Exporter = MetricExporter{}

// Temporality implements the [metric.Exporter] interface.
func (MetricExporter) Temporality(k metric.InstrumentKind) metricdata.Temporality {
	return metric.DefaultTemporalitySelector(k)
}

// Aggregation implements the [metric.Exporter] interface.
func (MetricExporter) Aggregation(k metric.InstrumentKind) metric.Aggregation {
	return metric.DefaultAggregationSelector(k)
}

// Export implements the [metric.Exporter] interface.
func (MetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	return nil
}

// ForceFlush implements the [metric.Exporter] interface.
func (MetricExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [metric.Exporter] interface.
func (MetricExporter) Shutdown(ctx context.Context) error {
	return nil
}

// LogExporter discards all log records.
type LogExporter struct{}

var _ log.Exporter = LogExporter{}

// Export implements the [log.Exporter] interface.
func (LogExporter) Export(ctx context.Context, records []log.Record) error {
	return nil
}

// ForceFlush implements the [log.Exporter] interface.
func (LogExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [log.Exporter] interface.
func (LogExporter) Shutdown(ctx context.Context) error {
	return nil
}

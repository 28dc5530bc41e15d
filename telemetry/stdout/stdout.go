// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package stdout provides builders for exporters which write telemetry
// to a local [io.Writer] instead of a collector.
package stdout

import (
	"context"
	"io"

	"github.com/z5labs/beacon"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// BuildSpanExporter returns a builder for a span exporter which
// writes completed spans to w.
func BuildSpanExporter[W io.Writer](writerB beacon.Builder[W]) beacon.BuilderFunc[trace.SpanExporter] {
	return func(ctx context.Context) (trace.SpanExporter, error) {
		w, err := writerB.Build(ctx)
		if err != nil {
			return nil, err
		}
		return stdouttrace.New(stdouttrace.WithWriter(w))
	}
}

// BuildMetricExporter returns a builder for a metric exporter which
// writes collected metrics to w.
func BuildMetricExporter[W io.Writer](writerB beacon.Builder[W]) beacon.BuilderFunc[metric.Exporter] {
	return func(ctx context.Context) (metric.Exporter, error) {
		w, err := writerB.Build(ctx)
		if err != nil {
			return nil, err
		}
		return stdoutmetric.New(stdoutmetric.WithWriter(w))
	}
}

// BuildLogExporter returns a builder for a log exporter which writes
// records to w.
func BuildLogExporter[W io.Writer](writerB beacon.Builder[W]) beacon.BuilderFunc[log.Exporter] {
	return func(ctx context.Context) (log.Exporter, error) {
		w, err := writerB.Build(ctx)
		if err != nil {
			return nil, err
		}
		return stdoutlog.New(stdoutlog.WithWriter(w))
	}
}

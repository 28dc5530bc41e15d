// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogsink composes a [slog.Logger] out of layered sinks: a
// shared level filter in front of a console sink, a metrics bridge
// and an OpenTelemetry log bridge. Each sink behind the filter sees
// every record which passes it; one sink failing never starves the
// others.
package slogsink

import (
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
)

type options struct {
	level          slog.Leveler
	consoleWriter  io.Writer
	meterProvider  metric.MeterProvider
	loggerProvider log.LoggerProvider
}

// Option configures the composed logger.
type Option func(*options)

// WithLevel sets the shared minimum level. Defaults to [slog.LevelInfo].
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithConsoleWriter sets the destination of the console sink.
// Defaults to [os.Stderr].
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleWriter = w
	}
}

// WithMeterProvider sets the provider backing the metrics bridge.
// Defaults to the process wide provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = provider
	}
}

// WithLoggerProvider sets the provider backing the OpenTelemetry log
// bridge. Defaults to the process wide provider.
func WithLoggerProvider(provider log.LoggerProvider) Option {
	return func(o *options) {
		o.loggerProvider = provider
	}
}

// New returns a [slog.Logger] fanning out to a console sink, a
// metrics bridge and an OpenTelemetry log bridge, all behind one
// level filter. name identifies the instrumentation scope of the
// bridged records.
func New(name string, opts ...Option) *slog.Logger {
	o := &options{
		level:         slog.LevelInfo,
		consoleWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	if o.loggerProvider == nil {
		o.loggerProvider = global.GetLoggerProvider()
	}

	// The console sink is left wide open since the shared filter
	// already gates every record.
	console := slog.NewTextHandler(o.consoleWriter, &slog.HandlerOptions{
		Level: slog.Level(-128),
	})

	return slog.New(Filter(o.level, Fanout(
		Trace(console),
		Metrics(o.meterProvider),
		otelslog.NewHandler(name, otelslog.WithLoggerProvider(o.loggerProvider)),
	)))
}

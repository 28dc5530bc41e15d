// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogsink

import (
	"context"
	"log/slog"

	"github.com/z5labs/beacon/slogfield"

	"go.opentelemetry.io/otel/trace"
)

type traceHandler struct {
	next slog.Handler
}

// Trace returns a handler which correlates log records with any
// span active on the record's context by adding the trace and span
// ids under an "otel" group.
func Trace(next slog.Handler) slog.Handler {
	return &traceHandler{next: next}
}

// Enabled implements the slog.Handler interface.
func (h *traceHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.next.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *traceHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.next.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slogfield.String("trace_id", spanCtx.TraceID().String()),
			slogfield.String("span_id", spanCtx.SpanID().String()),
		),
	)
	return h.next.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Trace(h.next.WithAttrs(attrs))
}

// WithGroup implements the slog.Handler interface.
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return Trace(h.next.WithGroup(name))
}

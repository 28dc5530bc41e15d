// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogsink

import (
	"context"
	"errors"
	"log/slog"
)

type filterHandler struct {
	level slog.Leveler
	next  slog.Handler
}

// Filter returns a handler which drops all records below level before
// they reach next. It is the single shared gate in front of a
// [Fanout]; the sinks behind it see every record which passes.
func Filter(level slog.Leveler, next slog.Handler) slog.Handler {
	return &filterHandler{
		level: level,
		next:  next,
	}
}

// Enabled implements the slog.Handler interface.
func (h *filterHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	if lvl < h.level.Level() {
		return false
	}
	return h.next.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *filterHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.next.Handle(ctx, record)
}

// WithAttrs implements the slog.Handler interface.
func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Filter(h.level, h.next.WithAttrs(attrs))
}

// WithGroup implements the slog.Handler interface.
func (h *filterHandler) WithGroup(name string) slog.Handler {
	return Filter(h.level, h.next.WithGroup(name))
}

type fanoutHandler struct {
	handlers []slog.Handler
}

// Fanout returns a handler which forwards each record to every one of
// handlers. A failing sink never keeps a record from reaching the
// others; all sink errors are joined and returned together.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return &fanoutHandler{handlers: handlers}
}

// Enabled implements the slog.Handler interface.
func (h *fanoutHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

// Handle implements the slog.Handler interface.
func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}

		err := handler.Handle(ctx, record.Clone())
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements the slog.Handler interface.
func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return Fanout(handlers...)
}

// WithGroup implements the slog.Handler interface.
func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return Fanout(handlers...)
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogsink

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

// Attr key prefixes recognized by the metrics bridge.
const (
	counterPrefix   = "counter."
	histogramPrefix = "histogram."
	gaugePrefix     = "gauge."
)

type metricsHandler struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Gauge
}

// Metrics returns a handler which promotes specially named record
// attrs to OpenTelemetry instruments. An attr whose key begins with
// "counter.", "histogram." or "gauge." and whose value is numeric is
// recorded on the matching instrument, named by the remainder of the
// key. All other attrs pass through untouched.
func Metrics(provider metric.MeterProvider) slog.Handler {
	return &metricsHandler{
		meter:      provider.Meter("github.com/z5labs/beacon/slogsink"),
		counters:   make(map[string]metric.Float64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

// Enabled implements the slog.Handler interface.
func (h *metricsHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return true
}

// Handle implements the slog.Handler interface.
func (h *metricsHandler) Handle(ctx context.Context, record slog.Record) error {
	record.Attrs(func(attr slog.Attr) bool {
		value, ok := numericValue(attr.Value)
		if !ok {
			return true
		}

		key := attr.Key
		switch {
		case strings.HasPrefix(key, counterPrefix):
			h.addCounter(ctx, strings.TrimPrefix(key, counterPrefix), value)
		case strings.HasPrefix(key, histogramPrefix):
			h.recordHistogram(ctx, strings.TrimPrefix(key, histogramPrefix), value)
		case strings.HasPrefix(key, gaugePrefix):
			h.recordGauge(ctx, strings.TrimPrefix(key, gaugePrefix), value)
		}
		return true
	})
	return nil
}

// WithAttrs implements the slog.Handler interface.
//
// Pre-bound attrs are identity, not measurements, so they are not
// scanned for instrument prefixes.
func (h *metricsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements the slog.Handler interface.
//
// Groups are ignored; instrument names always come from the bare
// attr key.
func (h *metricsHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *metricsHandler) addCounter(ctx context.Context, name string, value float64) {
	h.mu.Lock()
	counter, ok := h.counters[name]
	if !ok {
		var err error
		counter, err = h.meter.Float64Counter(name)
		if err != nil {
			h.mu.Unlock()
			return
		}
		h.counters[name] = counter
	}
	h.mu.Unlock()

	counter.Add(ctx, value)
}

func (h *metricsHandler) recordHistogram(ctx context.Context, name string, value float64) {
	h.mu.Lock()
	histogram, ok := h.histograms[name]
	if !ok {
		var err error
		histogram, err = h.meter.Float64Histogram(name)
		if err != nil {
			h.mu.Unlock()
			return
		}
		h.histograms[name] = histogram
	}
	h.mu.Unlock()

	histogram.Record(ctx, value)
}

func (h *metricsHandler) recordGauge(ctx context.Context, name string, value float64) {
	h.mu.Lock()
	gauge, ok := h.gauges[name]
	if !ok {
		var err error
		gauge, err = h.meter.Float64Gauge(name)
		if err != nil {
			h.mu.Unlock()
			return
		}
		h.gauges[name] = gauge
	}
	h.mu.Unlock()

	gauge.Record(ctx, value)
}

func numericValue(v slog.Value) (float64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return float64(v.Int64()), true
	case slog.KindUint64:
		return float64(v.Uint64()), true
	case slog.KindFloat64:
		return v.Float64(), true
	default:
		return 0, false
	}
}

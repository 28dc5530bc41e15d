// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Signal names a telemetry signal in a [FlushFailure].
type Signal string

const (
	SignalLogs    Signal = "logs"
	SignalMetrics Signal = "metrics"
	SignalTraces  Signal = "traces"
)

// FlushFailure reports that one processor failed to flush during
// [Guard.Release]. Index identifies the processor within its signal,
// in registration order, so a failing exporter can be pinpointed when
// a pipeline carries more than one.
type FlushFailure struct {
	Signal Signal
	Index  int
	Err    error
}

// Error implements the [builtin.error] interface.
func (f FlushFailure) Error() string {
	return fmt.Sprintf("failed to flush %s processor %d: %s", f.Signal, f.Index, f.Err)
}

// Unwrap implements the implicit interface used by [errors.Unwrap].
func (f FlushFailure) Unwrap() error {
	return f.Err
}

type flusher interface {
	ForceFlush(context.Context) error
}

// Guard flushes and shuts down a [Pipeline] exactly once. Zero or
// more calls after the first are no-ops returning the recorded
// failures, so it is safe to release both deferred and explicitly.
//
// Release failures are advisory. Telemetry teardown reports what was
// lost but never turns a clean run into a failed one.
type Guard struct {
	flushTimeout time.Duration
	errw         io.Writer

	logFlushers   []flusher
	meterFlusher  flusher
	traceFlushers []flusher
	shutdowners   []shutdowner
	closers       []io.Closer

	releaseOnce sync.Once
	released    atomic.Bool
	failures    []FlushFailure
}

// GuardOption configures a [Guard].
type GuardOption func(*Guard)

// WithFlushTimeout bounds the entire release, flushes and shutdowns
// included. A non-positive d disables the bound.
func WithFlushTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.flushTimeout = d
	}
}

// WithErrorWriter sets where advisory failure reports are written.
// Defaults to [os.Stderr].
func WithErrorWriter(w io.Writer) GuardOption {
	return func(g *Guard) {
		g.errw = w
	}
}

// Guard returns the [Guard] over the pipeline's processors and
// providers. One pipeline has exactly one guard: the first call
// creates it and every later call returns the same instance, so two
// callers can never flush or shut the pipeline down twice. Options
// only take effect on the call that creates the guard.
//
// The guard inherits the pipeline's flush timeout unless overridden
// with [WithFlushTimeout].
func (p *Pipeline) Guard(opts ...GuardOption) *Guard {
	p.guardOnce.Do(func() {
		g := &Guard{
			flushTimeout: p.flushTimeout,
			errw:         os.Stderr,
		}
		for _, proc := range p.logProcessors {
			g.logFlushers = append(g.logFlushers, proc)
		}
		if p.meterProvider != nil {
			g.meterFlusher = p.meterProvider
		}
		for _, proc := range p.spanProcessors {
			g.traceFlushers = append(g.traceFlushers, proc)
		}
		if p.loggerProvider != nil {
			g.shutdowners = append(g.shutdowners, p.loggerProvider)
		}
		if p.meterProvider != nil {
			g.shutdowners = append(g.shutdowners, p.meterProvider)
		}
		if p.tracerProvider != nil {
			g.shutdowners = append(g.shutdowners, p.tracerProvider)
		}
		g.closers = append(g.closers, p.closers...)
		for _, opt := range opts {
			opt(g)
		}
		p.guard = g
	})
	return p.guard
}

// Released reports whether [Guard.Release] has completed.
func (g *Guard) Released() bool {
	return g.released.Load()
}

// Release force flushes all processors, logs first, then metrics,
// then traces, and shuts the providers down. Every processor is
// flushed even when an earlier one fails; each failure is recorded,
// written to the guard's error writer and returned. Only the first
// call does any work; later calls return the same failures.
func (g *Guard) Release(ctx context.Context) []FlushFailure {
	g.releaseOnce.Do(func() {
		g.release(ctx)
		g.released.Store(true)
	})
	return slices.Clone(g.failures)
}

func (g *Guard) release(ctx context.Context) {
	if g.flushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.flushTimeout)
		defer cancel()
	}

	// Logs and metrics carry the densest buffered state so they
	// flush first; traces take whatever time is left.
	for i, f := range g.logFlushers {
		g.flush(ctx, SignalLogs, i, f)
	}
	if g.meterFlusher != nil {
		g.flush(ctx, SignalMetrics, 0, g.meterFlusher)
	}
	for i, f := range g.traceFlushers {
		g.flush(ctx, SignalTraces, i, f)
	}

	for _, s := range g.shutdowners {
		err := s.Shutdown(ctx)
		if err != nil {
			fmt.Fprintf(g.errw, "beacon: failed to shut down provider: %s\n", err)
		}
	}

	// Transport resources go last, after every exporter is done
	// with them.
	for _, c := range g.closers {
		err := c.Close()
		if err != nil {
			fmt.Fprintf(g.errw, "beacon: failed to close transport: %s\n", err)
		}
	}
}

func (g *Guard) flush(ctx context.Context, signal Signal, index int, f flusher) {
	err := f.ForceFlush(ctx)
	if err == nil {
		return
	}

	failure := FlushFailure{
		Signal: signal,
		Index:  index,
		Err:    err,
	}
	g.failures = append(g.failures, failure)
	fmt.Fprintf(g.errw, "beacon: %s\n", failure)
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type flusherFunc func(context.Context) error

func (f flusherFunc) ForceFlush(ctx context.Context) error {
	return f(ctx)
}

type shutdownerFunc func(context.Context) error

func (f shutdownerFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

func TestGuard_Release(t *testing.T) {
	t.Run("will flush logs then metrics then traces", func(t *testing.T) {
		t.Run("if every processor succeeds", func(t *testing.T) {
			var order []Signal
			record := func(signal Signal) flusherFunc {
				return func(ctx context.Context) error {
					order = append(order, signal)
					return nil
				}
			}

			g := &Guard{
				errw:          new(strings.Builder),
				logFlushers:   []flusher{record(SignalLogs), record(SignalLogs)},
				meterFlusher:  record(SignalMetrics),
				traceFlushers: []flusher{record(SignalTraces)},
			}

			failures := g.Release(context.Background())
			require.Empty(t, failures)
			require.Equal(t, []Signal{SignalLogs, SignalLogs, SignalMetrics, SignalTraces}, order)
			require.True(t, g.Released())
		})
	})

	t.Run("will flush every processor", func(t *testing.T) {
		t.Run("if an earlier one fails", func(t *testing.T) {
			flushErr := errors.New("collector unreachable")

			var traceFlushed bool
			errw := new(strings.Builder)
			g := &Guard{
				errw: errw,
				logFlushers: []flusher{
					flusherFunc(func(ctx context.Context) error {
						return nil
					}),
					flusherFunc(func(ctx context.Context) error {
						return flushErr
					}),
				},
				traceFlushers: []flusher{
					flusherFunc(func(ctx context.Context) error {
						traceFlushed = true
						return nil
					}),
				},
			}

			failures := g.Release(context.Background())
			require.True(t, traceFlushed)
			require.Len(t, failures, 1)
			require.Equal(t, SignalLogs, failures[0].Signal)
			require.Equal(t, 1, failures[0].Index)
			require.ErrorIs(t, failures[0], flushErr)
			require.Contains(t, errw.String(), "failed to flush logs processor 1")
		})
	})

	t.Run("will only release once", func(t *testing.T) {
		t.Run("if called concurrently", func(t *testing.T) {
			var calls int
			g := &Guard{
				errw: new(strings.Builder),
				meterFlusher: flusherFunc(func(ctx context.Context) error {
					calls += 1
					return errors.New("flush failed")
				}),
			}

			var wg sync.WaitGroup
			for range 5 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					g.Release(context.Background())
				}()
			}
			wg.Wait()

			require.Equal(t, 1, calls)

			failures := g.Release(context.Background())
			require.Len(t, failures, 1)
			require.Equal(t, SignalMetrics, failures[0].Signal)
		})
	})

	t.Run("will bound the flush", func(t *testing.T) {
		t.Run("if a flush timeout is set", func(t *testing.T) {
			var deadlineSet bool
			g := &Guard{
				errw: new(strings.Builder),
				meterFlusher: flusherFunc(func(ctx context.Context) error {
					_, deadlineSet = ctx.Deadline()
					return nil
				}),
			}
			WithFlushTimeout(100 * time.Millisecond)(g)

			failures := g.Release(context.Background())
			require.Empty(t, failures)
			require.True(t, deadlineSet)
		})
	})

	t.Run("will report shutdown failures advisory only", func(t *testing.T) {
		t.Run("if a provider fails to shut down", func(t *testing.T) {
			errw := new(strings.Builder)
			g := &Guard{
				errw: errw,
				shutdowners: []shutdowner{
					shutdownerFunc(func(ctx context.Context) error {
						return errors.New("already stopped")
					}),
				},
			}

			failures := g.Release(context.Background())
			require.Empty(t, failures)
			require.Contains(t, errw.String(), "failed to shut down provider")
		})
	})
}

func TestGuard_Release_returnsClone(t *testing.T) {
	g := &Guard{
		errw: new(strings.Builder),
		logFlushers: []flusher{
			flusherFunc(func(ctx context.Context) error {
				return errors.New("flush failed")
			}),
		},
	}

	a := g.Release(context.Background())
	a[0].Index = 99

	b := g.Release(context.Background())
	require.Equal(t, 0, b[0].Index)
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogsink

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	metrics := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			metrics[m.Name] = m
		}
	}
	return metrics
}

func TestMetrics(t *testing.T) {
	t.Run("will increment a counter", func(t *testing.T) {
		t.Run("if an attr key has the counter prefix", func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

			log := slog.New(Metrics(provider))
			log.Info("sold", slog.Int("counter.apples_sold", 2))
			log.Info("sold", slog.Float64("counter.apples_sold", 3))

			metrics := collect(t, reader)
			m, ok := metrics["apples_sold"]
			require.True(t, ok)

			sum, ok := m.Data.(metricdata.Sum[float64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			require.Equal(t, float64(5), sum.DataPoints[0].Value)
		})
	})

	t.Run("will record a histogram", func(t *testing.T) {
		t.Run("if an attr key has the histogram prefix", func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

			log := slog.New(Metrics(provider))
			log.Info("priced", slog.Float64("histogram.apple_price", 2.99))

			metrics := collect(t, reader)
			m, ok := metrics["apple_price"]
			require.True(t, ok)

			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			require.Len(t, hist.DataPoints, 1)
			require.Equal(t, float64(2.99), hist.DataPoints[0].Sum)
		})
	})

	t.Run("will record a gauge", func(t *testing.T) {
		t.Run("if an attr key has the gauge prefix", func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

			log := slog.New(Metrics(provider))
			log.Info("stocked", slog.Int("gauge.apples_in_stock", 12))

			metrics := collect(t, reader)
			m, ok := metrics["apples_in_stock"]
			require.True(t, ok)

			gauge, ok := m.Data.(metricdata.Gauge[float64])
			require.True(t, ok)
			require.Len(t, gauge.DataPoints, 1)
			require.Equal(t, float64(12), gauge.DataPoints[0].Value)
		})
	})

	t.Run("will ignore attrs", func(t *testing.T) {
		t.Run("if the value is not numeric", func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

			log := slog.New(Metrics(provider))
			log.Info("sold", slog.String("counter.apples_sold", "two"))

			metrics := collect(t, reader)
			require.NotContains(t, metrics, "apples_sold")
		})

		t.Run("if the key has no instrument prefix", func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

			log := slog.New(Metrics(provider))
			log.Info("sold", slog.Int("apples_sold", 2))

			metrics := collect(t, reader)
			require.Empty(t, metrics)
		})
	})
}

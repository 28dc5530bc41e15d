// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp provides builders for OTLP exporters and the transport
// clients they share.
package otlp

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/z5labs/beacon"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// BuildGrpcConn returns a builder for a [grpc.ClientConn] which can be
// shared by all exporters of the same pipeline. The conn is lazy, no
// network traffic happens until the first export.
func BuildGrpcConn(target string, creds credentials.TransportCredentials) beacon.BuilderFunc[*grpc.ClientConn] {
	return func(ctx context.Context) (*grpc.ClientConn, error) {
		return grpc.NewClient(
			target,
			grpc.WithTransportCredentials(creds),
		)
	}
}

// BuildHttpClient returns a builder for a [http.Client] with automatic
// retries, shared by all HTTP exporters of the same pipeline.
// insecureSkipVerify disables TLS certificate verification and must
// only be set for self-signed development endpoints.
func BuildHttpClient(insecureSkipVerify bool) beacon.BuilderFunc[*http.Client] {
	return func(ctx context.Context) (*http.Client, error) {
		rc := retryablehttp.NewClient()
		rc.Logger = nil

		if insecureSkipVerify {
			transport, ok := rc.HTTPClient.Transport.(*http.Transport)
			if ok {
				transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			}
		}

		return rc.StandardClient(), nil
	}
}

// BuildGrpcSpanExporter returns a builder for an OTLP span exporter
// over gRPC.
func BuildGrpcSpanExporter(opts ...otlptracegrpc.Option) beacon.BuilderFunc[*otlptrace.Exporter] {
	return func(ctx context.Context) (*otlptrace.Exporter, error) {
		return otlptracegrpc.New(ctx, opts...)
	}
}

// BuildHttpSpanExporter returns a builder for an OTLP span exporter
// over HTTP.
func BuildHttpSpanExporter(opts ...otlptracehttp.Option) beacon.BuilderFunc[*otlptrace.Exporter] {
	return func(ctx context.Context) (*otlptrace.Exporter, error) {
		return otlptracehttp.New(ctx, opts...)
	}
}

// BuildGrpcMetricExporter returns a builder for an OTLP metric
// exporter over gRPC. Temporality and aggregation follow the SDK
// defaults and are pinned explicitly so a change of SDK defaults can
// not silently change the wire format.
func BuildGrpcMetricExporter(opts ...otlpmetricgrpc.Option) beacon.BuilderFunc[metric.Exporter] {
	return func(ctx context.Context) (metric.Exporter, error) {
		opts = append(opts,
			otlpmetricgrpc.WithTemporalitySelector(metric.DefaultTemporalitySelector),
			otlpmetricgrpc.WithAggregationSelector(metric.DefaultAggregationSelector),
		)
		return otlpmetricgrpc.New(ctx, opts...)
	}
}

// BuildHttpMetricExporter returns a builder for an OTLP metric
// exporter over HTTP.
func BuildHttpMetricExporter(opts ...otlpmetrichttp.Option) beacon.BuilderFunc[metric.Exporter] {
	return func(ctx context.Context) (metric.Exporter, error) {
		opts = append(opts,
			otlpmetrichttp.WithTemporalitySelector(metric.DefaultTemporalitySelector),
			otlpmetrichttp.WithAggregationSelector(metric.DefaultAggregationSelector),
		)
		return otlpmetrichttp.New(ctx, opts...)
	}
}

// BuildGrpcLogExporter returns a builder for an OTLP log exporter
// over gRPC.
func BuildGrpcLogExporter(opts ...otlploggrpc.Option) beacon.BuilderFunc[log.Exporter] {
	return func(ctx context.Context) (log.Exporter, error) {
		return otlploggrpc.New(ctx, opts...)
	}
}

// BuildHttpLogExporter returns a builder for an OTLP log exporter
// over HTTP.
func BuildHttpLogExporter(opts ...otlploghttp.Option) beacon.BuilderFunc[log.Exporter] {
	return func(ctx context.Context) (log.Exporter, error) {
		return otlploghttp.New(ctx, opts...)
	}
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/z5labs/beacon"
	"github.com/z5labs/beacon/internal/try"
	"github.com/z5labs/beacon/telemetry/otlp"
	"github.com/z5labs/beacon/telemetry/stdout"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Pipeline bundles the fully assembled trace, metric and log
// providers along with the processors the [Guard] flushes on release.
type Pipeline struct {
	res *resource.Resource

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider

	spanProcessors []sdktrace.SpanProcessor
	logProcessors  []sdklog.Processor

	// Transport resources owned by the pipeline, e.g. the shared
	// gRPC conn. Exporters never close what they did not open.
	closers []io.Closer

	flushTimeout time.Duration

	guardOnce sync.Once
	guard     *Guard
}

// ConfigValidationError occurs when [New] is given an invalid [Config].
type ConfigValidationError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid telemetry config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Unwrap].
func (e ConfigValidationError) Unwrap() error {
	return e.Cause
}

type options struct {
	spanExporter      sdktrace.SpanExporter
	metricExporter    sdkmetric.Exporter
	logExporter       sdklog.Exporter
	metricDebugWriter io.Writer
}

// Option configures optional [Pipeline] behaviour.
type Option func(*options)

// WithSpanExporter overrides the span exporter, skipping OTLP
// transport construction for the trace pipeline.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.spanExporter = exp
	}
}

// WithMetricExporter overrides the remote metric exporter, skipping
// OTLP transport construction for the metric pipeline.
func WithMetricExporter(exp sdkmetric.Exporter) Option {
	return func(o *options) {
		o.metricExporter = exp
	}
}

// WithLogExporter overrides the log exporter, skipping OTLP transport
// construction for the log pipeline.
func WithLogExporter(exp sdklog.Exporter) Option {
	return func(o *options) {
		o.logExporter = exp
	}
}

// WithMetricDebugWriter sets the destination of the secondary,
// human readable metric reader. Defaults to [os.Stdout].
func WithMetricDebugWriter(w io.Writer) Option {
	return func(o *options) {
		o.metricDebugWriter = w
	}
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// New assembles the trace, metric and log pipelines described by cfg.
// Assembly is atomic: when any exporter fails to construct, every
// exporter built before it is shut down and only the error is
// returned.
//
// The returned [Pipeline] does not touch any process wide state
// until [Pipeline.Install] is called.
func New(ctx context.Context, cfg Config, opts ...Option) (_ *Pipeline, err error) {
	cfg = cfg.withDefaults()

	verr := cfg.Validate()
	if verr != nil {
		return nil, ConfigValidationError{Cause: verr}
	}

	o := &options{
		metricDebugWriter: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	p := &Pipeline{
		flushTimeout: cfg.FlushTimeout,
	}

	var abandoned []shutdowner
	defer func() {
		if err == nil {
			return
		}
		abandon(ctx, abandoned, p.closers)
	}()
	defer try.Recover(&err)

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.res = res

	transport, err := ParseTransport(cfg.Proto)
	if err != nil {
		return nil, err
	}

	var spanExp sdktrace.SpanExporter
	var metricExp sdkmetric.Exporter
	var logExp sdklog.Exporter
	switch transport {
	case TransportGRPC:
		spanExp, metricExp, logExp = buildGrpcExporters(ctx, cfg, o, p, &abandoned)
	case TransportHTTP:
		spanExp, metricExp, logExp = buildHttpExporters(ctx, cfg, o, &abandoned)
	}

	debugExp := beacon.MustBuild(ctx, stdout.BuildMetricExporter(beacon.BuilderOf(o.metricDebugWriter)))
	abandoned = append(abandoned, debugExp)

	spanProcessor := sdktrace.NewBatchSpanProcessor(spanExp)
	p.spanProcessors = append(p.spanProcessors, spanProcessor)
	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithRawSpanLimits(spanLimits()),
		sdktrace.WithSpanProcessor(spanProcessor),
	)

	// Two independent readers: failure of one must never block the
	// other from collecting.
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			metricExp,
			sdkmetric.WithInterval(cfg.MetricExportInterval),
		)),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(debugExp)),
	)

	logProcessor := sdklog.NewBatchProcessor(logExp)
	p.logProcessors = append(p.logProcessors, logProcessor)
	p.loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(logProcessor),
	)

	return p, nil
}

// NewLocal assembles a pipeline whose exporters all write to w
// instead of a collector. It is meant for local development and
// tests where no collector is running.
func NewLocal(ctx context.Context, cfg Config, w io.Writer) (*Pipeline, error) {
	spanExp, err := stdout.BuildSpanExporter(beacon.BuilderOf(w)).Build(ctx)
	if err != nil {
		return nil, err
	}

	metricExp, err := stdout.BuildMetricExporter(beacon.BuilderOf(w)).Build(ctx)
	if err != nil {
		return nil, err
	}

	logExp, err := stdout.BuildLogExporter(beacon.BuilderOf(w)).Build(ctx)
	if err != nil {
		return nil, err
	}

	return New(
		ctx,
		cfg,
		WithSpanExporter(spanExp),
		WithMetricExporter(metricExp),
		WithLogExporter(logExp),
		WithMetricDebugWriter(w),
	)
}

func spanLimits() sdktrace.SpanLimits {
	limits := sdktrace.NewSpanLimits()
	limits.AttributeCountLimit = spanAttributeCountLimit
	limits.EventCountLimit = spanEventCountLimit
	return limits
}

func buildGrpcExporters(ctx context.Context, cfg Config, o *options, p *Pipeline, abandoned *[]shutdowner) (sdktrace.SpanExporter, sdkmetric.Exporter, sdklog.Exporter) {
	var spanOpts []otlptracegrpc.Option
	var metricOpts []otlpmetricgrpc.Option
	var logOpts []otlploggrpc.Option
	if cfg.Endpoint != "" {
		// One conn multiplexes all three signals to the collector.
		conn := beacon.MustBuild(ctx, otlp.BuildGrpcConn(
			stripScheme(cfg.Endpoint),
			grpcCredentials(cfg),
		))
		p.closers = append(p.closers, conn)

		spanOpts = append(spanOpts, otlptracegrpc.WithGRPCConn(conn))
		metricOpts = append(metricOpts, otlpmetricgrpc.WithGRPCConn(conn))
		logOpts = append(logOpts, otlploggrpc.WithGRPCConn(conn))
	} else if cfg.Insecure {
		spanOpts = append(spanOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	spanExp := o.spanExporter
	if spanExp == nil {
		exp := beacon.MustBuild(ctx, otlp.BuildGrpcSpanExporter(spanOpts...))
		*abandoned = append(*abandoned, exp)
		spanExp = exp
	}

	metricExp := o.metricExporter
	if metricExp == nil {
		metricExp = beacon.MustBuild(ctx, otlp.BuildGrpcMetricExporter(metricOpts...))
		*abandoned = append(*abandoned, metricExp)
	}

	logExp := o.logExporter
	if logExp == nil {
		logExp = beacon.MustBuild(ctx, otlp.BuildGrpcLogExporter(logOpts...))
		*abandoned = append(*abandoned, logExp)
	}

	return spanExp, metricExp, logExp
}

func buildHttpExporters(ctx context.Context, cfg Config, o *options, abandoned *[]shutdowner) (sdktrace.SpanExporter, sdkmetric.Exporter, sdklog.Exporter) {
	// One retrying client backs all three signals.
	client := beacon.MustBuild(ctx, otlp.BuildHttpClient(cfg.InsecureSkipVerify))

	spanOpts := []otlptracehttp.Option{otlptracehttp.WithHTTPClient(client)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithHTTPClient(client)}
	logOpts := []otlploghttp.Option{otlploghttp.WithHTTPClient(client)}
	if cfg.Endpoint != "" {
		endpoint := stripScheme(cfg.Endpoint)
		spanOpts = append(spanOpts, otlptracehttp.WithEndpoint(endpoint))
		metricOpts = append(metricOpts, otlpmetrichttp.WithEndpoint(endpoint))
		logOpts = append(logOpts, otlploghttp.WithEndpoint(endpoint))
	}
	if cfg.Insecure {
		spanOpts = append(spanOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		logOpts = append(logOpts, otlploghttp.WithInsecure())
	}

	spanExp := o.spanExporter
	if spanExp == nil {
		exp := beacon.MustBuild(ctx, otlp.BuildHttpSpanExporter(spanOpts...))
		*abandoned = append(*abandoned, exp)
		spanExp = exp
	}

	metricExp := o.metricExporter
	if metricExp == nil {
		metricExp = beacon.MustBuild(ctx, otlp.BuildHttpMetricExporter(metricOpts...))
		*abandoned = append(*abandoned, metricExp)
	}

	logExp := o.logExporter
	if logExp == nil {
		logExp = beacon.MustBuild(ctx, otlp.BuildHttpLogExporter(logOpts...))
		*abandoned = append(*abandoned, logExp)
	}

	return spanExp, metricExp, logExp
}

// abandon tears down partially assembled telemetry after assembly
// fails. Teardown errors are discarded since the assembly error is
// what the caller acts on.
func abandon(ctx context.Context, abandoned []shutdowner, closers []io.Closer) {
	for _, s := range abandoned {
		_ = s.Shutdown(ctx)
	}
	for _, c := range closers {
		_ = c.Close()
	}
}

func grpcCredentials(cfg Config) credentials.TransportCredentials {
	if cfg.Insecure {
		return insecure.NewCredentials()
	}
	return credentials.NewTLS(&tls.Config{})
}

// Resource returns the resource attached to all emitted telemetry.
func (p *Pipeline) Resource() *resource.Resource {
	return p.res
}

// TracerProvider returns the assembled trace provider.
func (p *Pipeline) TracerProvider() *sdktrace.TracerProvider {
	return p.tracerProvider
}

// MeterProvider returns the assembled meter provider.
func (p *Pipeline) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// LoggerProvider returns the assembled logger provider.
func (p *Pipeline) LoggerProvider() *sdklog.LoggerProvider {
	return p.loggerProvider
}

// Install registers the pipeline's providers as the process wide
// defaults and sets W3C trace context propagation. Call it exactly
// once, before any instrumentation runs; installing a second pipeline
// over a live one is unsupported.
func (p *Pipeline) Install() {
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetMeterProvider(p.meterProvider)
	global.SetLoggerProvider(p.loggerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

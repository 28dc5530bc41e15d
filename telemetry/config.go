// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Transport identifies the wire transport used to export telemetry
// to an OTLP compatible collector.
type Transport int

const (
	// TransportGRPC exports telemetry over gRPC.
	TransportGRPC Transport = iota + 1

	// TransportHTTP exports telemetry over HTTP.
	TransportHTTP
)

// String implements the [fmt.Stringer] interface.
func (t Transport) String() string {
	switch t {
	case TransportGRPC:
		return "grpc"
	case TransportHTTP:
		return "http"
	default:
		return fmt.Sprintf("Transport(%d)", int(t))
	}
}

// UnsupportedTransportError occurs when a transport name does not
// exactly match one of the supported transports.
type UnsupportedTransportError struct {
	Proto string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedTransportError) Error() string {
	return fmt.Sprintf("unsupported telemetry transport: %q", e.Proto)
}

// ParseTransport parses a textual transport name. The match is exact
// and case sensitive; anything other than "grpc" or "http" is a
// configuration error, never a silent fallback.
func ParseTransport(s string) (Transport, error) {
	switch s {
	case "grpc":
		return TransportGRPC, nil
	case "http":
		return TransportHTTP, nil
	default:
		return 0, UnsupportedTransportError{Proto: s}
	}
}

// Default values applied by [Config.withDefaults].
const (
	DefaultMetricExportInterval = 30 * time.Second
	DefaultFlushTimeout         = 10 * time.Second
	DefaultEnvironment          = "develop"
)

// Per span caps applied to the trace pipeline.
const (
	spanAttributeCountLimit = 16
	spanEventCountLimit     = 64
)

// Config holds the settings for assembling the telemetry pipelines.
type Config struct {
	// ServiceName identifies the instrumented service. Required.
	ServiceName string `config:"service_name"`

	// ServiceVersion is attached to all emitted telemetry.
	ServiceVersion string `config:"service_version"`

	// Environment names the deployment environment. Defaults to "develop".
	Environment string `config:"environment"`

	// Proto selects the export transport, one of "grpc" or "http".
	// Defaults to "grpc".
	Proto string `config:"proto"`

	// Endpoint overrides the collector endpoint. When empty, the
	// exporters fall back to their standard OTEL_EXPORTER_OTLP_*
	// environment variables.
	Endpoint string `config:"endpoint"`

	// Insecure disables transport security entirely (plaintext).
	Insecure bool `config:"insecure"`

	// InsecureSkipVerify accepts invalid TLS certificates on the
	// HTTP transport. This is an explicit opt-in for self-signed
	// development endpoints; it is never a default.
	InsecureSkipVerify bool `config:"insecure_skip_verify"`

	// MetricExportInterval is the periodic reader interval for the
	// remote metrics exporter. Defaults to 30s.
	MetricExportInterval time.Duration `config:"metric_export_interval"`

	// FlushTimeout bounds the guard's shutdown flush so a hung
	// exporter can not hang process exit. Defaults to 10s.
	FlushTimeout time.Duration `config:"flush_timeout"`
}

func (c Config) withDefaults() Config {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.Proto == "" {
		c.Proto = TransportGRPC.String()
	}
	if c.MetricExportInterval <= 0 {
		c.MetricExportInterval = DefaultMetricExportInterval
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = DefaultFlushTimeout
	}
	return c
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ServiceName) == "" {
		errs = append(errs, errors.New("service_name is required"))
	}

	transport, err := ParseTransport(c.Proto)
	if err != nil {
		errs = append(errs, err)
	}

	if c.InsecureSkipVerify && transport == TransportGRPC {
		errs = append(errs, errors.New("insecure_skip_verify only applies to the http transport"))
	}

	return errors.Join(errs...)
}

// stripScheme removes http:// or https:// from an endpoint.
// The OTLP exporters expect just host:port, not full URLs.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return endpoint
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTransport(t *testing.T) {
	t.Run("will return a transport", func(t *testing.T) {
		t.Run("if given an exact supported name", func(t *testing.T) {
			testCases := []struct {
				Name      string
				Proto     string
				Transport Transport
			}{
				{
					Name:      "grpc",
					Proto:     "grpc",
					Transport: TransportGRPC,
				},
				{
					Name:      "http",
					Proto:     "http",
					Transport: TransportHTTP,
				},
			}

			for _, testCase := range testCases {
				t.Run(testCase.Name, func(t *testing.T) {
					transport, err := ParseTransport(testCase.Proto)
					require.NoError(t, err)
					require.Equal(t, testCase.Transport, transport)
					require.Equal(t, testCase.Proto, transport.String())
				})
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the name is not an exact match", func(t *testing.T) {
			for _, proto := range []string{"", "GRPC", "Http", "grpcs", "tcp"} {
				t.Run(strconv.Quote(proto), func(t *testing.T) {
					_, err := ParseTransport(proto)

					var uerr UnsupportedTransportError
					require.ErrorAs(t, err, &uerr)
					require.Equal(t, proto, uerr.Proto)
				})
			}
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("will return nil", func(t *testing.T) {
		t.Run("if only the defaults are overridden", func(t *testing.T) {
			cfg := Config{
				ServiceName: "example",
			}.withDefaults()

			require.NoError(t, cfg.Validate())
		})

		t.Run("if insecure_skip_verify is set on the http transport", func(t *testing.T) {
			cfg := Config{
				ServiceName:        "example",
				Proto:              "http",
				InsecureSkipVerify: true,
			}.withDefaults()

			require.NoError(t, cfg.Validate())
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the service name is missing", func(t *testing.T) {
			cfg := Config{
				ServiceName: "   ",
			}.withDefaults()

			require.Error(t, cfg.Validate())
		})

		t.Run("if the transport is unsupported", func(t *testing.T) {
			cfg := Config{
				ServiceName: "example",
				Proto:       "carrier-pigeon",
			}.withDefaults()

			var uerr UnsupportedTransportError
			require.ErrorAs(t, cfg.Validate(), &uerr)
		})

		t.Run("if insecure_skip_verify is set on the grpc transport", func(t *testing.T) {
			cfg := Config{
				ServiceName:        "example",
				Proto:              "grpc",
				InsecureSkipVerify: true,
			}.withDefaults()

			require.Error(t, cfg.Validate())
		})
	})
}

func TestConfig_withDefaults(t *testing.T) {
	t.Run("will fill in defaults", func(t *testing.T) {
		t.Run("if the zero value is given", func(t *testing.T) {
			cfg := Config{}.withDefaults()

			require.Equal(t, DefaultEnvironment, cfg.Environment)
			require.Equal(t, TransportGRPC.String(), cfg.Proto)
			require.Equal(t, DefaultMetricExportInterval, cfg.MetricExportInterval)
			require.Equal(t, DefaultFlushTimeout, cfg.FlushTimeout)
		})
	})

	t.Run("will keep explicit values", func(t *testing.T) {
		t.Run("if they are set", func(t *testing.T) {
			cfg := Config{
				Environment:          "prod",
				Proto:                "http",
				MetricExportInterval: time.Second,
				FlushTimeout:         time.Minute,
			}.withDefaults()

			require.Equal(t, "prod", cfg.Environment)
			require.Equal(t, "http", cfg.Proto)
			require.Equal(t, time.Second, cfg.MetricExportInterval)
			require.Equal(t, time.Minute, cfg.FlushTimeout)
		})
	})
}

func TestStripScheme(t *testing.T) {
	testCases := []struct {
		Name     string
		Endpoint string
		Expected string
	}{
		{
			Name:     "https",
			Endpoint: "https://collector:4317",
			Expected: "collector:4317",
		},
		{
			Name:     "http",
			Endpoint: "http://collector:4318",
			Expected: "collector:4318",
		},
		{
			Name:     "bare",
			Endpoint: "collector:4317",
			Expected: "collector:4317",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			require.Equal(t, testCase.Expected, stripScheme(testCase.Endpoint))
		})
	}
}

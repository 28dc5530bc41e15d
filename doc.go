// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package beacon provides a composable framework for bootstrapping the
// telemetry pipeline of an instrumented application.
//
// The package is built around two core abstractions:
//
//   - Builder[T]: A generic interface for constructing process wide components
//   - App: An interface representing a runnable application
//
// The subpackages assemble OpenTelemetry trace, metric and log pipelines
// ([github.com/z5labs/beacon/telemetry]), publish them as process wide
// defaults, and guarantee, through lifecycle hooks, that all buffered
// telemetry is flushed before the process exits no matter how the
// application returns.
//
// # Basic Usage
//
// Build and run an application whose telemetry is flushed on every exit path:
//
//	builder := appbuilder.OTel(
//	    appbuilder.Recover(
//	        myAppBuilder,
//	    ),
//	)
//	err := beacon.Run(ctx, builder, config.FromYaml(r))
package beacon

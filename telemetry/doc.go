// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry assembles OpenTelemetry trace, metric and log
// pipelines from a single [Config], installs them as the process
// wide defaults and guarantees an orderly flush on shutdown via
// [Guard].
//
// The typical lifecycle is:
//
//	p, err := telemetry.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	p.Install()
//	g := p.Guard()
//	defer g.Release(ctx)
package telemetry

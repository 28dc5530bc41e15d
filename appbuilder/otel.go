// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"

	"github.com/z5labs/beacon"
	"github.com/z5labs/beacon/app"
	"github.com/z5labs/beacon/lifecycle"
	"github.com/z5labs/beacon/telemetry"
)

// OTelInitializer represents anything which can assemble and install
// the OTel SDK, handing back the [telemetry.Guard] which tears it
// down again.
type OTelInitializer interface {
	InitializeOTel(context.Context) (*telemetry.Guard, error)
}

// OTel is a [beacon.AppBuilder] middleware which initializes the OTel SDK
// and guarantees its [telemetry.Guard] is released after the built
// [beacon.App] stops running, whether it returned, failed or panicked.
// Flush failures during release are advisory and never fail the app.
func OTel[T OTelInitializer](builder beacon.AppBuilder[T]) beacon.AppBuilder[T] {
	return beacon.AppBuilderFunc[T](func(ctx context.Context, cfg T) (beacon.App, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		guard, err := cfg.InitializeOTel(ctx)
		if err != nil {
			return nil, err
		}

		onPostRun := releaseHook(guard)

		base, err := builder.Build(ctx, cfg)
		if err != nil {
			// Nothing will run so release the guard right away.
			_ = onPostRun.Run(ctx)
			return nil, err
		}

		lc, ok := lifecycle.FromContext(ctx)
		if !ok {
			return app.PostRun(base, onPostRun), nil
		}

		lc.OnPostRun(onPostRun)
		return base, nil
	})
}

func releaseHook(guard *telemetry.Guard) lifecycle.HookFunc {
	return func(ctx context.Context) error {
		if guard == nil {
			return nil
		}

		// Failures are already reported by the guard itself.
		_ = guard.Release(ctx)
		return nil
	}
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides middlewares for composing [beacon.AppBuilder]s.
package appbuilder

import (
	"context"

	"github.com/z5labs/beacon"
	"github.com/z5labs/beacon/config"
	"github.com/z5labs/beacon/internal/try"
)

// Recover will wrap the given [beacon.AppBuilder] with panic recovery.
func Recover[T any](builder beacon.AppBuilder[T]) beacon.AppBuilder[T] {
	return beacon.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ beacon.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}

// FromConfig returns a [beacon.AppBuilder] which unmarshals
// the given [beacon.AppBuilder]s input type, T, from a [config.Source].
func FromConfig[T any](builder beacon.AppBuilder[T]) beacon.AppBuilder[config.Source] {
	return beacon.AppBuilderFunc[config.Source](func(ctx context.Context, src config.Source) (beacon.App, error) {
		m, err := config.Read(src)
		if err != nil {
			return nil, err
		}

		var cfg T
		err = m.Unmarshal(&cfg)
		if err != nil {
			return nil, err
		}

		return builder.Build(ctx, cfg)
	})
}

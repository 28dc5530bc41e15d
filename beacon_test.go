// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package beacon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/z5labs/beacon/config"

	"github.com/stretchr/testify/require"
)

type appFunc func(context.Context) error

func (f appFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func TestBuilderFunc_Build(t *testing.T) {
	testCases := []struct {
		name        string
		builder     BuilderFunc[int]
		expectedVal int
		expectErr   bool
	}{
		{
			name: "successfully builds value",
			builder: BuilderFunc[int](func(ctx context.Context) (int, error) {
				return 42, nil
			}),
			expectedVal: 42,
		},
		{
			name: "propagates build error",
			builder: BuilderFunc[int](func(ctx context.Context) (int, error) {
				return 0, errors.New("build failed")
			}),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := tc.builder.Build(context.Background())
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedVal, v)
		})
	}
}

func TestBuilderOf(t *testing.T) {
	v, err := BuilderOf("hello").Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestMemoizeBuilder(t *testing.T) {
	t.Run("will only build once", func(t *testing.T) {
		var calls atomic.Int64
		b := MemoizeBuilder(BuilderFunc[int](func(ctx context.Context) (int, error) {
			return int(calls.Add(1)), nil
		}))

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := b.Build(context.Background())
				require.NoError(t, err)
				require.Equal(t, 1, v)
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("will cache the build error", func(t *testing.T) {
		buildErr := errors.New("build failed")
		var calls atomic.Int64
		b := MemoizeBuilder(BuilderFunc[int](func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, buildErr
		}))

		_, err := b.Build(context.Background())
		require.ErrorIs(t, err, buildErr)
		_, err = b.Build(context.Background())
		require.ErrorIs(t, err, buildErr)
		require.EqualValues(t, 1, calls.Load())
	})
}

func TestMustBuild(t *testing.T) {
	t.Run("returns the built value", func(t *testing.T) {
		v := MustBuild(context.Background(), BuilderOf(2))
		require.Equal(t, 2, v)
	})

	t.Run("panics with the build error", func(t *testing.T) {
		buildErr := errors.New("build failed")
		b := BuilderFunc[int](func(ctx context.Context) (int, error) {
			return 0, buildErr
		})

		defer func() {
			r := recover()
			require.NotNil(t, r)
			require.ErrorIs(t, r.(error), buildErr)
		}()
		MustBuild(context.Background(), b)
	})
}

func TestRun(t *testing.T) {
	t.Run("will return a ConfigReadError", func(t *testing.T) {
		t.Run("if a config source fails to apply", func(t *testing.T) {
			srcErr := errors.New("apply failed")
			src := configSourceFunc(func(store config.Store) error {
				return srcErr
			})

			err := Run(
				context.Background(),
				AppBuilderFunc[struct{}](func(ctx context.Context, _ struct{}) (App, error) {
					return nil, nil
				}),
				src,
			)

			var cre ConfigReadError
			require.ErrorAs(t, err, &cre)
			require.ErrorIs(t, err, srcErr)
		})
	})

	t.Run("will return a ConfigUnmarshalError", func(t *testing.T) {
		t.Run("if the config does not match the target type", func(t *testing.T) {
			type myConfig struct {
				N int `config:"n"`
			}

			err := Run(
				context.Background(),
				AppBuilderFunc[myConfig](func(ctx context.Context, _ myConfig) (App, error) {
					return nil, nil
				}),
				config.FromYaml(strings.NewReader(`n: {nested: "not an int"}`)),
			)

			var cue ConfigUnmarshalError
			require.ErrorAs(t, err, &cue)
		})
	})

	t.Run("will return an AppBuildError", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("build failed")

			err := Run(
				context.Background(),
				AppBuilderFunc[struct{}](func(ctx context.Context, _ struct{}) (App, error) {
					return nil, buildErr
				}),
			)

			var abe AppBuildError
			require.ErrorAs(t, err, &abe)
			require.ErrorIs(t, err, buildErr)
		})
	})

	t.Run("will return an AppRunError", func(t *testing.T) {
		t.Run("if the app fails while running", func(t *testing.T) {
			runErr := errors.New("run failed")

			err := Run(
				context.Background(),
				AppBuilderFunc[struct{}](func(ctx context.Context, _ struct{}) (App, error) {
					return appFunc(func(ctx context.Context) error {
						return runErr
					}), nil
				}),
			)

			var are AppRunError
			require.ErrorAs(t, err, &are)
			require.ErrorIs(t, err, runErr)
		})
	})

	t.Run("will run the built app", func(t *testing.T) {
		var ran atomic.Bool

		err := Run(
			context.Background(),
			AppBuilderFunc[struct{}](func(ctx context.Context, _ struct{}) (App, error) {
				return appFunc(func(ctx context.Context) error {
					ran.Store(true)
					return nil
				}), nil
			}),
		)

		require.NoError(t, err)
		require.True(t, ran.Load())
	})
}

type configSourceFunc func(config.Store) error

func (f configSourceFunc) Apply(store config.Store) error {
	return f(store)
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/z5labs/beacon"
	"github.com/z5labs/beacon/app"
	"github.com/z5labs/beacon/appbuilder"
	"github.com/z5labs/beacon/config"
	"github.com/z5labs/beacon/slogfield"
	"github.com/z5labs/beacon/slogsink"
	"github.com/z5labs/beacon/telemetry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

type appConfig struct {
	Proto    string     `config:"proto"`
	LogLevel slog.Level `config:"log_level"`
}

func (c appConfig) InitializeOTel(ctx context.Context) (*telemetry.Guard, error) {
	p, err := telemetry.New(ctx, telemetry.Config{
		ServiceName:    "applevendor",
		ServiceVersion: "0.1.0",
		Proto:          c.Proto,
	})
	if err != nil {
		return nil, err
	}
	p.Install()

	slog.SetDefault(slogsink.New(
		"applevendor",
		slogsink.WithLevel(c.LogLevel),
		slogsink.WithMeterProvider(p.MeterProvider()),
		slogsink.WithLoggerProvider(p.LoggerProvider()),
	))

	return p.Guard(), nil
}

func main() {
	err := newCommand().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "applevendor",
		Short:        "Example service demonstrating the full telemetry lifecycle",
		SilenceUsage: true,
	}

	cmd.Flags().String("otel", ".env", "Path of the env file holding OTEL_EXPORTER_OTLP_* settings")
	cmd.Flags().String("proto", "grpc", "Telemetry export transport (grpc or http)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		envFile, err := cmd.Flags().GetString("otel")
		if err != nil {
			return err
		}

		proto, err := cmd.Flags().GetString("proto")
		if err != nil {
			return err
		}

		builder := appbuilder.OTel(
			appbuilder.Recover(
				beacon.AppBuilderFunc[appConfig](buildApp),
			),
		)

		return beacon.Run(
			cmd.Context(),
			builder,
			config.FromDotEnv(envFile),
			flagSource(proto),
		)
	}

	return cmd
}

// flagSource exposes command line flags as a config source so they
// override anything read from the env file.
func flagSource(proto string) config.Source {
	return config.Map{
		"proto": proto,
	}
}

func buildApp(ctx context.Context, cfg appConfig) (beacon.App, error) {
	return app.Recover(appFunc(sellApples)), nil
}

type appFunc func(context.Context) error

func (f appFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func sellApples(ctx context.Context) error {
	spanCtx, span := otel.Tracer("applevendor").Start(ctx, "sellApples")
	defer span.End()

	slog.InfoContext(spanCtx, "pricing apples",
		slogfield.Float64("price", 2.99),
		slogfield.Float64("histogram.apple_price", 2.99),
	)

	err := cutApples(spanCtx, 0)
	if err == nil {
		return nil
	}
	slog.WarnContext(spanCtx, "retrying with a sensible slice count", slogfield.Error(err))

	// The fallback can fail too and its error must surface instead
	// of being discarded.
	err = cutApples(spanCtx, 4)
	if err != nil {
		return err
	}

	return prepareOrders(spanCtx)
}

func cutApples(ctx context.Context, pieces int) error {
	spanCtx, span := otel.Tracer("applevendor").Start(ctx, "cutApples")
	defer span.End()

	if pieces <= 0 {
		err := fmt.Errorf("cannot cut an apple into %d pieces", pieces)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(spanCtx, "failed to cut apple", slogfield.Error(err))
		return err
	}

	slog.InfoContext(spanCtx, "cut the apple",
		slogfield.Int("pieces", pieces),
		slogfield.Int("counter.apples_cut", 1),
	)
	return nil
}

func prepareOrders(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, pieces := range []int{4, 6} {
		eg.Go(func() error {
			return cutApples(egCtx, pieces)
		})
	}
	return eg.Wait()
}

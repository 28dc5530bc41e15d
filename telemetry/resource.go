// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Environment detection is bounded so a slow detector can not
// stall startup.
const resourceDetectTimeout = 5 * time.Second

// newResource describes the service emitting telemetry. The static
// identity always wins; attributes detected from the process
// environment (OTEL_RESOURCE_ATTRIBUTES, OTEL_SERVICE_NAME) are
// merged underneath it. Detection failures degrade to the static
// identity rather than failing assembly.
func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	static := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)

	detectCtx, cancel := context.WithTimeout(ctx, resourceDetectTimeout)
	defer cancel()

	detected, err := resource.New(detectCtx, resource.WithFromEnv())
	if err != nil || detected == nil {
		return static, nil
	}

	merged, err := resource.Merge(detected, static)
	if err != nil {
		return static, nil
	}
	return merged, nil
}

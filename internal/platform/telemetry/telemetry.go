// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package telemetry installs the OpenTelemetry tracer provider.

The fetcher and the ingest services start spans through otel.Tracer; until
[Setup] installs an SDK provider those spans go to the global no-op provider,
so tracing is opt-in through OTEL_EXPORTER_OTLP_ENDPOINT.
*/
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/taibuivan/komikflow/internal/platform/constants"
)

const exporterTimeout = 3 * time.Second

// Shutdown flushes and stops the installed provider.
type Shutdown func(context.Context) error

/*
Setup installs an OTLP/HTTP tracer provider when endpoint is set.

Parameters:
  - ctx: context.Context
  - endpoint: string (OTLP/HTTP endpoint URL, empty disables export)
  - serviceName: string
  - logger: *slog.Logger

Returns:
  - Shutdown: flushes pending spans; a no-op when export is disabled
  - error: exporter construction failures
*/
func Setup(ctx context.Context, endpoint, serviceName string, logger *slog.Logger) (Shutdown, error) {
	if endpoint == "" {
		logger.Debug("tracing_disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporterCtx, cancel := context.WithTimeout(ctx, exporterTimeout)
	defer cancel()

	exporter, err := otlptracehttp.New(exporterCtx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(constants.AppVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.Info("tracing_enabled", slog.String("endpoint", endpoint))
	return provider.Shutdown, nil
}

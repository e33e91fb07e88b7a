package telemetry

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/x402chainpay/client-go/internal/config"
)

// Setup installs a global tracer provider exporting over OTLP gRPC when cfg
// names an endpoint. The returned function flushes and stops it; with
// tracing disabled it is a no-op.
func Setup(serviceName string, cfg config.TelemetryConfig) func(context.Context) error {
	if !cfg.Enabled() {
		return func(context.Context) error { return nil }
	}
	endpoint := cfg.Endpoint

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(context.Background(), opts...)
	if err != nil {
		log.Warn().Err(err).Msg("otel exporter unavailable, tracing disabled")
		return func(context.Context) error { return nil }
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		log.Warn().Err(err).Msg("otel resource error")
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	log.Debug().Str("endpoint", endpoint).Str("service", serviceName).Msg("tracing enabled")

	return provider.Shutdown
}

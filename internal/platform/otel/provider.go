// Package otel wires OpenTelemetry tracing for service commands.
package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls trace export. Tracing stays off unless Enabled is set and
// Endpoint names an OTLP/HTTP collector.
type Config struct {
	Endpoint string  `env:"TENANTSITE_OTEL_ENDPOINT"`
	Enabled  bool    `env:"TENANTSITE_OTEL_ENABLED" envDefault:"true"`
	Sampling float64 `env:"TENANTSITE_OTEL_SAMPLING" envDefault:"1"`
}

// Active reports whether cfg exports spans.
func (cfg Config) Active() bool {
	return cfg.Enabled && strings.TrimSpace(cfg.Endpoint) != ""
}

func (cfg Config) sampler() sdktrace.Sampler {
	switch {
	case cfg.Sampling >= 1:
		return sdktrace.AlwaysSample()
	case cfg.Sampling <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Sampling))
	}
}

// Setup registers a global tracer provider for serviceName. Inactive configs
// return a no-op shutdown and leave the global provider untouched.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(strings.TrimSpace(cfg.Endpoint)),
	)
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

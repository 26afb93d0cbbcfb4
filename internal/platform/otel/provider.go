// Package otel wires OpenTelemetry tracing for dossier commands.
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

// Options configures trace export.
type Options struct {
	// Endpoint is the OTLP/HTTP collector URL. Tracing stays off when empty.
	Endpoint string `env:"DOSSIER_OTEL_ENDPOINT"`
	// Enabled switches export off without clearing the endpoint.
	Enabled bool `env:"DOSSIER_OTEL_ENABLED" envDefault:"true"`
	// SampleRatio is the fraction of root traces kept, between 0 and 1.
	SampleRatio float64 `env:"DOSSIER_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether options call for an exporter.
func (o Options) Active() bool {
	return o.Enabled && strings.TrimSpace(o.Endpoint) != ""
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// When options are not Active, Setup returns a no-op shutdown function and no
// global provider is registered. The returned shutdown function flushes
// pending spans and should be deferred by the caller.
func Setup(ctx context.Context, serviceName string, options Options) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !options.Active() {
		return noop, nil
	}
	if options.SampleRatio < 0 || options.SampleRatio > 1 {
		return noop, fmt.Errorf("otel sample ratio %v outside [0, 1]", options.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(strings.TrimSpace(options.Endpoint)),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(options.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

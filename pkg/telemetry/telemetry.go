// Package telemetry sets up OpenTelemetry tracing for the process.
package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

var ErrUnknownExporter = errors.New("telemetry: unknown exporter")

// Config selects where spans go. Exporter is "stdout" or "none".
type Config struct {
	ServiceName    string  `koanf:"service_name"`
	ServiceVersion string  `koanf:"service_version"`
	Exporter       string  `koanf:"exporter"`
	SampleRatio    float64 `koanf:"sample_ratio"`
	PrettyPrint    bool    `koanf:"pretty_print"`
}

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

// NewTracerProvider builds a provider exporting to w. It does not touch
// the global provider.
func NewTracerProvider(cfg Config, w io.Writer) (*sdktrace.TracerProvider, error) {
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}

	attrs := resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)
	res, err := resource.Merge(resource.Default(), attrs)
	if err != nil {
		return nil, err
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	), nil
}

// InitTracer installs the global tracer provider and W3C trace-context
// propagation. With the "none" exporter spans are dropped and the returned
// shutdown is a no-op.
func InitTracer(cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Exporter {
	case "", "none":
		return noop, nil
	case "stdout":
	default:
		return nil, errors.Join(ErrUnknownExporter, errors.New(cfg.Exporter))
	}

	tp, err := NewTracerProvider(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("exporter", cfg.Exporter),
	)
	return tp.Shutdown, nil
}

// Package tracing sets up OpenTelemetry tracing for tabula.
//
// Codec operations always start spans on the global tracer provider; they
// are dropped until Init installs an exporting provider.
package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// TracerName is the instrumentation scope of every tabula span.
const TracerName = "github.com/ajitpratap0/tabula"

// ServiceName is reported in the span resource.
const ServiceName = "tabula"

// Config controls span export.
type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	// SamplingRate is the fraction of traces kept, in [0, 1]
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate" mapstructure:"sampling_rate"`
}

// DefaultConfig returns tracing disabled with full sampling once enabled.
func DefaultConfig() Config {
	return Config{SamplingRate: 1}
}

// Validate checks the sampling rate.
func (c Config) Validate() error {
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "tracing.sampling_rate %v is outside [0, 1]", c.SamplingRate)
	}
	return nil
}

// Init installs a global tracer provider that writes finished spans to w as
// JSON. The returned function flushes and stops it. When cfg is disabled
// nothing is installed and the shutdown function is a no-op.
func Init(cfg Config, w io.Writer, version string) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create trace resource")
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create stdout exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRate)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the tabula tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

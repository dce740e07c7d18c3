package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/version"
)

// Telemetry holds the installed meter and tracer providers.
type Telemetry struct {
	meter  *metric.MeterProvider
	tracer *sdktrace.TracerProvider
}

// SetupTelemetry installs global meter and tracer providers. Data is sent to
// TelemetryEndpoint via OTLP/gRPC or written to stdout if TelemetryStdout is set.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName("race-engine"),
			semconv.ServiceVersion(version.Version)))
	if err != nil {
		return nil, err
	}
	metricExporter, traceExporter, err := newExporters(ctx)
	if err != nil {
		return nil, err
	}
	t := &Telemetry{
		meter: metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(metricExporter,
				metric.WithInterval(15*time.Second))),
		),
		tracer: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExporter),
		),
	}
	otel.SetMeterProvider(t.meter)
	otel.SetTracerProvider(t.tracer)
	return t, nil
}

func newExporters(ctx context.Context) (metric.Exporter, sdktrace.SpanExporter, error) {
	if TelemetryStdout {
		me, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, nil, err
		}
		te, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			return nil, nil, err
		}
		return me, te, nil
	}
	me, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
		otlpmetricgrpc.WithInsecure())
	if err != nil {
		return nil, nil, err
	}
	te, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(TelemetryEndpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, nil, err
	}
	return me, te, nil
}

// Shutdown flushes pending data.
func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := errors.Join(t.tracer.Shutdown(ctx), t.meter.Shutdown(ctx)); err != nil {
		log.Warn("telemetry shutdown", log.ErrorField(err))
	}
}

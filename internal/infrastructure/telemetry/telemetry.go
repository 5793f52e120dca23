package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbokern/makibeans/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	ServiceName    string
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	// Registry backs the /metrics endpoint
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// NewTelemetry initializes tracing and metrics exported to the OTLP collector.
// Metrics are also exposed for Prometheus scraping.
func NewTelemetry(ctx context.Context, cfg *config.OTLPConfig) (*Telemetry, error) {
	// Initialize logger first for debugging
	logger := NewLogger(os.Stdout, cfg)

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("service_name", cfg.ServiceName),
	)

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Initialize tracer provider
	tp, err := initTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	logger.Info("Tracer provider initialized successfully")

	// Initialize meter provider with dual exporters (OTLP + Prometheus)
	reg := newRegistry()
	mp, err := initMeterProvider(ctx, cfg, res, reg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	logger.Info("Meter provider initialized successfully (OTLP + Prometheus exporters)")

	t := &Telemetry{
		ServiceName:    cfg.ServiceName,
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       reg,
		Logger:         logger,
	}
	t.setGlobals()
	return t, nil
}

// NewNoOpTelemetry creates a telemetry instance that exports nothing over OTLP.
// Spans are still created so logs carry trace ids, and metrics stay scrapeable.
func NewNoOpTelemetry(cfg *config.OTLPConfig) (*Telemetry, error) {
	logger := NewLogger(os.Stdout, cfg)

	reg := newRegistry()
	promReader, err := prometheusReader(reg)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{
		ServiceName:    cfg.ServiceName,
		// Tracer provider without exporter; spans still get valid ids for logs
		TracerProvider: sdktrace.NewTracerProvider(),
		MeterProvider:  metric.NewMeterProvider(metric.WithReader(promReader)),
		Registry:       reg,
		Logger:         logger,
	}
	t.setGlobals()

	logger.Info("Telemetry initialized in no-op mode (export disabled)")
	return t, nil
}

func (t *Telemetry) setGlobals() {
	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	err := errors.Join(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	)
	if err != nil {
		t.Logger.Error("Failed to shutdown telemetry", slog.String("error", err.Error()))
		return err
	}

	t.Logger.Info("OpenTelemetry shutdown successfully")
	return nil
}

// Package obslog wires structured logging, tracing, and metrics for the
// compiler and verifier pipelines. Grounded on the teacher's
// pkg/observability/observability.go (log/slog + OpenTelemetry
// trace/metric providers behind an Enabled flag); trimmed to the surface
// the compiler and verifier actually emit — no SLI/SLO/audit-timeline
// machinery, which has no analog in an offline compile/verify tool.
package obslog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OpenTelemetry providers. Compile/verify are offline
// tools: tracing defaults to disabled and the hook exists for operators who
// want to aggregate runs across a fleet of compile/verify invocations.
type Config struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	Enabled      bool
	Insecure     bool
}

func DefaultConfig() Config {
	return Config{
		ServiceName:  "axm-shard",
		Environment:  "development",
		OTLPEndpoint: "localhost:4317",
		Enabled:      false,
		Insecure:     true,
	}
}

// Provider bundles the logger, tracer, and meter a pipeline run uses.
type Provider struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewProvider builds a Provider. When cfg.Enabled is false, the tracer and
// meter are no-op implementations and no network connection is attempted.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	logger := slog.Default().With("component", "shard")

	if !cfg.Enabled {
		return &Provider{
			cfg:    cfg,
			logger: logger,
			tracer: otel.Tracer("axm-shard"),
			meter:  otel.Meter("axm-shard"),
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("obslog: building resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("obslog: trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("obslog: metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(5*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return &Provider{
		cfg:    cfg,
		logger: logger,
		tracer: tp.Tracer("axm-shard"),
		meter:  mp.Meter("axm-shard"),
		tp:     tp,
		mp:     mp,
	}, nil
}

// Shutdown flushes any pending telemetry. Safe to call on a disabled
// provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			return err
		}
	}
	if p.mp != nil {
		return p.mp.Shutdown(ctx)
	}
	return nil
}

func (p *Provider) Logger() *slog.Logger { return p.logger }
func (p *Provider) Tracer() trace.Tracer { return p.tracer }
func (p *Provider) Meter() metric.Meter  { return p.meter }

// StartStage starts a span for one named pipeline stage (e.g.
// "compiler.resolve_entities", "verifier.check_merkle") and returns the
// derived context and a done func that ends the span.
func (p *Provider) StartStage(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := p.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}

// Package instrument wires OpenTelemetry tracing, metrics and log export
// together with the process-wide slog logger.
package instrument

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Instrumentation hands tracers and meters to the mfa use cases.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config is read from the instrument.* configuration keys.
type Config struct {
	// Enabled turns on OTLP export. When false only the local logger is set up.
	Enabled          bool
	ServiceName      string
	ServiceVersion   string
	Environment      string
	OTLPEndpoint     string
	OTLPSecure       bool
	TraceSampleRatio float64
	// MetricsInterval defaults to one minute.
	MetricsInterval time.Duration

	// MaskFields are attribute keys, case-insensitive, whose values are
	// replaced with "***" in every log record.
	MaskFields []string
	// LogLevel is debug, info, warn or error; empty means info.
	LogLevel string
	// LogFormat is "json" (default) or "text".
	LogFormat string
	// LogWriter defaults to os.Stderr so stdout stays free for command output.
	LogWriter io.Writer
}

const defaultMetricsInterval = time.Minute

type exporters struct {
	trace  sdktrace.SpanExporter
	metric *otlpmetricgrpc.Exporter
	log    *otlploggrpc.Exporter
}

func newExporters(ctx context.Context, endpoint string, secure bool) (*exporters, error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(endpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(endpoint)}
	if !secure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	var (
		ex  exporters
		err error
	)
	if ex.trace, err = otlptracegrpc.New(ctx, traceOpts...); err != nil {
		return nil, err
	}
	if ex.metric, err = otlpmetricgrpc.New(ctx, metricOpts...); err != nil {
		return nil, errors.Join(err, ex.trace.Shutdown(ctx))
	}
	if ex.log, err = otlploggrpc.New(ctx, logOpts...); err != nil {
		return nil, errors.Join(err, ex.trace.Shutdown(ctx), ex.metric.Shutdown(ctx))
	}

	return &ex, nil
}

type providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
	lp *sdklog.LoggerProvider
}

// New installs the default slog logger and, when cfg.Enabled, returns
// providers exporting over OTLP/gRPC. Otherwise it returns NewNoop().
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if !cfg.Enabled {
		installLogger(cfg, nil)
		return NewNoop(), nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("env", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	ex, err := newExporters(ctx, cfg.OTLPEndpoint, cfg.OTLPSecure)
	if err != nil {
		return nil, err
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	ratio := min(max(cfg.TraceSampleRatio, 0), 1)

	p := &providers{
		tp: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
			sdktrace.WithBatcher(ex.trace),
		),
		mp: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(ex.metric, sdkmetric.WithInterval(interval))),
		),
		lp: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(ex.log)),
		),
	}
	installLogger(cfg, p.lp)

	return p, nil
}

func (p *providers) Tracer(name string) trace.Tracer { return p.tp.Tracer(name) }

func (p *providers) Meter(name string) metric.Meter { return p.mp.Meter(name) }

// Shutdown flushes pending spans, metrics and log records.
func (p *providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.tp.Shutdown(ctx), p.mp.Shutdown(ctx), p.lp.Shutdown(ctx))
}

type noop struct {
	tp trace.TracerProvider
	mp metric.MeterProvider
}

// NewNoop returns an Instrumentation whose spans and instruments record nothing.
func NewNoop() Instrumentation {
	return noop{tp: tracenoop.NewTracerProvider(), mp: metricnoop.NewMeterProvider()}
}

func (n noop) Tracer(name string) trace.Tracer { return n.tp.Tracer(name) }

func (n noop) Meter(name string) metric.Meter { return n.mp.Meter(name) }

func (noop) Shutdown(context.Context) error { return nil }

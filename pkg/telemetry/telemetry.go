package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Service name for telemetry
	serviceName = "dagctl-scheduler"

	// Metric names
	metricRefreshRuns     = "scheduler.refresh.runs.total"
	metricRefreshDuration = "scheduler.refresh.duration"
	metricRefreshSuccess  = "scheduler.refresh.success.total"
	metricRefreshFailure  = "scheduler.refresh.failure.total"
	metricTaskRuns        = "scheduler.task.runs.total"
	metricTaskDuration    = "scheduler.task.duration"
	metricTaskSuccess     = "scheduler.task.success.total"
	metricTaskFailure     = "scheduler.task.failure.total"
	metricUsedSlots       = "scheduler.used_slots"
	metricAliveWorkers    = "scheduler.alive_workers"
)

// Provider manages OpenTelemetry setup and provides access to tracers and meters.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	// Metrics instruments
	refreshRuns     metric.Int64Counter
	refreshDuration metric.Float64Histogram
	refreshSuccess  metric.Int64Counter
	refreshFailure  metric.Int64Counter
	taskRuns        metric.Int64Counter
	taskDuration    metric.Float64Histogram
	taskSuccess     metric.Int64Counter
	taskFailure     metric.Int64Counter
	usedSlots       metric.Int64Gauge
	aliveWorkers    metric.Int64Gauge

	mu sync.RWMutex
}

// Config holds telemetry configuration
type Config struct {
	// ServiceName is the name of the service for telemetry
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment (e.g., "production", "staging", "development")
	Environment string

	// EnableTracing enables distributed tracing
	EnableTracing bool

	// EnableMetrics enables metrics collection
	EnableMetrics bool
}

// DefaultConfig returns default telemetry configuration
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider creates a new telemetry provider with a Prometheus metrics
// exporter. It initializes OpenTelemetry with the given configuration and
// returns a provider that can be used to create tracers and record metrics
// for refresh runs and task executions.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	provider := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if config.EnableMetrics {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if config.EnableTracing {
		provider.initTracing()
	}

	return provider, nil
}

// initMetrics initializes the metrics provider with Prometheus exporter
func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(p.meterProvider)

	p.meter = p.meterProvider.Meter(serviceName)

	if err := p.createMetricInstruments(); err != nil {
		return fmt.Errorf("failed to create metric instruments: %w", err)
	}

	return nil
}

// initTracing initializes the tracing provider. In production this should be
// configured with an OTLP exporter; for now it uses the global provider.
func (p *Provider) initTracing() {
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

// createMetricInstruments creates all metric instruments
func (p *Provider) createMetricInstruments() error {
	var err error

	p.refreshRuns, err = p.meter.Int64Counter(
		metricRefreshRuns,
		metric.WithDescription("Total number of Refresh calls"),
	)
	if err != nil {
		return err
	}

	p.refreshDuration, err = p.meter.Float64Histogram(
		metricRefreshDuration,
		metric.WithDescription("Refresh call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.refreshSuccess, err = p.meter.Int64Counter(
		metricRefreshSuccess,
		metric.WithDescription("Total number of Refresh calls that completed successfully"),
	)
	if err != nil {
		return err
	}

	p.refreshFailure, err = p.meter.Int64Counter(
		metricRefreshFailure,
		metric.WithDescription("Total number of Refresh calls that returned an error"),
	)
	if err != nil {
		return err
	}

	p.taskRuns, err = p.meter.Int64Counter(
		metricTaskRuns,
		metric.WithDescription("Total number of task bodies submitted"),
	)
	if err != nil {
		return err
	}

	p.taskDuration, err = p.meter.Float64Histogram(
		metricTaskDuration,
		metric.WithDescription("Task body duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.taskSuccess, err = p.meter.Int64Counter(
		metricTaskSuccess,
		metric.WithDescription("Total number of tasks that reported Done"),
	)
	if err != nil {
		return err
	}

	p.taskFailure, err = p.meter.Int64Counter(
		metricTaskFailure,
		metric.WithDescription("Total number of tasks that reported Fail"),
	)
	if err != nil {
		return err
	}

	p.usedSlots, err = p.meter.Int64Gauge(
		metricUsedSlots,
		metric.WithDescription("Slots currently occupied by submitted tasks"),
	)
	if err != nil {
		return err
	}

	p.aliveWorkers, err = p.meter.Int64Gauge(
		metricAliveWorkers,
		metric.WithDescription("Worker handles currently alive"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Tracer returns the tracer for creating spans
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordRefresh records metrics for one completed Refresh call.
func (p *Provider) RecordRefresh(ctx context.Context, workflowURI string, duration time.Duration, success bool, tasksSubmitted int) {
	if p.meter == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("workflow.uri", workflowURI),
		attribute.Int("tasks.submitted", tasksSubmitted),
	}

	p.refreshRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.refreshDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if success {
		p.refreshSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.refreshFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTask records metrics for one completed task body.
func (p *Provider) RecordTask(ctx context.Context, taskURI string, taskKind string, duration time.Duration, success bool) {
	if p.meter == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("task.uri", taskURI),
		attribute.String("task.kind", taskKind),
	}

	p.taskRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.taskDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if success {
		p.taskSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.taskFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTick records the admission-control gauges at a single scan tick.
func (p *Provider) RecordTick(ctx context.Context, workflowURI string, usedSlots, alive int) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("workflow.uri", workflowURI)}
	p.usedSlots.Record(ctx, int64(usedSlots), metric.WithAttributes(attrs...))
	p.aliveWorkers.Record(ctx, int64(alive), metric.WithAttributes(attrs...))
}

// Shutdown gracefully shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
	}

	return nil
}

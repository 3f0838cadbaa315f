package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowbase/dagctl/pkg/observer"
)

// TelemetryObserver implements observer.Observer and records telemetry data
// for scheduler refresh-loop events.
type TelemetryObserver struct {
	provider *Provider

	mu          sync.Mutex
	refreshSpan trace.Span
	taskSpans   map[string]trace.Span

	refreshStartTime time.Time
	taskStartTimes   map[string]time.Time
}

// NewTelemetryObserver creates a new telemetry observer
func NewTelemetryObserver(provider *Provider) *TelemetryObserver {
	return &TelemetryObserver{
		provider:       provider,
		taskSpans:      make(map[string]trace.Span),
		taskStartTimes: make(map[string]time.Time),
	}
}

// OnEvent handles scheduler lifecycle events and records telemetry data
func (o *TelemetryObserver) OnEvent(ctx context.Context, event observer.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch event.Type {
	case observer.EventRefreshStart:
		o.handleRefreshStart(ctx, event)
	case observer.EventRefreshEnd:
		o.handleRefreshEnd(ctx, event)
	case observer.EventTaskSubmit:
		o.handleTaskSubmit(ctx, event)
	case observer.EventTaskSuccess:
		o.handleTaskEnd(ctx, event, true)
	case observer.EventTaskFailure:
		o.handleTaskEnd(ctx, event, false)
	case observer.EventTick:
		o.provider.RecordTick(ctx, event.WorkflowURI, event.UsedSlots, event.Alive)
	}
}

func (o *TelemetryObserver) handleRefreshStart(ctx context.Context, event observer.Event) {
	_, span := o.provider.Tracer().Start(ctx, "scheduler.refresh",
		trace.WithAttributes(
			attribute.String("workflow.uri", event.WorkflowURI),
			attribute.String("run.id", event.RunID),
		),
	)

	o.refreshSpan = span
	o.refreshStartTime = event.Timestamp
}

func (o *TelemetryObserver) handleRefreshEnd(ctx context.Context, event observer.Event) {
	duration := time.Since(o.refreshStartTime)

	tasksSubmitted := 0
	if val, ok := event.Metadata["tasks_submitted"]; ok {
		if count, ok := val.(int); ok {
			tasksSubmitted = count
		}
	}

	success := event.Status == observer.StatusSuccess
	o.provider.RecordRefresh(ctx, event.WorkflowURI, duration, success, tasksSubmitted)

	if o.refreshSpan != nil {
		if event.Error != nil {
			o.refreshSpan.RecordError(event.Error)
			o.refreshSpan.SetStatus(codes.Error, event.Error.Error())
		} else {
			o.refreshSpan.SetStatus(codes.Ok, "refresh completed")
		}
		o.refreshSpan.End()
	}
}

func (o *TelemetryObserver) handleTaskSubmit(ctx context.Context, event observer.Event) {
	var spanCtx context.Context
	if o.refreshSpan != nil {
		spanCtx = trace.ContextWithSpan(ctx, o.refreshSpan)
	} else {
		spanCtx = ctx
	}

	_, span := o.provider.Tracer().Start(spanCtx, "scheduler.task",
		trace.WithAttributes(
			attribute.String("task.uri", event.TaskURI),
			attribute.String("task.kind", event.TaskKind),
			attribute.String("run.id", event.RunID),
		),
	)

	o.taskSpans[event.TaskURI] = span
	o.taskStartTimes[event.TaskURI] = event.Timestamp
}

func (o *TelemetryObserver) handleTaskEnd(ctx context.Context, event observer.Event, success bool) {
	var duration time.Duration
	if startTime, ok := o.taskStartTimes[event.TaskURI]; ok {
		duration = time.Since(startTime)
		delete(o.taskStartTimes, event.TaskURI)
	}

	o.provider.RecordTask(ctx, event.TaskURI, event.TaskKind, duration, success)

	if span, ok := o.taskSpans[event.TaskURI]; ok {
		if event.Error != nil {
			span.RecordError(event.Error)
			span.SetStatus(codes.Error, event.Error.Error())
		} else {
			span.SetStatus(codes.Ok, "task completed")
		}
		span.End()
		delete(o.taskSpans, event.TaskURI)
	}
}

// Package observer provides an event-driven observer pattern for scheduler
// execution.
//
// # Overview
//
// The observer package lets callers monitor, log, and react to scheduler
// lifecycle events — refresh start/end, ticks, and task submit/join/skip/
// success/failure — without coupling to pkg/scheduler or pkg/serial
// themselves. A single Event type carries every event kind; Observer
// implementations switch on Event.Type.
//
// # Observer Interface
//
//	type Observer interface {
//	    OnEvent(ctx context.Context, event Event)
//	}
//
// # Event Types
//
//	EventRefreshStart, EventRefreshEnd  - bracket a single Refresh/RefreshTargets call
//	EventTick                           - emitted periodically during the refresh loop
//	EventTaskSubmit                     - a task has been dispatched to a worker
//	EventTaskJoin                       - a submitted task's worker reported queued/started
//	EventTaskSkip                       - a task was already satisfied and skipped
//	EventTaskSuccess, EventTaskFailure  - a task reached a terminal status
//	EventMutableDelay                   - a task was held back by a mutable-object collision
//	EventOutputCollision                - two ready tasks claimed the same output object
//	EventShutdown                       - the scheduler is tearing down workers after an error
//
// # Basic Usage
//
//	obs := observer.NewManager()
//	obs.Register(observer.NewConsoleObserver())
//	scheduler.SetObserverManager(obs)
//
// # Custom Observer Example
//
//	type MetricsObserver struct {
//	    metrics MetricsCollector
//	}
//
//	func (o *MetricsObserver) OnEvent(ctx context.Context, e observer.Event) {
//	    switch e.Type {
//	    case observer.EventTaskSuccess:
//	        o.metrics.Increment("task.completed", map[string]string{"kind": e.TaskKind})
//	    case observer.EventTaskFailure:
//	        o.metrics.Increment("task.failed", map[string]string{"kind": e.TaskKind})
//	    }
//	}
//
// # Manager
//
// Manager fans a single Event out to every registered Observer
// concurrently, recovering from and logging any observer panic so one
// broken observer cannot affect another or the scheduler itself.
//
// # Event Fields
//
// Every Event carries a RunID and WorkflowURI so a caller running many
// workflows can demultiplex events from a shared Manager; TaskURI and
// TaskKind identify the task for task-scoped events; UsedSlots and Alive
// report scheduler-wide state as of an EventTick.
//
// # Thread Safety
//
// Observer.OnEvent may be called concurrently from multiple goroutines.
// Implementations must be safe for concurrent use.
package observer

package serial

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowbase/dagctl/pkg/graph"
	"github.com/flowbase/dagctl/pkg/observer"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
)

// Executor walks a graph's topological order and runs each task's body
// directly, in order, with no concurrency.
type Executor struct {
	graph  *graph.Graph
	tasks  map[uri.URI]*task.Task
	logger *slog.Logger
	obs    *observer.Manager

	RunID       string
	WorkflowURI string
}

// New returns an Executor over g and tasks. logger may be nil, in which
// case slog.Default() is used.
func New(g *graph.Graph, tasks map[uri.URI]*task.Task, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{graph: g, tasks: tasks, logger: logger}
}

// SetObserverManager attaches an observer.Manager that receives a
// task_submit/task_success/task_failure Event around every task body. Nil
// disables notification, which is also the default.
func (e *Executor) SetObserverManager(m *observer.Manager) {
	e.obs = m
}

func (e *Executor) notify(ctx context.Context, ev observer.Event) {
	if e.obs == nil {
		return
	}
	ev.Timestamp = time.Now()
	ev.RunID = e.RunID
	ev.WorkflowURI = e.WorkflowURI
	e.obs.Notify(ctx, ev)
}

// Run brings every task in the closure of targets to completion, in
// topological order. An empty targets means every registered task. It
// returns the first error raised by a task body, with everything after it
// left unrun.
func (e *Executor) Run(ctx context.Context, targets []uri.URI) error {
	subset := map[uri.URI]struct{}{}
	if len(targets) == 0 {
		for _, u := range e.graph.AllNodes() {
			subset[u] = struct{}{}
		}
	} else {
		for _, target := range targets {
			for u := range e.graph.TransitivePrereqs(target) {
				subset[u] = struct{}{}
			}
		}
	}

	sorted, err := e.graph.TopologicalSort(subset)
	if err != nil {
		return err
	}

	for _, u := range sorted {
		t, ok := e.tasks[u]
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if t.Body == nil {
			t.RunFinalize(task.Done)
			continue
		}
		e.logger.Debug("running task", "uri", u)
		e.notify(ctx, observer.Event{Type: observer.EventTaskSubmit, Status: observer.StatusStarted, TaskURI: string(u), TaskKind: t.Kind.String()})
		if err := t.Body(ctx, func(bool) {}); err != nil {
			e.logger.Info("task failed", "uri", u)
			t.RunFinalize(task.Fail)
			e.notify(ctx, observer.Event{Type: observer.EventTaskFailure, Status: observer.StatusFailure, TaskURI: string(u), TaskKind: t.Kind.String(), Error: err})
			return err
		}
		e.logger.Info("task done", "uri", u)
		t.RunFinalize(task.Done)
		e.notify(ctx, observer.Event{Type: observer.EventTaskSuccess, Status: observer.StatusSuccess, TaskURI: string(u), TaskKind: t.Kind.String()})
	}
	return nil
}

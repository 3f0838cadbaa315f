package workflow

import (
	"context"
	"log/slog"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/graph"
	"github.com/flowbase/dagctl/pkg/observer"
	"github.com/flowbase/dagctl/pkg/scheduler"
	"github.com/flowbase/dagctl/pkg/serial"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
	"github.com/flowbase/dagctl/pkg/worker"
)

// Workflow registers tasks and their data objects into a DAG and drives it
// to completion through whichever execution substrate it was constructed
// with: thread-pool, process-pool, or serial.
type Workflow struct {
	registry *uri.Registry
	graph    *graph.Graph
	tasks    map[uri.URI]*task.Task
	handler  worker.Handler
	cfg      *config.Config
	logger   *slog.Logger

	scheduler *scheduler.Scheduler
	executor  *serial.Executor

	observers *observer.Manager

	// URI identifies this workflow for observer/telemetry events emitted
	// by RefreshTargets. Optional.
	URI string
}

func newWorkflow(handler worker.Handler, cfg *config.Config, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Workflow{
		registry: uri.NewRegistry(),
		graph:    graph.New(),
		tasks:    make(map[uri.URI]*task.Task),
		handler:  handler,
		cfg:      cfg,
		logger:   logger,
	}
	if handler == nil {
		w.executor = serial.New(w.graph, w.tasks, logger)
	} else {
		w.scheduler = scheduler.New(w.graph, w.tasks, handler, cfg, logger)
	}
	return w
}

// NewThreadWorkflow builds a Workflow that runs task bodies as goroutines.
func NewThreadWorkflow(cfg *config.Config, logger *slog.Logger) *Workflow {
	return newWorkflow(worker.NewThreadHandler(), cfg, logger)
}

// NewProcessWorkflow builds a Workflow that runs tasks as subprocesses via
// each task's Command factory.
func NewProcessWorkflow(cfg *config.Config, logger *slog.Logger) *Workflow {
	return newWorkflow(worker.NewProcessHandler(), cfg, logger)
}

// NewSerialWorkflow builds a Workflow with no concurrency at all: tasks run
// synchronously in topological order, bypassing the scheduler and worker
// handler entirely.
func NewSerialWorkflow(logger *slog.Logger) *Workflow {
	return newWorkflow(nil, config.Serial(), logger)
}

// AddTask registers a task and the data objects it references. Re-adding a
// URI with a distinct task raises uri.ErrDuplicateURI.
func (w *Workflow) AddTask(t *task.Task) error {
	for _, set := range []task.Set{t.Inputs, t.Mutables, t.Outputs} {
		for d := range set {
			if err := w.registry.Register(d, d); err != nil {
				return err
			}
		}
	}
	if err := w.registry.Register(t.URI, t); err != nil {
		return err
	}
	w.tasks[t.URI] = t
	w.graph.AddNode(t.URI)
	for d := range t.Inputs {
		w.graph.AddNode(d)
		w.graph.AddEdge(t.URI, d)
	}
	for d := range t.Mutables {
		w.graph.AddNode(d)
		w.graph.AddEdge(t.URI, d)
	}
	for d := range t.Outputs {
		w.graph.AddNode(d)
		w.graph.AddEdge(d, t.URI)
	}
	return nil
}

// AddTasks registers multiple tasks, stopping at the first error.
func (w *Workflow) AddTasks(tasks []*task.Task) error {
	for _, t := range tasks {
		if err := w.AddTask(t); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTask unregisters a task. It is an error to remove a URI that was
// never registered.
func (w *Workflow) RemoveTask(u uri.URI) error {
	if _, ok := w.tasks[u]; !ok {
		return scheduler.ErrNotRegistered
	}
	delete(w.tasks, u)
	_ = w.registry.Unregister(u)
	w.graph.RemoveNode(u)
	return nil
}

// RemoveObject unregisters a data object. It is an error to remove a URI
// that was never registered.
func (w *Workflow) RemoveObject(u uri.URI) error {
	if !w.registry.Has(u) {
		return scheduler.ErrNotRegistered
	}
	_ = w.registry.Unregister(u)
	w.graph.RemoveNode(u)
	return nil
}

// RegisterObserver attaches o to this workflow's lifecycle: every refresh,
// tick, and task transition raised while executing RefreshTargets is
// delivered to it. Registering lazily creates the underlying
// observer.Manager and wires it into the scheduler or serial executor.
func (w *Workflow) RegisterObserver(o observer.Observer) *Workflow {
	if w.observers == nil {
		w.observers = observer.NewManager()
		if w.executor != nil {
			w.executor.SetObserverManager(w.observers)
		} else {
			w.scheduler.SetObserverManager(w.observers)
		}
	}
	_ = w.observers.Register(o)
	return w
}

// RefreshTargets drives every task in the closure of targets to a terminal
// status. An empty targets means every registered task. It dispatches to
// the scheduler's concurrent refresh loop, or to the serial executor for a
// workflow built with NewSerialWorkflow.
func (w *Workflow) RefreshTargets(ctx context.Context, targets []uri.URI, opts scheduler.RefreshOptions) error {
	if opts.WorkflowURI == "" {
		opts.WorkflowURI = w.URI
	}
	if w.executor != nil {
		w.executor.RunID = opts.RunID
		w.executor.WorkflowURI = opts.WorkflowURI
		return w.executor.Run(ctx, targets)
	}
	opts.Targets = targets
	return w.scheduler.Refresh(ctx, opts)
}

// Tasks returns every task currently registered.
func (w *Workflow) Tasks() []*task.Task {
	out := make([]*task.Task, 0, len(w.tasks))
	for _, t := range w.tasks {
		out = append(out, t)
	}
	return out
}

// InputObjects returns the data objects no other object's output produces:
// the workflow's external inputs.
func (w *Workflow) InputObjects() []uri.URI {
	var out []uri.URI
	for _, u := range w.graph.Sources() {
		if !u.IsTask() {
			out = append(out, u)
		}
	}
	return out
}

// OutputObjects returns the data objects nothing downstream depends on:
// the workflow's final outputs.
func (w *Workflow) OutputObjects() []uri.URI {
	var out []uri.URI
	for _, u := range w.graph.Sinks() {
		if !u.IsTask() {
			out = append(out, u)
		}
	}
	return out
}

// Graph exposes the underlying DAG, for visualization (see pkg/viz).
func (w *Workflow) Graph() *graph.Graph { return w.graph }

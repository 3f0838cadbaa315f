package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/graph"
	"github.com/flowbase/dagctl/pkg/mailbox"
	"github.com/flowbase/dagctl/pkg/observer"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
	"github.com/flowbase/dagctl/pkg/worker"
)

// UpdateFunc is the periodic update hook, invoked roughly every UpdateFreq
// with the wall-clock duration since the previous invocation (zero on the
// first invocation).
type UpdateFunc func(elapsed time.Duration)

// CompleteFunc is the terminal callback, invoked once after a successful
// Refresh that raised no failures.
type CompleteFunc func()

// RefreshOptions configures a single Refresh call.
type RefreshOptions struct {
	// Targets is the set of data-object/task URIs to bring up to date. An
	// empty set means every registered task.
	Targets []uri.URI
	// ExitOnFailure aborts as soon as a failure is counted. Its zero value
	// is false: Refresh does not read Config.ExitOnFailure, so callers copy
	// it from their config.Config (as pkg/server does).
	ExitOnFailure bool
	// UpdateFreq, if positive, invokes OnUpdate roughly this often.
	UpdateFreq time.Duration
	OnUpdate   UpdateFunc
	OnComplete CompleteFunc

	// RunID and WorkflowURI tag every observer.Event emitted during this
	// Refresh call. Both are optional; an empty RunID leaves the field
	// blank on emitted events.
	RunID       string
	WorkflowURI string
}

// Scheduler runs the concurrent refresh loop over a fixed graph and task
// set, dispatching work through a single worker.Handler.
type Scheduler struct {
	graph   *graph.Graph
	tasks   map[uri.URI]*task.Task
	handler worker.Handler
	mailbox *mailbox.Mailbox
	cfg     *config.Config
	logger  *slog.Logger
	obs     *observer.Manager
}

// SetObserverManager attaches an observer.Manager that receives a lifecycle
// Event at each refresh/tick/task-transition boundary. Passing nil disables
// notification, which is also the default.
func (s *Scheduler) SetObserverManager(m *observer.Manager) {
	s.obs = m
}

func (s *Scheduler) notify(ctx context.Context, opts RefreshOptions, e observer.Event) {
	if s.obs == nil {
		return
	}
	e.Timestamp = time.Now()
	e.RunID = opts.RunID
	e.WorkflowURI = opts.WorkflowURI
	s.obs.Notify(ctx, e)
}

// New constructs a Scheduler. tasks must contain an entry for every task
// URI referenced by g; logger may be nil, in which case slog.Default() is
// used.
func New(g *graph.Graph, tasks map[uri.URI]*task.Task, handler worker.Handler, cfg *config.Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		graph:   g,
		tasks:   tasks,
		handler: handler,
		mailbox: mailbox.New(),
		cfg:     cfg,
		logger:  logger,
	}
}

// Refresh executes the DAG until every task in the closure of opts.Targets
// reaches a terminal status, or an error is raised.
func (s *Scheduler) Refresh(ctx context.Context, opts RefreshOptions) error {
	s.notify(ctx, opts, observer.Event{Type: observer.EventRefreshStart, Status: observer.StatusStarted})
	start := time.Now()

	sortedTasks, prereqOf, statusMap, err := s.prepare(opts.Targets)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := make(map[uri.URI]worker.Handle)
	failed, succeeded, err := s.runLoop(runCtx, sortedTasks, prereqOf, statusMap, opts, workers)

	var late *LateTaskFailureError
	if errors.As(err, &late) {
		s.notify(ctx, opts, observer.Event{Type: observer.EventRefreshEnd, Status: observer.StatusFailure, ElapsedTime: time.Since(start), Error: err})
		return err
	}
	if err != nil {
		s.notify(ctx, opts, observer.Event{Type: observer.EventShutdown, Status: observer.StatusFailure, Error: err})
		s.emergencyShutdown(cancel, workers)
		return &ShutdownError{Cause: err}
	}
	if failed > 0 {
		s.notify(ctx, opts, observer.Event{Type: observer.EventRefreshEnd, Status: observer.StatusFailure, ElapsedTime: time.Since(start)})
		return &LateTaskFailureError{Failed: failed, Succeeded: succeeded}
	}
	if opts.OnComplete != nil {
		opts.OnComplete()
	}
	s.notify(ctx, opts, observer.Event{Type: observer.EventRefreshEnd, Status: observer.StatusSuccess, ElapsedTime: time.Since(start), Metadata: map[string]interface{}{"tasks_submitted": succeeded}})
	return nil
}

// prepare computes the topological order, validates slots/task kinds, and
// seeds the per-task status map. Errors here are configuration errors: no
// worker has been created yet.
func (s *Scheduler) prepare(targets []uri.URI) (sortedTasks []uri.URI, prereqOf map[uri.URI][]uri.URI, statusMap map[uri.URI]task.Status, err error) {
	subset := map[uri.URI]struct{}{}
	if len(targets) == 0 {
		for _, u := range s.graph.AllNodes() {
			subset[u] = struct{}{}
		}
	} else {
		for _, target := range targets {
			for u := range s.graph.TransitivePrereqs(target) {
				subset[u] = struct{}{}
			}
		}
	}

	sortedAll, err := s.graph.TopologicalSort(subset)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, u := range sortedAll {
		if _, ok := s.tasks[u]; ok {
			sortedTasks = append(sortedTasks, u)
		}
	}

	statusMap = make(map[uri.URI]task.Status, len(sortedTasks))
	for _, u := range sortedTasks {
		t := s.tasks[u]
		if t.Slots > s.cfg.MaxSlots {
			return nil, nil, nil, &SlotOverflowError{URI: string(u), Slots: t.Slots, MaxSlots: s.cfg.MaxSlots}
		}
		if !t.Kind.CompatibleWith(s.handler.Kind()) {
			return nil, nil, nil, &TaskTypeError{URI: string(u), TaskKind: t.Kind.String(), HandlerKind: s.handler.Kind()}
		}
		statusMap[u] = t.InitialStatus()
	}

	prereqOf = make(map[uri.URI][]uri.URI, len(sortedTasks))
	for _, u := range sortedTasks {
		var list []uri.URI
		for p := range s.graph.TransitivePrereqs(u) {
			if p == u {
				continue
			}
			if _, ok := s.tasks[p]; ok {
				list = append(list, p)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		prereqOf[u] = list
	}

	s.logger.Info("prepared refresh", "tasks", len(sortedTasks))
	return sortedTasks, prereqOf, statusMap, nil
}

// runLoop executes scan/dispatch/drain/sleep until termination, mutating
// workers as handles are created so the caller can join/terminate them on
// error. It returns the total failed/succeeded counts observed.
func (s *Scheduler) runLoop(ctx context.Context, sortedTasks []uri.URI, prereqOf map[uri.URI][]uri.URI, statusMap map[uri.URI]task.Status, opts RefreshOptions, workers map[uri.URI]worker.Handle) (failed, succeeded int, err error) {
	activeOutputs := map[uri.URI]uri.URI{}
	activeMutables := map[uri.URI]uri.URI{}
	updatedTasks := map[uri.URI]struct{}{}
	var pending []uri.URI
	usedSlots := 0
	sleepTime := time.Duration(0)
	loopN := 0
	var lastUpdate time.Time

	for {
		loopN++
		if (loopN-1)&loopN == 0 {
			s.logger.Info("tick", "n", loopN, "updated", len(updatedTasks), "sleep", sleepTime)
			s.notify(ctx, opts, observer.Event{Type: observer.EventTick, UsedSlots: usedSlots, Alive: s.handler.Alive(handleSlice(workers))})
		}

		for _, u := range sortedTasks {
			if statusMap[u] != task.Initialized {
				continue
			}
			t := s.tasks[u]
			prereqs := prereqOf[u]

			allDone := true
			for _, p := range prereqs {
				if statusMap[p] != task.Done {
					allDone = false
					break
				}
			}
			if !allDone {
				continue
			}

			collided := false
			for m := range t.Mutables {
				if owner, ok := activeMutables[m]; ok && owner != u {
					collided = true
					break
				}
			}
			if collided {
				s.notify(ctx, opts, observer.Event{Type: observer.EventMutableDelay, TaskURI: string(u), TaskKind: t.Kind.String()})
				continue
			}

			if len(activeOutputs) <= s.cfg.ActiveOutputSafetyLimit {
				for o := range t.Outputs {
					if owner, ok := activeOutputs[o]; ok && owner != u {
						collErr := &OutputCollisionError{DataURI: string(o), TaskA: string(owner), TaskB: string(u)}
						s.notify(ctx, opts, observer.Event{Type: observer.EventOutputCollision, TaskURI: string(u), Error: collErr})
						return failed, succeeded, collErr
					}
				}
			}

			anyPrereqUpdated := false
			for _, p := range prereqs {
				if _, ok := updatedTasks[p]; ok {
					anyPrereqUpdated = true
					break
				}
			}
			if !anyPrereqUpdated && t.Satisfied() {
				s.logger.Info("skip already-done task", "uri", u)
				statusMap[u] = task.Done
				updatedTasks[u] = struct{}{}
				t.RunFinalize(task.Done)
				s.notify(ctx, opts, observer.Event{Type: observer.EventTaskSkip, Status: observer.StatusSuccess, TaskURI: string(u), TaskKind: t.Kind.String()})
				continue
			}

			statusMap[u] = task.Ready
			pending = append(pending, u)
			for o := range t.Outputs {
				activeOutputs[o] = u
			}
			for m := range t.Mutables {
				activeMutables[m] = u
			}
		}

		for len(pending) > 0 {
			u := pending[0]
			t := s.tasks[u]
			free := s.cfg.MaxSlots - usedSlots
			alive := s.handler.Alive(handleSlice(workers))
			if free >= t.Slots && alive < s.cfg.MaxConcurrency {
				handle, createErr := s.handler.Create(ctx, t, s.mailbox)
				if createErr != nil {
					return failed, succeeded, createErr
				}
				workers[u] = handle
				s.handler.Start(handle)
				usedSlots += t.Slots
				statusMap[u] = task.Submitted
				pending = pending[1:]
				s.logger.Info("submit", "uri", u, "slots", t.Slots)
				s.notify(ctx, opts, observer.Event{Type: observer.EventTaskSubmit, Status: observer.StatusStarted, TaskURI: string(u), TaskKind: t.Kind.String(), UsedSlots: usedSlots})
			} else {
				break
			}
		}

		alive := s.handler.Alive(handleSlice(workers))
		if alive == 0 && len(pending) == 0 && s.mailbox.Empty() {
			for u := range workers {
				if !statusMap[u].Terminal() {
					return failed, succeeded, errors.New("worker joined with non-terminal status: " + string(u))
				}
			}
			s.logger.Info("refresh finished", "tasks", len(workers), "succeeded", succeeded, "failed", failed)
			break
		}

		select {
		case <-ctx.Done():
			return failed, succeeded, ctx.Err()
		case <-time.After(sleepTime):
		}

		if opts.UpdateFreq > 0 {
			now := time.Now()
			if lastUpdate.IsZero() || now.Sub(lastUpdate) >= opts.UpdateFreq {
				if opts.OnUpdate != nil {
					var elapsed time.Duration
					if !lastUpdate.IsZero() {
						elapsed = now.Sub(lastUpdate)
					}
					opts.OnUpdate(elapsed)
				}
				lastUpdate = now
			}
		}

		if sleepTime < s.cfg.MaxSleep {
			sleepTime += s.cfg.SleepStep
			if sleepTime > s.cfg.MaxSleep {
				sleepTime = s.cfg.MaxSleep
			}
		}

		for {
			msg, ok := s.mailbox.TryRecv()
			if !ok {
				break
			}
			sleepTime = 0
			u := msg.URI
			t := s.tasks[u]

			switch msg.Kind {
			case mailbox.Done, mailbox.Fail:
				if msg.Kind == mailbox.Done {
					statusMap[u] = task.Done
				} else {
					statusMap[u] = task.Fail
				}
				usedSlots -= t.Slots
				if h, ok := workers[u]; ok {
					s.handler.Join([]worker.Handle{h}, s.cfg.JoinTimeout)
				}
				t.RunFinalize(statusMap[u])
				for o := range t.Outputs {
					delete(activeOutputs, o)
				}
				for m := range t.Mutables {
					delete(activeMutables, m)
				}
				updatedTasks[u] = struct{}{}
				if msg.Kind == mailbox.Done {
					succeeded++
					s.logger.Info("task done", "uri", u)
					s.notify(ctx, opts, observer.Event{Type: observer.EventTaskSuccess, Status: observer.StatusSuccess, TaskURI: string(u), TaskKind: t.Kind.String(), UsedSlots: usedSlots})
				} else {
					failed++
					s.logger.Info("task failed", "uri", u)
					s.notify(ctx, opts, observer.Event{Type: observer.EventTaskFailure, Status: observer.StatusFailure, TaskURI: string(u), TaskKind: t.Kind.String(), UsedSlots: usedSlots})
				}
			case mailbox.Started:
				if !msg.RunFlag {
					return failed, succeeded, &ProtocolViolationError{URI: string(u)}
				}
				s.logger.Info("queued", "uri", u)
				s.notify(ctx, opts, observer.Event{Type: observer.EventTaskJoin, TaskURI: string(u)})
			default:
				s.logger.Warn("unexpected message", "uri", u, "kind", msg.Kind)
			}
		}

		if failed > 0 && (opts.ExitOnFailure || succeeded == 0) {
			return failed, succeeded, &TaskFailureError{Failed: failed}
		}
	}

	return failed, succeeded, nil
}

// emergencyShutdown cancels the run context, then joins with a short sweep.
// Anything still alive after that first sweep gets a forcible
// NotifyTerminate, then shutdown keeps sweeping until every worker reports
// dead.
func (s *Scheduler) emergencyShutdown(cancel context.CancelFunc, workers map[uri.URI]worker.Handle) {
	cancel()
	handles := handleSlice(workers)
	s.logger.Warn("emergency shutdown", "tasks", len(handles), "alive", s.handler.Alive(handles))

	s.handler.Join(handles, s.cfg.ShutdownSweep)
	if s.handler.Alive(handles) > 0 {
		s.logger.Warn("worker still alive after first sweep, escalating to NotifyTerminate", "alive", s.handler.Alive(handles))
		s.handler.NotifyTerminate(handles)
	}

	for s.handler.Alive(handles) > 0 {
		s.handler.Join(handles, s.cfg.ShutdownSweep)
		s.logger.Warn("shutdown sweep", "alive", s.handler.Alive(handles))
	}
}

func handleSlice(workers map[uri.URI]worker.Handle) []worker.Handle {
	handles := make([]worker.Handle, 0, len(workers))
	for _, h := range workers {
		handles = append(handles, h)
	}
	return handles
}

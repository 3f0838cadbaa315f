package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/observer"
	"github.com/flowbase/dagctl/pkg/scheduler"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
)

func TestWorkflow_AddTaskWiresDataObjectEdges(t *testing.T) {
	w := NewSerialWorkflow(nil)

	in := uri.URI("file://in")
	out := uri.URI("file://out")
	var ran bool
	t1 := task.New(uri.URI("task://t1"))
	t1.Inputs = task.NewSet(in)
	t1.Outputs = task.NewSet(out)
	t1.Body = func(ctx context.Context, started task.Started) error {
		ran = true
		return nil
	}

	if err := w.AddTask(t1); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if got := w.InputObjects(); len(got) != 1 || got[0] != in {
		t.Fatalf("expected input objects [%s], got %v", in, got)
	}
	if got := w.OutputObjects(); len(got) != 1 || got[0] != out {
		t.Fatalf("expected output objects [%s], got %v", out, got)
	}

	if err := w.RefreshTargets(context.Background(), nil, scheduler.RefreshOptions{}); err != nil {
		t.Fatalf("RefreshTargets: %v", err)
	}
	if !ran {
		t.Fatalf("expected task body to run")
	}
}

func TestWorkflow_AddTaskDuplicateURI(t *testing.T) {
	w := NewSerialWorkflow(nil)
	u := uri.URI("task://t1")
	if err := w.AddTask(task.New(u)); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := w.AddTask(task.New(u)); !errors.Is(err, uri.ErrDuplicateURI) {
		t.Fatalf("expected ErrDuplicateURI, got %v", err)
	}
}

func TestWorkflow_RemoveTaskNotRegistered(t *testing.T) {
	w := NewSerialWorkflow(nil)
	if err := w.RemoveTask(uri.URI("task://ghost")); !errors.Is(err, scheduler.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestWorkflow_ThreadWorkflowRunsConcurrently(t *testing.T) {
	w := NewThreadWorkflow(config.Testing(), nil)

	a := task.New(uri.URI("task://a"))
	var ranA bool
	a.Body = func(ctx context.Context, started task.Started) error {
		ranA = true
		return nil
	}
	if err := w.AddTask(a); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := w.RefreshTargets(context.Background(), nil, scheduler.RefreshOptions{ExitOnFailure: true}); err != nil {
		t.Fatalf("RefreshTargets: %v", err)
	}
	if !ranA {
		t.Fatalf("expected task a to run")
	}
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[observer.EventType]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{counts: make(map[observer.EventType]int)}
}

func (c *countingObserver) OnEvent(ctx context.Context, e observer.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[e.Type]++
}

func (c *countingObserver) count(et observer.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[et]
}

func TestWorkflow_RegisterObserverReceivesSerialEvents(t *testing.T) {
	w := NewSerialWorkflow(nil)

	a := task.New(uri.URI("task://a"))
	a.Body = func(ctx context.Context, started task.Started) error { return nil }
	if err := w.AddTask(a); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	obs := newCountingObserver()
	w.RegisterObserver(obs)

	if err := w.RefreshTargets(context.Background(), nil, scheduler.RefreshOptions{}); err != nil {
		t.Fatalf("RefreshTargets: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if obs.count(observer.EventTaskSuccess) != 1 {
		t.Fatalf("expected one task_success event, got %d", obs.count(observer.EventTaskSuccess))
	}
}

func TestWorkflow_RegisterObserverReceivesThreadEvents(t *testing.T) {
	w := NewThreadWorkflow(config.Testing(), nil)

	a := task.New(uri.URI("task://a"))
	a.Body = func(ctx context.Context, started task.Started) error { return nil }
	if err := w.AddTask(a); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	obs := newCountingObserver()
	w.RegisterObserver(obs)

	if err := w.RefreshTargets(context.Background(), nil, scheduler.RefreshOptions{ExitOnFailure: true}); err != nil {
		t.Fatalf("RefreshTargets: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if obs.count(observer.EventRefreshStart) != 1 {
		t.Fatalf("expected one refresh_start event, got %d", obs.count(observer.EventRefreshStart))
	}
}

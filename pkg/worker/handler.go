package worker

import (
	"context"
	"time"

	"github.com/flowbase/dagctl/pkg/mailbox"
	"github.com/flowbase/dagctl/pkg/task"
)

// Handle is an opaque, once-startable worker instance returned by
// Handler.Create.
type Handle interface {
	// Done returns a channel that closes when the underlying
	// goroutine/process has terminated.
	Done() <-chan struct{}
	// Alive reports whether the handle has been started and has not yet
	// terminated.
	Alive() bool
	// Start launches the wrapped body. Exactly one call per handle.
	Start()
	// Kill is the forcible-termination path (process handler only; the
	// thread handler's Kill is a no-op cooperative wait, matching the
	// daemon-thread cancellation model).
	Kill()
}

// Handler is the capability set a scheduler uses to run task bodies without
// knowing whether they are threads, processes, or nothing at all.
type Handler interface {
	// Kind identifies the substrate: "thread", "process", or "" for the
	// no-op serial handler. The scheduler uses this to enforce the
	// task-kind compatibility check (scheduler.TaskTypeError).
	Kind() string

	// Create wraps t.Body (or t.Command, for the process handler) so
	// that, on return, it posts a Done or Fail message to mb. The handle
	// is startable exactly once. ctx is the shared shutdown context:
	// workers must observe its cancellation cooperatively.
	Create(ctx context.Context, t *task.Task, mb *mailbox.Mailbox) (Handle, error)

	// Start launches the handle's execution and returns immediately.
	Start(h Handle)

	// Alive returns the count of handles that have not yet terminated.
	Alive(handles []Handle) int

	// Join waits up to timeout total wall-clock time for every handle in
	// handles to terminate. It never blocks on the caller's own handle.
	Join(handles []Handle, timeout time.Duration)

	// NotifyTerminate makes a best-effort attempt to stop every handle:
	// a short cooperative join for threads, a forcible kill for
	// processes.
	NotifyTerminate(handles []Handle)
}

// joinDeadline waits for every handle to finish, sharing a single overall
// deadline across the batch rather than budgeting `timeout` per handle —
// this mirrors the source's accounting, where a slow first handle eats into
// the time left for the rest.
func joinDeadline(handles []Handle, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for _, h := range handles {
		if !h.Alive() {
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		select {
		case <-h.Done():
		case <-time.After(remaining):
		}
	}
}

func countAlive(handles []Handle) int {
	n := 0
	for _, h := range handles {
		if h.Alive() {
			n++
		}
	}
	return n
}

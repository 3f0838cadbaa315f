package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/flowbase/dagctl/pkg/mailbox"
	"github.com/flowbase/dagctl/pkg/task"
)

// ThreadHandler runs task bodies as goroutines. Goroutines are
// daemon-equivalent: NotifyTerminate only waits briefly, it never forcibly
// kills one, so the process can still exit even if a body ignores
// cancellation.
type ThreadHandler struct{}

// NewThreadHandler returns a Handler that runs bodies as goroutines.
func NewThreadHandler() *ThreadHandler { return &ThreadHandler{} }

func (h *ThreadHandler) Kind() string { return "thread" }

type threadHandle struct {
	run     func()
	doneCh  chan struct{}
	started int32
}

func (t *threadHandle) Done() <-chan struct{} { return t.doneCh }

func (t *threadHandle) Alive() bool {
	if atomic.LoadInt32(&t.started) == 0 {
		return false
	}
	select {
	case <-t.doneCh:
		return false
	default:
		return true
	}
}

func (t *threadHandle) Start() {
	atomic.StoreInt32(&t.started, 1)
	go t.run()
}

// Kill is cooperative for threads: there is no safe way to force-stop a
// goroutine, so this is a no-op. Cancellation happens through ctx.
func (t *threadHandle) Kill() {}

func (h *ThreadHandler) Create(ctx context.Context, t *task.Task, mb *mailbox.Mailbox) (Handle, error) {
	if t.Body == nil {
		return nil, ErrNoBody
	}
	handle := &threadHandle{doneCh: make(chan struct{})}
	handle.run = func() {
		defer close(handle.doneCh)
		started := func(ranForReal bool) { mb.PostStarted(t.URI, ranForReal) }
		if err := t.Body(ctx, started); err != nil {
			mb.PostFail(t.URI)
		} else {
			mb.PostDone(t.URI)
		}
	}
	return handle, nil
}

func (h *ThreadHandler) Start(handle Handle) { handle.Start() }

func (h *ThreadHandler) Alive(handles []Handle) int { return countAlive(handles) }

func (h *ThreadHandler) Join(handles []Handle, timeout time.Duration) {
	joinDeadline(handles, timeout)
}

func (h *ThreadHandler) NotifyTerminate(handles []Handle) {
	joinDeadline(handles, time.Second)
}

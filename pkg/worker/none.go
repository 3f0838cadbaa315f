package worker

import (
	"context"
	"time"

	"github.com/flowbase/dagctl/pkg/mailbox"
	"github.com/flowbase/dagctl/pkg/task"
)

// NoneHandler runs a task's Body synchronously inside Start, on the
// caller's own goroutine. It exists so callers that want the scheduler's
// admission/collision machinery without any concurrency can still satisfy
// the Handler interface; pkg/serial bypasses workers altogether.
type NoneHandler struct{}

// NewNoneHandler returns a Handler with no concurrency.
func NewNoneHandler() *NoneHandler { return &NoneHandler{} }

func (h *NoneHandler) Kind() string { return "" }

type noneHandle struct {
	run    func()
	doneCh chan struct{}
	ran    bool
}

func (n *noneHandle) Done() <-chan struct{} { return n.doneCh }
func (n *noneHandle) Alive() bool           { return false }
func (n *noneHandle) Kill()                 {}

func (n *noneHandle) Start() {
	n.run()
	n.ran = true
	close(n.doneCh)
}

func (h *NoneHandler) Create(ctx context.Context, t *task.Task, mb *mailbox.Mailbox) (Handle, error) {
	if t.Body == nil {
		return nil, ErrNoBody
	}
	handle := &noneHandle{doneCh: make(chan struct{})}
	handle.run = func() {
		started := func(ranForReal bool) { mb.PostStarted(t.URI, ranForReal) }
		if err := t.Body(ctx, started); err != nil {
			mb.PostFail(t.URI)
		} else {
			mb.PostDone(t.URI)
		}
	}
	return handle, nil
}

func (h *NoneHandler) Start(handle Handle) { handle.Start() }

func (h *NoneHandler) Alive(handles []Handle) int { return 0 }

func (h *NoneHandler) Join(handles []Handle, timeout time.Duration) {}

func (h *NoneHandler) NotifyTerminate(handles []Handle) {}

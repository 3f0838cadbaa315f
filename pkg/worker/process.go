package worker

import (
	"context"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/flowbase/dagctl/pkg/mailbox"
	"github.com/flowbase/dagctl/pkg/task"
)

// ProcessHandler runs task bodies as subprocesses built by task.Command.
// Unlike threads, processes can be forcibly terminated, so
// NotifyTerminate actually kills anything still alive.
type ProcessHandler struct{}

// NewProcessHandler returns a Handler that runs tasks as subprocesses.
func NewProcessHandler() *ProcessHandler { return &ProcessHandler{} }

func (h *ProcessHandler) Kind() string { return "process" }

type processHandle struct {
	cmd     *exec.Cmd
	doneCh  chan struct{}
	started int32
}

func (p *processHandle) Done() <-chan struct{} { return p.doneCh }

func (p *processHandle) Alive() bool {
	if atomic.LoadInt32(&p.started) == 0 {
		return false
	}
	select {
	case <-p.doneCh:
		return false
	default:
		return true
	}
}

func (p *processHandle) Start() {
	atomic.StoreInt32(&p.started, 1)
	if err := p.cmd.Start(); err != nil {
		close(p.doneCh)
		return
	}
	go func() {
		defer close(p.doneCh)
		_ = p.cmd.Wait()
	}()
}

func (p *processHandle) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

func (h *ProcessHandler) Create(ctx context.Context, t *task.Task, mb *mailbox.Mailbox) (Handle, error) {
	if t.Command == nil {
		return nil, ErrNoCommand
	}
	cmd := t.Command(ctx)
	handle := &processHandle{cmd: cmd, doneCh: make(chan struct{})}

	// A second goroutine watches doneCh to translate the process exit
	// status into the lifecycle message, decoupling message posting from
	// the Start goroutine's internals.
	go func() {
		<-handle.doneCh
		if handle.cmd.ProcessState != nil && handle.cmd.ProcessState.Success() {
			mb.PostDone(t.URI)
		} else {
			mb.PostFail(t.URI)
		}
	}()
	mb.PostStarted(t.URI, true)
	return handle, nil
}

func (h *ProcessHandler) Start(handle Handle) { handle.Start() }

func (h *ProcessHandler) Alive(handles []Handle) int { return countAlive(handles) }

func (h *ProcessHandler) Join(handles []Handle, timeout time.Duration) {
	joinDeadline(handles, timeout)
}

// NotifyTerminate kills any process still alive. This can orphan
// grandchildren the subprocess itself spawned.
func (h *ProcessHandler) NotifyTerminate(handles []Handle) {
	for _, handle := range handles {
		if handle.Alive() {
			handle.Kill()
		}
	}
}

package worker

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/flowbase/dagctl/pkg/mailbox"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
)

func waitDone(t *testing.T, h Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("handle never reported done")
	}
}

func TestThreadHandler_CreateRequiresBody(t *testing.T) {
	h := NewThreadHandler()
	tk := task.New(uri.URI("task://a"))
	_, err := h.Create(context.Background(), tk, mailbox.New())
	if !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
}

func TestThreadHandler_RunsBodyAndPostsDone(t *testing.T) {
	h := NewThreadHandler()
	tk := task.New(uri.URI("task://a"))
	var gotFlag bool
	tk.Body = func(ctx context.Context, started task.Started) error {
		started(true)
		gotFlag = true
		return nil
	}

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if handle.Alive() {
		t.Error("expected a created-but-not-started handle to report not alive")
	}

	h.Start(handle)
	waitDone(t, handle)

	if !gotFlag {
		t.Error("expected the body to run")
	}
	if handle.Alive() {
		t.Error("expected handle to report not alive after completion")
	}

	msgs := drainAll(mb)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages (started, done), got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].Kind != mailbox.Started || !msgs[0].RunFlag {
		t.Errorf("expected first message Started with RunFlag=true, got %+v", msgs[0])
	}
	if msgs[1].Kind != mailbox.Done {
		t.Errorf("expected second message Done, got %+v", msgs[1])
	}
}

func TestThreadHandler_FailingBodyPostsFail(t *testing.T) {
	h := NewThreadHandler()
	tk := task.New(uri.URI("task://a"))
	tk.Body = func(ctx context.Context, started task.Started) error {
		started(true)
		return errors.New("boom")
	}

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Start(handle)
	waitDone(t, handle)

	msgs := drainAll(mb)
	if len(msgs) != 2 || msgs[1].Kind != mailbox.Fail {
		t.Fatalf("expected a Fail message after the body's body, got %+v", msgs)
	}
}

func TestThreadHandler_StartedFalseIsPreserved(t *testing.T) {
	h := NewThreadHandler()
	tk := task.New(uri.URI("task://a"))
	tk.Body = func(ctx context.Context, started task.Started) error {
		started(false)
		return nil
	}

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Start(handle)
	waitDone(t, handle)

	msgs := drainAll(mb)
	if len(msgs) == 0 || msgs[0].RunFlag {
		t.Fatalf("expected the false start to be reported as RunFlag=false, got %+v", msgs)
	}
}

func TestThreadHandler_AliveJoin(t *testing.T) {
	h := NewThreadHandler()
	release := make(chan struct{})
	tk := task.New(uri.URI("task://a"))
	tk.Body = func(ctx context.Context, started task.Started) error {
		started(true)
		<-release
		return nil
	}

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Start(handle)

	handles := []Handle{handle}
	// Give the goroutine a moment to actually start running.
	time.Sleep(10 * time.Millisecond)
	if h.Alive(handles) != 1 {
		t.Fatalf("expected 1 alive handle while blocked, got %d", h.Alive(handles))
	}

	close(release)
	h.Join(handles, time.Second)
	if h.Alive(handles) != 0 {
		t.Fatalf("expected 0 alive handles after Join, got %d", h.Alive(handles))
	}
}

func TestThreadHandler_NotifyTerminateReturnsOnceDone(t *testing.T) {
	h := NewThreadHandler()
	tk := task.New(uri.URI("task://a"))
	tk.Body = func(ctx context.Context, started task.Started) error {
		started(true)
		return nil
	}
	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Start(handle)
	waitDone(t, handle)

	// NotifyTerminate on an already-finished handle must return promptly.
	done := make(chan struct{})
	go func() {
		h.NotifyTerminate([]Handle{handle})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyTerminate blocked on an already-finished handle")
	}
}

func TestNoneHandler_RunsSynchronously(t *testing.T) {
	h := NewNoneHandler()
	tk := task.New(uri.URI("task://a"))
	var ran bool
	tk.Body = func(ctx context.Context, started task.Started) error {
		started(true)
		ran = true
		return nil
	}

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	h.Start(handle)
	if !ran {
		t.Fatal("expected NoneHandler.Start to run the body synchronously")
	}
	select {
	case <-handle.Done():
	default:
		t.Fatal("expected Done() to be closed immediately after a synchronous Start")
	}

	if h.Alive(nil) != 0 {
		t.Error("expected NoneHandler.Alive to always report 0")
	}
}

func TestNoneHandler_CreateRequiresBody(t *testing.T) {
	h := NewNoneHandler()
	tk := task.New(uri.URI("task://a"))
	_, err := h.Create(context.Background(), tk, mailbox.New())
	if !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
}

func TestProcessHandler_CreateRequiresCommand(t *testing.T) {
	h := NewProcessHandler()
	tk := task.New(uri.URI("task://a"))
	_, err := h.Create(context.Background(), tk, mailbox.New())
	if !errors.Is(err, ErrNoCommand) {
		t.Fatalf("expected ErrNoCommand, got %v", err)
	}
}

func TestProcessHandler_SuccessPostsDone(t *testing.T) {
	h := NewProcessHandler()
	tk := task.New(uri.URI("task://a"))
	tk.Command = func(ctx context.Context) *exec.Cmd { return exec.CommandContext(ctx, "true") }

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	started, ok := mb.TryRecv()
	if !ok || started.Kind != mailbox.Started || !started.RunFlag {
		t.Fatalf("expected an immediate Started message, got %+v ok=%v", started, ok)
	}

	h.Start(handle)
	waitDone(t, handle)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !mb.Empty() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	msg, ok := mb.TryRecv()
	if !ok || msg.Kind != mailbox.Done {
		t.Fatalf("expected a Done message for a successful process, got %+v ok=%v", msg, ok)
	}
}

func TestProcessHandler_FailurePostsFail(t *testing.T) {
	h := NewProcessHandler()
	tk := task.New(uri.URI("task://a"))
	tk.Command = func(ctx context.Context) *exec.Cmd { return exec.CommandContext(ctx, "false") }

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	mb.TryRecv() // drain the Started message

	h.Start(handle)
	waitDone(t, handle)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !mb.Empty() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	msg, ok := mb.TryRecv()
	if !ok || msg.Kind != mailbox.Fail {
		t.Fatalf("expected a Fail message for a failing process, got %+v ok=%v", msg, ok)
	}
}

func TestProcessHandler_NotifyTerminateKillsAliveHandles(t *testing.T) {
	h := NewProcessHandler()
	tk := task.New(uri.URI("task://a"))
	tk.Command = func(ctx context.Context) *exec.Cmd { return exec.CommandContext(ctx, "sleep", "10") }

	mb := mailbox.New()
	handle, err := h.Create(context.Background(), tk, mb)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Start(handle)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !handle.Alive() {
		time.Sleep(time.Millisecond)
	}
	if !handle.Alive() {
		t.Fatal("expected the sleep process to be alive before NotifyTerminate")
	}

	h.NotifyTerminate([]Handle{handle})
	waitDone(t, handle)
}

func drainAll(mb *mailbox.Mailbox) []mailbox.Message {
	var out []mailbox.Message
	for {
		msg, ok := mb.TryRecv()
		if !ok {
			return out
		}
		out = append(out, msg)
	}
}

package task

import (
	"context"
	"os/exec"

	"github.com/flowbase/dagctl/pkg/uri"
)

// Status is the lifecycle state of a task. The scheduler moves a task
// Initialized → Ready → Submitted → Done or Fail, or straight from
// Initialized to Done when the task is already satisfied.
type Status string

const (
	Initialized Status = "initialized"
	Ready       Status = "ready"
	Submitted   Status = "submitted"
	Done        Status = "done"
	Fail        Status = "fail"
)

// Terminal reports whether s is one of the two terminal statuses.
func (s Status) Terminal() bool { return s == Done || s == Fail }

// Kind tags a task with the execution substrates it may run under. A task
// that touches shared, non-thread-safe state should declare KindProcessSafe
// only; the scheduler rejects it from a thread-pool workflow with
// TaskTypeError.
type Kind int

const (
	// KindAny may run serially, in a thread, or in a subprocess.
	KindAny Kind = iota
	// KindThreadSafe may run serially or in a thread-pool worker.
	KindThreadSafe
	// KindProcessSafe may run serially or in a process-pool worker only.
	KindProcessSafe
)

// String renders the kind's name, for error messages.
func (k Kind) String() string {
	switch k {
	case KindThreadSafe:
		return "thread-safe"
	case KindProcessSafe:
		return "process-safe"
	default:
		return "any"
	}
}

// CompatibleWith reports whether a task of kind k may run under handlerKind
// ("thread", "process", or "" for serial).
func (k Kind) CompatibleWith(handlerKind string) bool {
	switch handlerKind {
	case "", "serial":
		return true
	case "thread":
		return k == KindAny || k == KindThreadSafe
	case "process":
		return k == KindAny || k == KindProcessSafe
	default:
		return false
	}
}

// Set is an unordered collection of data-object URIs.
type Set map[uri.URI]struct{}

// NewSet builds a Set from the given URIs.
func NewSet(uris ...uri.URI) Set {
	s := make(Set, len(uris))
	for _, u := range uris {
		s[u] = struct{}{}
	}
	return s
}

// Has reports whether u is in the set.
func (s Set) Has(u uri.URI) bool {
	_, ok := s[u]
	return ok
}

// Slice returns the set's members in no particular order.
func (s Set) Slice() []uri.URI {
	out := make([]uri.URI, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	return out
}

// Started is invoked by a Body, at most once, to report upstream that it has
// begun. ranForReal should be true when the body is about to do genuine
// work; a Body that discovers at the last moment that there is nothing to do
// (e.g. a race with another producer of the same output) may call
// started(false) instead, which the scheduler treats as a protocol
// violation rather than a live worker — a task that has nothing to do
// should never have reached Ready in the first place.
type Started func(ranForReal bool)

// Body is the callable unit of work a task performs. It returns an error to
// signal failure; the worker handler wrapping it translates the outcome
// into the done/fail lifecycle message. Body must respect ctx cancellation:
// the scheduler cancels ctx during emergency shutdown.
type Body func(ctx context.Context, started Started) error

// Task is the engine's record for one node of the DAG.
type Task struct {
	URI      uri.URI
	Kind     Kind
	Slots    int
	Inputs   Set
	Outputs  Set
	Mutables Set

	// IsSatisfied returns true when Outputs already reflect Inputs and the
	// task's Body may be skipped entirely. A nil IsSatisfied is always
	// unsatisfied (the task always runs).
	IsSatisfied func() bool

	// Body does the task's actual work. With a nil Body the thread and
	// none handlers' Create return worker.ErrNoBody; the serial executor
	// marks such a task Done without running anything.
	Body Body

	// Command builds the external command for a KindProcessSafe task run
	// under the process-pool worker handler. Threads and serial execution
	// ignore it and call Body directly; a process-pool handler requires it
	// because an arbitrary Go closure cannot cross a process boundary.
	Command func(ctx context.Context) *exec.Cmd

	// Finalize is invoked exactly once per terminal transition, after the
	// status change and before outputs/mutables are released.
	Finalize func(status Status)

	initialStatus Status
}

// New returns a Task with Slots defaulted to 1 and status Initialized.
func New(u uri.URI) *Task {
	return &Task{
		URI:           u,
		Slots:         1,
		Inputs:        Set{},
		Outputs:       Set{},
		Mutables:      Set{},
		initialStatus: Initialized,
	}
}

// WithInitialStatus seeds the task's starting status, e.g. for a task
// already known to be Done from a prior run. See §9 Design Notes: the
// scheduler's admission scan only looks at tasks still Initialized, so a
// task seeded Done here is treated as already complete and never
// re-admitted, matching the source behavior.
func (t *Task) WithInitialStatus(s Status) *Task {
	t.initialStatus = s
	return t
}

// InitialStatus returns the status the task should start a refresh call
// with.
func (t *Task) InitialStatus() Status {
	if t.initialStatus == "" {
		return Initialized
	}
	return t.initialStatus
}

// Satisfied evaluates the task's IsSatisfied predicate, defaulting to false
// (never skip) when none was supplied.
func (t *Task) Satisfied() bool {
	if t.IsSatisfied == nil {
		return false
	}
	return t.IsSatisfied()
}

// RunFinalize invokes Finalize if set, tolerating a nil hook.
func (t *Task) RunFinalize(s Status) {
	if t.Finalize != nil {
		t.Finalize(s)
	}
}

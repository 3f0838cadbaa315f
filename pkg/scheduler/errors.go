package scheduler

import (
	"errors"
	"fmt"
)

// Configuration errors: raised synchronously before any worker starts.

// SlotOverflowError reports a task whose slot cost exceeds maxSlots.
type SlotOverflowError struct {
	URI      string
	Slots    int
	MaxSlots int
}

func (e *SlotOverflowError) Error() string {
	return fmt.Sprintf("task %s requests %d slots, more than the %d allowed", e.URI, e.Slots, e.MaxSlots)
}

// TaskTypeError reports a task incompatible with the chosen worker handler.
type TaskTypeError struct {
	URI        string
	TaskKind   string
	HandlerKind string
}

func (e *TaskTypeError) Error() string {
	return fmt.Sprintf("task %s has kind %q, incompatible with %q worker handler", e.URI, e.TaskKind, e.HandlerKind)
}

// DuplicateURIError reports re-registration of a URI under a distinct
// object identity.
type DuplicateURIError struct {
	URI string
}

func (e *DuplicateURIError) Error() string {
	return fmt.Sprintf("URI %s already registered with a different object", e.URI)
}

// Invariant violations during scheduling: fatal, trigger emergency shutdown.

// OutputCollisionError reports two tasks concurrently claiming the same
// output data object. Never legal, unlike a mutable collision.
type OutputCollisionError struct {
	DataURI   string
	TaskA     string
	TaskB     string
}

func (e *OutputCollisionError) Error() string {
	return fmt.Sprintf("output collision on %s between %s and %s", e.DataURI, e.TaskA, e.TaskB)
}

// ProtocolViolationError reports a task that posted a started/runflag:0
// message despite being pre-satisfied - it should never have run at all.
type ProtocolViolationError struct {
	URI string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("task %s reported starting despite being pre-satisfied", e.URI)
}

// Task body failures: counted during drain, raised at loop boundaries.

// TaskFailureError is the prompt failure raised mid-loop once a failure is
// counted and exitOnFailure (or zero successes so far) demands abort now.
type TaskFailureError struct {
	Failed int
}

func (e *TaskFailureError) Error() string {
	return fmt.Sprintf("counted %d failure(s); aborting the refresh", e.Failed)
}

// LateTaskFailureError is raised after the loop exits normally but at least
// one task failed along the way.
type LateTaskFailureError struct {
	Failed    int
	Succeeded int
}

func (e *LateTaskFailureError) Error() string {
	return fmt.Sprintf("counted a total of %d failure(s) and %d success(es)", e.Failed, e.Succeeded)
}

// ErrNotRegistered is returned by RemoveTask/RemoveObject when the target
// URI is not present in the workflow.
var ErrNotRegistered = errors.New("object not registered in workflow")

// ShutdownError wraps the original cause of an emergency shutdown,
// preserving it for errors.Unwrap/errors.Is/As after the join sweep.
type ShutdownError struct {
	Cause error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("scheduler shut down after unrecoverable error: %v", e.Cause)
}

func (e *ShutdownError) Unwrap() error { return e.Cause }

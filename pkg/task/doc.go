// Package task defines the per-task record consumed by the scheduler and
// serial executor: status, slot cost, input/output/mutable data-object URIs,
// the satisfaction predicate, the callable body, and the completion hook.
//
// Task itself never decides how its body runs — that is the worker
// handler's job (see pkg/worker). Task only describes what needs to run and
// what it touches.
package task

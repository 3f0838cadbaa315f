// Package workflow is the facade callers use to build a DAG out of tasks
// and data objects and drive it to completion. It wires pkg/task records
// into a pkg/graph, picks a pkg/worker.Handler (or pkg/serial, for the
// no-concurrency variant), and delegates execution to pkg/scheduler.
package workflow

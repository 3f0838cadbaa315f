// Package worker abstracts the execution substrate a task body runs on: an
// in-process goroutine (thread pool), an external process (process pool),
// or synchronous in-caller execution (none / serial).
//
// A Handler wraps a task's Body so that on return it posts (uri, "done") or
// (uri, "fail") to the supplied mailbox — callers of Create never post
// those messages themselves. Handle values are opaque and startable once;
// Alive, Join and NotifyTerminate operate on slices of them so the
// scheduler can batch bookkeeping across many outstanding workers.
package worker

// Package scheduler implements the concurrent refresh loop: the engine
// that admits ready tasks, enforces slot and collision constraints, routes
// worker lifecycle messages, and performs orderly shutdown on failure.
//
// Each call to Refresh computes the transitive prereq closure of a target
// set, topologically orders it, and repeatedly scans for admissible tasks,
// dispatches them to a worker.Handler under slot/concurrency caps, drains
// the mailbox.Mailbox for completion messages, and sleeps with exponential
// back-off until every dispatched task reaches a terminal status.
package scheduler

// Package mailbox implements the many-producer, single-consumer message
// channel that carries lifecycle events from workers back to the scheduler.
//
// Producers (worker bodies, via the wrapping in pkg/worker) call Post and
// never block. The scheduler is the sole consumer; it drains the mailbox
// non-blockingly on every tick with TryRecv.
package mailbox

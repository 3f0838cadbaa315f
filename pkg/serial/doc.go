// Package serial implements the non-concurrent executor variant: it walks
// the topological order of a target closure and invokes each task's body
// synchronously in the caller's own goroutine, with no worker handler and
// no message channel involved.
package serial

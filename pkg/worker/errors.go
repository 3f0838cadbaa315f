package worker

import "errors"

var (
	// ErrNoBody is returned by the thread handler when a task has no Body.
	ErrNoBody = errors.New("task has no body to run")
	// ErrNoCommand is returned by the process handler when a task has no
	// Command factory.
	ErrNoCommand = errors.New("process-pool task has no command factory")
)

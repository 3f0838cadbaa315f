package observer

import "errors"

// Sentinel errors for observer registration.
var (
	// ErrInvalidObserver is returned by Register when passed a nil Observer.
	ErrInvalidObserver = errors.New("invalid observer")

	// ErrObserverNotFound is returned by Unregister when o was never
	// registered with the Manager.
	ErrObserverNotFound = errors.New("observer not found")

	// ErrObserverPanic wraps a panic recovered from an observer's OnEvent.
	// Notify never returns it - it is only ever logged - since one
	// misbehaving observer must not affect the others or the run itself.
	ErrObserverPanic = errors.New("observer panic")
)

package config

import "errors"

// Sentinel errors for configuration validation
var (
	ErrInvalidMaxSlots       = errors.New("invalid max slots: must be positive")
	ErrInvalidMaxConcurrency = errors.New("invalid max concurrency: must be positive")
	ErrInvalidUpdateFreq     = errors.New("invalid update frequency: must be non-negative")
	ErrInvalidJoinTimeout    = errors.New("invalid join timeout: must be non-negative")
	ErrInvalidShutdownSweep  = errors.New("invalid shutdown sweep interval: must be positive")
	ErrInvalidMaxSleep       = errors.New("invalid max sleep: must be positive")
	ErrInvalidSleepStep      = errors.New("invalid sleep step: must be positive")
	ErrInvalidSafetyLimit    = errors.New("invalid active-output safety limit: must be positive")
)

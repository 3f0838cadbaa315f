package config

import (
	"time"
)

// Config holds scheduler configuration.
// All tunables are centralized here for easy management and validation.
type Config struct {
	// MaxSlots is the total abstract resource budget available to
	// simultaneously Submitted tasks. Summed task.Slots must never exceed it.
	MaxSlots int
	// MaxConcurrency caps the number of simultaneously alive workers,
	// independent of slot accounting.
	MaxConcurrency int

	// ExitOnFailure aborts the refresh loop as soon as any task fails.
	// When false, already-submitted tasks are allowed to finish before
	// a deferred failure is raised.
	ExitOnFailure bool

	// UpdateFreq is how often the periodic update hook is invoked, if set.
	// Zero disables the hook.
	UpdateFreq time.Duration

	// JoinTimeout bounds how long the scheduler waits for a completed
	// task's worker handle to report terminated after its message arrives.
	JoinTimeout time.Duration
	// ShutdownSweep is the poll interval used while waiting for workers to
	// drain during emergency shutdown.
	ShutdownSweep time.Duration

	// MaxSleep caps the exponential back-off applied between idle ticks.
	MaxSleep time.Duration
	// SleepStep is the amount the back-off grows by on each idle tick.
	SleepStep time.Duration

	// ActiveOutputSafetyLimit bounds the O(n^2) output-collision scan: once
	// the active-output set grows past this, the check is skipped for that
	// tick to keep the scan cost-bounded.
	ActiveOutputSafetyLimit int
}

// Default returns a Config with the source implementation's historical
// defaults: 16 worker slots, 16-way concurrency.
func Default() *Config {
	return &Config{
		MaxSlots:                16,
		MaxConcurrency:          16,
		ExitOnFailure:           true,
		UpdateFreq:              0,
		JoinTimeout:             10 * time.Second,
		ShutdownSweep:           2 * time.Second,
		MaxSleep:                1 * time.Second,
		SleepStep:               100 * time.Millisecond,
		ActiveOutputSafetyLimit: 100,
	}
}

// Serial returns a Config tuned for the single-worker, no-concurrency case:
// maxConcurrency==1 reduces the scheduler to strict topological order.
func Serial() *Config {
	cfg := Default()
	cfg.MaxSlots = 1
	cfg.MaxConcurrency = 1
	return cfg
}

// Testing returns a Config with a tight back-off, suited to fast unit tests.
func Testing() *Config {
	cfg := Default()
	cfg.MaxSleep = 10 * time.Millisecond
	cfg.SleepStep = 2 * time.Millisecond
	cfg.JoinTimeout = 1 * time.Second
	cfg.ShutdownSweep = 50 * time.Millisecond
	return cfg
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.MaxSlots <= 0 {
		return ErrInvalidMaxSlots
	}
	if c.MaxConcurrency <= 0 {
		return ErrInvalidMaxConcurrency
	}
	if c.UpdateFreq < 0 {
		return ErrInvalidUpdateFreq
	}
	if c.JoinTimeout < 0 {
		return ErrInvalidJoinTimeout
	}
	if c.ShutdownSweep <= 0 {
		return ErrInvalidShutdownSweep
	}
	if c.MaxSleep <= 0 {
		return ErrInvalidMaxSleep
	}
	if c.SleepStep <= 0 {
		return ErrInvalidSleepStep
	}
	if c.ActiveOutputSafetyLimit <= 0 {
		return ErrInvalidSafetyLimit
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

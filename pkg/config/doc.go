// Package config provides configuration management for the dagctl scheduler.
//
// # Overview
//
// The config package centralizes the scheduler's tunables - slot and
// concurrency caps, back-off timing, join/shutdown timeouts - in a single
// validated struct.
//
// # Basic Usage
//
//import "github.com/flowbase/dagctl/pkg/config"
//
//cfg := config.Default()
//cfg.MaxConcurrency = 4
//if err := cfg.Validate(); err != nil {
//    // handle invalid config
//}
//
// # Default Configuration
//
//MaxSlots: 16
//MaxConcurrency: 16
//ExitOnFailure: true
//JoinTimeout: 10 seconds
//ShutdownSweep: 2 seconds
//MaxSleep: 1 second
//SleepStep: 100 milliseconds
//ActiveOutputSafetyLimit: 100
//
// # Thread Safety
//
// Configuration objects are safe for concurrent read access. Use Clone
// before mutating a Config that may be shared.
package config

// Package logging provides structured logging capabilities for the
// scheduler.
//
// # Overview
//
// The logging package implements a structured logging system with support
// for multiple output formats, log levels, and contextual fields tied to
// the scheduler's refresh-loop lifecycle.
//
// # Features
//
//   - Structured logging: JSON and text formats
//   - Log levels: DEBUG, INFO, WARN, ERROR
//   - Context propagation: run ID, workflow URI, task URI
//   - Thread-safe: safe for concurrent use
//   - Flexible output: write to any io.Writer
//
// # Basic Usage
//
//	import "github.com/flowbase/dagctl/pkg/logging"
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: os.Stdout,
//	})
//
//	logger.Info("refresh started")
//	logger = logger.WithWorkflowURI("workflow://build").WithRunID(runID)
//	logger.Infof("tick %d", n)
//
// # Output Formats
//
// JSON (default):
//
//	{"time":"2024-01-15T10:30:00Z","level":"INFO","msg":"tick","run_id":"r-1"}
//
// Text (Format: "text"), for interactive use.
//
// # Validation
//
// Config.Validate rejects an unrecognized Level or Format (ErrInvalidLogLevel,
// ErrInvalidLogFormat); New calls it before building the handler.
//
// # Context Integration
//
// WithContext stores a Logger on a context.Context; FromContext retrieves
// it, falling back to a default logger when none is present - useful for
// passing a per-run logger down into task bodies without threading an
// extra parameter through every call.
//
// # Thread Safety
//
// All logger operations are thread-safe and can be used concurrently from
// multiple goroutines without additional synchronization.
package logging

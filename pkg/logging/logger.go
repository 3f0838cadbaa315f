// Package logging provides structured logging with context propagation for the scheduler.
// It uses Go's built-in slog package for high-performance structured logging.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flowbase/dagctl/pkg/task"
)

// contextKey is used for context keys to avoid collisions
type contextKey string

const (
	// ContextKeyLogger is the context key for the logger instance
	ContextKeyLogger contextKey = "logger"
)

// Logger wraps slog.Logger with workflow-specific functionality
type Logger struct {
	logger *slog.Logger
}

// Config holds logging configuration
type Config struct {
	// Level is the minimum log level: "debug", "info", "warn"/"warning", or
	// "error". Empty defaults to "info".
	Level string
	// Format selects the handler: "json" (default) or "text". Any other
	// non-empty value is rejected by Validate.
	Format string
	// Output is where logs are written (default: os.Stdout)
	Output io.Writer
	// IncludeCaller includes source location in logs (default: false)
	IncludeCaller bool
}

// DefaultConfig returns default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Format:        "json",
		Output:        os.Stdout,
		IncludeCaller: false,
	}
}

// Validate reports whether cfg names a recognized level and format, without
// touching Output or IncludeCaller (either is valid in any configuration).
func (c Config) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}

// New creates a logger from cfg, or returns an error if cfg names an
// unrecognized level or format.
func New(cfg Config) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := parseLevel(cfg.Level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return &Logger{logger: slog.New(handler)}, nil
}

// parseLevel converts string level to slog.Level
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext adds the logger to a context
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, l)
}

// FromContext retrieves the logger from context, or a default logger backed
// by os.Stdout if the context carries none.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ContextKeyLogger).(*Logger); ok {
		return logger
	}
	// DefaultConfig always validates, so the error is unreachable here.
	logger, _ := New(DefaultConfig())
	return logger
}

// WithWorkflowURI adds workflow_uri to the logger context
func (l *Logger) WithWorkflowURI(workflowURI string) *Logger {
	return &Logger{
		logger: l.logger.With(slog.String("workflow_uri", workflowURI)),
	}
}

// WithRunID adds run_id to the logger context, identifying one
// refreshTargets call among repeated calls against the same workflow.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		logger: l.logger.With(slog.String("run_id", runID)),
	}
}

// WithTaskURI adds task_uri to the logger context
func (l *Logger) WithTaskURI(taskURI string) *Logger {
	return &Logger{
		logger: l.logger.With(slog.String("task_uri", taskURI)),
	}
}

// WithTaskKind adds task_kind to the logger context
func (l *Logger) WithTaskKind(kind task.Kind) *Logger {
	return &Logger{
		logger: l.logger.With(slog.String("task_kind", kind.String())),
	}
}

// WithField adds a custom field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With(slog.Any(key, value)),
	}
}

// WithFields adds multiple custom fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		logger: l.logger.With(args...),
	}
}

// WithError adds error to the logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger: l.logger.With(slog.Any("error", err)),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.logger.Error(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string) {
	l.logger.Error(msg)
	os.Exit(1)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

// GetSlogLogger returns the underlying slog.Logger for advanced use cases
func (l *Logger) GetSlogLogger() *slog.Logger {
	return l.logger
}

package logging

import "errors"

// Sentinel errors for logging configuration, returned by Config.Validate.
var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

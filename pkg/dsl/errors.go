package dsl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaValidation is returned by Load when the document fails the
// embedded JSON Schema.
type ErrSchemaValidation struct {
	Errors []string
}

func (e *ErrSchemaValidation) Error() string {
	return fmt.Sprintf("workflow definition failed schema validation: %s", strings.Join(e.Errors, "; "))
}

// ErrMissingCommand is returned by Build when a process-safe task declares
// no command. Tasks of other kinds are not checked, whatever the handler.
type ErrMissingCommand struct {
	URI string
}

func (e *ErrMissingCommand) Error() string {
	return fmt.Sprintf("task %s: command is required for a process-safe task", e.URI)
}

// ErrUnknownHandler is returned by Build for a handler value other than "",
// "serial", "thread" or "process". Build does not re-run schema validation,
// so a Definition built in code can carry such a value.
var ErrUnknownHandler = errors.New("unknown handler")

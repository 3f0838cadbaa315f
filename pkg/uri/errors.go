package uri

import "errors"

// Sentinel errors for registry operations.
var (
	ErrDuplicateURI = errors.New("a different object is already registered under this URI")
	ErrNotFound     = errors.New("object not found in registry")
)

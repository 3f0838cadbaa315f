package uri

import (
	"fmt"
	"strings"
)

// URI is an opaque identifier for a task or data object.
type URI string

// Scheme reports the scheme component of the URI ("task", "file", "state",
// "workflow"), or "" if the URI carries none.
func (u URI) Scheme() string {
	s := string(u)
	idx := strings.Index(s, "://")
	if idx < 0 {
		return ""
	}
	return s[:idx]
}

func (u URI) String() string { return string(u) }

const (
	SchemeTask     = "task"
	SchemeFile     = "file"
	SchemeState    = "state"
	SchemeWorkflow = "workflow"
)

// IsTask reports whether the URI names a task.
func (u URI) IsTask() bool { return u.Scheme() == SchemeTask }

// Registry maps every URI participating in a workflow to the object it
// names, and enforces uniqueness.
type Registry struct {
	objects map[URI]interface{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[URI]interface{})}
}

// Register associates obj with u. Registering a distinct object under a URI
// that already names something else is an error; re-registering the exact
// same object is a no-op.
func (r *Registry) Register(u URI, obj interface{}) error {
	if existing, ok := r.objects[u]; ok {
		if existing != obj {
			return fmt.Errorf("%w: %s", ErrDuplicateURI, u)
		}
		return nil
	}
	r.objects[u] = obj
	return nil
}

// Unregister removes u from the registry. It is an error to unregister a URI
// that was never registered.
func (r *Registry) Unregister(u URI) error {
	if _, ok := r.objects[u]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	delete(r.objects, u)
	return nil
}

// Lookup returns the object registered under u, if any.
func (r *Registry) Lookup(u URI) (interface{}, bool) {
	obj, ok := r.objects[u]
	return obj, ok
}

// Has reports whether u is registered.
func (r *Registry) Has(u URI) bool {
	_, ok := r.objects[u]
	return ok
}

// URIs returns every registered URI, in no particular order.
func (r *Registry) URIs() []URI {
	out := make([]URI, 0, len(r.objects))
	for u := range r.objects {
		out = append(out, u)
	}
	return out
}

// Len returns the number of registered URIs.
func (r *Registry) Len() int { return len(r.objects) }

// Package uri provides the identifier registry for workflow objects.
//
// Every task and data object participating in a workflow is named by an
// opaque URI. The scheme of a URI tells you what kind of object it names:
//
//	task://      a unit of work
//	file://      a filesystem artifact
//	state://     an in-memory or external state object
//	workflow://  the workflow itself
//
// URIs are unique within a Registry; registering a second, distinct object
// under a URI already in use is an error.
package uri

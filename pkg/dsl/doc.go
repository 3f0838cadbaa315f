// Package dsl loads a JSON workflow definition document and builds the
// task/graph/workflow types pkg/workflow operates on. A definition names a
// handler substrate ("thread", "process", or "serial") and a list of tasks,
// each declaring its data-object inputs, outputs, mutables, and (for
// process-backed tasks) the shell command that performs the work. Every
// document is validated against an embedded JSON Schema before it is
// unmarshaled, so malformed definitions fail with field-level errors rather
// than a generic unmarshal error.
package dsl

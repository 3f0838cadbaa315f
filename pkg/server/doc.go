// Package server provides an HTTP API for running workflow definitions.
// It enables programmatic access to pkg/dsl, pkg/workflow, and pkg/storage
// with support for:
//   - RESTful API for ad hoc and stored definition execution
//   - Definition persistence (save/load/list/delete) and schema validation
//   - GraphViz DOT rendering of a stored definition's dependency graph
//   - Health check and readiness endpoints
//   - Prometheus metrics endpoint
//   - Request logging
//   - Graceful shutdown
package server

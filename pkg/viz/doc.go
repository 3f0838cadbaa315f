// Package viz renders a workflow's dependency graph as GraphViz DOT source
// or as a shell-script Makefile, for inspection outside the running
// process.
package viz

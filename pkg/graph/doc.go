// Package graph implements the prereq DAG shared by the serial executor and
// the scheduler: it stores "v is a prerequisite of u" edges between URIs and
// computes transitive prereq closures and deterministic topological orders.
//
// An edge u -> v always reads "v must complete before u". For a task node
// this points at its input and mutable data objects; for a data-object node
// it points at the task that produces it. Both tasks and data objects are
// ordinary nodes to the graph — callers filter the sorted output down to
// task URIs when that's what they need.
//
// # Topological sort
//
//	g := graph.New()
//	g.AddEdge(taskB, taskA) // A is a prereq of B
//	order, err := g.TopologicalSort(g.TransitivePrereqs(taskB))
//
// Ties are broken by sorting candidate nodes by URI, so a given graph
// always yields the same order.
package graph

package graph

import (
	"errors"
	"testing"

	"github.com/flowbase/dagctl/pkg/uri"
)

func allOf(us ...uri.URI) map[uri.URI]struct{} {
	m := make(map[uri.URI]struct{}, len(us))
	for _, u := range us {
		m[u] = struct{}{}
	}
	return m
}

func indexOf(order []uri.URI, u uri.URI) int {
	for i, v := range order {
		if v == u {
			return i
		}
	}
	return -1
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	g := New()
	a, b, c := uri.URI("task://a"), uri.URI("task://b"), uri.URI("task://c")
	g.AddEdge(b, a) // a prereq of b
	g.AddEdge(c, b) // b prereq of c

	order, err := g.TopologicalSort(allOf(a, b, c))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(indexOf(order, a) < indexOf(order, b) && indexOf(order, b) < indexOf(order, c)) {
		t.Fatalf("expected order a,b,c got %v", order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	g := New()
	a, b, c, d := uri.URI("task://a"), uri.URI("task://b"), uri.URI("task://c"), uri.URI("task://d")
	g.AddEdge(b, a)
	g.AddEdge(c, a)
	g.AddEdge(d, b)
	g.AddEdge(d, c)

	order, err := g.TopologicalSort(allOf(a, b, c, d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if indexOf(order, a) >= indexOf(order, b) || indexOf(order, a) >= indexOf(order, c) {
		t.Fatalf("a must precede b and c: %v", order)
	}
	if indexOf(order, b) >= indexOf(order, d) || indexOf(order, c) >= indexOf(order, d) {
		t.Fatalf("b and c must precede d: %v", order)
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	g := New()
	root := uri.URI("task://root")
	var leaves []uri.URI
	for _, name := range []string{"z", "y", "x", "w"} {
		leaf := uri.URI("task://" + name)
		leaves = append(leaves, leaf)
		g.AddEdge(root, leaf)
	}
	subset := allOf(append(leaves, root)...)

	first, err := g.TopologicalSort(subset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.TopologicalSort(subset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length mismatch")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic order: %v vs %v", first, second)
		}
	}
	// Leaves have no prereqs among themselves, so they sort lexicographically
	// before root.
	want := []uri.URI{"task://w", "task://x", "task://y", "task://z", "task://root"}
	for i, u := range want {
		if first[i] != u {
			t.Fatalf("position %d: want %s got %s (full: %v)", i, u, first[i], first)
		}
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	g := New()
	a, b := uri.URI("task://a"), uri.URI("task://b")
	g.AddEdge(a, b)
	g.AddEdge(b, a)

	_, err := g.TopologicalSort(allOf(a, b))
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
}

func TestTransitivePrereqs(t *testing.T) {
	g := New()
	a, b, c, d := uri.URI("task://a"), uri.URI("task://b"), uri.URI("task://c"), uri.URI("task://d")
	g.AddEdge(b, a)
	g.AddEdge(c, b)
	g.AddNode(d) // unrelated node

	closure := g.TransitivePrereqs(c)
	for _, want := range []uri.URI{a, b, c} {
		if _, ok := closure[want]; !ok {
			t.Errorf("expected %s in closure", want)
		}
	}
	if _, ok := closure[d]; ok {
		t.Errorf("did not expect unrelated node %s in closure", d)
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := New()
	a, b, c := uri.URI("task://a"), uri.URI("task://b"), uri.URI("task://c")
	g.AddEdge(b, a)
	g.AddEdge(c, b)

	sources := g.Sources()
	if len(sources) != 1 || sources[0] != a {
		t.Fatalf("expected sources [a], got %v", sources)
	}
	sinks := g.Sinks()
	if len(sinks) != 1 || sinks[0] != c {
		t.Fatalf("expected sinks [c], got %v", sinks)
	}
}

func TestRemoveNode(t *testing.T) {
	g := New()
	a, b, c := uri.URI("task://a"), uri.URI("task://b"), uri.URI("task://c")
	g.AddEdge(b, a)
	g.AddEdge(c, b)

	g.RemoveNode(b)

	for _, u := range g.AllNodes() {
		if u == b {
			t.Fatalf("expected b to be removed from nodes")
		}
	}
	if prereqs := g.Prereqs(c); len(prereqs) != 0 {
		t.Fatalf("expected c to lose its prereq edge to b, got %v", prereqs)
	}
	if dependents := g.Dependents(a); len(dependents) != 0 {
		t.Fatalf("expected a to lose its dependent edge from b, got %v", dependents)
	}
}

func TestDetectCycles_Clean(t *testing.T) {
	g := New()
	a, b := uri.URI("task://a"), uri.URI("task://b")
	g.AddEdge(b, a)
	if err := g.DetectCycles(); err != nil {
		t.Fatalf("unexpected cycle error on acyclic graph: %v", err)
	}
}

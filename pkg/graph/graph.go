package graph

import (
	"sort"

	"github.com/flowbase/dagctl/pkg/uri"
)

// Graph represents a prereq DAG over URIs: an edge u -> v means v must
// complete before u.
type Graph struct {
	nodes   map[uri.URI]struct{}
	prereqs map[uri.URI]map[uri.URI]struct{} // node -> its direct prereqs
	depends map[uri.URI]map[uri.URI]struct{} // prereq -> nodes that depend on it
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[uri.URI]struct{}),
		prereqs: make(map[uri.URI]map[uri.URI]struct{}),
		depends: make(map[uri.URI]map[uri.URI]struct{}),
	}
}

// AddNode registers u with no edges, so it appears in AllNodes even if it
// never participates in a prereq relationship.
func (g *Graph) AddNode(u uri.URI) {
	g.nodes[u] = struct{}{}
	if g.prereqs[u] == nil {
		g.prereqs[u] = make(map[uri.URI]struct{})
	}
	if g.depends[u] == nil {
		g.depends[u] = make(map[uri.URI]struct{})
	}
}

// AddEdge records that prereq must complete before u.
func (g *Graph) AddEdge(u, prereq uri.URI) {
	g.AddNode(u)
	g.AddNode(prereq)
	g.prereqs[u][prereq] = struct{}{}
	g.depends[prereq][u] = struct{}{}
}

// RemoveNode deletes u and every edge touching it. It is a no-op if u was
// never registered.
func (g *Graph) RemoveNode(u uri.URI) {
	for p := range g.prereqs[u] {
		delete(g.depends[p], u)
	}
	for d := range g.depends[u] {
		delete(g.prereqs[d], u)
	}
	delete(g.prereqs, u)
	delete(g.depends, u)
	delete(g.nodes, u)
}

// AllNodes returns every registered node, in no particular order.
func (g *Graph) AllNodes() []uri.URI {
	out := make([]uri.URI, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Prereqs returns the direct prereqs of u.
func (g *Graph) Prereqs(u uri.URI) []uri.URI {
	out := make([]uri.URI, 0, len(g.prereqs[u]))
	for p := range g.prereqs[u] {
		out = append(out, p)
	}
	return out
}

// Dependents returns the nodes that directly depend on u.
func (g *Graph) Dependents(u uri.URI) []uri.URI {
	out := make([]uri.URI, 0, len(g.depends[u]))
	for d := range g.depends[u] {
		out = append(out, d)
	}
	return out
}

// Sources returns nodes with no prereqs — nothing needs to finish before
// them.
func (g *Graph) Sources() []uri.URI {
	var out []uri.URI
	for n := range g.nodes {
		if len(g.prereqs[n]) == 0 {
			out = append(out, n)
		}
	}
	sortURIs(out)
	return out
}

// Sinks returns nodes nothing depends on — the terminal targets of the
// graph.
func (g *Graph) Sinks() []uri.URI {
	var out []uri.URI
	for n := range g.nodes {
		if len(g.depends[n]) == 0 {
			out = append(out, n)
		}
	}
	sortURIs(out)
	return out
}

// TransitivePrereqs returns every URI reachable from root by following
// prereq edges, including root itself.
func (g *Graph) TransitivePrereqs(root uri.URI) map[uri.URI]struct{} {
	visited := map[uri.URI]struct{}{root: {}}
	queue := []uri.URI{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for p := range g.prereqs[n] {
			if _, seen := visited[p]; !seen {
				visited[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
	return visited
}

// TopologicalSort orders the induced subgraph over subset using Kahn's
// algorithm: nodes with no prereqs (within subset) come first. Ties are
// broken by sorting candidate URIs lexicographically, so the result is
// deterministic for a given input. If the subgraph contains a cycle, the
// unordered remainder is reported via *CycleError.
func (g *Graph) TopologicalSort(subset map[uri.URI]struct{}) ([]uri.URI, error) {
	inSet := func(u uri.URI) bool { _, ok := subset[u]; return ok }

	inDegree := make(map[uri.URI]int, len(subset))
	for n := range subset {
		count := 0
		for p := range g.prereqs[n] {
			if inSet(p) {
				count++
			}
		}
		inDegree[n] = count
	}

	var ready []uri.URI
	for n, d := range inDegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sortURIs(ready)

	order := make([]uri.URI, 0, len(subset))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var newlyReady []uri.URI
		for d := range g.depends[n] {
			if !inSet(d) {
				continue
			}
			inDegree[d]--
			if inDegree[d] == 0 {
				newlyReady = append(newlyReady, d)
			}
		}
		sortURIs(newlyReady)
		ready = mergeSorted(ready, newlyReady)
	}

	if len(order) != len(subset) {
		remaining := make([]string, 0, len(subset)-len(order))
		done := make(map[uri.URI]struct{}, len(order))
		for _, u := range order {
			done[u] = struct{}{}
		}
		for n := range subset {
			if _, ok := done[n]; !ok {
				remaining = append(remaining, string(n))
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{Remaining: remaining}
	}
	return order, nil
}

// DetectCycles runs TopologicalSort over the whole graph purely to check for
// cycles.
func (g *Graph) DetectCycles() error {
	full := make(map[uri.URI]struct{}, len(g.nodes))
	for n := range g.nodes {
		full[n] = struct{}{}
	}
	_, err := g.TopologicalSort(full)
	return err
}

func sortURIs(s []uri.URI) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// mergeSorted merges two already-sorted URI slices, keeping the queue
// deterministic without re-sorting it from scratch every iteration.
func mergeSorted(a, b []uri.URI) []uri.URI {
	if len(b) == 0 {
		return a
	}
	out := make([]uri.URI, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

package viz

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flowbase/dagctl/pkg/graph"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
)

var shapeByScheme = map[string]string{
	uri.SchemeFile:  "box",
	uri.SchemeState: "box",
	uri.SchemeTask:  "component",
}

var colorByScheme = map[string]string{
	uri.SchemeFile:  "yellow",
	uri.SchemeState: "cyan",
	uri.SchemeTask:  "green",
}

var titleCaser = cases.Title(language.English)

// DotOptions controls Dot's rendering.
type DotOptions struct {
	// Name labels the digraph; defaults to "workflow" when empty.
	Name string
	// ShortNames abbreviates each URI to "Scheme://...basename" (scheme
	// title-cased, e.g. "Task://...fetch") instead of
	// printing it in full, trading precision for a readable graph on large
	// workflows.
	ShortNames bool
}

// Dot renders g's nodes and edges as GraphViz DOT source. Nodes are shaped
// and colored by their URI scheme; prereq edges are drawn solid, shared
// mutable-object relations (each task's Mutables set) are drawn as dashed
// double-headed edges, mirroring how the prereq and hasMutable relations are
// rendered in the graph this package is modeled on.
func Dot(g *graph.Graph, tasks map[uri.URI]*task.Task, opts DotOptions) string {
	name := opts.Name
	if name == "" {
		name = "workflow"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n  rankdir=LR;\n", name)

	nodes := g.AllNodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, u := range nodes {
		scheme := u.Scheme()
		shape, ok := shapeByScheme[scheme]
		if !ok {
			continue
		}
		color := colorByScheme[scheme]
		fmt.Fprintf(&b, "  %q [shape=%s, fillcolor=%s, style=filled, label=%q];\n",
			string(u), shape, color, label(u, opts.ShortNames))
	}

	for _, u := range nodes {
		prereqs := g.Prereqs(u)
		sort.Slice(prereqs, func(i, j int) bool { return prereqs[i] < prereqs[j] })
		for _, p := range prereqs {
			fmt.Fprintf(&b, "  %q -> %q;\n", label(p, opts.ShortNames), label(u, opts.ShortNames))
		}
	}

	mutableEdges := mutableEdgeSet(tasks)
	for _, e := range mutableEdges {
		fmt.Fprintf(&b, "  %q -- %q [arrowhead=both, style=dashed];\n",
			label(e[0], opts.ShortNames), label(e[1], opts.ShortNames))
	}

	b.WriteString("}\n")
	return b.String()
}

// mutableEdgeSet returns one entry per (task, mutable) pair, deduplicated
// and sorted for deterministic output.
func mutableEdgeSet(tasks map[uri.URI]*task.Task) [][2]uri.URI {
	var edges [][2]uri.URI
	for taskURI, t := range tasks {
		for m := range t.Mutables {
			edges = append(edges, [2]uri.URI{taskURI, m})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// label renders u for display. In short mode it drops the full path down to
// the basename and title-cases the scheme, so a large graph reads
// "Task://...fetch" rather than a wall of repeated lowercase scheme prefixes.
func label(u uri.URI, short bool) string {
	if !short {
		return string(u)
	}
	scheme := u.Scheme()
	s := string(u)
	parts := strings.Split(s, "/")
	base := parts[len(parts)-1]
	return titleCaser.String(scheme) + "://..." + base
}

// SchemeLegend returns a human-readable title for each URI scheme this
// package knows how to draw, e.g. for a diagram key, using the same
// title-casing as label's short form.
func SchemeLegend() map[string]string {
	legend := make(map[string]string, len(shapeByScheme))
	for scheme := range shapeByScheme {
		legend[scheme] = titleCaser.String(scheme)
	}
	return legend
}

const makefileTemplate = `{{range .Rules}}{{.Outputs}}:{{.Inputs}}
	{{.Script}}

{{end}}all:{{.AllOutputs}}
`

type makefileRule struct {
	Outputs string
	Inputs  string
	Script  string
}

type makefileData struct {
	Rules      []makefileRule
	AllOutputs string
}

// ErrNotShellBacked is returned by Makefile when a task in the subset has no
// Command, so it cannot be translated into a shell rule.
type ErrNotShellBacked struct {
	URI uri.URI
}

func (e *ErrNotShellBacked) Error() string {
	return fmt.Sprintf("task %s has no shell command, cannot convert workflow to a Makefile", e.URI)
}

// Makefile renders the task subset as a POSIX Makefile: one rule per task,
// with the task's output object paths as targets and input object paths as
// prerequisites. Every task must carry a Command, since an arbitrary Go
// closure cannot be written out as a shell recipe.
func Makefile(order []uri.URI, tasks map[uri.URI]*task.Task, scriptFor func(*task.Task) (string, error)) (string, error) {
	var rules []makefileRule
	var lastOutputs string

	for _, u := range order {
		if !u.IsTask() {
			continue
		}
		t, ok := tasks[u]
		if !ok {
			continue
		}
		if t.Command == nil {
			return "", &ErrNotShellBacked{URI: u}
		}
		script, err := scriptFor(t)
		if err != nil {
			return "", fmt.Errorf("task %s: %w", u, err)
		}

		outputs := joinURIs(t.Outputs.Slice())
		inputs := joinURIs(t.Inputs.Slice())
		rules = append(rules, makefileRule{Outputs: outputs, Inputs: inputs, Script: script})
		lastOutputs = outputs
	}

	tmpl, err := template.New("makefile").Parse(makefileTemplate)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, makefileData{Rules: rules, AllOutputs: lastOutputs}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func joinURIs(uris []uri.URI) string {
	strs := make([]string, len(uris))
	for i, u := range uris {
		strs[i] = string(u)
	}
	sort.Strings(strs)
	return " " + strings.Join(strs, " ")
}

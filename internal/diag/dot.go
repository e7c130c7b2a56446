package diag

import (
	"fmt"
	"strings"

	"rvsdgc/internal/rvsdg"
)

// dotWriter assigns every node and region argument a stable, globally
// unique graphviz identifier across the whole region tree, since nested
// subregions share the dump's single "digraph" namespace.
type dotWriter struct {
	b        strings.Builder
	nextID   int
	nodeIDs  map[*rvsdg.Node]string
	argIDs   map[*rvsdg.Output]string
}

// DumpDOT renders root and its nested subregions as a Graphviz DOT graph,
// one cluster per region (gamma/theta/lambda/phi each get their own
// subregion cluster). Each subregion's cluster is written after its
// parent's cluster closes, so clusters appear side by side rather than
// nested inside one another.
func DumpDOT(root *rvsdg.Region) string {
	w := &dotWriter{
		nodeIDs: make(map[*rvsdg.Node]string),
		argIDs:  make(map[*rvsdg.Output]string),
	}
	w.b.WriteString("digraph rvsdg {\n  rankdir=TB;\n  node [shape=box];\n")
	w.writeRegion(root, 0)
	w.b.WriteString("}\n")
	return w.b.String()
}

func (w *dotWriter) fresh(prefix string) string {
	w.nextID++
	return fmt.Sprintf("%s%d", prefix, w.nextID)
}

func (w *dotWriter) writeRegion(r *rvsdg.Region, depth int) {
	fmt.Fprintf(&w.b, "  subgraph cluster_region_%d {\n    label=\"region %d\";\n", r.ID(), r.ID())
	for i, arg := range r.Arguments() {
		id := w.fresh("arg")
		w.argIDs[arg] = id
		fmt.Fprintf(&w.b, "    %s [label=\"arg[%d]: %s\", shape=ellipse];\n", id, i, arg.Type().String())
	}
	for _, n := range r.Nodes() {
		w.writeNode(n)
	}
	resultSink := w.fresh("results")
	fmt.Fprintf(&w.b, "    %s [label=\"results\", shape=ellipse, peripheries=2];\n", resultSink)
	for i, res := range r.Results() {
		fmt.Fprintf(&w.b, "    %s -> %s [label=\"[%d]\"];\n", w.originID(res.Origin()), resultSink, i)
	}
	w.b.WriteString("  }\n")
	for _, n := range r.Nodes() {
		for _, sub := range n.Subregions() {
			w.writeRegion(sub, depth+1)
		}
	}
}

func (w *dotWriter) writeNode(n *rvsdg.Node) {
	id := w.fresh("n")
	w.nodeIDs[n] = id
	for i, o := range n.Outputs() {
		w.argIDs[o] = fmt.Sprintf("%s_out%d", id, i)
	}
	fmt.Fprintf(&w.b, "    %s [label=\"%s\"];\n", id, escapeLabel(n.Operation().DebugString()))
	for i, in := range n.Inputs() {
		fmt.Fprintf(&w.b, "    %s -> %s [label=\"%d\"];\n", w.originID(in.Origin()), id, i)
	}
}

// originID resolves an Output to its already-assigned graphviz id; region
// arguments and node outputs are both registered before any edge that
// could reference them is written, since writeRegion emits arguments
// before nodes and writeNode registers its own outputs before emitting
// input edges.
func (w *dotWriter) originID(o *rvsdg.Output) string {
	if id, ok := w.argIDs[o]; ok {
		return id
	}
	if o.Node() != nil {
		if id, ok := w.nodeIDs[o.Node()]; ok {
			return id
		}
	}
	return "unknown"
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

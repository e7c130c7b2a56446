// Package diag implements the core's read-only diagnostics: an indented
// ASCII region dump, a Graphviz DOT dump, and colored pass-by-pass change
// summaries for the CLI. It never mutates a graph; persisting or
// rendering these further is left to the caller.
package diag

import (
	"fmt"
	"strings"

	"rvsdgc/internal/rvsdg"
)

// Printer renders an rvsdg.Region tree as indented text.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter returns an empty Printer.
func NewPrinter() *Printer { return &Printer{} }

// DumpRegion renders root and every nested sub-region as a string.
func DumpRegion(root *rvsdg.Region) string {
	p := NewPrinter()
	p.printRegion(root)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.output, format, args...)
	p.output.WriteString("\n")
}

func (p *Printer) printRegion(r *rvsdg.Region) {
	p.writeLine("region %d (args=%d, results=%d)", r.ID(), len(r.Arguments()), len(r.Results()))
	p.indent++
	for _, n := range r.Nodes() {
		p.printNode(n)
	}
	for i, res := range r.Results() {
		p.writeLine("result[%d] <- node%d", i, originNodeID(res.Origin()))
	}
	p.indent--
}

func (p *Printer) printNode(n *rvsdg.Node) {
	operands := make([]string, len(n.Inputs()))
	for i, in := range n.Inputs() {
		operands[i] = fmt.Sprintf("node%d", originNodeID(in.Origin()))
	}
	p.writeLine("node%d: %s(%s) -> %d result(s)", n.ID(), n.Operation().DebugString(), strings.Join(operands, ", "), len(n.Outputs()))
	if n.IsStructural() {
		p.indent++
		for i, sub := range n.Subregions() {
			p.writeLine("alternative %d:", i)
			p.indent++
			p.printRegion(sub)
			p.indent--
		}
		p.indent--
	}
}

// originNodeID returns 0 for a region argument (no owning node) so the
// dump stays readable without a separate "argument" case at every call
// site; argument vs. node-output is already visible from context.
func originNodeID(o *rvsdg.Output) uint64 {
	if o == nil || o.Node() == nil {
		return 0
	}
	return o.Node().ID()
}

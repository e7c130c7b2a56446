package diag

import (
	"fmt"
	"strings"

	"rvsdgc/internal/tac"
)

// DumpCFG renders a tac.CFG as indented textual TAC, the `-S` textual
// output format: one labeled block per line group, one Tac per line,
// indented under its block.
func DumpCFG(cfg *tac.CFG) string {
	var b strings.Builder
	for _, block := range cfg.Blocks {
		fmt.Fprintf(&b, "%s:\n", block.Label)
		for _, t := range block.Tacs {
			b.WriteString("  ")
			b.WriteString(formatTac(t))
			b.WriteString("\n")
		}
		succs := make([]string, len(block.Successors))
		for i, s := range block.Successors {
			succs[i] = s.Label
		}
		if len(succs) > 0 {
			fmt.Fprintf(&b, "  -> %s\n", strings.Join(succs, ", "))
		}
	}
	return b.String()
}

func formatTac(t *tac.Tac) string {
	operands := make([]string, len(t.Operands))
	for i, o := range t.Operands {
		operands[i] = o.Name
	}
	var attrs []string
	for k, v := range t.Attrs {
		attrs = append(attrs, fmt.Sprintf("%s=%v", k, v))
	}
	rhs := fmt.Sprintf("%s(%s)", t.Op, strings.Join(operands, ", "))
	if len(attrs) > 0 {
		rhs += " {" + strings.Join(attrs, ", ") + "}"
	}
	if len(t.Results) == 0 {
		return rhs
	}
	results := make([]string, len(t.Results))
	for i, r := range t.Results {
		results[i] = r.Name
	}
	return strings.Join(results, ", ") + " = " + rhs
}

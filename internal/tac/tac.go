package tac

// PhiOp is the op name of an SsaPhiOperation tac: it must sit at the very
// front of its block's Tacs slice, one operand per predecessor edge in
// block.Predecessors order.
const PhiOp = "ssa.phi"

// AssignOp is a plain copy, the shape SSA destruction lowers a phi operand
// into on its split predecessor edge.
const AssignOp = "assign"

// RetOp marks a function's exit values: a tac-only statement with no
// results, whose operands become the enclosing region's Results in order
// when the block that owns it sits at the top level of the CFG (internal/
// bridge.constructTac turns each operand into a Region.AddResult call).
const RetOp = "ret"

// Tac is one three-address-code statement: Op names the operation (the
// same Kind strings internal/rvsdg/ops registers, e.g. "bits.add",
// "mem.load", plus the tac-only PhiOp/AssignOp), Operands/Results are its
// ordered SSA operand and result variables, and Attrs carries immediate
// (non-variable) data such as a constant's literal value or an
// operation's bit width.
type Tac struct {
	Op       string
	Operands []*Variable
	Results  []*Variable
	Attrs    map[string]any
}

// IsPhi reports whether t is an SsaPhiOperation.
func (t *Tac) IsPhi() bool { return t.Op == PhiOp }

// Attr fetches an immediate attribute, returning ok=false if absent.
func (t *Tac) Attr(key string) (any, bool) {
	if t.Attrs == nil {
		return nil, false
	}
	v, ok := t.Attrs[key]
	return v, ok
}

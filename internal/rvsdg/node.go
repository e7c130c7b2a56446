package rvsdg

// Node is owned by exactly one Region. A SimpleNode holds a SimpleOperation
// and has no sub-regions; a StructuralNode holds a StructuralOperation plus
// one or more sub-regions.
type Node struct {
	id      uint64
	region  *Region
	op      Operation
	inputs  []*Input
	outputs []*Output

	// subregions is non-empty only for structural nodes (gamma/theta/
	// lambda/phi). A SimpleNode always has len(subregions) == 0.
	subregions []*Region
}

// ID is a stable, graph-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Region is the region owning this node.
func (n *Node) Region() *Region { return n.region }

// Operation is this node's operator.
func (n *Node) Operation() Operation { return n.op }

// Inputs are this node's ordered operand positions.
func (n *Node) Inputs() []*Input { return n.inputs }

// Outputs are this node's ordered result positions.
func (n *Node) Outputs() []*Output { return n.outputs }

// IsStructural reports whether this node owns sub-regions.
func (n *Node) IsStructural() bool { return len(n.subregions) > 0 }

// Subregions returns this node's sub-regions in declaration order. Empty
// for simple nodes.
func (n *Node) Subregions() []*Region { return n.subregions }

// Output returns the i'th result output.
func (n *Node) Output(i int) *Output { return n.outputs[i] }

// Input returns the i'th operand input.
func (n *Node) Input(i int) *Input { return n.inputs[i] }

// operands returns the current origins of every input, the shape CSE and
// reduction callers commonly want.
func (n *Node) operands() []*Output {
	ops := make([]*Output, len(n.inputs))
	for i, in := range n.inputs {
		ops[i] = in.origin
	}
	return ops
}

// HasUsers reports whether any of this node's outputs has at least one
// user. Used by dead-node elimination and by RemoveNode's live-user check.
func (n *Node) HasUsers() bool {
	for _, out := range n.outputs {
		if len(out.users) > 0 {
			return true
		}
	}
	return false
}

// IsDead reports whether n has no users on any output and is not
// state-effectful, i.e. it is safe to sweep.
func (n *Node) IsDead() bool {
	if n.HasUsers() {
		return false
	}
	if simple, ok := n.op.(SimpleOperation); ok {
		return !simple.StateEffectful()
	}
	// Structural nodes (gamma/theta/lambda/phi) are conservatively never
	// considered dead here; callers that want to collapse an unused
	// lambda/theta must do so explicitly.
	return false
}

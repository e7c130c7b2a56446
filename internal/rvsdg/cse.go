package rvsdg

// findCSE searches op's existing nodes already present in r whose operands
// equal operands by identity of outputs (not recursive value equality) and
// whose operation compares Equals. The first match is returned so that
// running CSE repeatedly is idempotent.
func (r *Region) findCSE(op Operation, operands []*Output) *Node {
	for _, n := range r.nodes {
		if n.op.Kind() != op.Kind() || !n.op.Equals(op) {
			continue
		}
		if len(n.inputs) != len(operands) {
			continue
		}
		match := true
		for i, in := range n.inputs {
			if in.origin != operands[i] {
				match = false
				break
			}
		}
		if match {
			return n
		}
	}
	return nil
}

package rvsdg

// NewStructuralNode is the generic two-phase constructor every γ/θ/λ/φ
// builder in internal/rvsdg/ops is built on: it validates and wires the
// node's outer operands, allocates op.NSubregions() empty sub-regions, and
// returns the node so the caller can populate each sub-region (adding
// arguments/results with the shape its specific operator requires) before
// calling FinalizeOutputs to fix the node's own result ports.
func (r *Region) NewStructuralNode(op StructuralOperation, operands []*Output) (*Node, error) {
	if err := r.validateOperands(op, operands); err != nil {
		return nil, err
	}
	n := &Node{id: r.graph.nextID(), region: r, op: op}
	ports := op.InputPorts()
	for i, o := range operands {
		in := &Input{id: r.graph.nextID(), typ: ports[i].Type, region: r, node: n, index: i, origin: o}
		o.addUser(in)
		n.inputs = append(n.inputs, in)
	}
	for i := 0; i < op.NSubregions(); i++ {
		n.subregions = append(n.subregions, &Region{id: r.graph.nextID(), graph: r.graph, parent: n})
	}
	r.nodes = append(r.nodes, n)
	r.graph.notifier.publish(Event{Kind: EventNodeCreate, Node: n})
	return n, nil
}

// FinalizeOutputs appends n's result outputs. Called once, after every
// sub-region has been populated, with the result ports computed from
// whatever the sub-regions' results settled on (e.g. a gamma's per-
// alternative exit-variable type).
func (n *Node) FinalizeOutputs(ports []Port) {
	for i, p := range ports {
		out := &Output{id: n.region.graph.nextID(), typ: p.Type, region: n.region, node: n, index: i}
		n.outputs = append(n.outputs, out)
	}
}

package rvsdg

import (
	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdgerr"
)

// Region is an ordered container of nodes with explicit argument inputs and
// result outputs. It is owned by its parent structural node, or by the
// Graph for the root region.
type Region struct {
	id     uint64
	graph  *Graph
	parent *Node // nil for the root region

	arguments []*Output
	results   []*Input
	nodes     []*Node // insertion order; canonical top-down traversal order
}

// ID is a stable, graph-unique identifier.
func (r *Region) ID() uint64 { return r.id }

// Graph is the owning graph.
func (r *Region) Graph() *Graph { return r.graph }

// Parent is the structural node owning this region, or nil for the root.
func (r *Region) Parent() *Node { return r.parent }

// Arguments are the region's ordered argument outputs.
func (r *Region) Arguments() []*Output { return r.arguments }

// Results are the region's ordered result inputs.
func (r *Region) Results() []*Input { return r.results }

// Nodes are the region's contained nodes in insertion order.
func (r *Region) Nodes() []*Node { return r.nodes }

// AddArgument appends a new argument of type t and returns its Output.
func (r *Region) AddArgument(t rtype.Type) *Output {
	out := &Output{id: r.graph.nextID(), typ: t, region: r, node: nil, index: len(r.arguments)}
	r.arguments = append(r.arguments, out)
	return out
}

// RemoveArgument deletes the argument at index, failing if it still has
// users.
func (r *Region) RemoveArgument(index int) error {
	if index < 0 || index >= len(r.arguments) {
		return rvsdgerr.InvariantViolation("remove_argument: index out of range")
	}
	arg := r.arguments[index]
	if len(arg.users) > 0 {
		return rvsdgerr.InvariantViolation("remove_argument: referenced by a live input")
	}
	r.arguments = append(r.arguments[:index], r.arguments[index+1:]...)
	for i := index; i < len(r.arguments); i++ {
		r.arguments[i].index = i
	}
	return nil
}

// AddResult appends a new result reading from origin and returns the Input.
func (r *Region) AddResult(origin *Output) (*Input, error) {
	if !r.inScope(origin) {
		return nil, rvsdgerr.ScopeViolation("add_result: origin not reachable from this region")
	}
	in := &Input{id: r.graph.nextID(), typ: origin.typ, region: r, node: nil, index: len(r.results), origin: origin}
	origin.addUser(in)
	r.results = append(r.results, in)
	return in, nil
}

// RemoveResult deletes the result at index, detaching it from its origin's
// user-set.
func (r *Region) RemoveResult(index int) error {
	if index < 0 || index >= len(r.results) {
		return rvsdgerr.InvariantViolation("remove_result: index out of range")
	}
	res := r.results[index]
	res.origin.removeUser(res)
	r.results = append(r.results[:index], r.results[index+1:]...)
	for i := index; i < len(r.results); i++ {
		r.results[i].index = i
	}
	return nil
}

// inScope reports whether origin is a valid origin for an input created in
// r: an output of a node already in r, or an argument of r itself. Crossing
// region boundaries is forbidden except through arguments/results.
func (r *Region) inScope(origin *Output) bool {
	if origin.region != r {
		return false
	}
	if origin.node == nil {
		return true // region argument of r
	}
	for _, n := range r.nodes {
		if n == origin.node {
			return true
		}
	}
	return false
}

// AddNode validates operand types/arity/scope against op's signature,
// applies the region's operation-class NormalForm (CSE, constant folding,
// reduction), and returns the canonical Output for this insertion: either
// a freshly appended node's first result, or a pre-existing Output when
// CSE/reduction absorbed the request instead of creating a node. Multi-
// result operations remain reachable via the returned Output's Node()
// (out.Node().Output(i)).
func (r *Region) AddNode(op SimpleOperation, operands []*Output) (*Output, error) {
	if err := r.validateOperands(op, operands); err != nil {
		return nil, err
	}
	nf := r.graph.NormalForm(op.Kind())
	if nf.Mutable {
		if nf.ConstantFold {
			if out, ok, err := r.tryConstantFold(op, operands); err != nil {
				return nil, err
			} else if ok {
				return out, nil
			}
		}
		if nf.Reducible {
			if out, ok, err := r.tryReduce(op, operands); err != nil {
				return nil, err
			} else if ok {
				return out, nil
			}
		}
		if nf.CSE {
			if existing := r.findCSE(op, operands); existing != nil {
				return existing.Output(0), nil
			}
		}
	}
	return r.appendNode(op, operands).Output(0), nil
}

func (r *Region) validateOperands(op Operation, operands []*Output) error {
	ports := op.InputPorts()
	if len(ports) != len(operands) {
		return rvsdgerr.ArityMismatch(op.Kind(), len(ports), len(operands))
	}
	for i, o := range operands {
		if !r.inScope(o) {
			return rvsdgerr.ScopeViolation("add_node: operand not reachable from this region")
		}
		if !ports[i].Type.Equal(o.typ) {
			return rvsdgerr.TypeMismatch(op.Kind(), i, ports[i].Type, o.typ)
		}
	}
	return nil
}

func (r *Region) appendNode(op Operation, operands []*Output) *Node {
	n := &Node{id: r.graph.nextID(), region: r, op: op}
	ports := op.InputPorts()
	for i, o := range operands {
		in := &Input{id: r.graph.nextID(), typ: ports[i].Type, region: r, node: n, index: i, origin: o}
		o.addUser(in)
		n.inputs = append(n.inputs, in)
	}
	for i, p := range op.ResultPorts() {
		out := &Output{id: r.graph.nextID(), typ: p.Type, region: r, node: n, index: i}
		n.outputs = append(n.outputs, out)
	}
	r.nodes = append(r.nodes, n)
	r.graph.notifier.publish(Event{Kind: EventNodeCreate, Node: n})
	return n
}

// RemoveNode detaches n's inputs and deletes it, failing if any of its
// outputs still has users. Callers driving dead-node elimination must
// divert users away first.
func (r *Region) RemoveNode(n *Node) error {
	if n.HasUsers() {
		return rvsdgerr.InvariantViolation("remove_node: node has live users")
	}
	idx := -1
	for i, x := range r.nodes {
		if x == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rvsdgerr.InvariantViolation("remove_node: node not owned by this region")
	}
	for _, in := range n.inputs {
		in.origin.removeUser(in)
	}
	for _, sub := range n.subregions {
		sub.destroy()
	}
	r.nodes = append(r.nodes[:idx], r.nodes[idx+1:]...)
	r.graph.notifier.publish(Event{Kind: EventNodeDestroy, Node: n})
	return nil
}

// destroy recursively detaches every node in a region being deleted along
// with its parent structural node. Region arguments/results have no
// external users to unlink (they belong only to this region), so this
// simply walks nodes in reverse to release operand references.
func (r *Region) destroy() {
	for i := len(r.nodes) - 1; i >= 0; i-- {
		n := r.nodes[i]
		for _, in := range n.inputs {
			in.origin.removeUser(in)
		}
		for _, sub := range n.subregions {
			sub.destroy()
		}
	}
	r.nodes = nil
}

// DivertUsers atomically rewrites every user of oldOut to originate from
// newOut instead. Types must match.
func (r *Region) DivertUsers(oldOut, newOut *Output) error {
	if !oldOut.typ.Equal(newOut.typ) {
		return rvsdgerr.TypeMismatch("divert_users", 0, newOut.typ, oldOut.typ)
	}
	users := append([]*Input{}, oldOut.users...)
	for _, in := range users {
		in.setOrigin(newOut)
		r.graph.notifier.publish(Event{Kind: EventInputChange, Node: in.node, Input: in})
	}
	return nil
}

// TopNodes returns the nodes in r whose inputs all originate from region
// arguments (i.e. no operand comes from another node in r). This is the
// set of candidate roots for a top-down traversal's first layer.
func (r *Region) TopNodes() []*Node {
	var top []*Node
	for _, n := range r.nodes {
		isTop := true
		for _, in := range n.inputs {
			if in.origin.node != nil {
				isTop = false
				break
			}
		}
		if isTop {
			top = append(top, n)
		}
	}
	return top
}

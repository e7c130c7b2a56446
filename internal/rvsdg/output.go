package rvsdg

import "rvsdgc/internal/rtype"

// Output is a result-position of a node, or a region argument. It carries a
// type and maintains the (multi-)set of Inputs reading from it; the same
// Output may appear more than once in a node's operand list, so Users is an
// insertion-ordered slice rather than a set.
type Output struct {
	id     uint64
	typ    rtype.Type
	region *Region // the region this output is visible in
	node   *Node   // producing node; nil if this Output is a region argument
	index  int      // position among node.outputs, or among region.arguments
	attr   string
	users  []*Input
}

// ID is a stable, graph-unique identifier used for debug dumps and DOT
// rendering.
func (o *Output) ID() uint64 { return o.id }

// Type is the value type carried by this output.
func (o *Output) Type() rtype.Type { return o.typ }

// Region is the region this output is visible within: the owning region
// for a node result, or the region itself for an argument.
func (o *Output) Region() *Region { return o.region }

// Node returns the producing node, or nil if this Output is a region
// argument.
func (o *Output) Node() *Node { return o.node }

// IsArgument reports whether this Output is a region argument rather than
// a node result.
func (o *Output) IsArgument() bool { return o.node == nil }

// Index is this output's position among its owner's outputs (or the
// region's arguments).
func (o *Output) Index() int { return o.index }

// Users returns the inputs currently reading from this output, in
// insertion order. The returned slice must not be mutated by callers; use
// Region.DivertUsers to rewrite it.
func (o *Output) Users() []*Input {
	return o.users
}

func (o *Output) addUser(in *Input) {
	o.users = append(o.users, in)
}

// removeUser deletes the first occurrence of in from the user list. Inputs
// are compared by identity, so a node with duplicate operands (e.g. add(x,
// x)) only removes the one Input instance being detached.
func (o *Output) removeUser(in *Input) {
	for i, u := range o.users {
		if u == in {
			o.users = append(o.users[:i], o.users[i+1:]...)
			return
		}
	}
}

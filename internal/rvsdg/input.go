package rvsdg

import "rvsdgc/internal/rtype"

// Input is an operand-position of a node, or a region result. It always has
// exactly one origin: the Output it reads from.
type Input struct {
	id     uint64
	typ    rtype.Type
	region *Region // the region this input lives in
	node   *Node   // consuming node; nil if this Input is a region result
	index  int      // position among node.inputs, or among region.results
	origin *Output
}

// ID is a stable, graph-unique identifier.
func (i *Input) ID() uint64 { return i.id }

// Type is the value type this input expects.
func (i *Input) Type() rtype.Type { return i.typ }

// Region is the region this input lives in.
func (i *Input) Region() *Region { return i.region }

// Node returns the consuming node, or nil if this Input is a region result.
func (i *Input) Node() *Node { return i.node }

// IsResult reports whether this Input is a region result rather than a
// node operand.
func (i *Input) IsResult() bool { return i.node == nil }

// Index is this input's position among its owner's inputs (or the
// region's results).
func (i *Input) Index() int { return i.index }

// Origin is the Output this input reads from.
func (i *Input) Origin() *Output { return i.origin }

// setOrigin atomically rewrites this input's origin, maintaining the
// symmetric user-set invariant: the old origin's user-set loses this
// input, the new origin's user-set gains it.
func (i *Input) setOrigin(newOrigin *Output) {
	if i.origin != nil {
		i.origin.removeUser(i)
	}
	i.origin = newOrigin
	newOrigin.addUser(i)
}

package ops

import (
	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdgerr"
)

// Phi binds a set of mutually-recursive lambda definitions: one
// sub-region whose N arguments stand in for each def before it exists
// (usable as the callee of ops.AddCall for recursive/mutual references)
// and whose N results are the actual lambda outputs, in the same order.
// Phi takes no outer operands; nesting a phi directly inside another
// phi's sub-region is rejected (see isInsidePhi). jlm's RVSDG does not
// model mutual recursion across nesting levels, only within one flat
// binding group.
type Phi struct {
	N       int
	FnTypes []rtype.Type
}

func (p *Phi) Kind() string { return "phi" }

func (p *Phi) InputPorts() []rvsdg.Port { return nil }

func (p *Phi) ResultPorts() []rvsdg.Port { return portsFor(p.FnTypes) }

func (p *Phi) NSubregions() int { return 1 }

func (p *Phi) Equals(other rvsdg.Operation) bool {
	op, ok := other.(*Phi)
	if !ok || op.N != p.N || len(op.FnTypes) != len(p.FnTypes) {
		return false
	}
	for i := range p.FnTypes {
		if !p.FnTypes[i].Equal(op.FnTypes[i]) {
			return false
		}
	}
	return true
}

func (p *Phi) DebugString() string { return "phi" }

func (p *Phi) Clone() rvsdg.Operation {
	return &Phi{N: p.N, FnTypes: append([]rtype.Type{}, p.FnTypes...)}
}

// PhiPopulate builds the mutually-recursive definitions. selfRefs[i] is a
// region argument standing in for def i's eventual function value, usable
// as the fn operand to ops.AddCall before def i's lambda node is built.
// defs[i] must be the Fn-typed output of a ops.NewLambda call whose type
// matches fnTypes[i].
type PhiPopulate func(sub *rvsdg.Region, selfRefs []*rvsdg.Output) (defs []*rvsdg.Output, err error)

// NewPhi builds a phi node binding len(fnTypes) mutually-recursive
// definitions.
func NewPhi(r *rvsdg.Region, fnTypes []rtype.Type, populate PhiPopulate) (*rvsdg.Node, error) {
	if isInsidePhi(r) {
		return nil, rvsdgerr.InvariantViolation("phi: nested phi regions are not permitted")
	}
	op := &Phi{N: len(fnTypes), FnTypes: fnTypes}
	n, err := r.NewStructuralNode(op, nil)
	if err != nil {
		return nil, err
	}
	sub := n.Subregions()[0]
	selfRefs := make([]*rvsdg.Output, len(fnTypes))
	for i, t := range fnTypes {
		selfRefs[i] = sub.AddArgument(t)
	}
	defs, err := populate(sub, selfRefs)
	if err != nil {
		return nil, err
	}
	if len(defs) != len(fnTypes) {
		return nil, rvsdgerr.ArityMismatch("phi defs", len(fnTypes), len(defs))
	}
	for i, d := range defs {
		if !d.Type().Equal(fnTypes[i]) {
			return nil, rvsdgerr.TypeMismatch("phi def", i, fnTypes[i], d.Type())
		}
		if _, err := sub.AddResult(d); err != nil {
			return nil, err
		}
	}
	n.FinalizeOutputs(portsFor(fnTypes))
	return n, nil
}

// isInsidePhi reports whether region r is nested, directly or
// transitively, inside any phi node's sub-region.
func isInsidePhi(r *rvsdg.Region) bool {
	cur := r
	for cur.Parent() != nil {
		owner := cur.Parent()
		if _, ok := owner.Operation().(*Phi); ok {
			return true
		}
		cur = owner.Region()
	}
	return false
}

// PhiSelfRef returns the i'th def's self-reference argument Output inside
// n's sub-region.
func PhiSelfRef(n *rvsdg.Node, i int) *rvsdg.Output {
	return n.Subregions()[0].Arguments()[i]
}

// PhiDef returns the i'th def's result Input inside n's sub-region.
func PhiDef(n *rvsdg.Node, i int) *rvsdg.Input {
	return n.Subregions()[0].Results()[i]
}

var _ rvsdg.StructuralOperation = &Phi{}

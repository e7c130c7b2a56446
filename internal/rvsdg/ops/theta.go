package ops

import (
	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdgerr"
)

// Theta is the tail-controlled loop structural operator: one sub-region,
// entered once with the loop-variable operands, whose
// single result list is the N next loop-variable values followed by a
// distinguished bit(1) continue-predicate (true: iterate again).
type Theta struct {
	LoopVarTypes []rtype.Type
}

func (t *Theta) Kind() string { return "theta" }

func (t *Theta) InputPorts() []rvsdg.Port { return portsFor(t.LoopVarTypes) }

func (t *Theta) ResultPorts() []rvsdg.Port { return portsFor(t.LoopVarTypes) }

func (t *Theta) NSubregions() int { return 1 }

func (t *Theta) Equals(other rvsdg.Operation) bool {
	ot, ok := other.(*Theta)
	if !ok || len(ot.LoopVarTypes) != len(t.LoopVarTypes) {
		return false
	}
	for i := range t.LoopVarTypes {
		if !t.LoopVarTypes[i].Equal(ot.LoopVarTypes[i]) {
			return false
		}
	}
	return true
}

func (t *Theta) DebugString() string { return "theta" }

func (t *Theta) Clone() rvsdg.Operation {
	return &Theta{LoopVarTypes: append([]rtype.Type{}, t.LoopVarTypes...)}
}

// ThetaPopulate builds the loop body given its sub-region and the
// per-iteration loop-variable arguments. It must return the next value for
// every loop variable, in the same order, plus the bit(1) continue
// predicate (true continues looping).
type ThetaPopulate func(sub *rvsdg.Region, loopArgs []*rvsdg.Output) (nextValues []*rvsdg.Output, predicate *rvsdg.Output, err error)

// NewTheta builds a theta node over loopVars, calling populate once to
// construct the loop body.
func NewTheta(r *rvsdg.Region, loopVars []*rvsdg.Output, populate ThetaPopulate) (*rvsdg.Node, error) {
	types := make([]rtype.Type, len(loopVars))
	for i, v := range loopVars {
		types[i] = v.Type()
	}
	op := &Theta{LoopVarTypes: types}
	n, err := r.NewStructuralNode(op, loopVars)
	if err != nil {
		return nil, err
	}
	sub := n.Subregions()[0]
	args := make([]*rvsdg.Output, len(loopVars))
	for i, t := range types {
		args[i] = sub.AddArgument(t)
	}
	nextValues, predicate, err := populate(sub, args)
	if err != nil {
		return nil, err
	}
	if len(nextValues) != len(types) {
		return nil, rvsdgerr.ArityMismatch("theta loop vars", len(types), len(nextValues))
	}
	for i, v := range nextValues {
		if !v.Type().Equal(types[i]) {
			return nil, rvsdgerr.TypeMismatch("theta loop var", i, types[i], v.Type())
		}
		if _, err := sub.AddResult(v); err != nil {
			return nil, err
		}
	}
	if !predicate.Type().Equal(rtype.Bool) {
		return nil, rvsdgerr.TypeMismatch("theta predicate", 0, rtype.Bool, predicate.Type())
	}
	if _, err := sub.AddResult(predicate); err != nil {
		return nil, err
	}
	n.FinalizeOutputs(portsFor(types))
	return n, nil
}

// ThetaLoopArg returns the i'th loop variable's per-iteration argument
// Output inside n's sub-region.
func ThetaLoopArg(n *rvsdg.Node, i int) *rvsdg.Output {
	return n.Subregions()[0].Arguments()[i]
}

// ThetaNextValue returns the i'th loop variable's next-iteration result
// Input inside n's sub-region.
func ThetaNextValue(n *rvsdg.Node, i int) *rvsdg.Input {
	return n.Subregions()[0].Results()[i]
}

// ThetaPredicate returns the distinguished continue-predicate result Input,
// always the last result of n's sub-region.
func ThetaPredicate(n *rvsdg.Node) *rvsdg.Input {
	results := n.Subregions()[0].Results()
	return results[len(results)-1]
}

var _ rvsdg.StructuralOperation = &Theta{}

package ops

import (
	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdgerr"
)

// Gamma is the multi-way conditional structural operator: a ctl(n)
// predicate selects one of N sub-regions to evaluate, each
// consuming the same entry-variable arguments and producing the same
// exit-variable shape. N==2 is the ordinary if/then/else.
//
// ResultTypes is filled in by NewGamma once every alternative has been
// populated and its exit-variable types agree; Gamma is therefore used by
// pointer so the Node holding it observes the update.
type Gamma struct {
	NAlternatives int
	EntryTypes    []rtype.Type
	ResultTypes   []rtype.Type
}

func (g *Gamma) Kind() string { return "gamma" }

func (g *Gamma) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, 1+len(g.EntryTypes))
	ports[0] = rvsdg.NewPort(rtype.Ctl{NAlternatives: uint64(g.NAlternatives)})
	for i, t := range g.EntryTypes {
		ports[1+i] = rvsdg.NewPort(t)
	}
	return ports
}

func (g *Gamma) ResultPorts() []rvsdg.Port { return portsFor(g.ResultTypes) }

func (g *Gamma) NSubregions() int { return g.NAlternatives }

func (g *Gamma) Equals(other rvsdg.Operation) bool {
	og, ok := other.(*Gamma)
	if !ok || og.NAlternatives != g.NAlternatives || len(og.EntryTypes) != len(g.EntryTypes) {
		return false
	}
	for i := range g.EntryTypes {
		if !g.EntryTypes[i].Equal(og.EntryTypes[i]) {
			return false
		}
	}
	return true
}

func (g *Gamma) DebugString() string { return "gamma" }

func (g *Gamma) Clone() rvsdg.Operation {
	return &Gamma{
		NAlternatives: g.NAlternatives,
		EntryTypes:    append([]rtype.Type{}, g.EntryTypes...),
		ResultTypes:   append([]rtype.Type{}, g.ResultTypes...),
	}
}

// GammaPopulate builds one alternative's sub-region body. entryArgs holds
// that sub-region's argument Outputs, one per entry variable in the order
// passed to NewGamma. It must return exactly one exit value per result
// variable, with identical types across every alternative.
type GammaPopulate func(alt int, sub *rvsdg.Region, entryArgs []*rvsdg.Output) ([]*rvsdg.Output, error)

// NewGamma builds a gamma node with nalternatives sub-regions, each given
// the same entryVars (via per-alternative arguments) and populated by
// calling populate once per alternative in order.
func NewGamma(r *rvsdg.Region, predicate *rvsdg.Output, entryVars []*rvsdg.Output, nalternatives int, populate GammaPopulate) (*rvsdg.Node, error) {
	predType, ok := predicate.Type().(rtype.Ctl)
	if !ok || int(predType.NAlternatives) != nalternatives {
		return nil, rvsdgerr.ArityMismatch("gamma predicate", nalternatives, int(predType.NAlternatives))
	}
	entryTypes := make([]rtype.Type, len(entryVars))
	for i, v := range entryVars {
		entryTypes[i] = v.Type()
	}
	op := &Gamma{NAlternatives: nalternatives, EntryTypes: entryTypes}
	operands := append([]*rvsdg.Output{predicate}, entryVars...)
	n, err := r.NewStructuralNode(op, operands)
	if err != nil {
		return nil, err
	}

	var resultTypes []rtype.Type
	for alt := 0; alt < nalternatives; alt++ {
		sub := n.Subregions()[alt]
		entryArgs := make([]*rvsdg.Output, len(entryVars))
		for i, t := range entryTypes {
			entryArgs[i] = sub.AddArgument(t)
		}
		exits, err := populate(alt, sub, entryArgs)
		if err != nil {
			return nil, err
		}
		if alt == 0 {
			resultTypes = make([]rtype.Type, len(exits))
			for i, e := range exits {
				resultTypes[i] = e.Type()
			}
		} else if len(exits) != len(resultTypes) {
			return nil, rvsdgerr.ArityMismatch("gamma exit vars", len(resultTypes), len(exits))
		}
		for i, e := range exits {
			if !e.Type().Equal(resultTypes[i]) {
				return nil, rvsdgerr.TypeMismatch("gamma exit var", i, resultTypes[i], e.Type())
			}
			if _, err := sub.AddResult(e); err != nil {
				return nil, err
			}
		}
	}
	op.ResultTypes = resultTypes
	n.FinalizeOutputs(portsFor(resultTypes))
	return n, nil
}

// GammaEntryArgs returns, for a gamma node n, the entryIndex'th entry
// variable's argument Output in each alternative's sub-region in order.
func GammaEntryArgs(n *rvsdg.Node, entryIndex int) []*rvsdg.Output {
	args := make([]*rvsdg.Output, len(n.Subregions()))
	for i, sub := range n.Subregions() {
		args[i] = sub.Arguments()[entryIndex]
	}
	return args
}

// GammaExitResults returns, for a gamma node n, the exitIndex'th result
// variable's result Input in each alternative's sub-region in order.
func GammaExitResults(n *rvsdg.Node, exitIndex int) []*rvsdg.Input {
	ins := make([]*rvsdg.Input, len(n.Subregions()))
	for i, sub := range n.Subregions() {
		ins[i] = sub.Results()[exitIndex]
	}
	return ins
}

var _ rvsdg.StructuralOperation = &Gamma{}

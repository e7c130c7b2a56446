package opt

import (
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

// GammaPullIn clones a simple, non-state-effectful node whose sole use is
// a γ entry input into every alternative that reads it, replacing the
// entry argument's internal uses with the clone. For a simple node N
// whose only use is a γ entry, N is cloned into each branch that reads
// it; this is safe when N has no state side effects.
//
// Eligibility additionally requires every one of N's own operands to
// already be another entry variable of the very same γ. Otherwise N's
// clone would have no way to reach that operand's value from inside a
// branch without itself crossing the region boundary, which this pass
// does not attempt to wire. A constant is the degenerate zero-operand
// case of this same rule; it is handled by ConstantDistribution instead,
// which additionally covers θ's pass-through loop-variable case.
//
// As with ConstantDistribution, the γ's own entry input/argument is left
// in place after cloning rather than removed. rvsdg.Node exposes no way
// to shrink a structural node's operand arity post-construction (see
// distribute.go's scope note).
type GammaPullIn struct{}

func (GammaPullIn) Name() string { return "gamma-pull-in" }
func (GammaPullIn) Description() string {
	return "clones single-use, side-effect-free entry producers into every consuming γ branch"
}

func (GammaPullIn) Apply(root *rvsdg.Region) (bool, error) {
	changed := false
	var walkErr error
	rvsdg.WalkStructural(root, func(r *rvsdg.Region) {
		if walkErr != nil {
			return
		}
		it := r.TopDown()
		for {
			n, ok := it.Next()
			if !ok {
				break
			}
			g, ok := n.Operation().(*ops.Gamma)
			if !ok {
				continue
			}
			for idx := 0; idx < len(g.EntryTypes); idx++ {
				did, err := pullInEntry(r, n, g, idx)
				if err != nil {
					walkErr = err
					return
				}
				changed = changed || did
			}
		}
	})
	return changed, walkErr
}

// pullInEntry attempts to pull the entryIndex'th entry variable's producer
// into every branch that uses it.
func pullInEntry(r *rvsdg.Region, n *rvsdg.Node, g *ops.Gamma, entryIndex int) (bool, error) {
	input := n.Inputs()[1+entryIndex]
	origin := input.Origin()
	producer := origin.Node()
	if producer == nil || producer.Region() != r || producer.IsStructural() {
		return false, nil
	}
	simpleOp, ok := producer.Operation().(rvsdg.SimpleOperation)
	if !ok || simpleOp.StateEffectful() {
		return false, nil
	}
	if len(origin.Users()) != 1 {
		return false, nil // not N's sole use
	}
	operandEntryIdx := make([]int, len(producer.Inputs()))
	for k, pin := range producer.Inputs() {
		found := -1
		for j := 0; j < len(g.EntryTypes); j++ {
			if n.Inputs()[1+j].Origin() == pin.Origin() {
				found = j
				break
			}
		}
		if found < 0 {
			return false, nil // operand not reachable inside a branch
		}
		operandEntryIdx[k] = found
	}

	args := ops.GammaEntryArgs(n, entryIndex)
	changed := false
	for alt, arg := range args {
		if len(arg.Users()) == 0 {
			continue
		}
		sub := n.Subregions()[alt]
		operands := make([]*rvsdg.Output, len(operandEntryIdx))
		for k, j := range operandEntryIdx {
			operands[k] = sub.Arguments()[j]
		}
		clone, err := sub.AddNode(simpleOp, operands)
		if err != nil {
			return changed, err
		}
		if err := sub.DivertUsers(arg, clone); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// GammaPullOut hoists a computation duplicated identically across every γ
// alternative to a single instance in the outer region, dual to
// GammaPullIn: a γ with identical branches reduces to the common
// subgraph. For each exit variable, if every alternative's corresponding
// result traces to a node with the same Operation and whose own operands
// each map to the same entry-variable index in every alternative, the
// computation is reconstructed once outside using the γ's own entry
// values and every downstream user of that exit output is diverted to
// the hoisted value.
//
// The now-redundant exit result inside each branch, and the γ output slot
// itself, are left wired rather than removed. This is the same
// structural-arity limitation noted in distribute.go. A γ whose every
// exit variable is fully pulled out this way has all of its external
// users diverted away from its outputs, but the node itself is not
// deleted: dead-node
// elimination's conservative treatment of structural nodes means
// collapsing a now-redundant γ node is future work.
type GammaPullOut struct{}

func (GammaPullOut) Name() string { return "gamma-pull-out" }
func (GammaPullOut) Description() string {
	return "hoists computations duplicated identically across every γ alternative"
}

func (GammaPullOut) Apply(root *rvsdg.Region) (bool, error) {
	changed := false
	var walkErr error
	rvsdg.WalkStructural(root, func(r *rvsdg.Region) {
		if walkErr != nil {
			return
		}
		it := r.TopDown()
		for {
			n, ok := it.Next()
			if !ok {
				break
			}
			g, ok := n.Operation().(*ops.Gamma)
			if !ok {
				continue
			}
			for exitIdx := 0; exitIdx < len(g.ResultTypes); exitIdx++ {
				did, err := pullOutExit(r, n, g, exitIdx)
				if err != nil {
					walkErr = err
					return
				}
				changed = changed || did
			}
		}
	})
	return changed, walkErr
}

func pullOutExit(r *rvsdg.Region, n *rvsdg.Node, g *ops.Gamma, exitIdx int) (bool, error) {
	results := ops.GammaExitResults(n, exitIdx)
	var first *rvsdg.Node
	for _, res := range results {
		producer := res.Origin().Node()
		if producer == nil || producer.IsStructural() {
			return false, nil
		}
		if first == nil {
			first = producer
			continue
		}
		if !producer.Operation().Equals(first.Operation()) {
			return false, nil
		}
		if len(producer.Inputs()) != len(first.Inputs()) {
			return false, nil
		}
	}
	if first == nil {
		return false, nil
	}
	simpleOp, ok := first.Operation().(rvsdg.SimpleOperation)
	if !ok || simpleOp.StateEffectful() {
		return false, nil
	}

	// Every alternative's producer must read its operands from the same
	// entry-variable index, so the hoisted instance can read the γ's own
	// entry values directly.
	operandEntryIdx := make([]int, len(first.Inputs()))
	for k := range first.Inputs() {
		for alt, res := range results {
			producer := res.Origin().Node()
			sub := n.Subregions()[alt]
			entryIdx := -1
			for j := 0; j < len(g.EntryTypes); j++ {
				if sub.Arguments()[j] == producer.Inputs()[k].Origin() {
					entryIdx = j
					break
				}
			}
			if entryIdx < 0 {
				return false, nil
			}
			if alt == 0 {
				operandEntryIdx[k] = entryIdx
			} else if operandEntryIdx[k] != entryIdx {
				return false, nil
			}
		}
	}

	operands := make([]*rvsdg.Output, len(operandEntryIdx))
	for k, j := range operandEntryIdx {
		operands[k] = n.Inputs()[1+j].Origin()
	}
	hoisted, err := r.AddNode(simpleOp, operands)
	if err != nil {
		return false, err
	}
	if err := r.DivertUsers(n.Output(exitIdx), hoisted); err != nil {
		return false, err
	}
	return true, nil
}

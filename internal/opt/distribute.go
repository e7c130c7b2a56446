package opt

import (
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

// ConstantDistribution pushes a constant simple node down into every
// structural sub-region that consumes it through a γ entry or θ
// loop-variable argument, ported from jlm's distribute_constant
// (jlm/hls/backend/rvsdg2rhls/distribute-constants.cpp): constants are
// cheaper to re-materialize inside a branch/loop body than to wire
// across the region boundary with fork/buffer hardware in the HLS
// target.
//
// Scope note: the original C++ pass goes on to shrink the γ/θ node's own
// outer operand arity once the last internal user of a crossing argument
// is diverted to a local clone, deleting the now-dead argument, result,
// input and output. rvsdg.Region exposes RemoveArgument for a sub-region's
// own argument list, but there is no equivalent for shrinking a *rvsdg.Node
// itself after NewStructuralNode has finalized it (see node.go/region.go:
// only NewStructuralNode/FinalizeOutputs ever populate a structural node's
// port list). This pass therefore clones the constant and diverts every
// internal user of the crossing argument to the clone, recovering the
// pass's real payoff, one fewer cross-region wire feeding the consumer,
// but leaves the now-unused outer operand, argument and result in place
// rather than attempting to remove them.
type ConstantDistribution struct{}

func (ConstantDistribution) Name() string { return "constant-distribution" }
func (ConstantDistribution) Description() string {
	return "clones constants crossing a γ/θ boundary into each consuming sub-region"
}

func (cd ConstantDistribution) Apply(root *rvsdg.Region) (bool, error) {
	changed := false
	for {
		roundChanged := false
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
				co, ok := n.Operation().(ops.Constant)
				if !ok {
					continue
				}
				did, err := distributeConstant(r, n, co)
				if err != nil {
					walkErr = err
					return
				}
				if did {
					roundChanged = true
				}
			}
		})
		if walkErr != nil {
			return changed, walkErr
		}
		if !roundChanged {
			break
		}
		changed = true
	}
	return changed, nil
}

// distributeConstant visits every user of n's output and, for each
// structural crossing it recognizes (γ entry, θ pass-through loop
// variable), clones n into the consuming sub-region(s) and diverts the
// crossing argument's internal users to the clone.
func distributeConstant(r *rvsdg.Region, n *rvsdg.Node, co ops.Constant) (bool, error) {
	changed := false
	out := n.Output(0)
	for _, user := range append([]*rvsdg.Input{}, out.Users()...) {
		owner := user.Node()
		if owner == nil || owner.Region() != r {
			continue
		}
		switch op := owner.Operation().(type) {
		case *ops.Gamma:
			if user.Index() == 0 {
				continue // the predicate itself, not an entry variable
			}
			entryIndex := user.Index() - 1
			did, err := distributeIntoGamma(owner, op, entryIndex, co)
			if err != nil {
				return changed, err
			}
			changed = changed || did
		case *ops.Theta:
			did, err := distributeIntoTheta(owner, user.Index(), co)
			if err != nil {
				return changed, err
			}
			changed = changed || did
		}
	}
	return changed, nil
}

func distributeIntoGamma(node *rvsdg.Node, g *ops.Gamma, entryIndex int, co ops.Constant) (bool, error) {
	changed := false
	args := ops.GammaEntryArgs(node, entryIndex)
	for alt, arg := range args {
		if len(arg.Users()) == 0 {
			continue
		}
		sub := node.Subregions()[alt]
		clone, err := ops.AddConstant(sub, co.Value, co.Typ)
		if err != nil {
			return changed, err
		}
		if err := sub.DivertUsers(arg, clone); err != nil {
			return changed, err
		}
		changed = true
	}
	_ = g
	return changed, nil
}

func distributeIntoTheta(node *rvsdg.Node, loopVarIndex int, co ops.Constant) (bool, error) {
	loopArg := ops.ThetaLoopArg(node, loopVarIndex)
	nextValue := ops.ThetaNextValue(node, loopVarIndex)
	if nextValue.Origin() != loopArg {
		return false, nil // not a pass-through loop variable
	}
	if len(loopArg.Users()) == 0 {
		return false, nil
	}
	sub := node.Subregions()[0]
	clone, err := ops.AddConstant(sub, co.Value, co.Typ)
	if err != nil {
		return false, err
	}
	if err := sub.DivertUsers(loopArg, clone); err != nil {
		return false, err
	}
	return true, nil
}

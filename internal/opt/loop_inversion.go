package opt

import (
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

// LoopInversion rewrites a θ whose body is nothing but a γ(2) deciding
// whether to continue the iteration into a γ(2) ∘ θ form that evaluates
// the same test once before ever entering the loop. Example:
// `θ { if i<N then {i'=i+1; continue} else break }` becomes `outer γ
// checks 0<N; when true, θ body is {i'=i+1; i'<N}`. A loop that would
// never execute no longer pays for entering the θ at all.
//
// internal/bridge's constructLoop already builds this rotated γ(2) ∘ θ
// shape when it converts a front-tested CFG loop, so a θ arriving through
// the bridge never matches this pass's eligibility test; LoopInversion exists for θ
// nodes assembled some other way (direct RVSDG API use, a pass composition
// that reintroduces the un-rotated shape) that still need rotating.
//
// Eligibility is deliberately narrow, matching exactly the shape the spec
// example describes: the θ's sub-region must contain nothing but a single
// γ(2) (plus the ctl.match feeding it and that match's predicate
// producer) whose entry variables are exactly
// the θ's own loop-var arguments, in order, and whose exit variables are
// exactly the θ's own results (the next loop values plus the continue
// predicate); the γ's bit predicate must be produced by one simple,
// non-state-effectful node reading only θ loop-var arguments directly;
// and the "continue" alternative's body must itself contain only simple
// nodes (cloneSimpleRegion does not descend into nested structural
// nodes). A predicate computed through a longer chain, a body with extra
// nodes alongside the γ, or a continue-branch containing its own γ/θ are
// all left untransformed rather than approximated.
type LoopInversion struct{}

func (LoopInversion) Name() string { return "loop-inversion" }
func (LoopInversion) Description() string {
	return "rotates a θ whose body is a continue/break γ into a γ guarding the θ"
}

func (LoopInversion) Apply(root *rvsdg.Region) (bool, error) {
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
			th, ok := n.Operation().(*ops.Theta)
			if !ok {
				continue
			}
			did, err := invertLoop(r, n, th)
			if err != nil {
				walkErr = err
				return
			}
			changed = changed || did
		}
	})
	return changed, walkErr
}

// The ctl.match convention (bit 0 -> alternative 0, bit 1 -> alternative
// 1) makes alternative 1 the "predicate true" path: the continuing
// iteration. Alternative 0 is the eager break/skip path.
const (
	loopInvSkipAlt = 0
	loopInvBodyAlt = 1
)

func invertLoop(r *rvsdg.Region, n *rvsdg.Node, th *ops.Theta) (bool, error) {
	sub := n.Subregions()[0]
	g, ok := soleGammaBody(sub)
	if !ok {
		return false, nil
	}
	gop := g.Operation().(*ops.Gamma)
	if gop.NAlternatives != 2 {
		return false, nil
	}

	nLoopVars := len(th.LoopVarTypes)
	if len(gop.EntryTypes) != nLoopVars || len(gop.ResultTypes) != nLoopVars+1 {
		return false, nil
	}
	for j := 0; j < nLoopVars; j++ {
		if g.Inputs()[1+j].Origin() != sub.Arguments()[j] {
			return false, nil
		}
	}
	results := sub.Results()
	if len(results) != nLoopVars+1 {
		return false, nil
	}
	for j := range results {
		if results[j].Origin() != g.Output(j) {
			return false, nil
		}
	}

	matchNode := g.Inputs()[0].Origin().Node()
	if matchNode == nil {
		return false, nil
	}
	if _, ok := matchNode.Operation().(ops.Match); !ok {
		return false, nil
	}
	predProducer := matchNode.Inputs()[0].Origin().Node()
	if predProducer == nil || predProducer.Region() != sub {
		return false, nil
	}
	simpleOp, ok := predProducer.Operation().(rvsdg.SimpleOperation)
	if !ok || simpleOp.StateEffectful() {
		return false, nil
	}
	operandLoopIdx := make([]int, len(predProducer.Inputs()))
	for k, pin := range predProducer.Inputs() {
		found := -1
		for j := 0; j < nLoopVars; j++ {
			if sub.Arguments()[j] == pin.Origin() {
				found = j
				break
			}
		}
		if found < 0 {
			return false, nil
		}
		operandLoopIdx[k] = found
	}

	bodySub := g.Subregions()[loopInvBodyAlt]

	initOperands := make([]*rvsdg.Output, len(operandLoopIdx))
	entryVars := make([]*rvsdg.Output, nLoopVars)
	for j := 0; j < nLoopVars; j++ {
		entryVars[j] = n.Inputs()[j].Origin()
	}
	for k, j := range operandLoopIdx {
		initOperands[k] = entryVars[j]
	}
	initPred, err := r.AddNode(simpleOp, initOperands)
	if err != nil {
		return false, err
	}
	initCtl, err := ops.AddMatch(r, initPred, 2)
	if err != nil {
		return false, err
	}

	outerGamma, err := ops.NewGamma(r, initCtl, entryVars, 2, func(alt int, gsub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		if alt == loopInvSkipAlt {
			return args, nil
		}
		thetaNode, err := ops.NewTheta(gsub, args, func(tsub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
			bodyResults, err := cloneSimpleRegion(tsub, bodySub, loopArgs)
			if err != nil {
				return nil, nil, err
			}
			nextValues := bodyResults[:nLoopVars]
			predOperands := make([]*rvsdg.Output, len(operandLoopIdx))
			for k, j := range operandLoopIdx {
				predOperands[k] = nextValues[j]
			}
			cont, err := tsub.AddNode(simpleOp, predOperands)
			if err != nil {
				return nil, nil, err
			}
			return nextValues, cont, nil
		})
		if err != nil {
			return nil, err
		}
		return thetaNode.Outputs(), nil
	})
	if err != nil {
		return false, err
	}
	for j := 0; j < nLoopVars; j++ {
		if err := r.DivertUsers(n.Output(j), outerGamma.Output(j)); err != nil {
			return false, err
		}
	}
	return true, nil
}

// soleGammaBody reports whether sub contains exactly one γ node, with
// only ctl.match plumbing and at most one other simple node (the
// predicate producer invertLoop then checks) alongside it.
func soleGammaBody(sub *rvsdg.Region) (*rvsdg.Node, bool) {
	var g *rvsdg.Node
	others := 0
	for _, x := range sub.Nodes() {
		if _, ok := x.Operation().(*ops.Gamma); ok {
			if g != nil {
				return nil, false
			}
			g = x
			continue
		}
		if _, ok := x.Operation().(ops.Match); ok {
			continue
		}
		others++
		if x.IsStructural() || others > 1 {
			return nil, false
		}
	}
	if g == nil {
		return nil, false
	}
	return g, true
}

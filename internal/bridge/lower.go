package bridge

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
	"rvsdgc/internal/rvsdgerr"
	"rvsdgc/internal/tac"
)

// lowerCtx accumulates the fresh tac.Variables Lower mints as it walks an
// rvsdg.Region, keyed by rvsdg.Output identity. Unlike Construct's Env,
// this map never needs per-branch scoping: every alternative's sub-region
// argument is itself a distinct *rvsdg.Output, so two alternatives never
// contend for the same key even though they may bind it to the same
// tac.Variable.
type lowerCtx struct {
	next   int
	outVar map[*rvsdg.Output]*tac.Variable
}

func newLowerCtx() *lowerCtx { return &lowerCtx{outVar: make(map[*rvsdg.Output]*tac.Variable)} }

func (c *lowerCtx) fresh(t rtype.Type) *tac.Variable {
	v := tac.NewVariable(fmt.Sprintf("%%t%d", c.next), t)
	c.next++
	return v
}

func (c *lowerCtx) bind(o *rvsdg.Output, v *tac.Variable) { c.outVar[o] = v }

func (c *lowerCtx) varFor(o *rvsdg.Output) (*tac.Variable, error) {
	v, ok := c.outVar[o]
	if !ok {
		return nil, rvsdgerr.ScopeViolation("lower: output read before it was ever lowered to a variable")
	}
	return v, nil
}

// Lower is the reverse of BuildGraph/Construct: it walks r's nodes in
// order and emits the equivalent tac.CFG, binding r's own arguments to
// paramVars. Lambda and Phi are whole-program constructs (a function
// definition, a mutually-recursive binding group) with no intra-procedural
// CFG counterpart, so encountering one is reported rather than silently
// skipped. Lower only descends through γ (branch) and θ (self-looping
// block).
//
// A theta lowers to a single block containing the loop-carried phis
// followed by the body and its continue-test, looping back to itself or
// falling to an exit block. This is the natural "single-block loop" shape, not
// necessarily the separate "header tests, then branches to body" shape
// Aggregate/Restructure produce from a hand-written CFG. Round-tripping a
// Lower result back through Aggregate therefore is not guaranteed to
// recover the exact original region tree without Restructure's
// latch-merging running first.
func Lower(r *rvsdg.Region, paramVars []*tac.Variable) (*tac.CFG, []*tac.Variable, error) {
	if len(paramVars) != len(r.Arguments()) {
		return nil, nil, rvsdgerr.ArityMismatch("lower: region arguments", len(r.Arguments()), len(paramVars))
	}
	cfg := tac.NewCFG()
	c := newLowerCtx()
	for i, arg := range r.Arguments() {
		c.bind(arg, paramVars[i])
	}
	tail, err := lowerInto(c, cfg, cfg.Entry, r)
	if err != nil {
		return nil, nil, err
	}
	cfg.AddEdge(tail, cfg.Exit)

	resultVars := make([]*tac.Variable, len(r.Results()))
	for i, res := range r.Results() {
		v, err := c.varFor(res.Origin())
		if err != nil {
			return nil, nil, err
		}
		resultVars[i] = v
	}
	return cfg, resultVars, nil
}

func lowerInto(c *lowerCtx, cfg *tac.CFG, block *tac.BasicBlock, region *rvsdg.Region) (*tac.BasicBlock, error) {
	it := region.TopDown()
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		switch op := n.Operation().(type) {
		case *ops.Gamma:
			next, err := lowerGamma(c, cfg, block, n, op)
			if err != nil {
				return nil, err
			}
			block = next
		case *ops.Theta:
			next, err := lowerTheta(c, cfg, block, n, op)
			if err != nil {
				return nil, err
			}
			block = next
		case *ops.Lambda:
			return nil, rvsdgerr.UnsupportedConstruct("lower: lambda has no intra-procedural CFG counterpart")
		case *ops.Phi:
			return nil, rvsdgerr.UnsupportedConstruct("lower: phi has no intra-procedural CFG counterpart")
		case ops.Match:
			// Pure plumbing between a bit predicate and the gamma/theta
			// that reads it; the consumer recovers the original bit value
			// directly rather than by re-reading this node's own tac.
		default:
			if err := lowerSimpleNode(c, block, n); err != nil {
				return nil, err
			}
		}
	}
	return block, nil
}

func lowerSimpleNode(c *lowerCtx, block *tac.BasicBlock, n *rvsdg.Node) error {
	operands := make([]*tac.Variable, len(n.Inputs()))
	for i, in := range n.Inputs() {
		v, err := c.varFor(in.Origin())
		if err != nil {
			return err
		}
		operands[i] = v
	}
	results := make([]*tac.Variable, len(n.Outputs()))
	for i, o := range n.Outputs() {
		results[i] = c.fresh(o.Type())
		c.bind(o, results[i])
	}
	block.Tacs = append(block.Tacs, &tac.Tac{
		Op:       n.Operation().Kind(),
		Operands: operands,
		Results:  results,
		Attrs:    attrsFor(n.Operation()),
	})
	return nil
}

func attrsFor(op rvsdg.Operation) map[string]any {
	switch o := op.(type) {
	case ops.Constant:
		return map[string]any{"value": o.Value}
	case ops.Match:
		return map[string]any{"n": o.N}
	case ops.Load:
		return map[string]any{"size": o.SizeBytes}
	case ops.Store:
		return map[string]any{"size": o.SizeBytes}
	case ops.Buffer:
		return map[string]any{"capacity": o.Capacity, "pass_through": o.PassThrough}
	case ops.Branch:
		return map[string]any{"n": o.N}
	case ops.Fork:
		return map[string]any{"n": o.N}
	}
	return nil
}

// matchOperand resolves a gamma's ctl(n) predicate operand back to the
// bit-typed tac.Variable that fed it, walking through the match node
// AddMatch inserted during construction.
func matchOperand(c *lowerCtx, predOutput *rvsdg.Output) (*tac.Variable, error) {
	if predOutput.Node() != nil {
		if _, ok := predOutput.Node().Operation().(ops.Match); ok {
			return c.varFor(predOutput.Node().Inputs()[0].Origin())
		}
	}
	return c.varFor(predOutput)
}

// trailingAssign appends a no-op self-assignment of v, so that block's last
// tac produces v as its last result. This is the shape Aggregate's
// trailingPredicate expects of a branch/loop predicate producer.
func trailingAssign(block *tac.BasicBlock, v *tac.Variable) {
	block.Tacs = append(block.Tacs, &tac.Tac{Op: tac.AssignOp, Operands: []*tac.Variable{v}, Results: []*tac.Variable{v}})
}

func lowerGamma(c *lowerCtx, cfg *tac.CFG, pred *tac.BasicBlock, n *rvsdg.Node, op *ops.Gamma) (*tac.BasicBlock, error) {
	predVal, err := matchOperand(c, n.Inputs()[0].Origin())
	if err != nil {
		return nil, err
	}
	trailingAssign(pred, predVal)

	armTails := make([]*tac.BasicBlock, op.NAlternatives)
	for alt := 0; alt < op.NAlternatives; alt++ {
		sub := n.Subregions()[alt]
		for i, arg := range sub.Arguments() {
			v, err := c.varFor(n.Inputs()[1+i].Origin())
			if err != nil {
				return nil, err
			}
			c.bind(arg, v)
		}
		armBlock := cfg.NewBlock(fmt.Sprintf("gamma%d.alt%d", n.ID(), alt))
		cfg.AddEdge(pred, armBlock)
		tail, err := lowerInto(c, cfg, armBlock, sub)
		if err != nil {
			return nil, err
		}
		armTails[alt] = tail
	}

	merge := cfg.NewBlock(fmt.Sprintf("gamma%d.merge", n.ID()))
	for _, tail := range armTails {
		cfg.AddEdge(tail, merge)
	}
	for i, out := range n.Outputs() {
		operands := make([]*tac.Variable, op.NAlternatives)
		for alt := 0; alt < op.NAlternatives; alt++ {
			v, err := c.varFor(n.Subregions()[alt].Results()[i].Origin())
			if err != nil {
				return nil, err
			}
			operands[alt] = v
		}
		mergeVar := c.fresh(out.Type())
		merge.Tacs = append(merge.Tacs, &tac.Tac{Op: tac.PhiOp, Operands: operands, Results: []*tac.Variable{mergeVar}})
		c.bind(out, mergeVar)
	}
	return merge, nil
}

func lowerTheta(c *lowerCtx, cfg *tac.CFG, pred *tac.BasicBlock, n *rvsdg.Node, op *ops.Theta) (*tac.BasicBlock, error) {
	header := cfg.NewBlock(fmt.Sprintf("theta%d.header", n.ID()))
	cfg.AddEdge(pred, header)
	sub := n.Subregions()[0]

	loopVars := make([]*tac.Variable, len(op.LoopVarTypes))
	initVars := make([]*tac.Variable, len(op.LoopVarTypes))
	for i, t := range op.LoopVarTypes {
		v, err := c.varFor(n.Inputs()[i].Origin())
		if err != nil {
			return nil, err
		}
		initVars[i] = v
		loopVars[i] = c.fresh(t)
		c.bind(sub.Arguments()[i], loopVars[i])
	}

	bodyTail, err := lowerInto(c, cfg, header, sub)
	if err != nil {
		return nil, err
	}

	results := sub.Results()
	nLoopVars := len(results) - 1
	nextVars := make([]*tac.Variable, nLoopVars)
	for i := 0; i < nLoopVars; i++ {
		v, err := c.varFor(results[i].Origin())
		if err != nil {
			return nil, err
		}
		nextVars[i] = v
	}
	condVar, err := c.varFor(results[nLoopVars].Origin())
	if err != nil {
		return nil, err
	}
	trailingAssign(bodyTail, condVar)

	var phis []*tac.Tac
	for i, v := range loopVars {
		phis = append(phis, &tac.Tac{Op: tac.PhiOp, Operands: []*tac.Variable{initVars[i], nextVars[i]}, Results: []*tac.Variable{v}})
	}
	header.Tacs = append(append([]*tac.Tac{}, phis...), header.Tacs...)

	cfg.AddEdge(bodyTail, header)
	exitBlock := cfg.NewBlock(fmt.Sprintf("theta%d.exit", n.ID()))
	cfg.AddEdge(bodyTail, exitBlock)

	for i, out := range n.Outputs() {
		c.bind(out, nextVars[i])
	}
	return exitBlock, nil
}

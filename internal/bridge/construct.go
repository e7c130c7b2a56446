package bridge

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
	"rvsdgc/internal/rvsdgerr"
	"rvsdgc/internal/tac"
)

// Construct translates an AggRegion tree into nodes of r, an rvsdg.Region
// already belonging to g. env carries the bindings already visible from
// enclosing scopes; Construct extends it in place as it builds.
func Construct(g *rvsdg.Graph, r *rvsdg.Region, region *AggRegion, env *Env) error {
	switch region.Shape {
	case ShapeLeaf:
		return constructBlock(r, env, region.Block)
	case ShapeLinear:
		for _, c := range region.Children {
			if err := Construct(g, r, c, env); err != nil {
				return err
			}
		}
		return nil
	case ShapeBranch:
		return constructBranch(g, r, region, env)
	case ShapeLoop:
		return constructLoop(g, r, region, env)
	default:
		return fmt.Errorf("bridge: unknown region shape %d", region.Shape)
	}
}

// BuildGraph is the top-level entry point: it aggregates cfg and
// constructs a fresh single-region rvsdg.Graph from it. paramVars are the
// CFG's incoming arguments, bound to the graph's own region arguments in
// order.
func BuildGraph(cfg *tac.CFG, paramVars []*tac.Variable) (*rvsdg.Graph, error) {
	region, err := Aggregate(cfg)
	if err != nil {
		return nil, err
	}
	g := rvsdg.NewGraph()
	ops.Configure(g)
	env := newEnv()
	for _, v := range paramVars {
		env.set(v, g.Root().AddArgument(v.Typ))
	}
	if err := Construct(g, g.Root(), region, env); err != nil {
		return nil, err
	}
	return g, nil
}

func constructBlock(r *rvsdg.Region, env *Env, block *tac.BasicBlock) error {
	if block == nil {
		return nil
	}
	for _, t := range block.Tacs {
		outs, err := constructTac(r, env, t)
		if err != nil {
			return fmt.Errorf("bridge: block %q: %w", block.Label, err)
		}
		for i, res := range t.Results {
			if i < len(outs) {
				env.set(res, outs[i])
			}
		}
	}
	return nil
}

// constructHeaderTail replays block.Tacs[skip:], the loop header's
// condition-computing statements that sit after its loop-carried phis.
// Loop rotation (the classic LLVM LoopRotate transform) duplicates this
// code into both the peel test and the theta's tail test; it must be
// side-effect free; a header that stores or calls is rejected.
func constructHeaderTail(r *rvsdg.Region, env *Env, block *tac.BasicBlock, skip int) error {
	for _, t := range block.Tacs[skip:] {
		if t.Op == "mem.store" || t.Op == "call" || t.Op == "hls.local_store" {
			return rvsdgerr.UnsupportedConstruct(fmt.Sprintf("bridge: loop header %q computes its test with a side-effecting op %q; rotation would duplicate it", block.Label, t.Op))
		}
		outs, err := constructTac(r, env, t)
		if err != nil {
			return fmt.Errorf("bridge: loop header %q: %w", block.Label, err)
		}
		for i, res := range t.Results {
			if i < len(outs) {
				env.set(res, outs[i])
			}
		}
	}
	return nil
}

func resolveOperands(env *Env, vars []*tac.Variable) ([]*rvsdg.Output, error) {
	outs := make([]*rvsdg.Output, len(vars))
	for i, v := range vars {
		o, ok := env.get(v)
		if !ok {
			return nil, rvsdgerr.ScopeViolation(fmt.Sprintf("variable %q read before it is defined in this region", v.Name))
		}
		outs[i] = o
	}
	return outs, nil
}

func binaryKindFromOp(op string) (ops.BinaryKind, bool) {
	switch op {
	case "bits.add":
		return ops.Add, true
	case "bits.sub":
		return ops.Sub, true
	case "bits.mul":
		return ops.Mul, true
	case "bits.and":
		return ops.And, true
	case "bits.or":
		return ops.Or, true
	case "bits.xor":
		return ops.Xor, true
	case "bits.eq":
		return ops.Eq, true
	case "bits.ne":
		return ops.Ne, true
	case "bits.lt":
		return ops.Lt, true
	case "bits.le":
		return ops.Le, true
	case "bits.gt":
		return ops.Gt, true
	case "bits.ge":
		return ops.Ge, true
	}
	return "", false
}

func unaryKindFromOp(op string) (ops.UnaryKind, bool) {
	switch op {
	case "bits.neg":
		return ops.Neg, true
	case "bits.not":
		return ops.Not, true
	}
	return "", false
}

// constructTac builds zero or more rvsdg nodes for a single tac, returning
// one rvsdg.Output per declared result.
func constructTac(r *rvsdg.Region, env *Env, t *tac.Tac) ([]*rvsdg.Output, error) {
	if bk, ok := binaryKindFromOp(t.Op); ok {
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) != 2 {
			return nil, rvsdgerr.ArityMismatch(t.Op, 2, len(operands))
		}
		width, ok := t.Operands[0].Typ.(rtype.Bit)
		if !ok {
			return nil, rvsdgerr.TypeMismatch(t.Op, 0, rtype.Bit{}, t.Operands[0].Typ)
		}
		out, err := ops.AddBinary(r, bk, width.Width, operands[0], operands[1])
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil
	}
	if uk, ok := unaryKindFromOp(t.Op); ok {
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) != 1 {
			return nil, rvsdgerr.ArityMismatch(t.Op, 1, len(operands))
		}
		width, ok := t.Operands[0].Typ.(rtype.Bit)
		if !ok {
			return nil, rvsdgerr.TypeMismatch(t.Op, 0, rtype.Bit{}, t.Operands[0].Typ)
		}
		out, err := ops.AddUnary(r, uk, width.Width, operands[0])
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil
	}

	switch t.Op {
	case tac.AssignOp:
		o, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		return o, nil

	case tac.RetOp:
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		for _, o := range operands {
			if _, err := r.AddResult(o); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case "bits.constant":
		v, ok := t.Attr("value")
		if !ok {
			return nil, rvsdgerr.InvariantViolation("bits.constant tac is missing its \"value\" attribute")
		}
		if len(t.Results) == 0 {
			return nil, rvsdgerr.ArityMismatch("bits.constant", 1, 0)
		}
		out, err := ops.AddConstant(r, v.(uint64), t.Results[0].Typ)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "ctl.match":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		n, ok := t.Attr("n")
		if !ok {
			return nil, rvsdgerr.InvariantViolation("ctl.match tac is missing its \"n\" attribute")
		}
		out, err := ops.AddMatch(r, operands[0], n.(uint64))
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "mem.load":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) < 1 || len(t.Results) == 0 {
			return nil, rvsdgerr.ArityMismatch("mem.load", 2, len(operands))
		}
		sizeAttr, ok := t.Attr("size")
		if !ok {
			return nil, rvsdgerr.InvariantViolation("mem.load tac is missing its \"size\" attribute")
		}
		size, ok := sizeAttr.(uint64)
		if !ok {
			return nil, rvsdgerr.InvariantViolation("mem.load tac's \"size\" attribute is not a uint64")
		}
		out, err := ops.AddLoad(r, operands[0], operands[1:], size, t.Results[0].Typ)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "mem.store":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) < 2 {
			return nil, rvsdgerr.ArityMismatch("mem.store", 3, len(operands))
		}
		sizeAttr, ok := t.Attr("size")
		if !ok {
			return nil, rvsdgerr.InvariantViolation("mem.store tac is missing its \"size\" attribute")
		}
		size, ok := sizeAttr.(uint64)
		if !ok {
			return nil, rvsdgerr.InvariantViolation("mem.store tac's \"size\" attribute is not a uint64")
		}
		out, err := ops.AddStore(r, operands[0], operands[1], operands[2:], size)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "mem.state_merge":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		out, err := ops.AddStateMerge(r, operands)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "call":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) < 1 {
			return nil, rvsdgerr.ArityMismatch("call", 1, len(operands))
		}
		resultTypes := make([]rtype.Type, len(t.Results))
		for i, res := range t.Results {
			resultTypes[i] = res.Typ
		}
		out, err := ops.AddCall(r, operands[0], operands[1:], resultTypes)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "hls.buffer":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		cap_, _ := t.Attr("capacity")
		passThrough, _ := t.Attr("pass_through")
		out, err := ops.AddBuffer(r, operands[0], cap_.(uint64), passThrough == true)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "hls.branch":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		n, _ := t.Attr("n")
		out, err := ops.AddBranch(r, operands[0], operands[1], n.(uint64))
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "hls.fork":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		n, _ := t.Attr("n")
		out, err := ops.AddFork(r, operands[0], n.(uint64))
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "hls.local_load":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) < 1 || len(t.Results) == 0 {
			return nil, rvsdgerr.ArityMismatch("hls.local_load", 2, len(operands))
		}
		out, err := ops.AddLocalLoad(r, operands[0], operands[1:], t.Results[0].Typ)
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case "hls.local_store":
		operands, err := resolveOperands(env, t.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) < 2 {
			return nil, rvsdgerr.ArityMismatch("hls.local_store", 3, len(operands))
		}
		out, err := ops.AddLocalStore(r, operands[0], operands[1], operands[2:])
		if err != nil {
			return nil, err
		}
		return []*rvsdg.Output{out}, nil

	case tac.PhiOp:
		return nil, rvsdgerr.UnsupportedConstruct("bridge: an ssa.phi tac reached Construct directly; Aggregate should have folded it into a gamma or theta")

	default:
		return nil, rvsdgerr.UnsupportedConstruct(fmt.Sprintf("bridge: no rvsdg lowering registered for tac op %q", t.Op))
	}
}

// gammaExitPhis returns the leading ssa.phi tacs of block. For a branch's
// merge point these are exactly its exit variables; for a loop's header
// they are exactly its loop-carried variables.
func gammaExitPhis(block *tac.BasicBlock) []*tac.Tac {
	var phis []*tac.Tac
	for _, t := range block.Tacs {
		if !t.IsPhi() {
			break
		}
		phis = append(phis, t)
	}
	return phis
}

func mergedEntryVars(children []*AggRegion) []*tac.Variable {
	var order []*tac.Variable
	seen := make(VarSet)
	for _, c := range children {
		for _, v := range EntryVars(c) {
			if !seen[v] {
				seen[v] = true
				order = append(order, v)
			}
		}
	}
	return order
}

func constructBranch(g *rvsdg.Graph, r *rvsdg.Region, region *AggRegion, env *Env) error {
	predOut, ok := env.get(region.PredicateVar)
	if !ok {
		return rvsdgerr.ScopeViolation(fmt.Sprintf("branch predicate %q is not defined", region.PredicateVar.Name))
	}
	ctlOut, err := ops.AddMatch(r, predOut, uint64(region.NAlternatives))
	if err != nil {
		return err
	}

	entry := mergedEntryVars(region.Children)
	entryOuts, err := resolveOperands(env, entry)
	if err != nil {
		return err
	}
	phis := gammaExitPhis(region.Exit)

	node, err := ops.NewGamma(r, ctlOut, entryOuts, region.NAlternatives, func(alt int, sub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		childEnv := env.child()
		for i, v := range entry {
			childEnv.set(v, args[i])
		}
		if err := Construct(g, sub, region.Children[alt], childEnv); err != nil {
			return nil, err
		}
		exits := make([]*rvsdg.Output, len(phis))
		for i, phi := range phis {
			o, ok := childEnv.get(phi.Operands[alt])
			if !ok {
				return nil, rvsdgerr.ScopeViolation(fmt.Sprintf("alternative %d of branch at %q never defines exit variable %q", alt, region.Exit.Label, phi.Operands[alt].Name))
			}
			exits[i] = o
		}
		return exits, nil
	})
	if err != nil {
		return err
	}
	for i, phi := range phis {
		env.set(phi.Results[0], node.Output(i))
	}
	// These phis are now fully replaced by the gamma's outputs; the merge
	// block's remaining tacs are constructed later as an ordinary leaf.
	region.Exit.Tacs = region.Exit.Tacs[len(phis):]
	return nil
}

func constructLoop(g *rvsdg.Graph, r *rvsdg.Region, region *AggRegion, env *Env) error {
	header := region.Block
	phis := gammaExitPhis(header)
	if len(phis) == 0 {
		return rvsdgerr.InvariantViolation(fmt.Sprintf("loop header %q has no loop-carried phis", header.Label))
	}

	// Evaluate the header's test once against the pre-loop values. This is
	// the "peel" that lets a theta (which always runs its body at least
	// once) stand in for a loop that may run zero times.
	peelEnv := env.child()
	entryVals := make([]*rvsdg.Output, len(phis))
	for i, phi := range phis {
		o, ok := env.get(phi.Operands[0])
		if !ok {
			return rvsdgerr.ScopeViolation(fmt.Sprintf("loop-carried variable %q has no value entering %q", phi.Operands[0].Name, header.Label))
		}
		entryVals[i] = o
		peelEnv.set(phi.Results[0], o)
	}
	// Values the loop reads from outside itself enter the peel gamma and
	// the theta as extra pass-through variables, since a sub-region sees
	// the enclosing scope only through its own arguments.
	invariants := EntryVars(region)
	invVals, err := resolveOperands(env, invariants)
	if err != nil {
		return err
	}
	if err := constructHeaderTail(r, peelEnv, header, len(phis)); err != nil {
		return err
	}
	initialTest, ok := peelEnv.get(region.ContinuePredicateVar)
	if !ok {
		return rvsdgerr.ScopeViolation(fmt.Sprintf("loop header %q test is never defined", header.Label))
	}

	ctlOut, err := ops.AddMatch(r, initialTest, 2)
	if err != nil {
		return err
	}

	node, err := ops.NewGamma(r, ctlOut, append(entryVals, invVals...), 2, func(alt int, sub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		if alt == 0 {
			// Test false on entry: skip the loop, values pass through.
			return args, nil
		}
		thetaNode, err := ops.NewTheta(sub, args, func(thetaSub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
			bodyEnv := env.child()
			for i, phi := range phis {
				bodyEnv.set(phi.Results[0], loopArgs[i])
			}
			for k, v := range invariants {
				bodyEnv.set(v, loopArgs[len(phis)+k])
			}
			if err := Construct(g, thetaSub, region.Children[0], bodyEnv); err != nil {
				return nil, nil, err
			}
			nextValues := make([]*rvsdg.Output, len(phis))
			for i, phi := range phis {
				o, ok := bodyEnv.get(phi.Operands[1])
				if !ok {
					return nil, nil, rvsdgerr.ScopeViolation(fmt.Sprintf("loop-carried variable %q has no value looping back into %q", phi.Operands[1].Name, header.Label))
				}
				nextValues[i] = o
			}
			// The tail test decides whether another iteration runs, so it
			// reads the values carried into that iteration.
			for i, phi := range phis {
				bodyEnv.set(phi.Results[0], nextValues[i])
			}
			if err := constructHeaderTail(thetaSub, bodyEnv, header, len(phis)); err != nil {
				return nil, nil, err
			}
			pred, ok := bodyEnv.get(region.ContinuePredicateVar)
			if !ok {
				return nil, nil, rvsdgerr.ScopeViolation(fmt.Sprintf("loop header %q test is never redefined inside the loop body", header.Label))
			}
			return append(nextValues, loopArgs[len(phis):]...), pred, nil
		})
		if err != nil {
			return nil, err
		}
		return thetaNode.Outputs(), nil
	})
	if err != nil {
		return err
	}
	for i, phi := range phis {
		env.set(phi.Results[0], node.Output(i))
	}
	header.Tacs = nil
	return nil
}

package opt

import (
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdgerr"
)

// cloneSimpleRegion clones every node of src into dst and returns dst-side
// Outputs positionally matching src.Results(), substituting args for src's
// own arguments in order. It is used by LoopInversion to duplicate a
// theta body's straight-line computation into the rotated structure.
//
// src must contain no structural (γ/θ/λ/φ) nodes: cloning one would mean
// recursively cloning its sub-regions too, which none of this package's
// callers currently need, so it is reported as unsupported rather than
// attempted.
func cloneSimpleRegion(dst *rvsdg.Region, src *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
	outMap := make(map[*rvsdg.Output]*rvsdg.Output, len(src.Arguments())+len(src.Nodes()))
	for i, a := range src.Arguments() {
		outMap[a] = args[i]
	}
	it := src.TopDown()
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		if n.IsStructural() {
			return nil, rvsdgerr.UnsupportedConstruct("loop inversion: body contains a nested structural node")
		}
		simpleOp, ok := n.Operation().(rvsdg.SimpleOperation)
		if !ok {
			return nil, rvsdgerr.UnsupportedConstruct("loop inversion: body node is not a simple operation")
		}
		operands := make([]*rvsdg.Output, len(n.Inputs()))
		for i, in := range n.Inputs() {
			mapped, ok := outMap[in.Origin()]
			if !ok {
				return nil, rvsdgerr.ScopeViolation("loop inversion: body operand escapes the cloned region")
			}
			operands[i] = mapped
		}
		cloneOut, err := dst.AddNode(simpleOp, operands)
		if err != nil {
			return nil, err
		}
		outMap[n.Output(0)] = cloneOut
		if len(n.Outputs()) > 1 {
			cloneNode := cloneOut.Node()
			for i := 1; i < len(n.Outputs()); i++ {
				outMap[n.Outputs()[i]] = cloneNode.Output(i)
			}
		}
	}
	results := make([]*rvsdg.Output, len(src.Results()))
	for i, res := range src.Results() {
		mapped, ok := outMap[res.Origin()]
		if !ok {
			return nil, rvsdgerr.ScopeViolation("loop inversion: body result escapes the cloned region")
		}
		results[i] = mapped
	}
	return results, nil
}

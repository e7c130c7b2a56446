package tac

import "fmt"

// DestructSSA eliminates every ssa.phi in cfg by edge splitting: each
// incoming edge of a phi-bearing block is split into a fresh block that
// copies that edge's operand into a shared fresh-variable destination; the
// phi itself is dropped, since every path into the block now defines the
// same destination variable. Ported from jlm::llvm::destruct_ssa,
// jlm/llvm/ir/ssa.cpp: "eliminate_phis" splits every inedge and appends
// an AssignmentOperation to the split block.
func DestructSSA(cfg *CFG) {
	blocks := append([]*BasicBlock{}, cfg.Blocks...)
	for _, block := range blocks {
		var phis []*Tac
		for _, t := range block.Tacs {
			if !t.IsPhi() {
				break
			}
			phis = append(phis, t)
		}
		if len(phis) == 0 {
			continue
		}
		preds := append([]*BasicBlock{}, block.Predecessors...)
		split := make([]*BasicBlock, len(preds))
		for i, pred := range preds {
			split[i] = splitEdge(cfg, pred, block, i)
		}
		for _, phi := range phis {
			for i := range preds {
				split[i].Tacs = append(split[i].Tacs, &Tac{
					Op:       AssignOp,
					Operands: []*Variable{phi.Operands[i]},
					Results:  phi.Results,
				})
			}
		}
		block.Tacs = block.Tacs[len(phis):]
	}
}

// splitEdge inserts a fresh block on the from->to edge, preserving edge
// order on both ends.
func splitEdge(cfg *CFG, from, to *BasicBlock, idx int) *BasicBlock {
	split := cfg.NewBlock(fmt.Sprintf("%s.to.%s.split%d", from.Label, to.Label, idx))
	for i, s := range from.Successors {
		if s == to {
			from.Successors[i] = split
		}
	}
	for i, p := range to.Predecessors {
		if p == from {
			to.Predecessors[i] = split
		}
	}
	split.Predecessors = []*BasicBlock{from}
	split.Successors = []*BasicBlock{to}
	return split
}

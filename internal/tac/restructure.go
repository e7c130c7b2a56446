package tac

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdgerr"
)

// Restructure makes cfg fit the canonical linear/branch/loop shape
// internal/bridge's aggregation step expects: first it converts any
// irreducible region by controlled node duplication, then it collapses
// every natural loop's multiple latches into one, so each loop header has
// exactly one physical back edge. Merging divergent loop *exits* behind a
// single auxiliary-predicate dispatch block is handled separately by
// MergeLoopExits once the loop's body blocks are known (aggregation calls
// it per-loop as it discovers them, rather than this pass guessing loop
// boundaries twice).
func Restructure(cfg *CFG) error {
	const maxDuplicationRounds = 64
	for round := 0; !IsReducible(cfg); round++ {
		if round >= maxDuplicationRounds {
			return rvsdgerr.UnsupportedConstruct("restructure: CFG did not become reducible after bounded node duplication")
		}
		if !duplicateOneIrreducibleEntry(cfg) {
			return rvsdgerr.UnsupportedConstruct("restructure: no duplicable irreducible entry found")
		}
	}
	for _, loop := range FindNaturalLoops(cfg) {
		mergeLatches(cfg, loop)
	}
	return nil
}

// duplicateOneIrreducibleEntry finds a single back edge whose target does
// not dominate its source (the hallmark of irreducibility) and duplicates
// the target block once, for that edge's source: the duplicate inherits
// the original's outgoing edges, and the source is rewired onto its own
// copy instead of sharing the multi-entry node. This is a scoped, single-node version
// of the classical node-splitting transform. Deeply nested multi-way
// irreducibility converges by iterating it (bounded by Restructure's
// maxDuplicationRounds) rather than by a general closed-form splitting
// step.
func duplicateOneIrreducibleEntry(cfg *CFG) bool {
	dt := BuildDomTree(cfg)
	visited := make(map[*BasicBlock]bool)
	onStack := make(map[*BasicBlock]bool)
	var target, culprit *BasicBlock
	var visit func(*BasicBlock) bool
	visit = func(u *BasicBlock) bool {
		visited[u] = true
		onStack[u] = true
		for _, v := range u.Successors {
			if onStack[v] {
				if !dt.Dominates(v, u) {
					target, culprit = v, u
					return true
				}
				continue
			}
			if !visited[v] && visit(v) {
				return true
			}
		}
		onStack[u] = false
		return false
	}
	if !visit(cfg.Entry) {
		return false
	}
	// Duplicate target, attaching culprit's edge to the copy instead.
	dup := cfg.NewBlock(target.Label + ".dup")
	dup.Tacs = cloneTacs(target.Tacs)
	dup.Successors = append([]*BasicBlock{}, target.Successors...)
	for _, s := range dup.Successors {
		s.Predecessors = append(s.Predecessors, dup)
	}
	for i, s := range culprit.Successors {
		if s == target {
			culprit.Successors[i] = dup
		}
	}
	newTargetPreds := target.Predecessors[:0]
	for _, p := range target.Predecessors {
		if p != culprit {
			newTargetPreds = append(newTargetPreds, p)
		}
	}
	target.Predecessors = newTargetPreds
	dup.Predecessors = []*BasicBlock{culprit}
	return true
}

func cloneTacs(tacs []*Tac) []*Tac {
	out := make([]*Tac, len(tacs))
	for i, t := range tacs {
		out[i] = &Tac{Op: t.Op, Operands: append([]*Variable{}, t.Operands...), Results: t.Results, Attrs: t.Attrs}
	}
	return out
}

// mergeLatches collapses a loop with multiple back edges into a header
// down to a single physical latch: a synthetic block every former latch
// jumps to unconditionally, which alone jumps to the header. A loop with
// one latch already is left untouched.
func mergeLatches(cfg *CFG, loop *NaturalLoop) {
	if len(loop.Latches) <= 1 {
		return
	}
	latch := cfg.NewBlock(loop.Header.Label + ".latch")
	for _, old := range loop.Latches {
		for i, s := range old.Successors {
			if s == loop.Header {
				old.Successors[i] = latch
				latch.Predecessors = append(latch.Predecessors, old)
			}
		}
	}
	preds := loop.Header.Predecessors[:0]
	for _, p := range loop.Header.Predecessors {
		isLatch := false
		for _, old := range loop.Latches {
			isLatch = isLatch || p == old
		}
		if !isLatch {
			preds = append(preds, p)
		}
	}
	loop.Header.Predecessors = append(preds, latch)
	latch.Successors = []*BasicBlock{loop.Header}
}

// MergeLoopExits collapses a loop body's divergent exit edges (blocks
// inside body whose successor lies outside it) behind one synthetic
// dispatch block: every exiting block instead assigns a fresh auxiliary
// tag variable recording which original exit target it meant to reach, and
// jumps to the dispatch block, which reads the tag and re-branches. Applied
// once aggregation has identified a loop's body. A loop with a single exit
// target is left untouched.
func MergeLoopExits(cfg *CFG, body map[*BasicBlock]bool, tagType rtype.Type) {
	type exitEdge struct {
		from, to *BasicBlock
		tag      uint64
	}
	targets := make(map[*BasicBlock]uint64)
	var edges []exitEdge
	for b := range body {
		for _, s := range b.Successors {
			if body[s] {
				continue
			}
			tag, ok := targets[s]
			if !ok {
				tag = uint64(len(targets))
				targets[s] = tag
			}
			edges = append(edges, exitEdge{from: b, to: s, tag: tag})
		}
	}
	if len(targets) <= 1 {
		return
	}
	dispatch := cfg.NewBlock("loop.exit.dispatch")
	tagVar := NewVariable("%loop_exit_tag", tagType)
	for _, e := range edges {
		assign := cfg.NewBlock(fmt.Sprintf("%s.exit.tag%d", e.from.Label, e.tag))
		assign.Tacs = append(assign.Tacs, &Tac{
			Op:      "bits.constant",
			Results: []*Variable{tagVar},
			Attrs:   map[string]any{"value": e.tag},
		})
		for i, s := range e.from.Successors {
			if s == e.to {
				e.from.Successors[i] = assign
			}
		}
		for i, p := range e.to.Predecessors {
			if p == e.from {
				e.to.Predecessors[i] = dispatch
			}
		}
		assign.Predecessors = []*BasicBlock{e.from}
		assign.Successors = []*BasicBlock{dispatch}
		dispatch.Predecessors = append(dispatch.Predecessors, assign)
		dispatch.Successors = append(dispatch.Successors, e.to)
	}
	dispatch.Tacs = append(dispatch.Tacs, &Tac{
		Op:       "ctl.match",
		Operands: []*Variable{tagVar},
		Attrs:    map[string]any{"n": uint64(len(targets))},
	})
}

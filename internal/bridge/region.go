// Package bridge implements the aggregation and annotation steps that
// connect a tac.CFG to the rvsdg core: aggregation recovers a tree of
// linear/branch/loop canonical regions from a restructured CFG,
// annotation computes each region's live variable sets, and
// Construct/Lower translate between that tree and an rvsdg.Graph in
// both directions.
package bridge

import (
	"fmt"

	"rvsdgc/internal/tac"
)

// ShapeKind is the canonical region shape.
type ShapeKind int

const (
	// ShapeLeaf wraps a single basic block with no further structure.
	ShapeLeaf ShapeKind = iota
	// ShapeLinear is a sequence of regions executed one after another.
	ShapeLinear
	// ShapeBranch is an N-way conditional: Children holds one region per
	// alternative, all converging at Exit.
	ShapeBranch
	// ShapeLoop is a header-tested loop: Block is the loop header, whose
	// last tac yields ContinuePredicateVar, and Children holds exactly one
	// region, the loop body.
	ShapeLoop
)

// AggRegion is one node of the aggregation tree.
type AggRegion struct {
	Shape    ShapeKind
	Block    *tac.BasicBlock // populated for ShapeLeaf, and for ShapeLoop (the loop header)
	Children []*AggRegion

	// Branch-only:
	PredicateVar  *tac.Variable // the last result of the block just before the branch, selecting an alternative
	NAlternatives int
	// Loop-only:
	ContinuePredicateVar *tac.Variable // the bit(1) value produced by the loop header's last tac
	// Both Branch and Loop:
	Exit *tac.BasicBlock // the merge point / loop-exit successor
}

// Aggregate restructures cfg (if needed) and recovers its canonical region
// tree.
func Aggregate(cfg *tac.CFG) (*AggRegion, error) {
	if err := tac.Restructure(cfg); err != nil {
		return nil, err
	}
	dt := tac.BuildDomTree(cfg)
	pdt := tac.BuildPostDomTree(cfg)
	loops := make(map[*tac.BasicBlock]*tac.NaturalLoop)
	for _, l := range tac.FindNaturalLoops(cfg) {
		loops[l.Header] = l
	}
	return aggregateFrom(cfg.Entry, cfg.Exit, dt, pdt, loops)
}

func aggregateFrom(start, limit *tac.BasicBlock, dt, pdt *tac.DomTree, loops map[*tac.BasicBlock]*tac.NaturalLoop) (*AggRegion, error) {
	var seq []*AggRegion
	cur := start
	for cur != limit {
		if loop, ok := loops[cur]; ok {
			body, exit, err := loopBodyAndExit(cur, loop)
			if err != nil {
				return nil, err
			}
			bodyRegion, err := aggregateFrom(body, cur, dt, pdt, loops)
			if err != nil {
				return nil, err
			}
			pred, err := trailingPredicate(cur)
			if err != nil {
				return nil, err
			}
			seq = append(seq, &AggRegion{
				Shape:                ShapeLoop,
				Block:                cur,
				Children:             []*AggRegion{bodyRegion},
				ContinuePredicateVar: pred,
				Exit:                 exit,
			})
			cur = exit
			continue
		}
		if len(cur.Successors) >= 2 {
			merge := pdt.IDom(cur)
			if merge == nil {
				return nil, fmt.Errorf("bridge: branch at %q has no common post-dominator", cur.Label)
			}
			pred, err := trailingPredicate(cur)
			if err != nil {
				return nil, err
			}
			children := make([]*AggRegion, len(cur.Successors))
			for i, s := range cur.Successors {
				child, err := aggregateFrom(s, merge, dt, pdt, loops)
				if err != nil {
					return nil, err
				}
				children[i] = child
			}
			seq = append(seq, &AggRegion{Shape: ShapeLeaf, Block: cur})
			seq = append(seq, &AggRegion{
				Shape:         ShapeBranch,
				Children:      children,
				PredicateVar:  pred,
				NAlternatives: len(cur.Successors),
				Exit:          merge,
			})
			cur = merge
			continue
		}
		seq = append(seq, &AggRegion{Shape: ShapeLeaf, Block: cur})
		if len(cur.Successors) == 0 {
			break
		}
		cur = cur.Successors[0]
	}
	if len(seq) == 1 {
		return seq[0], nil
	}
	return &AggRegion{Shape: ShapeLinear, Children: seq}, nil
}

// loopBodyAndExit requires the canonical "header tests and branches to
// body-or-exit" shape Restructure produces for a single-latch loop: one
// header successor stays inside the loop body, the other leaves it.
func loopBodyAndExit(header *tac.BasicBlock, loop *tac.NaturalLoop) (body, exit *tac.BasicBlock, err error) {
	for _, s := range header.Successors {
		if s != header && loop.Body[s] {
			body = s
		} else if !loop.Body[s] {
			exit = s
		}
	}
	if body == nil || exit == nil {
		return nil, nil, fmt.Errorf("bridge: loop header %q must branch to exactly one in-body and one exit successor", header.Label)
	}
	return body, exit, nil
}

// trailingPredicate returns the variable the last tac of block produces,
// the value a gamma/theta builder reads to make its branch/continue
// decision.
func trailingPredicate(block *tac.BasicBlock) (*tac.Variable, error) {
	if len(block.Tacs) == 0 || len(block.Tacs[len(block.Tacs)-1].Results) == 0 {
		return nil, fmt.Errorf("bridge: block %q ends without a predicate-producing tac", block.Label)
	}
	last := block.Tacs[len(block.Tacs)-1]
	return last.Results[len(last.Results)-1], nil
}

package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
)

func TestPruneEmptyBlocks_AbsorbsDestructSplitBlocks(t *testing.T) {
	cfg, left, right, join := buildDiamond(t)
	xLeft := NewVariable("%x1", rtype.Bit{Width: 32})
	xRight := NewVariable("%x2", rtype.Bit{Width: 32})
	xJoin := NewVariable("%x3", rtype.Bit{Width: 32})
	// join keeps its ret after the phi is destructed, so it is not itself
	// an empty forwarding block.
	join.Tacs = []*Tac{
		{Op: PhiOp, Operands: []*Variable{xLeft, xRight}, Results: []*Variable{xJoin}},
		{Op: RetOp, Operands: []*Variable{xJoin}},
	}

	DestructSSA(cfg)
	preBlocks := len(cfg.Blocks)
	PruneEmptyBlocks(cfg)

	// The two split blocks DestructSSA inserted on left->join and
	// right->join carried nothing but an assign, so each is absorbed into
	// its predecessor.
	assert.Less(t, len(cfg.Blocks), preBlocks)
	require.Len(t, join.Predecessors, 2)
	for _, p := range join.Predecessors {
		require.Len(t, p.Tacs, 1)
		assert.Equal(t, AssignOp, p.Tacs[0].Op)
		assert.Same(t, xJoin, p.Tacs[0].Results[0])
		require.Len(t, p.Successors, 1)
		assert.Same(t, join, p.Successors[0])
	}
	assert.ElementsMatch(t, []*BasicBlock{left, right}, join.Predecessors)
}

func TestPruneEmptyBlocks_ElidesPureForwardingBlock(t *testing.T) {
	// entry branches to an empty forwarding block and a real body block,
	// both landing on join. The forwarding block has nowhere a
	// straight-line merge could absorb it into (entry still has two
	// successors), so only the empty-forward elision applies.
	cfg := NewCFG()
	forward := cfg.NewBlock("forward")
	body := cfg.NewBlock("body")
	join := cfg.NewBlock("join")
	x := NewVariable("%x0", rtype.Bit{Width: 32})
	body.Tacs = []*Tac{{Op: "bits.constant", Results: []*Variable{x}, Attrs: map[string]any{"value": uint64(1)}}}
	join.Tacs = []*Tac{{Op: RetOp}} // non-empty, so join is not elided too

	cfg.AddEdge(cfg.Entry, forward)
	cfg.AddEdge(cfg.Entry, body)
	cfg.AddEdge(forward, join)
	cfg.AddEdge(body, join)
	cfg.AddEdge(join, cfg.Exit)

	PruneEmptyBlocks(cfg)

	for _, b := range cfg.Blocks {
		assert.NotEqual(t, "forward", b.Label)
	}
	assert.Contains(t, cfg.Entry.Successors, join)
	assert.Contains(t, join.Predecessors, cfg.Entry)
}

func TestPruneEmptyBlocks_LeavesEntryAndExitDistinguished(t *testing.T) {
	cfg := NewCFG()
	body := cfg.NewBlock("body")
	cfg.AddEdge(cfg.Entry, body)
	cfg.AddEdge(body, cfg.Exit)

	PruneEmptyBlocks(cfg)

	require.Contains(t, cfg.Blocks, cfg.Entry)
	require.Contains(t, cfg.Blocks, cfg.Exit)
}

package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
)

func TestDestructSSA_RemovesPhiAndSplitsEdges(t *testing.T) {
	cfg, left, right, join := buildDiamond(t)
	xLeft := NewVariable("%x1", rtype.Bit{Width: 32})
	xRight := NewVariable("%x2", rtype.Bit{Width: 32})
	xJoin := NewVariable("%x3", rtype.Bit{Width: 32})
	join.Tacs = []*Tac{{Op: PhiOp, Operands: []*Variable{xLeft, xRight}, Results: []*Variable{xJoin}}}

	preJoinPreds := len(join.Predecessors)
	DestructSSA(cfg)

	assert.Empty(t, join.Tacs)
	require.Equal(t, preJoinPreds, len(join.Predecessors))
	for _, p := range join.Predecessors {
		require.Len(t, p.Tacs, 1)
		assign := p.Tacs[0]
		assert.Equal(t, AssignOp, assign.Op)
		assert.Same(t, xJoin, assign.Results[0])
	}
	// The split blocks must carry the correct per-edge operand through.
	var sawLeft, sawRight bool
	for _, p := range join.Predecessors {
		switch p.Tacs[0].Operands[0] {
		case xLeft:
			sawLeft = true
			assert.Equal(t, left, p.Predecessors[0])
		case xRight:
			sawRight = true
			assert.Equal(t, right, p.Predecessors[0])
		}
	}
	assert.True(t, sawLeft)
	assert.True(t, sawRight)
}

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/tac"
)

func TestEntryVars_DiamondBranchReadsOuterVars(t *testing.T) {
	cfg, a, b, _, left, right, _ := buildDiamondCFG(t)
	// Both arms read a and b, which are defined outside the branch.
	left.Tacs = []*tac.Tac{{Op: "bits.add", Operands: []*tac.Variable{a, b}, Results: []*tac.Variable{tac.NewVariable("%xl", rtype.Bit{Width: 32})}}}
	right.Tacs = []*tac.Tac{{Op: "bits.sub", Operands: []*tac.Variable{a, b}, Results: []*tac.Variable{tac.NewVariable("%xr", rtype.Bit{Width: 32})}}}
	region, err := Aggregate(cfg)
	require.NoError(t, err)
	branch := region.Children[1]

	entry := EntryVars(branch)
	assert.Contains(t, entry, a)
	assert.Contains(t, entry, b)
}

func TestEntryVars_DeterministicAcrossCalls(t *testing.T) {
	cfg, _, _, _, _, _, _ := buildDiamondCFG(t)
	region, err := Aggregate(cfg)
	require.NoError(t, err)
	branch := region.Children[1]

	first := EntryVars(branch)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EntryVars(branch))
	}
}

func TestDefSet_ExcludesOuterVars(t *testing.T) {
	cfg, a, b, _, _, _, _ := buildDiamondCFG(t)
	region, err := Aggregate(cfg)
	require.NoError(t, err)
	branch := region.Children[1]

	writes := DefSet(branch)
	assert.False(t, writes[a])
	assert.False(t, writes[b])
}

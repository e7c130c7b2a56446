package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

func TestDeadNodeElimination_RemovesUnusedSimpleNode(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})
	live, err := ops.AddBinary(r, ops.Add, 32, a, b)
	require.NoError(t, err)
	dead, err := ops.AddBinary(r, ops.Sub, 32, a, b)
	require.NoError(t, err)
	_, err = r.AddResult(live)
	require.NoError(t, err)

	changed, err := DeadNodeElimination{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	for _, n := range r.Nodes() {
		assert.NotSame(t, dead.Node(), n)
	}
	var sawLive bool
	for _, n := range r.Nodes() {
		if n == live.Node() {
			sawLive = true
		}
	}
	assert.True(t, sawLive)
}

func TestDeadNodeElimination_EmptyRegionNoOp(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	changed, err := DeadNodeElimination{}.Apply(r)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestDeadNodeElimination_NeverCollapsesStructuralNode(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	a := r.AddArgument(rtype.Bit{Width: 32})
	theta, err := ops.NewTheta(r, []*rvsdg.Output{a}, func(sub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
		pred, err := ops.AddConstant(sub, 0, rtype.Bool)
		return []*rvsdg.Output{loopArgs[0]}, pred, err
	})
	require.NoError(t, err)
	// theta has no users at all (not even a region result) and is not
	// state-effectful as a structural node, yet must survive DCE.
	_ = theta

	changed, err := DeadNodeElimination{}.Apply(r)
	require.NoError(t, err)
	assert.False(t, changed)

	var sawTheta bool
	for _, n := range r.Nodes() {
		if n == theta {
			sawTheta = true
		}
	}
	assert.True(t, sawTheta)
}

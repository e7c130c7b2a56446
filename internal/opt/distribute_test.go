package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

func TestConstantDistribution_GammaEntry(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	a := r.AddArgument(rtype.Bit{Width: 32})
	seven, err := ops.AddConstant(r, 7, rtype.Bit{Width: 32})
	require.NoError(t, err)
	predBit, err := ops.AddBinary(r, ops.Lt, 32, a, a)
	require.NoError(t, err)
	ctl, err := ops.AddMatch(r, predBit, 2)
	require.NoError(t, err)

	node, err := ops.NewGamma(r, ctl, []*rvsdg.Output{a, seven}, 2, func(alt int, sub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		if alt == 0 {
			return []*rvsdg.Output{args[1]}, nil // uses the distributed constant
		}
		return []*rvsdg.Output{args[0]}, nil // never touches entry index 1
	})
	require.NoError(t, err)
	_, err = r.AddResult(node.Output(0))
	require.NoError(t, err)

	changed, err := ConstantDistribution{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	alt0 := node.Subregions()[0]
	_, isConst := alt0.Results()[0].Origin().Node().Operation().(ops.Constant)
	assert.True(t, isConst)

	alt1 := node.Subregions()[1]
	var sawConstInAlt1 bool
	for _, n := range alt1.Nodes() {
		if _, ok := n.Operation().(ops.Constant); ok {
			sawConstInAlt1 = true
		}
	}
	assert.False(t, sawConstInAlt1)
}

func TestConstantDistribution_ThetaPassThrough(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	seven, err := ops.AddConstant(r, 7, rtype.Bit{Width: 32})
	require.NoError(t, err)

	theta, err := ops.NewTheta(r, []*rvsdg.Output{seven}, func(sub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
		doubled, err := ops.AddBinary(sub, ops.Add, 32, loopArgs[0], loopArgs[0])
		require.NoError(t, err)
		_ = doubled
		pred, err := ops.AddConstant(sub, 0, rtype.Bool)
		// pass-through: next value equals the argument itself
		return []*rvsdg.Output{loopArgs[0]}, pred, err
	})
	require.NoError(t, err)

	changed, err := ConstantDistribution{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	sub := theta.Subregions()[0]
	var sawConst bool
	for _, n := range sub.Nodes() {
		if _, ok := n.Operation().(ops.Constant); ok {
			sawConst = true
		}
	}
	assert.True(t, sawConst)
}

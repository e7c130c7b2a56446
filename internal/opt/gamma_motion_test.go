package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

func TestGammaPullIn(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	a := r.AddArgument(rtype.Bit{Width: 32})
	negA, err := ops.AddUnary(r, ops.Neg, 32, a)
	require.NoError(t, err)
	predBit, err := ops.AddBinary(r, ops.Lt, 32, a, a)
	require.NoError(t, err)
	ctl, err := ops.AddMatch(r, predBit, 2)
	require.NoError(t, err)

	node, err := ops.NewGamma(r, ctl, []*rvsdg.Output{a, negA}, 2, func(alt int, sub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		if alt == 0 {
			return []*rvsdg.Output{args[1]}, nil // uses negA's entry
		}
		return []*rvsdg.Output{args[0]}, nil // never touches negA's entry
	})
	require.NoError(t, err)
	_, err = r.AddResult(node.Output(0))
	require.NoError(t, err)

	changed, err := GammaPullIn{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	alt0 := node.Subregions()[0]
	producer := alt0.Results()[0].Origin().Node()
	_, isUnary := producer.Operation().(ops.Unary)
	assert.True(t, isUnary)

	alt1 := node.Subregions()[1]
	var sawUnaryInAlt1 bool
	for _, n := range alt1.Nodes() {
		if _, ok := n.Operation().(ops.Unary); ok {
			sawUnaryInAlt1 = true
		}
	}
	assert.False(t, sawUnaryInAlt1)
}

func TestGammaPullOut_IdenticalBranches(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})
	predBit, err := ops.AddBinary(r, ops.Lt, 32, a, b)
	require.NoError(t, err)
	ctl, err := ops.AddMatch(r, predBit, 2)
	require.NoError(t, err)

	node, err := ops.NewGamma(r, ctl, []*rvsdg.Output{a, b}, 2, func(alt int, sub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		sum, err := ops.AddBinary(sub, ops.Add, 32, args[0], args[1])
		return []*rvsdg.Output{sum}, err
	})
	require.NoError(t, err)
	result, err := r.AddResult(node.Output(0))
	require.NoError(t, err)

	changed, err := GammaPullOut{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.NotSame(t, node.Output(0), result.Origin())
	hoisted := result.Origin().Node()
	_, isBinary := hoisted.Operation().(ops.Binary)
	assert.True(t, isBinary)
	assert.Same(t, r, hoisted.Region())
}

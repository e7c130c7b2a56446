package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
	"rvsdgc/internal/tac"
)

func TestLower_Gamma(t *testing.T) {
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
		if alt == 0 {
			out, err := ops.AddBinary(sub, ops.Add, 32, args[0], args[1])
			return []*rvsdg.Output{out}, err
		}
		out, err := ops.AddBinary(sub, ops.Sub, 32, args[0], args[1])
		return []*rvsdg.Output{out}, err
	})
	require.NoError(t, err)
	_, err = r.AddResult(node.Output(0))
	require.NoError(t, err)

	av := tac.NewVariable("%a", rtype.Bit{Width: 32})
	bv := tac.NewVariable("%b", rtype.Bit{Width: 32})
	cfg, results, err := Lower(r, []*tac.Variable{av, bv})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Typ.Equal(rtype.Bit{Width: 32}))
	assert.Greater(t, len(cfg.Blocks), 2)

	var sawPhi bool
	for _, block := range cfg.Blocks {
		for _, tc := range block.Tacs {
			if tc.IsPhi() {
				sawPhi = true
				assert.Len(t, tc.Operands, 2)
			}
		}
	}
	assert.True(t, sawPhi)
}

func TestLower_RejectsLambda(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()
	_, err := ops.NewLambda(r, []rtype.Type{rtype.Bit{Width: 32}}, nil, func(sub *rvsdg.Region, params, captured []*rvsdg.Output) ([]*rvsdg.Output, error) {
		return params, nil
	})
	require.NoError(t, err)

	_, _, err = Lower(r, nil)
	assert.Error(t, err)
}

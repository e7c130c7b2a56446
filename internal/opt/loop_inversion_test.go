package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

// TestLoopInversion_ContinueBreakShape builds the canonical continue/break
// shape: θ { if i<n then {i'=i+1; continue} else break }, with
// n threaded through as a second, pass-through loop variable since a θ's
// sub-region can only see values passed in as its own loop variables.
func TestLoopInversion_ContinueBreakShape(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	i0 := r.AddArgument(rtype.Bit{Width: 32})
	n := r.AddArgument(rtype.Bit{Width: 32})

	theta, err := ops.NewTheta(r, []*rvsdg.Output{i0, n}, func(sub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
		i, nSub := loopArgs[0], loopArgs[1]
		predBit, err := ops.AddBinary(sub, ops.Lt, 32, i, nSub)
		if err != nil {
			return nil, nil, err
		}
		ctl, err := ops.AddMatch(sub, predBit, 2)
		if err != nil {
			return nil, nil, err
		}
		gammaNode, err := ops.NewGamma(sub, ctl, []*rvsdg.Output{i, nSub}, 2, func(alt int, gsub *rvsdg.Region, gargs []*rvsdg.Output) ([]*rvsdg.Output, error) {
			if alt == 1 {
				one, err := ops.AddConstant(gsub, 1, rtype.Bit{Width: 32})
				if err != nil {
					return nil, err
				}
				iNext, err := ops.AddBinary(gsub, ops.Add, 32, gargs[0], one)
				if err != nil {
					return nil, err
				}
				contTrue, err := ops.AddConstant(gsub, 1, rtype.Bool)
				if err != nil {
					return nil, err
				}
				return []*rvsdg.Output{iNext, gargs[1], contTrue}, nil
			}
			falseC, err := ops.AddConstant(gsub, 0, rtype.Bool)
			if err != nil {
				return nil, err
			}
			return []*rvsdg.Output{gargs[0], gargs[1], falseC}, nil
		})
		if err != nil {
			return nil, nil, err
		}
		return []*rvsdg.Output{gammaNode.Output(0), gammaNode.Output(1)}, gammaNode.Output(2), nil
	})
	require.NoError(t, err)
	_, err = r.AddResult(theta.Output(0))
	require.NoError(t, err)

	changed, err := LoopInversion{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	var outerGamma *rvsdg.Node
	for _, node := range r.Nodes() {
		if gop, ok := node.Operation().(*ops.Gamma); ok && gop.NAlternatives == 2 {
			outerGamma = node
		}
	}
	require.NotNil(t, outerGamma)

	var sawInnerTheta bool
	for _, inner := range outerGamma.Subregions()[1].Nodes() {
		if _, ok := inner.Operation().(*ops.Theta); ok {
			sawInnerTheta = true
		}
	}
	assert.True(t, sawInnerTheta)
}

func TestLoopInversion_UnrelatedThetaUntouched(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	i0 := r.AddArgument(rtype.Bit{Width: 32})
	_, err := ops.NewTheta(r, []*rvsdg.Output{i0}, func(sub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
		doubled, err := ops.AddBinary(sub, ops.Add, 32, loopArgs[0], loopArgs[0])
		if err != nil {
			return nil, nil, err
		}
		pred, err := ops.AddConstant(sub, 0, rtype.Bool)
		return []*rvsdg.Output{doubled}, pred, err
	})
	require.NoError(t, err)

	changed, err := LoopInversion{}.Apply(r)
	require.NoError(t, err)
	assert.False(t, changed)
}

package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

func newTestGraph() (*rvsdg.Graph, *rvsdg.Region) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	return g, g.Root()
}

func TestBinary_ConstantFolding(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("bits.add", rvsdg.NormalForm{Mutable: true, ConstantFold: true})

	a, err := ops.AddConstant(r, 3, rtype.Bit{Width: 32})
	require.NoError(t, err)
	b, err := ops.AddConstant(r, 4, rtype.Bit{Width: 32})
	require.NoError(t, err)

	sum, err := ops.AddBinary(r, ops.Add, 32, a, b)
	require.NoError(t, err)

	c, ok := sum.Node().Operation().(ops.Constant)
	require.True(t, ok, "expected folded result to be a Constant node")
	assert.Equal(t, uint64(7), c.Value)
}

func TestBinary_IdentityReduction(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("bits.add", rvsdg.NormalForm{Mutable: true, Reducible: true})

	a := r.AddArgument(rtype.Bit{Width: 32})
	zero, err := ops.AddConstant(r, 0, rtype.Bit{Width: 32})
	require.NoError(t, err)

	sum, err := ops.AddBinary(r, ops.Add, 32, a, zero)
	require.NoError(t, err)

	assert.Same(t, a, sum, "x+0 should reduce to x itself")
}

func TestBinary_AnnihilatorReduction_MulZero(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("bits.mul", rvsdg.NormalForm{Mutable: true, Reducible: true})

	a := r.AddArgument(rtype.Bit{Width: 32})
	zero, err := ops.AddConstant(r, 0, rtype.Bit{Width: 32})
	require.NoError(t, err)

	prod, err := ops.AddBinary(r, ops.Mul, 32, a, zero)
	require.NoError(t, err)

	c, ok := prod.Node().Operation().(ops.Constant)
	require.True(t, ok)
	assert.Equal(t, uint64(0), c.Value)
}

func TestBinary_CompareWithSelfReduction(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("bits.lt", rvsdg.NormalForm{Mutable: true, Reducible: true})

	a := r.AddArgument(rtype.Bit{Width: 32})
	lt, err := ops.AddBinary(r, ops.Lt, 32, a, a)
	require.NoError(t, err)

	c, ok := lt.Node().Operation().(ops.Constant)
	require.True(t, ok, "a<a must statically fold to false")
	assert.Equal(t, uint64(0), c.Value)
}

func TestUnary_DoubleNegationReduction(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("bits.neg", rvsdg.NormalForm{Mutable: true, Reducible: true})

	a := r.AddArgument(rtype.Bit{Width: 32})
	once, err := ops.AddUnary(r, ops.Neg, 32, a)
	require.NoError(t, err)
	twice, err := ops.AddUnary(r, ops.Neg, 32, once)
	require.NoError(t, err)

	assert.Same(t, a, twice)
}

func TestUnary_ConstantFolding(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("bits.not", rvsdg.NormalForm{Mutable: true, ConstantFold: true})

	a, err := ops.AddConstant(r, 0, rtype.Bit{Width: 8})
	require.NoError(t, err)
	notA, err := ops.AddUnary(r, ops.Not, 8, a)
	require.NoError(t, err)

	c, ok := notA.Node().Operation().(ops.Constant)
	require.True(t, ok)
	assert.Equal(t, uint64(0xFF), c.Value)
}

// TestLoadMux_FlattensStateMerge covers the load-mux normalization:
// mux = state_merge(s1,s2,s3); v = load(a,[mux],4) normalizes, with
// "mem.load" Reducible enabled, to a load with 4 inputs where
// input(1..3) are exactly s1, s2, s3.
func TestLoadMux_FlattensStateMerge(t *testing.T) {
	_, r := newTestGraph()
	r.Graph().SetNormalForm("mem.load", rvsdg.NormalForm{Mutable: true, Reducible: true})

	addr := r.AddArgument(rtype.Bit{Width: 32})
	s1 := r.AddArgument(rtype.MemState{})
	s2 := r.AddArgument(rtype.MemState{})
	s3 := r.AddArgument(rtype.MemState{})

	mux, err := ops.AddStateMerge(r, []*rvsdg.Output{s1, s2, s3})
	require.NoError(t, err)

	v, err := ops.AddLoad(r, addr, []*rvsdg.Output{mux}, 4, rtype.Bit{Width: 32})
	require.NoError(t, err)

	inputs := v.Node().Inputs()
	require.Len(t, inputs, 4)
	assert.Same(t, addr, inputs[0].Origin())
	assert.Same(t, s1, inputs[1].Origin())
	assert.Same(t, s2, inputs[2].Origin())
	assert.Same(t, s3, inputs[3].Origin())
}

func TestLoadMux_DisabledByDefault(t *testing.T) {
	_, r := newTestGraph()

	addr := r.AddArgument(rtype.Bit{Width: 32})
	s1 := r.AddArgument(rtype.MemState{})
	s2 := r.AddArgument(rtype.MemState{})

	mux, err := ops.AddStateMerge(r, []*rvsdg.Output{s1, s2})
	require.NoError(t, err)

	v, err := ops.AddLoad(r, addr, []*rvsdg.Output{mux}, 4, rtype.Bit{Width: 32})
	require.NoError(t, err)

	inputs := v.Node().Inputs()
	require.Len(t, inputs, 2)
	assert.Same(t, mux, inputs[1].Origin())
}

func TestMatch_BitConvention(t *testing.T) {
	_, r := newTestGraph()

	pred := r.AddArgument(rtype.Bit{Width: 1})
	ctl, err := ops.AddMatch(r, pred, 2)
	require.NoError(t, err)

	m, ok := ctl.Node().Operation().(ops.Match)
	require.True(t, ok)
	assert.Equal(t, uint64(2), m.N)
	assert.Equal(t, uint64(1), m.Width)

	_, isCtl := ctl.Type().(rtype.Ctl)
	assert.True(t, isCtl)
}

func TestGamma_RoundTrip(t *testing.T) {
	_, r := newTestGraph()

	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})
	predBit, err := ops.AddBinary(r, ops.Lt, 32, a, b)
	require.NoError(t, err)
	ctl, err := ops.AddMatch(r, predBit, 2)
	require.NoError(t, err)

	node, err := ops.NewGamma(r, ctl, []*rvsdg.Output{a, b}, 2, func(alt int, sub *rvsdg.Region, args []*rvsdg.Output) ([]*rvsdg.Output, error) {
		if alt == 0 {
			return []*rvsdg.Output{args[0]}, nil
		}
		return []*rvsdg.Output{args[1]}, nil
	})
	require.NoError(t, err)

	gop, ok := node.Operation().(*ops.Gamma)
	require.True(t, ok)
	assert.Equal(t, 2, gop.NAlternatives)
	require.Len(t, node.Subregions(), 2)
	assert.Len(t, node.Subregions()[0].Results(), 1)
}

func TestTheta_RoundTrip(t *testing.T) {
	_, r := newTestGraph()

	i0 := r.AddArgument(rtype.Bit{Width: 32})
	node, err := ops.NewTheta(r, []*rvsdg.Output{i0}, func(sub *rvsdg.Region, loopArgs []*rvsdg.Output) ([]*rvsdg.Output, *rvsdg.Output, error) {
		one, err := ops.AddConstant(sub, 1, rtype.Bit{Width: 32})
		if err != nil {
			return nil, nil, err
		}
		next, err := ops.AddBinary(sub, ops.Add, 32, loopArgs[0], one)
		if err != nil {
			return nil, nil, err
		}
		pred, err := ops.AddConstant(sub, 0, rtype.Bool)
		if err != nil {
			return nil, nil, err
		}
		return []*rvsdg.Output{next}, pred, nil
	})
	require.NoError(t, err)

	_, ok := node.Operation().(*ops.Theta)
	require.True(t, ok)
	assert.Equal(t, 1, len(node.Outputs()))
	require.Len(t, node.Subregions(), 1)
}

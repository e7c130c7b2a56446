package rvsdg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

// a trivial simple operation good enough to exercise AddNode's CSE path
// without depending on internal/rvsdg/ops.
type addOp struct{ width uint64 }

func (a addOp) Kind() string { return "test.add" }
func (a addOp) InputPorts() []rvsdg.Port {
	t := rtype.Bit{Width: a.width}
	return []rvsdg.Port{rvsdg.NewPort(t), rvsdg.NewPort(t)}
}
func (a addOp) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(rtype.Bit{Width: a.width})} }
func (a addOp) StateEffectful() bool      { return false }
func (a addOp) Equals(other rvsdg.Operation) bool {
	o, ok := other.(addOp)
	return ok && o.width == a.width
}
func (a addOp) DebugString() string    { return "test.add" }
func (a addOp) Clone() rvsdg.Operation { return a }

func TestAddNode_CSEIdempotent(t *testing.T) {
	g := rvsdg.NewGraph()
	g.SetNormalForm("test.add", rvsdg.NormalForm{Mutable: true, CSE: true})
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})

	first, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)
	second, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)
	_, err = r.AddResult(first)
	require.NoError(t, err)
	_, err = r.AddResult(second)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, r.Nodes(), 1)
	assert.Len(t, first.Users(), 2)
}

func TestAddNode_CSEDisabledCreatesDuplicates(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})

	first, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)
	second, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, r.Nodes(), 2)
}

func TestAddNode_TypeMismatchRejected(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 16})

	_, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	assert.Error(t, err)
}

func TestAddNode_ScopeViolationRejected(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})

	// an operand from a different graph's region is never in scope.
	other := rvsdg.NewGraph()
	foreign := other.Root().AddArgument(rtype.Bit{Width: 32})

	_, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, foreign})
	assert.Error(t, err)
}

func TestRemoveNode_FailsWithLiveUsers(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})

	out, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)
	_, err = r.AddResult(out)
	require.NoError(t, err)

	err = r.RemoveNode(out.Node())
	assert.Error(t, err)
}

func TestDivertUsers_RewritesEveryInput(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})

	oldOut, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)
	res, err := r.AddResult(oldOut)
	require.NoError(t, err)

	newOut, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{b, a})
	require.NoError(t, err)

	require.NoError(t, r.DivertUsers(oldOut, newOut))
	assert.Same(t, newOut, res.Origin())
	assert.Empty(t, oldOut.Users())
}

// universal invariant: for every input i, i.Origin().Users() contains i,
// and for every user u of an output, u.Origin() == that output.
func TestUniversalInvariant_InputOriginUserSymmetry(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})
	out, err := r.AddNode(addOp{width: 32}, []*rvsdg.Output{a, b})
	require.NoError(t, err)

	for _, in := range out.Node().Inputs() {
		assert.Contains(t, in.Origin().Users(), in)
	}
	for _, u := range a.Users() {
		assert.Same(t, a, u.Origin())
	}
}

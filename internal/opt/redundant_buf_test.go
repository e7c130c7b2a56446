package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

func TestRedundantBufferElimination_LocalLoadSource(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	addr := r.AddArgument(rtype.Bit{Width: 32})
	value, err := ops.AddLocalLoad(r, addr, nil, rtype.Bit{Width: 32})
	require.NoError(t, err)
	buffered, err := ops.AddBuffer(r, value, 2, false)
	require.NoError(t, err)
	result, err := r.AddResult(buffered)
	require.NoError(t, err)

	changed, err := RedundantBufferElimination{}.Apply(r)
	require.NoError(t, err)
	assert.True(t, changed)

	final, ok := result.Origin().Node().Operation().(ops.Buffer)
	require.True(t, ok)
	assert.True(t, final.PassThrough)
	assert.Equal(t, uint64(2), final.Capacity)

	for _, n := range r.Nodes() {
		if buf, ok := n.Operation().(ops.Buffer); ok {
			assert.True(t, buf.PassThrough, "no non-pass-through buffer should remain")
		}
	}
}

func TestRedundantBufferElimination_UnrelatedSourceUntouched(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()

	a := r.AddArgument(rtype.Bit{Width: 32})
	buffered, err := ops.AddBuffer(r, a, 2, false)
	require.NoError(t, err)
	_, err = r.AddResult(buffered)
	require.NoError(t, err)

	changed, err := RedundantBufferElimination{}.Apply(r)
	require.NoError(t, err)
	assert.False(t, changed)
}

package diag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/diag"
	"rvsdgc/internal/opt"
	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

func TestDumpRegion_IncludesNodesAndResults(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})
	sum, err := ops.AddBinary(r, ops.Add, 32, a, b)
	require.NoError(t, err)
	_, err = r.AddResult(sum)
	require.NoError(t, err)

	out := diag.DumpRegion(r)
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "result[0]")
}

func TestDumpDOT_ProducesValidDigraphShell(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	r := g.Root()
	a := r.AddArgument(rtype.Bit{Width: 32})
	b := r.AddArgument(rtype.Bit{Width: 32})
	sum, err := ops.AddBinary(r, ops.Add, 32, a, b)
	require.NoError(t, err)
	_, err = r.AddResult(sum)
	require.NoError(t, err)

	out := diag.DumpDOT(r)
	assert.True(t, strings.HasPrefix(out, "digraph rvsdg {"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
	assert.Contains(t, out, "subgraph cluster_region_")
}

func TestRunPasses_ReportsEachPassByName(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.Configure(g)
	g.SetNormalForm("bits.add", rvsdg.NormalForm{Mutable: true, ConstantFold: true})
	r := g.Root()
	c1, err := ops.AddConstant(r, 2, rtype.Bit{Width: 32})
	require.NoError(t, err)
	c2, err := ops.AddConstant(r, 3, rtype.Bit{Width: 32})
	require.NoError(t, err)
	sum, err := ops.AddBinary(r, ops.Add, 32, c1, c2)
	require.NoError(t, err)
	_, err = r.AddResult(sum)
	require.NoError(t, err)

	reports, err := diag.RunPasses([]opt.Pass{noopPass{}}, r)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	text := diag.FormatReports(reports)
	assert.Contains(t, text, "optimization pipeline")
	assert.Contains(t, text, reports[0].Name)
}

// noopPass is a test-only opt.Pass that never changes the graph, so this
// test doesn't depend on any real pass's behaviour.
type noopPass struct{}

func (noopPass) Name() string        { return "test-noop" }
func (noopPass) Description() string { return "test-only pass that never changes the graph" }
func (noopPass) Apply(root *rvsdg.Region) (bool, error) { return false, nil }

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/tac"
)

func TestBuildGraph_Diamond(t *testing.T) {
	cfg, a, b, _, _, _, join := buildDiamondCFG(t)

	xLeft := tac.NewVariable("%xl", rtype.Bit{Width: 32})
	xRight := tac.NewVariable("%xr", rtype.Bit{Width: 32})
	xJoin := tac.NewVariable("%xj", rtype.Bit{Width: 32})

	for _, block := range cfg.Blocks {
		switch block.Label {
		case "left":
			block.Tacs = []*tac.Tac{{Op: "bits.add", Operands: []*tac.Variable{a, b}, Results: []*tac.Variable{xLeft}}}
		case "right":
			block.Tacs = []*tac.Tac{{Op: "bits.sub", Operands: []*tac.Variable{a, b}, Results: []*tac.Variable{xRight}}}
		}
	}
	join.Tacs = []*tac.Tac{{Op: tac.PhiOp, Operands: []*tac.Variable{xLeft, xRight}, Results: []*tac.Variable{xJoin}}}

	g, err := BuildGraph(cfg, []*tac.Variable{a, b})
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.NotEmpty(t, g.Root().Nodes())

	var sawGamma bool
	for _, n := range g.Root().Nodes() {
		if n.Operation().Kind() == "gamma" {
			sawGamma = true
			require.Len(t, n.Outputs(), 1)
			assert.True(t, n.Outputs()[0].Type().Equal(rtype.Bit{Width: 32}))
		}
	}
	assert.True(t, sawGamma)
}

func TestBuildGraph_RejectsBareSsaPhi(t *testing.T) {
	cfg := tac.NewCFG()
	x := tac.NewVariable("%x", rtype.Bit{Width: 32})
	y := tac.NewVariable("%y", rtype.Bit{Width: 32})
	cfg.Entry.Tacs = []*tac.Tac{{Op: tac.PhiOp, Operands: []*tac.Variable{x}, Results: []*tac.Variable{y}}}
	cfg.AddEdge(cfg.Entry, cfg.Exit)

	_, err := BuildGraph(cfg, []*tac.Variable{x})
	assert.Error(t, err)
}

func TestBuildGraph_Loop(t *testing.T) {
	cfg := tac.NewCFG()
	header := cfg.NewBlock("header")
	body := cfg.NewBlock("body")
	exit := cfg.NewBlock("exit")
	cfg.AddEdge(cfg.Entry, header)
	cfg.AddEdge(header, body)
	cfg.AddEdge(header, exit)
	cfg.AddEdge(body, header)
	cfg.AddEdge(exit, cfg.Exit)

	n := tac.NewVariable("%n", rtype.Bit{Width: 32})
	i0 := tac.NewVariable("%i0", rtype.Bit{Width: 32})
	i1 := tac.NewVariable("%i1", rtype.Bit{Width: 32})
	iHeader := tac.NewVariable("%ih", rtype.Bit{Width: 32})
	cont := tac.NewVariable("%cont", rtype.Bool)
	header.Tacs = []*tac.Tac{
		{Op: tac.PhiOp, Operands: []*tac.Variable{i0, i1}, Results: []*tac.Variable{iHeader}},
		{Op: "bits.lt", Operands: []*tac.Variable{iHeader, n}, Results: []*tac.Variable{cont}},
	}
	one := tac.NewVariable("%one", rtype.Bit{Width: 32})
	body.Tacs = []*tac.Tac{
		{Op: "bits.constant", Attrs: map[string]any{"value": uint64(1)}, Results: []*tac.Variable{one}},
		{Op: "bits.add", Operands: []*tac.Variable{iHeader, one}, Results: []*tac.Variable{i1}},
	}

	g, err := BuildGraph(cfg, []*tac.Variable{i0, n})
	require.NoError(t, err)
	require.NotNil(t, g)

	var sawOuterGamma, sawTheta bool
	for _, node := range g.Root().Nodes() {
		if node.Operation().Kind() == "gamma" {
			sawOuterGamma = true
			for _, sub := range node.Subregions() {
				for _, inner := range sub.Nodes() {
					if inner.Operation().Kind() == "theta" {
						sawTheta = true
					}
				}
			}
		}
	}
	assert.True(t, sawOuterGamma)
	assert.True(t, sawTheta)
}

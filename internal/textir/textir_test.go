package textir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/bridge"
	"rvsdgc/internal/textir"
)

func TestParseAndBuild_StraightLine(t *testing.T) {
	src := `
fn add2(a: bit32, b: bit32) {
bb entry:
  s = add(a, b)
  ret s
}
`
	prog, err := textir.Parse("test.tir", src)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)

	funcs, err := textir.Build(prog)
	require.NoError(t, err)
	fn, ok := funcs["add2"]
	require.True(t, ok)

	g, err := bridge.BuildGraph(fn.CFG, fn.Params)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.NotEmpty(t, g.Root().Nodes())
	assert.Len(t, g.Root().Results(), 1)
}

func TestParseAndBuild_Diamond(t *testing.T) {
	src := `
fn diamond(a: bit32, b: bit32, p: bit32) {
bb entry:
  c = lt(p, b)
  brcond c, left, right
bb left:
  xl = add(a, b)
  br join
bb right:
  xr = sub(a, b)
  br join
bb join:
  xj = phi bit32 [left: xl], [right: xr]
  ret xj
}
`
	prog, err := textir.Parse("diamond.tir", src)
	require.NoError(t, err)

	funcs, err := textir.Build(prog)
	require.NoError(t, err)
	fn := funcs["diamond"]
	require.NotNil(t, fn)

	g, err := bridge.BuildGraph(fn.CFG, fn.Params)
	require.NoError(t, err)

	var sawGamma bool
	for _, n := range g.Root().Nodes() {
		if n.Operation().Kind() == "gamma" {
			sawGamma = true
		}
	}
	assert.True(t, sawGamma)
}

func TestParseAndBuild_ConstAndLoad(t *testing.T) {
	src := `
fn readit(addr: ptr) {
bb entry:
  seven = const(7) : bit32
  v = load(addr) : bit32
  ret v, seven
}
`
	prog, err := textir.Parse("load.tir", src)
	require.NoError(t, err)

	funcs, err := textir.Build(prog)
	require.NoError(t, err)
	fn := funcs["readit"]
	require.NotNil(t, fn)

	g, err := bridge.BuildGraph(fn.CFG, fn.Params)
	require.NoError(t, err)
	assert.Len(t, g.Root().Results(), 2)
}

func TestBuild_RejectsDuplicateDefinition(t *testing.T) {
	src := `
fn bad(a: bit32) {
bb entry:
  x = add(a, a)
  x = add(a, a)
  ret x
}
`
	prog, err := textir.Parse("bad.tir", src)
	require.NoError(t, err)
	_, err = textir.Build(prog)
	assert.Error(t, err)
}

func TestParse_SyntaxErrorReported(t *testing.T) {
	_, err := textir.Parse("broken.tir", "fn broken( {")
	assert.Error(t, err)
}

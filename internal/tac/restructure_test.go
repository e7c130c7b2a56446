package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestructure_MakesIrreducibleGraphReducible(t *testing.T) {
	cfg := NewCFG()
	a := cfg.NewBlock("a")
	b := cfg.NewBlock("b")
	n := cfg.NewBlock("n")
	cfg.AddEdge(cfg.Entry, a)
	cfg.AddEdge(cfg.Entry, b)
	cfg.AddEdge(a, n)
	cfg.AddEdge(b, n)
	cfg.AddEdge(n, a)
	cfg.AddEdge(n, b)
	require_ := assert.New(t)
	require_.False(IsReducible(cfg))

	err := Restructure(cfg)
	require_.NoError(err)
	require_.True(IsReducible(cfg))
}

func TestRestructure_LeavesReducibleGraphIntact(t *testing.T) {
	cfg, _, _, _ := buildDiamond(t)
	nBlocksBefore := len(cfg.Blocks)
	err := Restructure(cfg)
	assert.NoError(t, err)
	assert.Equal(t, nBlocksBefore, len(cfg.Blocks))
}

package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReducible_Diamond(t *testing.T) {
	cfg, _, _, _ := buildDiamond(t)
	assert.True(t, IsReducible(cfg))
}

func TestIsReducible_NaturalLoop(t *testing.T) {
	cfg := NewCFG()
	header := cfg.NewBlock("header")
	body := cfg.NewBlock("body")
	cfg.AddEdge(cfg.Entry, header)
	cfg.AddEdge(header, body)
	cfg.AddEdge(body, header)
	cfg.AddEdge(header, cfg.Exit)
	assert.True(t, IsReducible(cfg))
}

func TestIsReducible_IrreducibleGraph(t *testing.T) {
	// Classic irreducible "diamond with a cross back-into-the-middle" graph:
	// entry branches to a and b, which both jump into each other's
	// successor n, and n loops back to both. Neither a nor b dominates n.
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
	assert.False(t, IsReducible(cfg))
}

func TestFindNaturalLoops_MergesMultipleLatches(t *testing.T) {
	cfg := NewCFG()
	header := cfg.NewBlock("header")
	bodyA := cfg.NewBlock("bodyA")
	bodyB := cfg.NewBlock("bodyB")
	cfg.AddEdge(cfg.Entry, header)
	cfg.AddEdge(header, bodyA)
	cfg.AddEdge(header, bodyB)
	cfg.AddEdge(bodyA, header)
	cfg.AddEdge(bodyB, header)
	cfg.AddEdge(header, cfg.Exit)

	loops := FindNaturalLoops(cfg)
	require.Len(t, loops, 1)
	assert.ElementsMatch(t, []*BasicBlock{bodyA, bodyB}, loops[0].Latches)

	mergeLatches(cfg, loops[0])
	require.Len(t, header.Predecessors, 2) // entry + the new synthetic latch
	for _, p := range header.Predecessors {
		assert.NotEqual(t, bodyA, p)
		assert.NotEqual(t, bodyB, p)
	}
}

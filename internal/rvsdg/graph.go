package rvsdg

import "rvsdgc/internal/rtype"

// ConstantFactory builds a SimpleOperation denoting the literal value v of
// type t. Registered once by the package that owns concrete operations
// (internal/rvsdg/ops), since this package cannot depend on concrete
// operation types without an import cycle.
type ConstantFactory func(v any, t rtype.Type) SimpleOperation

// Graph owns one root Region and the per-operation-class NormalForm
// configuration and type interner shared by everything reachable from that
// region. There is no persistence: serialization is delegated to
// collaborators.
type Graph struct {
	root     *Region
	Types    *rtype.Interner
	notifier Notifier

	nextIDCounter uint64
	normalForms   map[string]NormalForm

	constantFactory ConstantFactory
}

// NewGraph constructs a graph with an empty root region.
func NewGraph() *Graph {
	g := &Graph{
		Types:       rtype.NewInterner(),
		normalForms: make(map[string]NormalForm),
	}
	g.root = &Region{id: g.nextID(), graph: g}
	return g
}

// Root is the graph's single root region.
func (g *Graph) Root() *Region { return g.root }

// Notifier exposes the mutation-event bus for passes to subscribe to.
func (g *Graph) Notifier() *Notifier { return &g.notifier }

func (g *Graph) nextID() uint64 {
	g.nextIDCounter++
	return g.nextIDCounter
}

// NormalForm returns the current rewrite policy for the given operation
// kind, defaulting to DefaultNormalForm (all rewrites off) if never set.
func (g *Graph) NormalForm(kind string) NormalForm {
	if nf, ok := g.normalForms[kind]; ok {
		return nf
	}
	return DefaultNormalForm
}

// SetNormalForm installs the rewrite policy for the given operation kind.
func (g *Graph) SetNormalForm(kind string, nf NormalForm) {
	g.normalForms[kind] = nf
}

// SetConstantFactory registers the constructor used by ConstantFold
// reductions to mint new constant nodes. internal/rvsdg/ops calls this once
// per graph at setup time.
func (g *Graph) SetConstantFactory(f ConstantFactory) {
	g.constantFactory = f
}

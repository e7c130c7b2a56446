package ops

import "rvsdgc/internal/rvsdg"

// Configure wires g's constant factory to this package's concrete Constant
// operation, required before any CSE/ConstantFold/Reducible NormalForm can
// mint replacement constants (rvsdg.Region.AddNode delegates that to
// Graph.constantFactory, set only through SetConstantFactory).
func Configure(g *rvsdg.Graph) {
	g.SetConstantFactory(NewConstantFactory)
}

// Package tac implements the three-address-code CFG collaborator that sits
// on the import/export side of the RVSDG core: basic blocks of typed
// Variable operands, on-the-fly SSA construction (Braun et al.), a
// dominator tree, SSA destruction, and the structural
// validation/restructuring needed before a CFG can be aggregated into
// regions by internal/bridge.
package tac

import "rvsdgc/internal/rtype"

// Variable is an SSA name: a single static definition site, carrying a
// type so bridge construction can wire it directly onto an rvsdg.Port.
type Variable struct {
	Name string
	Typ  rtype.Type
}

func NewVariable(name string, t rtype.Type) *Variable {
	return &Variable{Name: name, Typ: t}
}

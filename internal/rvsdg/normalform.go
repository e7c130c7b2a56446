package rvsdg

// NormalForm is a per-operation-class rewriting policy applied at node
// insertion time. Normal forms are owned per-Graph, never process-global.
type NormalForm struct {
	// Mutable gates all of the rewrites below; when false, AddNode always
	// appends a plain node regardless of the other flags.
	Mutable bool
	// CSE enables identity-operand common-subexpression elimination
	// within a single region.
	CSE bool
	// ConstantFold enables replacing a node whose operands are all
	// constants with a single folded constant node.
	ConstantFold bool
	// Reducible enables unary/binary identity reductions
	// (UnaryReducer/BinaryReducer).
	Reducible bool
}

// DefaultNormalForm matches every toggle disabled: a freshly constructed
// operation class performs no rewriting until a pass opts in, rather than
// rewriting being on by default.
var DefaultNormalForm = NormalForm{}

// AllEnabled returns a NormalForm with every rewrite enabled.
func AllEnabled() NormalForm {
	return NormalForm{Mutable: true, CSE: true, ConstantFold: true, Reducible: true}
}

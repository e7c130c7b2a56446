package rvsdg

// ReducePath names the specific rewrite a reducer proposes, so that
// AddNode's caller-visible behavior (no new node created vs. a differently
// shaped replacement) is driven by a discriminant rather than magic return
// values.
type ReducePath int

const (
	// ReduceNone: no reduction applies; insert the node normally.
	ReduceNone ReducePath = iota
	// ReduceConstantFold: all operands are constants; replace with a
	// single constant node holding the folded value.
	ReduceConstantFold
	// ReduceIdentity: the operation is an identity on this operand
	// (x+0, x*1, x|0, ...); replace the node with the operand itself.
	ReduceIdentity
	// ReduceOperandInverse: the operand undoes a producing operation
	// (e.g. not(not(x)) -> x); replace with the inner operand.
	ReduceOperandInverse
	// ReduceAnnihilator: the operation has a known absorbing result
	// regardless of the other operand (x*0 -> 0, x&0 -> 0).
	ReduceAnnihilator
)

// CompareResult is the outcome of a bitstring compare reduction.
type CompareResult int

const (
	Undecidable CompareResult = iota
	StaticTrue
	StaticFalse
)

// UnaryReducer is implemented by simple operations that can simplify
// themselves given the single operand's producing Output (e.g. a negation
// whose operand is itself a negation).
type UnaryReducer interface {
	SimpleOperation
	// CanReduceOperand inspects the operand's origin and proposes a
	// rewrite, or ReduceNone.
	CanReduceOperand(operand *Output) ReducePath
	// ReduceOperand performs the rewrite proposed by a prior
	// CanReduceOperand call, returning the Output that should replace
	// this node's sole result.
	ReduceOperand(path ReducePath, operand *Output) (*Output, error)
}

// BinaryReducer is implemented by simple operations over exactly two
// operands that support identity/annihilator/constant-fold simplification,
// and optionally n-ary flattening when Associative/Commutative.
type BinaryReducer interface {
	SimpleOperation
	CanReduceOperands(a, b *Output) ReducePath
	ReduceOperands(path ReducePath, a, b *Output) (*Output, error)
	Associative() bool
	Commutative() bool
}

// CompareReducer is implemented by bitstring compare operations that can
// decide their result statically from the operands' producing constants or
// provenance (e.g. comparing a value against itself).
type CompareReducer interface {
	SimpleOperation
	ReduceCompare(a, b *Output) CompareResult
}

// ConstantOperation marks a SimpleOperation with no operands that denotes a
// literal value, queryable for constant-folding and constant-distribution
// passes without a type switch on every concrete constant op.
type ConstantOperation interface {
	SimpleOperation
	ConstantValue() any
}

// ConstantFolder is implemented by n-ary simple operations that can reduce
// to a single constant node when every operand traces back to a
// ConstantOperation. values is positional with InputPorts(); ok is false if
// the concrete values are not foldable (e.g. division by zero).
type ConstantFolder interface {
	SimpleOperation
	FoldConstants(values []any) (result any, resultType Port, ok bool)
}

package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

// UnaryKind enumerates the single-operand bitstring operators.
type UnaryKind string

const (
	Neg UnaryKind = "neg"
	Not UnaryKind = "not"
)

// Unary is a one-operand bitstring operation over a Width-bit operand.
type Unary struct {
	Op    UnaryKind
	Width uint64
}

func (u Unary) Kind() string { return "bits." + string(u.Op) }
func (u Unary) operandType() rtype.Type { return rtype.Bit{Width: u.Width} }
func (u Unary) InputPorts() []rvsdg.Port  { return []rvsdg.Port{rvsdg.NewPort(u.operandType())} }
func (u Unary) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(u.operandType())} }
func (u Unary) StateEffectful() bool    { return false }
func (u Unary) Equals(other rvsdg.Operation) bool {
	ou, ok := other.(Unary)
	return ok && ou.Op == u.Op && ou.Width == u.Width
}
func (u Unary) DebugString() string      { return fmt.Sprintf("%s.%d", u.Op, u.Width) }
func (u Unary) Clone() rvsdg.Operation   { return Unary{Op: u.Op, Width: u.Width} }

// CanReduceOperand implements rvsdg.UnaryReducer: double-negation /
// double-not collapses to the inner operand.
func (u Unary) CanReduceOperand(operand *rvsdg.Output) rvsdg.ReducePath {
	if operand.Node() == nil {
		return rvsdg.ReduceNone
	}
	inner, ok := operand.Node().Operation().(Unary)
	if !ok || inner.Op != u.Op || inner.Width != u.Width {
		return rvsdg.ReduceNone
	}
	return rvsdg.ReduceOperandInverse
}

// ReduceOperand implements rvsdg.UnaryReducer.
func (u Unary) ReduceOperand(path rvsdg.ReducePath, operand *rvsdg.Output) (*rvsdg.Output, error) {
	if path != rvsdg.ReduceOperandInverse {
		return nil, fmt.Errorf("ops: unsupported unary reduce path %d", path)
	}
	return operand.Node().Input(0).Origin(), nil
}

// FoldConstants implements rvsdg.ConstantFolder.
func (u Unary) FoldConstants(values []any) (any, rvsdg.Port, bool) {
	if len(values) != 1 {
		return nil, rvsdg.Port{}, false
	}
	v, ok := values[0].(uint64)
	if !ok {
		return nil, rvsdg.Port{}, false
	}
	mask := widthMask(u.Width)
	var r uint64
	switch u.Op {
	case Neg:
		r = (^v + 1) & mask
	case Not:
		r = (^v) & mask
	default:
		return nil, rvsdg.Port{}, false
	}
	return r, rvsdg.NewPort(u.operandType()), true
}

// AddUnary applies r's current NormalForm to a new Unary(op, width) node
// over operand.
func AddUnary(r *rvsdg.Region, op UnaryKind, width uint64, operand *rvsdg.Output) (*rvsdg.Output, error) {
	return r.AddNode(Unary{Op: op, Width: width}, []*rvsdg.Output{operand})
}

var (
	_ rvsdg.UnaryReducer   = Unary{}
	_ rvsdg.ConstantFolder = Unary{}
)

package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

// BinaryKind enumerates the bitstring binary operators this package
// supports. Arithmetic and bitwise kinds produce a same-width bitstring;
// compare kinds produce rtype.Bool.
type BinaryKind string

const (
	Add BinaryKind = "add"
	Sub BinaryKind = "sub"
	Mul BinaryKind = "mul"
	And BinaryKind = "and"
	Or  BinaryKind = "or"
	Xor BinaryKind = "xor"

	Eq BinaryKind = "eq"
	Ne BinaryKind = "ne"
	Lt BinaryKind = "lt"
	Le BinaryKind = "le"
	Gt BinaryKind = "gt"
	Ge BinaryKind = "ge"
)

func (k BinaryKind) isCompare() bool {
	switch k {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	}
	return false
}

// Binary is a two-operand bitstring operation over operands of Width bits.
type Binary struct {
	Op    BinaryKind
	Width uint64
}

func (b Binary) Kind() string { return "bits." + string(b.Op) }

func (b Binary) operandType() rtype.Type { return rtype.Bit{Width: b.Width} }

func (b Binary) InputPorts() []rvsdg.Port {
	t := b.operandType()
	return []rvsdg.Port{rvsdg.NewPort(t), rvsdg.NewPort(t)}
}

func (b Binary) ResultPorts() []rvsdg.Port {
	if b.Op.isCompare() {
		return []rvsdg.Port{rvsdg.NewPort(rtype.Bool)}
	}
	return []rvsdg.Port{rvsdg.NewPort(b.operandType())}
}

func (b Binary) StateEffectful() bool { return false }

func (b Binary) Equals(other rvsdg.Operation) bool {
	ob, ok := other.(Binary)
	return ok && ob.Op == b.Op && ob.Width == b.Width
}

func (b Binary) DebugString() string { return fmt.Sprintf("%s.%d", b.Op, b.Width) }

func (b Binary) Clone() rvsdg.Operation { return Binary{Op: b.Op, Width: b.Width} }

func (b Binary) Associative() bool {
	switch b.Op {
	case Add, Mul, And, Or, Xor:
		return true
	}
	return false
}

func (b Binary) Commutative() bool {
	switch b.Op {
	case Add, Mul, And, Or, Xor, Eq, Ne:
		return true
	}
	return false
}

func asConstant(o *rvsdg.Output) (uint64, bool) {
	if o.Node() == nil {
		return 0, false
	}
	c, ok := o.Node().Operation().(Constant)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

// CanReduceOperands implements rvsdg.BinaryReducer: identity/annihilator
// simplifications such as x+0 -> x, x*1 -> x, compare-with-self, etc.
func (b Binary) CanReduceOperands(a, c *rvsdg.Output) rvsdg.ReducePath {
	if av, ok := asConstant(a); ok {
		if path := b.identityForConstantLeft(av); path != rvsdg.ReduceNone {
			return path
		}
	}
	if cv, ok := asConstant(c); ok {
		if path := b.identityForConstantRight(cv); path != rvsdg.ReduceNone {
			return path
		}
	}
	if a == c {
		switch b.Op {
		case Eq, Ge, Le:
			return rvsdg.ReduceAnnihilator // statically true, but see ReduceOperands
		case Ne, Lt, Gt:
			return rvsdg.ReduceAnnihilator // statically false
		case Sub, Xor:
			return rvsdg.ReduceAnnihilator // x-x=0, x^x=0
		}
	}
	return rvsdg.ReduceNone
}

func (b Binary) identityForConstantRight(cv uint64) rvsdg.ReducePath {
	switch b.Op {
	case Add, Sub, Or, Xor:
		if cv == 0 {
			return rvsdg.ReduceIdentity
		}
	case Mul:
		if cv == 1 {
			return rvsdg.ReduceIdentity
		}
		if cv == 0 {
			return rvsdg.ReduceAnnihilator
		}
	case And:
		if cv == 0 {
			return rvsdg.ReduceAnnihilator
		}
	}
	return rvsdg.ReduceNone
}

func (b Binary) identityForConstantLeft(av uint64) rvsdg.ReducePath {
	switch b.Op {
	case Add, Or, Xor:
		if av == 0 {
			return rvsdg.ReduceIdentity
		}
	case Mul:
		if av == 1 {
			return rvsdg.ReduceIdentity
		}
		if av == 0 {
			return rvsdg.ReduceAnnihilator
		}
	case And:
		if av == 0 {
			return rvsdg.ReduceAnnihilator
		}
	}
	return rvsdg.ReduceNone
}

// ReduceOperands performs the rewrite CanReduceOperands proposed.
func (b Binary) ReduceOperands(path rvsdg.ReducePath, a, c *rvsdg.Output) (*rvsdg.Output, error) {
	switch path {
	case rvsdg.ReduceIdentity:
		if cv, ok := asConstant(c); ok && b.identityForConstantRight(cv) == rvsdg.ReduceIdentity {
			return a, nil
		}
		if av, ok := asConstant(a); ok && b.identityForConstantLeft(av) == rvsdg.ReduceIdentity {
			return c, nil
		}
		return nil, fmt.Errorf("ops: unreachable identity reduction for %s", b.Op)
	case rvsdg.ReduceAnnihilator:
		if a == c {
			switch b.Op {
			case Eq, Ge, Le:
				return mintBool(a, true)
			case Ne, Lt, Gt:
				return mintBool(a, false)
			case Sub, Xor:
				return mintZero(a)
			}
		}
		if (b.Op == Mul || b.Op == And) {
			if cv, ok := asConstant(c); ok && cv == 0 {
				return mintZeroOfWidth(a, b.Width)
			}
			if av, ok := asConstant(a); ok && av == 0 {
				return mintZeroOfWidth(a, b.Width)
			}
		}
		return nil, fmt.Errorf("ops: unreachable annihilator reduction for %s", b.Op)
	default:
		return nil, fmt.Errorf("ops: unsupported binary reduce path %d", path)
	}
}

// mintBool creates a 1-bit constant true/false in the same region as a
// producer output, used by the compare-with-self reduction.
func mintBool(near *rvsdg.Output, v bool) (*rvsdg.Output, error) {
	var u uint64
	if v {
		u = 1
	}
	return AddConstant(near.Region(), u, rtype.Bool)
}

func mintZero(near *rvsdg.Output) (*rvsdg.Output, error) {
	return AddConstant(near.Region(), 0, near.Type())
}

func mintZeroOfWidth(near *rvsdg.Output, width uint64) (*rvsdg.Output, error) {
	return AddConstant(near.Region(), 0, rtype.Bit{Width: width})
}

// ReduceCompare implements rvsdg.CompareReducer for the compare family.
func (b Binary) ReduceCompare(a, c *rvsdg.Output) rvsdg.CompareResult {
	if !b.Op.isCompare() {
		return rvsdg.Undecidable
	}
	if av, aok := asConstant(a); aok {
		if cv, cok := asConstant(c); cok {
			if evalCompare(b.Op, av, cv) {
				return rvsdg.StaticTrue
			}
			return rvsdg.StaticFalse
		}
	}
	if a == c {
		switch b.Op {
		case Eq, Ge, Le:
			return rvsdg.StaticTrue
		case Ne, Lt, Gt:
			return rvsdg.StaticFalse
		}
	}
	return rvsdg.Undecidable
}

func evalCompare(op BinaryKind, a, b uint64) bool {
	switch op {
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

// FoldConstants implements rvsdg.ConstantFolder: evaluates the node
// directly on concrete operand values.
func (b Binary) FoldConstants(values []any) (any, rvsdg.Port, bool) {
	if len(values) != 2 {
		return nil, rvsdg.Port{}, false
	}
	a, aok := values[0].(uint64)
	c, cok := values[1].(uint64)
	if !aok || !cok {
		return nil, rvsdg.Port{}, false
	}
	if b.Op.isCompare() {
		var r uint64
		if evalCompare(b.Op, a, c) {
			r = 1
		}
		return r, rvsdg.NewPort(rtype.Bool), true
	}
	mask := widthMask(b.Width)
	var r uint64
	switch b.Op {
	case Add:
		r = (a + c) & mask
	case Sub:
		r = (a - c) & mask
	case Mul:
		r = (a * c) & mask
	case And:
		r = a & c
	case Or:
		r = a | c
	case Xor:
		r = a ^ c
	default:
		return nil, rvsdg.Port{}, false
	}
	return r, rvsdg.NewPort(b.operandType()), true
}

func widthMask(width uint64) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// AddBinary applies r's current NormalForm to a new Binary(op, width) node
// over a, c.
func AddBinary(r *rvsdg.Region, op BinaryKind, width uint64, a, c *rvsdg.Output) (*rvsdg.Output, error) {
	return r.AddNode(Binary{Op: op, Width: width}, []*rvsdg.Output{a, c})
}

var (
	_ rvsdg.BinaryReducer  = Binary{}
	_ rvsdg.CompareReducer = Binary{}
	_ rvsdg.ConstantFolder = Binary{}
)

package rvsdg

import "rvsdgc/internal/rtype"

// tryConstantFold applies op's ConstantFolder (if implemented) when every
// operand traces back to a ConstantOperation, minting a new constant node
// via the graph's registered ConstantFactory.
func (r *Region) tryConstantFold(op SimpleOperation, operands []*Output) (*Output, bool, error) {
	folder, ok := op.(ConstantFolder)
	if !ok || r.graph.constantFactory == nil {
		return nil, false, nil
	}
	values := make([]any, len(operands))
	for i, o := range operands {
		if o.node == nil {
			return nil, false, nil
		}
		co, ok := o.node.op.(ConstantOperation)
		if !ok {
			return nil, false, nil
		}
		values[i] = co.ConstantValue()
	}
	result, resultPort, ok := folder.FoldConstants(values)
	if !ok {
		return nil, false, nil
	}
	constOp := r.graph.constantFactory(result, resultPort.Type)
	return r.appendNode(constOp, nil).Output(0), nil
}

// tryReduce applies op's UnaryReducer or BinaryReducer (if implemented),
// returning the Output that should stand in for a freshly inserted node.
func (r *Region) tryReduce(op SimpleOperation, operands []*Output) (*Output, bool, error) {
	switch red := op.(type) {
	case UnaryReducer:
		if len(operands) != 1 {
			return nil, false, nil
		}
		path := red.CanReduceOperand(operands[0])
		if path == ReduceNone {
			return nil, false, nil
		}
		out, err := red.ReduceOperand(path, operands[0])
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	case BinaryReducer:
		if len(operands) != 2 {
			return nil, false, nil
		}
		path := red.CanReduceOperands(operands[0], operands[1])
		if path != ReduceNone {
			out, err := red.ReduceOperands(path, operands[0], operands[1])
			if err != nil {
				return nil, false, err
			}
			return out, true, nil
		}
		// No identity/annihilator rewrite applies; a compare-family
		// operation may still be statically decidable (e.g. comparing two
		// operands the identity rewrites above don't recognize as equal
		// but that a CompareReducer can still resolve from provenance).
		if cmp, ok := op.(CompareReducer); ok && r.graph.constantFactory != nil {
			switch cmp.ReduceCompare(operands[0], operands[1]) {
			case StaticTrue:
				return r.appendNode(r.graph.constantFactory(uint64(1), rtype.Bool), nil).Output(0), true, nil
			case StaticFalse:
				return r.appendNode(r.graph.constantFactory(uint64(0), rtype.Bool), nil).Output(0), true, nil
			}
		}
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdgerr"
)

// Lambda is the function-definition structural operator: one sub-region
// whose arguments are the parameters followed by the
// captured free variables, and whose results are the return values. The
// node's own single output is a first-class rtype.Fn value; its only
// outer operands are the captured variables (parameters have no outer
// counterpart; they are supplied at call time).
type Lambda struct {
	ParamTypes    []rtype.Type
	CapturedTypes []rtype.Type
	ResultTypes   []rtype.Type
}

func (l *Lambda) Kind() string { return "lambda" }

func (l *Lambda) InputPorts() []rvsdg.Port { return portsFor(l.CapturedTypes) }

func (l *Lambda) ResultPorts() []rvsdg.Port {
	return []rvsdg.Port{rvsdg.NewPort(rtype.Fn{Params: l.ParamTypes, Results: l.ResultTypes})}
}

func (l *Lambda) NSubregions() int { return 1 }

func (l *Lambda) Equals(other rvsdg.Operation) bool {
	ol, ok := other.(*Lambda)
	if !ok {
		return false
	}
	return rtype.Fn{Params: l.ParamTypes, Results: l.ResultTypes}.Equal(
		rtype.Fn{Params: ol.ParamTypes, Results: ol.ResultTypes})
}

func (l *Lambda) DebugString() string { return "lambda" }

func (l *Lambda) Clone() rvsdg.Operation {
	return &Lambda{
		ParamTypes:    append([]rtype.Type{}, l.ParamTypes...),
		CapturedTypes: append([]rtype.Type{}, l.CapturedTypes...),
		ResultTypes:   append([]rtype.Type{}, l.ResultTypes...),
	}
}

// LambdaPopulate builds a function body given its sub-region, its
// parameter arguments, and its captured-variable arguments (mirroring the
// capturedVars passed to NewLambda, in order). It must return one value
// per declared return.
type LambdaPopulate func(sub *rvsdg.Region, params []*rvsdg.Output, captured []*rvsdg.Output) (returns []*rvsdg.Output, err error)

// NewLambda builds a lambda node of the given parameter signature,
// capturing capturedVars from the enclosing region.
func NewLambda(r *rvsdg.Region, paramTypes []rtype.Type, capturedVars []*rvsdg.Output, populate LambdaPopulate) (*rvsdg.Node, error) {
	capturedTypes := make([]rtype.Type, len(capturedVars))
	for i, v := range capturedVars {
		capturedTypes[i] = v.Type()
	}
	op := &Lambda{ParamTypes: paramTypes, CapturedTypes: capturedTypes}
	n, err := r.NewStructuralNode(op, capturedVars)
	if err != nil {
		return nil, err
	}
	sub := n.Subregions()[0]
	params := make([]*rvsdg.Output, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = sub.AddArgument(t)
	}
	captured := make([]*rvsdg.Output, len(capturedTypes))
	for i, t := range capturedTypes {
		captured[i] = sub.AddArgument(t)
	}
	returns, err := populate(sub, params, captured)
	if err != nil {
		return nil, err
	}
	resultTypes := make([]rtype.Type, len(returns))
	for i, v := range returns {
		resultTypes[i] = v.Type()
		if _, err := sub.AddResult(v); err != nil {
			return nil, err
		}
	}
	op.ResultTypes = resultTypes
	n.FinalizeOutputs([]rvsdg.Port{rvsdg.NewPort(rtype.Fn{Params: paramTypes, Results: resultTypes})})
	return n, nil
}

// LambdaParam returns the i'th parameter's argument Output inside n's
// sub-region.
func LambdaParam(n *rvsdg.Node, i int) *rvsdg.Output {
	return n.Subregions()[0].Arguments()[i]
}

// LambdaReturn returns the i'th return value's result Input inside n's
// sub-region.
func LambdaReturn(n *rvsdg.Node, i int) *rvsdg.Input {
	return n.Subregions()[0].Results()[i]
}

var _ rvsdg.StructuralOperation = &Lambda{}

// Call invokes a first-class function value. Conservatively state-
// effectful: the callee's body is opaque to the caller's region, so a call
// must never be swept by dead-node elimination purely for lack of result
// users. lambda/call are the only boundary where a region loses direct
// visibility into another region's effects.
type Call struct {
	ParamTypes  []rtype.Type
	ResultTypes []rtype.Type
}

func (c Call) Kind() string { return "call" }

func (c Call) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, 1+len(c.ParamTypes))
	ports[0] = rvsdg.NewPort(rtype.Fn{Params: c.ParamTypes, Results: c.ResultTypes})
	for i, t := range c.ParamTypes {
		ports[1+i] = rvsdg.NewPort(t)
	}
	return ports
}

func (c Call) ResultPorts() []rvsdg.Port { return portsFor(c.ResultTypes) }

func (c Call) StateEffectful() bool { return true }

func (c Call) Equals(other rvsdg.Operation) bool {
	oc, ok := other.(Call)
	if !ok {
		return false
	}
	return rtype.Fn{Params: c.ParamTypes, Results: c.ResultTypes}.Equal(
		rtype.Fn{Params: oc.ParamTypes, Results: oc.ResultTypes})
}

func (c Call) DebugString() string    { return "call" }
func (c Call) Clone() rvsdg.Operation { return c }

// AddCall inserts a call node invoking fn with args.
func AddCall(r *rvsdg.Region, fn *rvsdg.Output, args []*rvsdg.Output, resultTypes []rtype.Type) (*rvsdg.Output, error) {
	fnType, ok := fn.Type().(rtype.Fn)
	if !ok {
		return nil, fmt.Errorf("ops: call operand is not a function value, got %s", fn.Type())
	}
	if len(fnType.Params) != len(args) {
		return nil, rvsdgerr.ArityMismatch("call arguments", len(fnType.Params), len(args))
	}
	operands := append([]*rvsdg.Output{fn}, args...)
	return r.AddNode(Call{ParamTypes: fnType.Params, ResultTypes: resultTypes}, operands)
}

var _ rvsdg.SimpleOperation = Call{}

// Package ops implements the concrete simple and structural operations of
// the RVSDG core: bitstring arithmetic/compare, memory state threading, the
// γ/θ/λ/φ structural operator family, and the HLS buffer dialect used by
// the redundant-buffer-elimination pass.
package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

// Constant is a zero-operand simple operation denoting a literal bitstring
// value.
type Constant struct {
	Value uint64
	Typ   rtype.Type
}

func (c Constant) Kind() string           { return "bits.constant" }
func (c Constant) InputPorts() []rvsdg.Port  { return nil }
func (c Constant) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(c.Typ)} }
func (c Constant) StateEffectful() bool    { return false }
func (c Constant) Equals(other rvsdg.Operation) bool {
	oc, ok := other.(Constant)
	return ok && oc.Value == c.Value && oc.Typ.Equal(c.Typ)
}
func (c Constant) DebugString() string { return fmt.Sprintf("%s(%d)", c.Typ.String(), c.Value) }
func (c Constant) Clone() rvsdg.Operation { return Constant{Value: c.Value, Typ: c.Typ} }
func (c Constant) ConstantValue() any     { return c.Value }

var _ rvsdg.ConstantOperation = Constant{}

// NewConstantFactory is the rvsdg.ConstantFactory implementation registered
// on every graph constructed by this package's builders
// (graph.SetConstantFactory(ops.NewConstantFactory)); it lets
// Region.AddNode's constant-folding rewrite mint new Constant nodes without
// the core package depending on this one.
func NewConstantFactory(v any, t rtype.Type) rvsdg.SimpleOperation {
	u, _ := v.(uint64)
	return Constant{Value: u, Typ: t}
}

// AddConstant inserts a constant node in r and returns its output.
func AddConstant(r *rvsdg.Region, value uint64, t rtype.Type) (*rvsdg.Output, error) {
	return r.AddNode(Constant{Value: value, Typ: t}, nil)
}

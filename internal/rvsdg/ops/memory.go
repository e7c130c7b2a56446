package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

// StateMerge (a.k.a. mux) combines N incoming memory-state tokens, e.g.
// the join point after a branch, into a single outgoing token that
// summarizes "all of these states have happened".
type StateMerge struct {
	N uint64
}

func (m StateMerge) Kind() string { return "mem.state_merge" }
func (m StateMerge) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, m.N)
	for i := range ports {
		ports[i] = rvsdg.NewPort(rtype.MemState{})
	}
	return ports
}
func (m StateMerge) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(rtype.MemState{})} }
func (m StateMerge) StateEffectful() bool    { return true }
func (m StateMerge) Equals(other rvsdg.Operation) bool {
	om, ok := other.(StateMerge)
	return ok && om.N == m.N
}
func (m StateMerge) DebugString() string    { return fmt.Sprintf("state_merge/%d", m.N) }
func (m StateMerge) Clone() rvsdg.Operation { return StateMerge{N: m.N} }

// AddStateMerge inserts a state_merge node over states.
func AddStateMerge(r *rvsdg.Region, states []*rvsdg.Output) (*rvsdg.Output, error) {
	return r.AddNode(StateMerge{N: uint64(len(states))}, states)
}

// Load reads SizeBytes from an address, ordered after N memory-state
// tokens. The address is InputPorts()[0]; InputPorts()[1:] are the state
// operands.
type Load struct {
	N         uint64
	SizeBytes uint64
	ValueType rtype.Type
	PtrType   rtype.Type
}

func (l Load) Kind() string { return "mem.load" }
func (l Load) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, 1+l.N)
	ports[0] = rvsdg.NewPort(l.PtrType)
	for i := uint64(0); i < l.N; i++ {
		ports[1+i] = rvsdg.NewPort(rtype.MemState{})
	}
	return ports
}
func (l Load) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(l.ValueType)} }
func (l Load) StateEffectful() bool    { return false } // a pure read: no state result to keep alive
func (l Load) Equals(other rvsdg.Operation) bool {
	ol, ok := other.(Load)
	return ok && ol.N == l.N && ol.SizeBytes == l.SizeBytes && ol.ValueType.Equal(l.ValueType) && ol.PtrType.Equal(l.PtrType)
}
func (l Load) DebugString() string    { return fmt.Sprintf("load/%d(%dB)", l.N, l.SizeBytes) }
func (l Load) Clone() rvsdg.Operation { return l }

// AddLoad inserts a load over address addr ordered after states. When the
// "mem.load" NormalForm has Reducible set and states is a single operand
// originating from a StateMerge node, the load-mux reduction flattens the
// merge into the load's own state operand list before the node is
// created, rather than loading from the merged summary token.
func AddLoad(r *rvsdg.Region, addr *rvsdg.Output, states []*rvsdg.Output, size uint64, valueType rtype.Type) (*rvsdg.Output, error) {
	if r.Graph().NormalForm("mem.load").Reducible && len(states) == 1 && states[0].Node() != nil {
		if merge, ok := states[0].Node().Operation().(StateMerge); ok {
			flattened := make([]*rvsdg.Output, len(states[0].Node().Inputs()))
			for i, in := range states[0].Node().Inputs() {
				flattened[i] = in.Origin()
			}
			_ = merge
			states = flattened
		}
	}
	operands := append([]*rvsdg.Output{addr}, states...)
	return r.AddNode(Load{N: uint64(len(states)), SizeBytes: size, ValueType: valueType, PtrType: addr.Type()}, operands)
}

// Store writes Value to an address, ordered after N memory-state tokens,
// and produces a new outgoing memory-state token.
type Store struct {
	N         uint64
	SizeBytes uint64
	ValueType rtype.Type
	PtrType   rtype.Type
}

func (s Store) Kind() string { return "mem.store" }
func (s Store) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, 2+s.N)
	ports[0] = rvsdg.NewPort(s.PtrType)
	ports[1] = rvsdg.NewPort(s.ValueType)
	for i := uint64(0); i < s.N; i++ {
		ports[2+i] = rvsdg.NewPort(rtype.MemState{})
	}
	return ports
}
func (s Store) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(rtype.MemState{})} }
func (s Store) StateEffectful() bool    { return true }
func (s Store) Equals(other rvsdg.Operation) bool {
	os, ok := other.(Store)
	return ok && os.N == s.N && os.SizeBytes == s.SizeBytes && os.ValueType.Equal(s.ValueType) && os.PtrType.Equal(s.PtrType)
}
func (s Store) DebugString() string    { return fmt.Sprintf("store/%d(%dB)", s.N, s.SizeBytes) }
func (s Store) Clone() rvsdg.Operation { return s }

// AddStore inserts a store of value to addr, ordered after states.
func AddStore(r *rvsdg.Region, addr, value *rvsdg.Output, states []*rvsdg.Output, size uint64) (*rvsdg.Output, error) {
	operands := append([]*rvsdg.Output{addr, value}, states...)
	return r.AddNode(Store{N: uint64(len(states)), SizeBytes: size, ValueType: value.Type(), PtrType: addr.Type()}, operands)
}

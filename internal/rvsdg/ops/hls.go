package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

// Buffer is the HLS dialect's pipeline register: it holds up to Capacity
// in-flight values of the operand's type. PassThrough marks a buffer that
// forwards its operand without pipeline storage: RedundantBufferElimination
// in internal/opt sets it on buffers whose source already serializes its
// accesses, and skips buffers that already have it, mirroring jlm's
// buffer_op::pass_through
// (original source: jlm::hls::remove_redundant_buf, "if (!buf->pass_through
// && eliminate_buf(...))").
type Buffer struct {
	Typ         rtype.Type
	Capacity    uint64
	PassThrough bool
}

func (b Buffer) Kind() string             { return "hls.buffer" }
func (b Buffer) InputPorts() []rvsdg.Port  { return []rvsdg.Port{rvsdg.NewPort(b.Typ)} }
func (b Buffer) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(b.Typ)} }
func (b Buffer) StateEffectful() bool      { return true }
func (b Buffer) Equals(other rvsdg.Operation) bool {
	ob, ok := other.(Buffer)
	return ok && ob.Typ.Equal(b.Typ) && ob.Capacity == b.Capacity && ob.PassThrough == b.PassThrough
}
func (b Buffer) DebugString() string    { return fmt.Sprintf("buffer/%d", b.Capacity) }
func (b Buffer) Clone() rvsdg.Operation { return b }

// AddBuffer inserts a buffer of the given capacity over value.
func AddBuffer(r *rvsdg.Region, value *rvsdg.Output, capacity uint64, passThrough bool) (*rvsdg.Output, error) {
	return r.AddNode(Buffer{Typ: value.Type(), Capacity: capacity, PassThrough: passThrough}, []*rvsdg.Output{value})
}

// Branch demultiplexes value to exactly one of N outputs, the one selected
// by a ctl(n) predicate (InputPorts()[0]); the other N-1 outputs never
// fire. Used at the HLS dialect's gamma lowering boundary.
type Branch struct {
	Typ rtype.Type
	N   uint64
}

func (b Branch) Kind() string { return "hls.branch" }
func (b Branch) InputPorts() []rvsdg.Port {
	return []rvsdg.Port{rvsdg.NewPort(rtype.Ctl{NAlternatives: b.N}), rvsdg.NewPort(b.Typ)}
}
func (b Branch) ResultPorts() []rvsdg.Port { return portsFor(repeatType(b.Typ, int(b.N))) }
func (b Branch) StateEffectful() bool      { return true }
func (b Branch) Equals(other rvsdg.Operation) bool {
	ob, ok := other.(Branch)
	return ok && ob.Typ.Equal(b.Typ) && ob.N == b.N
}
func (b Branch) DebugString() string    { return fmt.Sprintf("branch/%d", b.N) }
func (b Branch) Clone() rvsdg.Operation { return b }

// AddBranch inserts a branch demultiplexing value to n outputs selected by
// predicate.
func AddBranch(r *rvsdg.Region, predicate, value *rvsdg.Output, n uint64) (*rvsdg.Output, error) {
	return r.AddNode(Branch{Typ: value.Type(), N: n}, []*rvsdg.Output{predicate, value})
}

// Fork broadcasts value to N outputs, used to duplicate a single producer
// across concurrent consumers in the HLS dialect without violating single-
// origin wiring.
type Fork struct {
	Typ rtype.Type
	N   uint64
}

func (f Fork) Kind() string               { return "hls.fork" }
func (f Fork) InputPorts() []rvsdg.Port   { return []rvsdg.Port{rvsdg.NewPort(f.Typ)} }
func (f Fork) ResultPorts() []rvsdg.Port  { return portsFor(repeatType(f.Typ, int(f.N))) }
func (f Fork) StateEffectful() bool       { return true }
func (f Fork) Equals(other rvsdg.Operation) bool {
	of, ok := other.(Fork)
	return ok && of.Typ.Equal(f.Typ) && of.N == f.N
}
func (f Fork) DebugString() string    { return fmt.Sprintf("fork/%d", f.N) }
func (f Fork) Clone() rvsdg.Operation { return f }

// AddFork inserts a fork broadcasting value to n outputs.
func AddFork(r *rvsdg.Region, value *rvsdg.Output, n uint64) (*rvsdg.Output, error) {
	return r.AddNode(Fork{Typ: value.Type(), N: n}, []*rvsdg.Output{value})
}

// LocalLoad and LocalStore are the HLS dialect's scratchpad-memory
// counterparts to Load/Store: they read/write a private per-region local
// memory rather than the module's shared address space, and so never alias
// with it. remove_redundant_buf treats a buffer fed by one of these as
// eliminable (the local memory already serializes its own accesses).
type LocalLoad struct {
	N         uint64
	ValueType rtype.Type
	PtrType   rtype.Type
}

func (l LocalLoad) Kind() string { return "hls.local_load" }
func (l LocalLoad) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, 1+l.N)
	ports[0] = rvsdg.NewPort(l.PtrType)
	for i := uint64(0); i < l.N; i++ {
		ports[1+i] = rvsdg.NewPort(rtype.MemState{})
	}
	return ports
}
func (l LocalLoad) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(l.ValueType)} }
func (l LocalLoad) StateEffectful() bool      { return false }
func (l LocalLoad) Equals(other rvsdg.Operation) bool {
	ol, ok := other.(LocalLoad)
	return ok && ol.N == l.N && ol.ValueType.Equal(l.ValueType) && ol.PtrType.Equal(l.PtrType)
}
func (l LocalLoad) DebugString() string    { return "local_load" }
func (l LocalLoad) Clone() rvsdg.Operation { return l }

// AddLocalLoad inserts a local_load over addr ordered after states.
func AddLocalLoad(r *rvsdg.Region, addr *rvsdg.Output, states []*rvsdg.Output, valueType rtype.Type) (*rvsdg.Output, error) {
	operands := append([]*rvsdg.Output{addr}, states...)
	return r.AddNode(LocalLoad{N: uint64(len(states)), ValueType: valueType, PtrType: addr.Type()}, operands)
}

type LocalStore struct {
	N         uint64
	ValueType rtype.Type
	PtrType   rtype.Type
}

func (s LocalStore) Kind() string { return "hls.local_store" }
func (s LocalStore) InputPorts() []rvsdg.Port {
	ports := make([]rvsdg.Port, 2+s.N)
	ports[0] = rvsdg.NewPort(s.PtrType)
	ports[1] = rvsdg.NewPort(s.ValueType)
	for i := uint64(0); i < s.N; i++ {
		ports[2+i] = rvsdg.NewPort(rtype.MemState{})
	}
	return ports
}
func (s LocalStore) ResultPorts() []rvsdg.Port { return []rvsdg.Port{rvsdg.NewPort(rtype.MemState{})} }
func (s LocalStore) StateEffectful() bool      { return true }
func (s LocalStore) Equals(other rvsdg.Operation) bool {
	os, ok := other.(LocalStore)
	return ok && os.N == s.N && os.ValueType.Equal(s.ValueType) && os.PtrType.Equal(s.PtrType)
}
func (s LocalStore) DebugString() string    { return "local_store" }
func (s LocalStore) Clone() rvsdg.Operation { return s }

// AddLocalStore inserts a local_store of value to addr, ordered after
// states.
func AddLocalStore(r *rvsdg.Region, addr, value *rvsdg.Output, states []*rvsdg.Output) (*rvsdg.Output, error) {
	operands := append([]*rvsdg.Output{addr, value}, states...)
	return r.AddNode(LocalStore{N: uint64(len(states)), ValueType: value.Type(), PtrType: addr.Type()}, operands)
}

func repeatType(t rtype.Type, n int) []rtype.Type {
	ts := make([]rtype.Type, n)
	for i := range ts {
		ts[i] = t
	}
	return ts
}

var (
	_ rvsdg.SimpleOperation = Buffer{}
	_ rvsdg.SimpleOperation = Branch{}
	_ rvsdg.SimpleOperation = Fork{}
	_ rvsdg.SimpleOperation = LocalLoad{}
	_ rvsdg.SimpleOperation = LocalStore{}
)

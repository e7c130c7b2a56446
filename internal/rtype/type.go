// Package rtype implements the RVSDG value-type system: a small closed set
// of structurally-equal, reference-counted-by-handle types shared across
// the graph (bit, control, pointer, memory/IO state, function, array,
// struct, bundle).
package rtype

import (
	"fmt"
	"sort"
	"strings"
)

// Type is a structural value-class. Two types are interchangeable wherever
// Equal reports true, regardless of identity.
type Type interface {
	// String renders a debug-friendly, deterministic representation.
	String() string
	// Equal reports structural equality with other.
	Equal(other Type) bool
	// hashKey is a canonical string used for interning and map keys; it is
	// unexported so only this package can mint new Type kinds.
	hashKey() string
}

// Bit is a bitstring type of the given width, e.g. bit(1) for booleans used
// outside theta/gamma predicates, bit(32), bit(64).
type Bit struct {
	Width uint64
}

func (b Bit) String() string { return fmt.Sprintf("bit%d", b.Width) }
func (b Bit) Equal(o Type) bool {
	ob, ok := o.(Bit)
	return ok && ob.Width == b.Width
}
func (b Bit) hashKey() string { return b.String() }

// Ctl is the control type of a gamma predicate: a value chosen from
// [0, NAlternatives).
type Ctl struct {
	NAlternatives uint64
}

func (c Ctl) String() string { return fmt.Sprintf("ctl(%d)", c.NAlternatives) }
func (c Ctl) Equal(o Type) bool {
	oc, ok := o.(Ctl)
	return ok && oc.NAlternatives == c.NAlternatives
}
func (c Ctl) hashKey() string { return c.String() }

// Bool is the 1-bit boolean type reserved for theta continue-predicates
// and compare results, kept distinct from Ctl which is reserved for gamma
// predicates.
var Bool = Bit{Width: 1}

// Ptr is a pointer to a pointee type.
type Ptr struct {
	Pointee Type
}

func (p Ptr) String() string { return fmt.Sprintf("ptr<%s>", p.Pointee.String()) }
func (p Ptr) Equal(o Type) bool {
	op, ok := o.(Ptr)
	return ok && op.Pointee.Equal(p.Pointee)
}
func (p Ptr) hashKey() string { return p.String() }

// MemState is the abstract memory-state token threaded through
// load/store/call operations to order their effects.
type MemState struct{}

func (MemState) String() string       { return "memstate" }
func (MemState) Equal(o Type) bool     { _, ok := o.(MemState); return ok }
func (MemState) hashKey() string       { return "memstate" }

// IOState is the abstract I/O-state token for volatile external effects.
type IOState struct{}

func (IOState) String() string   { return "iostate" }
func (IOState) Equal(o Type) bool { _, ok := o.(IOState); return ok }
func (IOState) hashKey() string  { return "iostate" }

// Fn is a first-class function type: ordered parameter and result types.
type Fn struct {
	Params  []Type
	Results []Type
}

func (f Fn) String() string {
	return fmt.Sprintf("fn(%s)->(%s)", joinTypes(f.Params), joinTypes(f.Results))
}
func (f Fn) Equal(o Type) bool {
	of, ok := o.(Fn)
	if !ok || len(of.Params) != len(f.Params) || len(of.Results) != len(f.Results) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equal(of.Params[i]) {
			return false
		}
	}
	for i := range f.Results {
		if !f.Results[i].Equal(of.Results[i]) {
			return false
		}
	}
	return true
}
func (f Fn) hashKey() string { return f.String() }

// Array is a fixed-length array of a homogeneous element type.
type Array struct {
	Elem Type
	N    uint64
}

func (a Array) String() string { return fmt.Sprintf("array<%s,%d>", a.Elem.String(), a.N) }
func (a Array) Equal(o Type) bool {
	oa, ok := o.(Array)
	return ok && oa.N == a.N && oa.Elem.Equal(a.Elem)
}
func (a Array) hashKey() string { return a.String() }

// Struct is an ordered sequence of named, typed fields.
type Struct struct {
	Fields []Field
}

// Field is one member of a Struct or Bundle.
type Field struct {
	Name string
	Type Type
}

func (s Struct) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.String())
	}
	return fmt.Sprintf("struct{%s}", strings.Join(parts, ","))
}
func (s Struct) Equal(o Type) bool {
	os, ok := o.(Struct)
	if !ok || len(os.Fields) != len(s.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != os.Fields[i].Name || !s.Fields[i].Type.Equal(os.Fields[i].Type) {
			return false
		}
	}
	return true
}
func (s Struct) hashKey() string { return s.String() }

// Bundle is a named-field aggregate, distinct from Struct in that field
// order is not semantically significant (compared as a set of names).
type Bundle struct {
	Fields []Field
}

func (b Bundle) String() string {
	parts := make([]string, len(b.Fields))
	for i, f := range b.Fields {
		parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.String())
	}
	return fmt.Sprintf("bundle{%s}", strings.Join(parts, ","))
}
func (b Bundle) Equal(o Type) bool {
	ob, ok := o.(Bundle)
	if !ok || len(ob.Fields) != len(b.Fields) {
		return false
	}
	byName := make(map[string]Type, len(b.Fields))
	for _, f := range b.Fields {
		byName[f.Name] = f.Type
	}
	for _, f := range ob.Fields {
		t, found := byName[f.Name]
		if !found || !t.Equal(f.Type) {
			return false
		}
	}
	return true
}

// hashKey sorts the fields so that bundles Equal under any field order
// share one key.
func (b Bundle) hashKey() string {
	parts := make([]string, len(b.Fields))
	for i, f := range b.Fields {
		parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.hashKey())
	}
	sort.Strings(parts)
	return fmt.Sprintf("bundle{%s}", strings.Join(parts, ","))
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

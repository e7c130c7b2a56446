package rvsdg

import "rvsdgc/internal/rtype"

// Port binds a type to a position on an operation's signature: an ordered
// input or result slot that a node instance will realize as an Input or
// Output. Attr carries an optional free-form annotation (e.g. a named
// struct field, an alignment hint) that does not participate in equality.
type Port struct {
	Type rtype.Type
	Attr string
}

// NewPort builds an attribute-less port of the given type.
func NewPort(t rtype.Type) Port { return Port{Type: t} }

// WithAttr returns a copy of p carrying the given attribute.
func (p Port) WithAttr(attr string) Port { return Port{Type: p.Type, Attr: attr} }

package rtype

import "fmt"

// Interner deduplicates Type values by structural content so that pointer
// identity can stand in for Equal within a single graph. It is owned by one
// rvsdg.Graph; there is no process-global interning table.
type Interner struct {
	byKey map[string]Type
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{byKey: make(map[string]Type)}
}

// Intern returns the canonical instance structurally equal to t, inserting
// t as canonical if this is the first time its hashKey is seen.
func (in *Interner) Intern(t Type) Type {
	k := t.hashKey()
	if existing, ok := in.byKey[k]; ok {
		return existing
	}
	in.byKey[k] = t
	return t
}

// NewBit validates width ∈ [1, 2^64) and interns the resulting Bit type.
// Width 0 is rejected: the full uint64 range is allowed but the empty
// bitstring is not.
func (in *Interner) NewBit(width uint64) (Type, error) {
	if width == 0 {
		return nil, fmt.Errorf("rtype: bit width must be >= 1, got 0")
	}
	return in.Intern(Bit{Width: width}), nil
}

// NewCtl validates nalternatives >= 1 and interns the resulting Ctl type.
func (in *Interner) NewCtl(n uint64) (Type, error) {
	if n == 0 {
		return nil, fmt.Errorf("rtype: ctl alternatives must be >= 1, got 0")
	}
	return in.Intern(Ctl{NAlternatives: n}), nil
}

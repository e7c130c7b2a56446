package ops

import (
	"fmt"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/rvsdg"
)

func portsFor(types []rtype.Type) []rvsdg.Port {
	ports := make([]rvsdg.Port, len(types))
	for i, t := range types {
		ports[i] = rvsdg.NewPort(t)
	}
	return ports
}

// Match converts a Width-bit value into a ctl(N) selector, the value a
// gamma predicate input expects. N==2 with Width==1 is the common
// if/else case: bit value 0 selects alternative 0, 1 selects alternative 1.
type Match struct {
	N     uint64
	Width uint64
}

func (m Match) Kind() string { return "ctl.match" }
func (m Match) InputPorts() []rvsdg.Port {
	return []rvsdg.Port{rvsdg.NewPort(rtype.Bit{Width: m.Width})}
}
func (m Match) ResultPorts() []rvsdg.Port {
	return []rvsdg.Port{rvsdg.NewPort(rtype.Ctl{NAlternatives: m.N})}
}
func (m Match) StateEffectful() bool { return false }
func (m Match) Equals(other rvsdg.Operation) bool {
	om, ok := other.(Match)
	return ok && om.N == m.N && om.Width == m.Width
}
func (m Match) DebugString() string    { return fmt.Sprintf("match/%d", m.N) }
func (m Match) Clone() rvsdg.Operation { return m }

// AddMatch inserts a match node converting value into a ctl(n) selector.
func AddMatch(r *rvsdg.Region, value *rvsdg.Output, n uint64) (*rvsdg.Output, error) {
	width, ok := value.Type().(rtype.Bit)
	if !ok {
		return nil, fmt.Errorf("ops: match operand must be a bitstring, got %s", value.Type())
	}
	return r.AddNode(Match{N: n, Width: width.Width}, []*rvsdg.Output{value})
}

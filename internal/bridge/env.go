package bridge

import (
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/tac"
)

// Env binds each SSA variable already constructed to its rvsdg.Output.
// Building a structural node's sub-region forks a child Env seeded from
// the parent's bindings, since the sub-region sees the enclosing scope
// only through its own arguments.
type Env struct {
	vals map[*tac.Variable]*rvsdg.Output
}

func newEnv() *Env { return &Env{vals: make(map[*tac.Variable]*rvsdg.Output)} }

func (e *Env) get(v *tac.Variable) (*rvsdg.Output, bool) {
	o, ok := e.vals[v]
	return o, ok
}

func (e *Env) set(v *tac.Variable, o *rvsdg.Output) { e.vals[v] = o }

func (e *Env) child() *Env {
	c := newEnv()
	for k, v := range e.vals {
		c.vals[k] = v
	}
	return c
}

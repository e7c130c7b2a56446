package tac

import (
	"fmt"

	"rvsdgc/internal/rtype"
)

// Builder constructs SSA form on the fly while the caller emits a CFG in
// (at least) reverse-postorder, following Braun, Buchwald, Hack, Leissa,
// Mehne, Zwinkau, "Simple and Efficient Construction of Static Single
// Assignment Form": a variableStack/incompletePhis/sealedBlocks state
// machine that resolves reads of not-yet-sealed blocks with placeholder
// phis, filled in once the block's predecessors are all known.
type Builder struct {
	cfg *CFG

	variableStack  map[string]map[*BasicBlock]*Variable
	declaredType   map[string]rtype.Type
	incompletePhis map[*BasicBlock]map[string]*Tac
	sealedBlocks   map[*BasicBlock]bool
	substitutions  map[*Variable]*Variable

	nextTemp int
}

// NewBuilder starts SSA construction over cfg.
func NewBuilder(cfg *CFG) *Builder {
	return &Builder{
		cfg:            cfg,
		variableStack:  make(map[string]map[*BasicBlock]*Variable),
		declaredType:   make(map[string]rtype.Type),
		incompletePhis: make(map[*BasicBlock]map[string]*Tac),
		sealedBlocks:   make(map[*BasicBlock]bool),
		substitutions:  make(map[*Variable]*Variable),
	}
}

func (b *Builder) newTemp(t rtype.Type) *Variable {
	b.nextTemp++
	return NewVariable(fmt.Sprintf("%%t%d", b.nextTemp), t)
}

// WriteVariable records value as the current definition of the named
// source variable at the end of block.
func (b *Builder) WriteVariable(name string, block *BasicBlock, value *Variable) {
	if b.variableStack[name] == nil {
		b.variableStack[name] = make(map[*BasicBlock]*Variable)
	}
	b.variableStack[name][block] = value
	if _, ok := b.declaredType[name]; !ok {
		b.declaredType[name] = value.Typ
	}
}

// ReadVariable resolves the current SSA definition of name visible at the
// end of block, recursing across predecessors and inserting phis as
// needed (Braun et al., §2.2).
func (b *Builder) ReadVariable(name string, block *BasicBlock) *Variable {
	if v, ok := b.variableStack[name][block]; ok {
		return b.resolve(v)
	}
	return b.readVariableRecursive(name, block)
}

func (b *Builder) readVariableRecursive(name string, block *BasicBlock) *Variable {
	var val *Variable
	switch {
	case !b.sealedBlocks[block]:
		// The block may still gain predecessors; park an incomplete phi to
		// be filled in once SealBlock runs.
		val = b.newTemp(b.declaredType[name])
		phi := &Tac{Op: PhiOp, Results: []*Variable{val}}
		block.Tacs = append([]*Tac{phi}, block.Tacs...)
		if b.incompletePhis[block] == nil {
			b.incompletePhis[block] = make(map[string]*Tac)
		}
		b.incompletePhis[block][name] = phi
	case len(block.Predecessors) == 1:
		val = b.ReadVariable(name, block.Predecessors[0])
	default:
		val = b.newTemp(b.declaredType[name])
		phi := &Tac{Op: PhiOp, Results: []*Variable{val}}
		block.Tacs = append([]*Tac{phi}, block.Tacs...)
		b.WriteVariable(name, block, val) // breaks recursive read cycles through this phi
		val = b.addPhiOperands(name, phi, block)
	}
	b.WriteVariable(name, block, val)
	return val
}

func (b *Builder) addPhiOperands(name string, phi *Tac, block *BasicBlock) *Variable {
	for _, pred := range block.Predecessors {
		phi.Operands = append(phi.Operands, b.ReadVariable(name, pred))
	}
	return b.tryRemoveTrivialPhi(phi)
}

// tryRemoveTrivialPhi collapses a phi whose operands (ignoring self-
// references) all agree on a single value, recording the substitution for
// Finalize to apply globally rather than maintaining a use-list.
func (b *Builder) tryRemoveTrivialPhi(phi *Tac) *Variable {
	self := phi.Results[0]
	var same *Variable
	for _, op := range phi.Operands {
		rop := b.resolve(op)
		if rop == same || rop == self {
			continue
		}
		if same != nil {
			return self // genuinely merges >1 distinct value; keep the phi
		}
		same = rop
	}
	if same == nil {
		same = self // unreachable phi (e.g. an unsealed loop header with no predecessors yet)
	}
	b.substitutions[self] = same
	removePhiFromBlock(phi)
	return same
}

func removePhiFromBlock(phi *Tac) {
	// The phi is still referenced by pointer from b.substitutions and by
	// any block holding it in Tacs; the caller (SealBlock/
	// readVariableRecursive) owns splicing it out of block.Tacs at the end
	// of construction via Finalize, which also drops dead phis.
	phi.Op = "" // marks the tac as removed; Finalize filters these out
}

// resolve follows the substitution chain for v, if any.
func (b *Builder) resolve(v *Variable) *Variable {
	for {
		next, ok := b.substitutions[v]
		if !ok || next == v {
			return v
		}
		v = next
	}
}

// SealBlock declares that block will never gain further predecessors,
// filling in any phi operands that were deferred while it was still open.
func (b *Builder) SealBlock(block *BasicBlock) {
	for name, phi := range b.incompletePhis[block] {
		b.addPhiOperands(name, phi, block)
	}
	delete(b.incompletePhis, block)
	b.sealedBlocks[block] = true
}

// Finalize applies every trivial-phi substitution recorded during
// construction to every block's Tacs, and strips the now-empty phi
// placeholders. Call once after every block has been sealed.
func (b *Builder) Finalize() {
	for _, block := range b.cfg.Blocks {
		kept := block.Tacs[:0]
		for _, t := range block.Tacs {
			if t.Op == "" {
				continue // removed trivial phi
			}
			for i, o := range t.Operands {
				t.Operands[i] = b.resolve(o)
			}
			kept = append(kept, t)
		}
		block.Tacs = kept
	}
}

package textir

import (
	"fmt"
	"strconv"
	"strings"

	"rvsdgc/internal/rtype"
	"rvsdgc/internal/tac"
)

// BuiltFunction is a parsed function ready for internal/bridge.BuildGraph.
type BuiltFunction struct {
	Name   string
	CFG    *tac.CFG
	Params []*tac.Variable
}

// Build converts every function in p into a tac.CFG using the ingress API
// (NewCFG/NewBlock/AddEdge/NewVariable): each block becomes a
// *tac.BasicBlock, each statement a *tac.Tac, and operand identifiers
// resolve to shared *tac.Variable pointers via a per-function symbol
// table.
func Build(p *Program) (map[string]*BuiltFunction, error) {
	out := make(map[string]*BuiltFunction, len(p.Functions))
	for _, fn := range p.Functions {
		built, err := buildFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("textir: function %q: %w", fn.Name, err)
		}
		out[fn.Name] = built
	}
	return out, nil
}

type funcBuilder struct {
	vars map[string]*tac.Variable
}

func (b *funcBuilder) declare(name string, t rtype.Type) (*tac.Variable, error) {
	if _, exists := b.vars[name]; exists {
		return nil, fmt.Errorf("%q is defined more than once (SSA: one static definition per name)", name)
	}
	v := tac.NewVariable(name, t)
	b.vars[name] = v
	return v, nil
}

// forwardRef returns name's Variable, creating an untyped placeholder if
// it has not been declared yet (a loop back-edge phi argument referencing
// a value whose own defining statement appears later in program text).
// The placeholder's type is filled in when that statement is finally
// built, since Variable is shared by pointer with every reference.
func (b *funcBuilder) forwardRef(name string) *tac.Variable {
	if v, ok := b.vars[name]; ok {
		return v
	}
	v := tac.NewVariable(name, nil)
	b.vars[name] = v
	return v
}

func (b *funcBuilder) resolve(name string) (*tac.Variable, error) {
	v, ok := b.vars[name]
	if !ok {
		return nil, fmt.Errorf("%q is used before it is defined", name)
	}
	return v, nil
}

func parseType(s string) (rtype.Type, error) {
	switch {
	case s == "ptr":
		return rtype.Ptr{Pointee: rtype.Bit{Width: 8}}, nil
	case s == "memstate":
		return rtype.MemState{}, nil
	case s == "iostate":
		return rtype.IOState{}, nil
	case strings.HasPrefix(s, "bit"):
		w, err := strconv.ParseUint(s[3:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad bit width in %q: %w", s, err)
		}
		return rtype.Bit{Width: w}, nil
	case strings.HasPrefix(s, "ctl"):
		n, err := strconv.ParseUint(s[3:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad alternative count in %q: %w", s, err)
		}
		return rtype.Ctl{NAlternatives: n}, nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}

func byteSize(t rtype.Type) uint64 {
	bit, ok := t.(rtype.Bit)
	if !ok {
		return 0
	}
	return (bit.Width + 7) / 8
}

var binaryOps = map[string]string{
	"add": "bits.add", "sub": "bits.sub", "mul": "bits.mul",
	"and": "bits.and", "or": "bits.or", "xor": "bits.xor",
	"eq": "bits.eq", "ne": "bits.ne",
	"lt": "bits.lt", "le": "bits.le", "gt": "bits.gt", "ge": "bits.ge",
}

var unaryOps = map[string]string{"neg": "bits.neg", "not": "bits.not"}

func buildFunction(fn *Function) (*BuiltFunction, error) {
	b := &funcBuilder{vars: make(map[string]*tac.Variable)}
	var params []*tac.Variable
	for _, p := range fn.Params {
		t, err := parseType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		v, err := b.declare(p.Name, t)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}

	cfg := tac.NewCFG()
	blocks := make(map[string]*tac.BasicBlock, len(fn.Blocks))
	order := make([]*tac.BasicBlock, 0, len(fn.Blocks))
	for _, blk := range fn.Blocks {
		bb := cfg.NewBlock(blk.Label)
		blocks[blk.Label] = bb
		order = append(order, bb)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("function has no basic blocks")
	}
	cfg.AddEdge(cfg.Entry, order[0])

	for i, blk := range fn.Blocks {
		bb := order[i]
		var returns bool
		for _, stmt := range blk.Stmts {
			switch {
			case stmt.Phi != nil:
				if err := buildPhi(b, bb, stmt.Phi); err != nil {
					return nil, err
				}
			case stmt.CondBr != nil:
				// brcond names no new computation: internal/bridge's
				// trailingPredicate reads the *last* tac's result as the
				// branch predicate (a plain bit value; constructBranch
				// applies ctl.match itself), so Cond must already be the
				// preceding statement's result.
				to, tErr := mustBlock(blocks, stmt.CondBr.True)
				fo, fErr := mustBlock(blocks, stmt.CondBr.False)
				if tErr != nil {
					return nil, tErr
				}
				if fErr != nil {
					return nil, fErr
				}
				if _, err := b.resolve(stmt.CondBr.Cond); err != nil {
					return nil, err
				}
				if len(bb.Tacs) == 0 || len(bb.Tacs[len(bb.Tacs)-1].Results) == 0 || bb.Tacs[len(bb.Tacs)-1].Results[len(bb.Tacs[len(bb.Tacs)-1].Results)-1].Name != stmt.CondBr.Cond {
					return nil, fmt.Errorf("brcond %q: predicate must be the immediately preceding statement's result", stmt.CondBr.Cond)
				}
				// Successor order follows ctl.match's bit convention: 0
				// selects alternative 0, so the false edge is wired first.
				cfg.AddEdge(bb, fo)
				cfg.AddEdge(bb, to)
			case stmt.Br != nil:
				to, err := mustBlock(blocks, stmt.Br.Target)
				if err != nil {
					return nil, err
				}
				cfg.AddEdge(bb, to)
			case stmt.Ret != nil:
				returns = true
				operands := make([]*tac.Variable, len(stmt.Ret.Values))
				for i, name := range stmt.Ret.Values {
					v, err := b.resolve(name)
					if err != nil {
						return nil, err
					}
					operands[i] = v
				}
				bb.Tacs = append(bb.Tacs, &tac.Tac{Op: tac.RetOp, Operands: operands})
			case stmt.Store != nil:
				if err := buildStore(b, bb, stmt.Store); err != nil {
					return nil, err
				}
			case stmt.Assign != nil:
				if err := buildAssign(b, bb, stmt.Assign); err != nil {
					return nil, err
				}
			}
		}
		if returns {
			cfg.AddEdge(bb, cfg.Exit)
		}
	}

	for name, v := range b.vars {
		if v.Typ == nil {
			return nil, fmt.Errorf("variable %q is never assigned a type (check for a typo in a phi argument)", name)
		}
	}

	return &BuiltFunction{Name: fn.Name, CFG: cfg, Params: params}, nil
}

func mustBlock(blocks map[string]*tac.BasicBlock, label string) (*tac.BasicBlock, error) {
	bb, ok := blocks[label]
	if !ok {
		return nil, fmt.Errorf("branch to undeclared block %q", label)
	}
	return bb, nil
}

func buildPhi(b *funcBuilder, bb *tac.BasicBlock, stmt *PhiStmt) error {
	t, err := parseType(stmt.Type)
	if err != nil {
		return fmt.Errorf("phi %q: %w", stmt.Result, err)
	}
	result := b.forwardRef(stmt.Result)
	result.Typ = t
	operands := make([]*tac.Variable, 0, len(stmt.Args))
	// Operand order follows bb.Predecessors, not the textual [label: var]
	// order; resolve by matching the declared label.
	byLabel := make(map[string]string, len(stmt.Args))
	for _, a := range stmt.Args {
		byLabel[a.Label] = a.Var
	}
	for _, pred := range bb.Predecessors {
		name, ok := byLabel[pred.Label]
		if !ok {
			return fmt.Errorf("phi %q has no argument for predecessor block %q", stmt.Result, pred.Label)
		}
		operands = append(operands, b.forwardRef(name))
	}
	bb.Tacs = append(bb.Tacs, &tac.Tac{Op: tac.PhiOp, Operands: operands, Results: []*tac.Variable{result}})
	return nil
}

func buildStore(b *funcBuilder, bb *tac.BasicBlock, stmt *StoreStmt) error {
	addr, err := b.resolve(stmt.Addr)
	if err != nil {
		return err
	}
	value, err := b.resolve(stmt.Value)
	if err != nil {
		return err
	}
	states := make([]*tac.Variable, len(stmt.States))
	for i, name := range stmt.States {
		v, err := b.resolve(name)
		if err != nil {
			return err
		}
		states[i] = v
	}
	size := byteSize(value.Typ)
	bb.Tacs = append(bb.Tacs, &tac.Tac{
		Op:       "mem.store",
		Operands: append([]*tac.Variable{addr, value}, states...),
		Attrs:    map[string]any{"size": size},
	})
	return nil
}

func buildAssign(b *funcBuilder, bb *tac.BasicBlock, stmt *AssignStmt) error {
	switch stmt.Op {
	case "const":
		if stmt.Type == nil {
			return fmt.Errorf("const %q needs an explicit \": type\"", stmt.Result)
		}
		if len(stmt.Args) != 1 || stmt.Args[0].Const == nil {
			return fmt.Errorf("const %q takes exactly one integer argument", stmt.Result)
		}
		t, err := parseType(*stmt.Type)
		if err != nil {
			return fmt.Errorf("const %q: %w", stmt.Result, err)
		}
		result, err := b.declare(stmt.Result, t)
		if err != nil {
			return err
		}
		bb.Tacs = append(bb.Tacs, &tac.Tac{Op: "bits.constant", Results: []*tac.Variable{result}, Attrs: map[string]any{"value": uint64(*stmt.Args[0].Const)}})
		return nil

	case "match":
		if len(stmt.Args) != 2 || stmt.Args[0].Var == "" || stmt.Args[1].Const == nil {
			return fmt.Errorf("match %q takes (predicate, n)", stmt.Result)
		}
		pred, err := b.resolve(stmt.Args[0].Var)
		if err != nil {
			return err
		}
		n := uint64(*stmt.Args[1].Const)
		result, err := b.declare(stmt.Result, rtype.Ctl{NAlternatives: n})
		if err != nil {
			return err
		}
		bb.Tacs = append(bb.Tacs, &tac.Tac{Op: "ctl.match", Operands: []*tac.Variable{pred}, Results: []*tac.Variable{result}, Attrs: map[string]any{"n": n}})
		return nil

	case "load":
		if stmt.Type == nil {
			return fmt.Errorf("load %q needs an explicit \": type\"", stmt.Result)
		}
		if len(stmt.Args) < 1 {
			return fmt.Errorf("load %q takes at least an address argument", stmt.Result)
		}
		operands := make([]*tac.Variable, len(stmt.Args))
		for i, a := range stmt.Args {
			v, err := b.resolve(a.Var)
			if err != nil {
				return err
			}
			operands[i] = v
		}
		t, err := parseType(*stmt.Type)
		if err != nil {
			return fmt.Errorf("load %q: %w", stmt.Result, err)
		}
		result, err := b.declare(stmt.Result, t)
		if err != nil {
			return err
		}
		bb.Tacs = append(bb.Tacs, &tac.Tac{Op: "mem.load", Operands: operands, Results: []*tac.Variable{result}, Attrs: map[string]any{"size": byteSize(t)}})
		return nil
	}

	if kind, ok := binaryOps[stmt.Op]; ok {
		if len(stmt.Args) != 2 {
			return fmt.Errorf("%s %q takes exactly two operands", stmt.Op, stmt.Result)
		}
		a, err := b.resolve(stmt.Args[0].Var)
		if err != nil {
			return err
		}
		c, err := b.resolve(stmt.Args[1].Var)
		if err != nil {
			return err
		}
		resultType := a.Typ
		if isCompareOp(stmt.Op) {
			resultType = rtype.Bool
		}
		result, err := b.declare(stmt.Result, resultType)
		if err != nil {
			return err
		}
		bb.Tacs = append(bb.Tacs, &tac.Tac{Op: kind, Operands: []*tac.Variable{a, c}, Results: []*tac.Variable{result}})
		return nil
	}

	if kind, ok := unaryOps[stmt.Op]; ok {
		if len(stmt.Args) != 1 {
			return fmt.Errorf("%s %q takes exactly one operand", stmt.Op, stmt.Result)
		}
		a, err := b.resolve(stmt.Args[0].Var)
		if err != nil {
			return err
		}
		result, err := b.declare(stmt.Result, a.Typ)
		if err != nil {
			return err
		}
		bb.Tacs = append(bb.Tacs, &tac.Tac{Op: kind, Operands: []*tac.Variable{a}, Results: []*tac.Variable{result}})
		return nil
	}

	return fmt.Errorf("unknown operation %q", stmt.Op)
}

func isCompareOp(op string) bool {
	switch op {
	case "eq", "ne", "lt", "le", "gt", "ge":
		return true
	}
	return false
}

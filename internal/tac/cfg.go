package tac

// BasicBlock is a maximal straight-line sequence of Tacs with explicit,
// ordered edges to its predecessors/successors. Order matters on the
// successor side, since a branch's N-way Tac result selects a successor
// by position.
type BasicBlock struct {
	Label        string
	Tacs         []*Tac
	Predecessors []*BasicBlock
	Successors   []*BasicBlock
}

// CFG is a control-flow graph with distinguished, empty entry/exit nodes.
type CFG struct {
	Entry  *BasicBlock
	Exit   *BasicBlock
	Blocks []*BasicBlock // every block, including Entry/Exit, in creation order
}

// NewCFG builds an empty CFG with just its entry and exit nodes,
// unconnected; the caller wires the body and finally an edge into Exit.
func NewCFG() *CFG {
	entry := &BasicBlock{Label: "entry"}
	exit := &BasicBlock{Label: "exit"}
	return &CFG{Entry: entry, Exit: exit, Blocks: []*BasicBlock{entry, exit}}
}

// NewBlock creates and registers a fresh block.
func (c *CFG) NewBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: label}
	c.Blocks = append(c.Blocks, b)
	return b
}

// AddEdge wires an ordered successor edge from -> to.
func (c *CFG) AddEdge(from, to *BasicBlock) {
	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
}

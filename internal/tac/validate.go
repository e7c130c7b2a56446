package tac

// IsReducible reports whether cfg is a reducible flow graph: a depth-first
// traversal from Entry classifies every edge to a node currently on the
// DFS stack as a back edge, and the graph is reducible iff every such back
// edge's target dominates its source (the standard DFS/back-edge
// dominance test for reducibility; Restructure uses this to decide
// whether a CFG needs controlled node duplication before it can be
// aggregated).
func IsReducible(cfg *CFG) bool {
	dt := BuildDomTree(cfg)
	visited := make(map[*BasicBlock]bool)
	onStack := make(map[*BasicBlock]bool)
	reducible := true
	var visit func(*BasicBlock)
	visit = func(u *BasicBlock) {
		visited[u] = true
		onStack[u] = true
		for _, v := range u.Successors {
			if onStack[v] {
				if !dt.Dominates(v, u) {
					reducible = false
				}
				continue
			}
			if !visited[v] {
				visit(v)
			}
		}
		onStack[u] = false
	}
	visit(cfg.Entry)
	return reducible
}

// NaturalLoop is a back edge's induced loop: Header dominates every block
// in Body, and Latches are the back-edge sources (possibly more than one
// when several paths re-enter the header directly).
type NaturalLoop struct {
	Header  *BasicBlock
	Latches []*BasicBlock
	Body    map[*BasicBlock]bool
}

// FindNaturalLoops enumerates the natural loops of a reducible cfg, one
// per distinct header, merging all back edges that share a header into a
// single NaturalLoop.
func FindNaturalLoops(cfg *CFG) []*NaturalLoop {
	dt := BuildDomTree(cfg)
	byHeader := make(map[*BasicBlock]*NaturalLoop)
	var headers []*BasicBlock
	visited := make(map[*BasicBlock]bool)
	onStack := make(map[*BasicBlock]bool)
	var visit func(*BasicBlock)
	visit = func(u *BasicBlock) {
		visited[u] = true
		onStack[u] = true
		for _, v := range u.Successors {
			if onStack[v] && dt.Dominates(v, u) {
				nl, ok := byHeader[v]
				if !ok {
					nl = &NaturalLoop{Header: v, Body: map[*BasicBlock]bool{v: true}}
					byHeader[v] = nl
					headers = append(headers, v)
				}
				nl.Latches = append(nl.Latches, u)
				collectLoopBody(u, v, nl.Body)
				continue
			}
			if !visited[v] {
				visit(v)
			}
		}
		onStack[u] = false
	}
	visit(cfg.Entry)
	loops := make([]*NaturalLoop, len(headers))
	for i, h := range headers {
		loops[i] = byHeader[h]
	}
	return loops
}

// collectLoopBody walks predecessors backward from latch until reaching
// header, marking every block found as part of the loop body.
func collectLoopBody(latch, header *BasicBlock, body map[*BasicBlock]bool) {
	if body[latch] {
		return
	}
	body[latch] = true
	if latch == header {
		return
	}
	for _, p := range latch.Predecessors {
		collectLoopBody(p, header, body)
	}
}

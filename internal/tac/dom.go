package tac

// DomTree is an immediate-dominator relation computed by the iterative
// reverse-postorder algorithm of Cooper, Harvey, Kennedy ("A Simple, Fast
// Dominance Algorithm", 2001). This is standard-library-only
// compiler-textbook machinery (see DESIGN.md).
type DomTree struct {
	idom     map[*BasicBlock]*BasicBlock
	children map[*BasicBlock][]*BasicBlock
	start    *BasicBlock
}

// BuildDomTree computes the dominator tree of cfg rooted at its entry.
func BuildDomTree(cfg *CFG) *DomTree {
	return buildDomTree(cfg.Blocks, cfg.Entry,
		func(b *BasicBlock) []*BasicBlock { return b.Successors },
		func(b *BasicBlock) []*BasicBlock { return b.Predecessors })
}

// BuildPostDomTree computes the post-dominator tree of cfg: dominance on
// the graph with every edge reversed, rooted at Exit. Used by structural
// validation to find the common merge point of a branch's arms.
func BuildPostDomTree(cfg *CFG) *DomTree {
	return buildDomTree(cfg.Blocks, cfg.Exit,
		func(b *BasicBlock) []*BasicBlock { return b.Predecessors },
		func(b *BasicBlock) []*BasicBlock { return b.Successors })
}

func buildDomTree(all []*BasicBlock, start *BasicBlock, succ, pred func(*BasicBlock) []*BasicBlock) *DomTree {
	order := reversePostorder(start, succ)
	rpoNumber := make(map[*BasicBlock]int, len(order))
	for i, b := range order {
		rpoNumber[b] = i
	}
	idom := map[*BasicBlock]*BasicBlock{start: start}
	changed := true
	for changed {
		changed = false
		for _, b := range order {
			if b == start {
				continue
			}
			var newIdom *BasicBlock
			for _, p := range pred(b) {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, rpoNumber)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	dt := &DomTree{idom: idom, children: make(map[*BasicBlock][]*BasicBlock), start: start}
	for b, p := range idom {
		if b != start {
			dt.children[p] = append(dt.children[p], b)
		}
	}
	return dt
}

func intersect(a, b *BasicBlock, idom map[*BasicBlock]*BasicBlock, rpo map[*BasicBlock]int) *BasicBlock {
	for a != b {
		for rpo[a] > rpo[b] {
			a = idom[a]
		}
		for rpo[b] > rpo[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(start *BasicBlock, succ func(*BasicBlock) []*BasicBlock) []*BasicBlock {
	var post []*BasicBlock
	visited := map[*BasicBlock]bool{}
	var visit func(*BasicBlock)
	visit = func(n *BasicBlock) {
		visited[n] = true
		for _, s := range succ(n) {
			if !visited[s] {
				visit(s)
			}
		}
		post = append(post, n)
	}
	visit(start)
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// IDom returns b's immediate dominator, or nil if b is unreachable from
// the tree's root.
func (dt *DomTree) IDom(b *BasicBlock) *BasicBlock { return dt.idom[b] }

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (dt *DomTree) Dominates(a, b *BasicBlock) bool {
	for {
		if b == a {
			return true
		}
		p, ok := dt.idom[b]
		if !ok || p == b {
			return b == a
		}
		b = p
	}
}

// Children returns b's immediate children in the dominator tree.
func (dt *DomTree) Children(b *BasicBlock) []*BasicBlock { return dt.children[b] }

package tac

// PruneEmptyBlocks collapses straight-line control flow left behind by
// DestructSSA's edge splitting: a block with nothing but a forwarding
// jump, or a block whose only predecessor has nowhere else to go, need
// not stay a separate block. Two rewrites run to a fixpoint:
//
//   - mergeStraightLine splices a block into its sole predecessor when
//     that predecessor has nowhere else to branch to.
//   - elideEmptyForward removes a Tac-less block with exactly one
//     successor, rewiring every predecessor directly to that successor.
//
// Entry and Exit are never merged away: callers rely on cfg.Entry/
// cfg.Exit identity staying stable.
func PruneEmptyBlocks(cfg *CFG) {
	for {
		changed := mergeStraightLineBlocks(cfg)
		changed = elideEmptyForwardBlocks(cfg) || changed
		if !changed {
			return
		}
	}
}

func mergeStraightLineBlocks(cfg *CFG) bool {
	changed := false
	for i := 0; i < len(cfg.Blocks); i++ {
		b := cfg.Blocks[i]
		if b == cfg.Entry || b == cfg.Exit {
			continue
		}
		if len(b.Predecessors) != 1 {
			continue
		}
		pred := b.Predecessors[0]
		if pred == b || pred == cfg.Exit || len(pred.Successors) != 1 {
			continue
		}
		pred.Tacs = append(pred.Tacs, b.Tacs...)
		pred.Successors = b.Successors
		for _, succ := range b.Successors {
			for j, p := range succ.Predecessors {
				if p == b {
					succ.Predecessors[j] = pred
				}
			}
		}
		cfg.removeBlock(b)
		changed = true
		i--
	}
	return changed
}

func elideEmptyForwardBlocks(cfg *CFG) bool {
	changed := false
	for i := 0; i < len(cfg.Blocks); i++ {
		b := cfg.Blocks[i]
		if b == cfg.Entry || b == cfg.Exit {
			continue
		}
		if len(b.Tacs) != 0 || len(b.Successors) != 1 || b.Successors[0] == b {
			continue
		}
		succ := b.Successors[0]
		for _, pred := range b.Predecessors {
			for j, s := range pred.Successors {
				if s == b {
					pred.Successors[j] = succ
				}
			}
		}
		rewired := make([]*BasicBlock, 0, len(succ.Predecessors)+len(b.Predecessors))
		for _, p := range succ.Predecessors {
			if p == b {
				rewired = append(rewired, b.Predecessors...)
			} else {
				rewired = append(rewired, p)
			}
		}
		succ.Predecessors = rewired
		cfg.removeBlock(b)
		changed = true
		i--
	}
	return changed
}

// removeBlock drops b from cfg.Blocks. It does not touch any edges; the
// caller must have already rewired every predecessor/successor pointing
// at b.
func (c *CFG) removeBlock(b *BasicBlock) {
	for i, blk := range c.Blocks {
		if blk == b {
			c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
			return
		}
	}
}

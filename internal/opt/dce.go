package opt

import "rvsdgc/internal/rvsdg"

// DeadNodeElimination deletes every simple node with no users that is not
// state-effectful, recursing top-down into structural sub-regions.
// State-effectful operations are always considered live. Structural
// nodes (γ/θ/λ/φ) are never collapsed by this pass even when unused.
// rvsdg.Node.IsDead is conservative about them by design, and collapsing
// an unused loop/branch/function is a distinct transformation this pass
// does not attempt.
//
// Each region is swept to a local fixpoint: removing one dead node can
// leave its own sole producer with no remaining users, so a single
// bottom-up pass is not enough to collect a whole dead chain in one walk.
type DeadNodeElimination struct{}

func (DeadNodeElimination) Name() string { return "dead-node-elimination" }
func (DeadNodeElimination) Description() string {
	return "removes simple nodes with no users and no state effects"
}

func (DeadNodeElimination) Apply(root *rvsdg.Region) (bool, error) {
	changed := false
	var walkErr error
	rvsdg.WalkStructural(root, func(r *rvsdg.Region) {
		if walkErr != nil {
			return
		}
		for {
			removedAny := false
			it := r.BottomUp()
			for {
				n, ok := it.Next()
				if !ok {
					break
				}
				if !n.IsDead() {
					continue
				}
				if err := r.RemoveNode(n); err != nil {
					walkErr = err
					return
				}
				removedAny = true
				changed = true
			}
			if !removedAny {
				break
			}
		}
	})
	return changed, walkErr
}

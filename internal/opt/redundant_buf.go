package opt

import (
	"rvsdgc/internal/rvsdg"
	"rvsdgc/internal/rvsdg/ops"
)

// RedundantBufferElimination marks an HLS buffer_op pass-through when its
// input already originates from a node that guarantees the buffering
// invariant a buffer exists to provide: local_load, local_store, load,
// store, or a branch/fork whose selected path traces back to one.
// Ported from jlm::hls::remove_redundant_buf
// (jlm/hls/backend/rvsdg2rhls/remove-redundant-buf.cpp, "if (!buf->pass_through
// && eliminate_buf(...))"). A buffer left with no remaining users after
// this rewrite is then swept regardless of Buffer.StateEffectful (always
// true): a buffer nothing reads has no observable effect left to preserve.
type RedundantBufferElimination struct{}

func (RedundantBufferElimination) Name() string { return "redundant-buffer-elimination" }
func (RedundantBufferElimination) Description() string {
	return "marks HLS buffers pass-through when their source already serializes accesses, then sweeps unused buffers"
}

func (rb RedundantBufferElimination) Apply(root *rvsdg.Region) (bool, error) {
	changed := false
	var walkErr error
	rvsdg.WalkStructural(root, func(r *rvsdg.Region) {
		if walkErr != nil {
			return
		}
		it := r.TopDown()
		for {
			n, ok := it.Next()
			if !ok {
				break
			}
			buf, ok := n.Operation().(ops.Buffer)
			if !ok || buf.PassThrough {
				continue
			}
			if !guaranteesBufferInvariant(n.Inputs()[0].Origin(), map[*rvsdg.Node]bool{}) {
				continue
			}
			clone, err := ops.AddBuffer(r, n.Inputs()[0].Origin(), buf.Capacity, true)
			if err != nil {
				walkErr = err
				return
			}
			if err := r.DivertUsers(n.Output(0), clone); err != nil {
				walkErr = err
				return
			}
			changed = true
		}
		if walkErr != nil {
			return
		}
		if sweepDeadBuffers(r) {
			changed = true
		}
	})
	return changed, walkErr
}

// guaranteesBufferInvariant walks back through pure pass-through wiring
// (fork broadcast, branch demultiplex) to the producer ultimately feeding
// origin, reporting whether it is one of the operations that already
// serializes its own accesses. seen guards against looping forever through
// a theta back-edge that feeds itself.
func guaranteesBufferInvariant(origin *rvsdg.Output, seen map[*rvsdg.Node]bool) bool {
	n := origin.Node()
	if n == nil {
		return false // region argument: crosses a boundary, no local guarantee
	}
	if seen[n] {
		return false
	}
	seen[n] = true
	switch n.Operation().(type) {
	case ops.LocalLoad, ops.LocalStore, ops.Load, ops.Store:
		return true
	case ops.Fork:
		return guaranteesBufferInvariant(n.Inputs()[0].Origin(), seen)
	case ops.Branch:
		return guaranteesBufferInvariant(n.Inputs()[1].Origin(), seen)
	default:
		return false
	}
}

// sweepDeadBuffers removes buffer_op nodes with no remaining users in r.
func sweepDeadBuffers(r *rvsdg.Region) bool {
	changed := false
	for {
		removedAny := false
		it := r.BottomUp()
		for {
			n, ok := it.Next()
			if !ok {
				break
			}
			if _, ok := n.Operation().(ops.Buffer); !ok {
				continue
			}
			if n.HasUsers() {
				continue
			}
			if err := r.RemoveNode(n); err == nil {
				removedAny = true
				changed = true
			}
		}
		if !removedAny {
			break
		}
	}
	return changed
}

package rvsdg

// TopDownIterator walks a region's nodes in insertion order, the region's
// canonical traversal order, and remains valid when the
// current node is deleted or later nodes are inserted mid-walk: each call
// to Next re-derives the next candidate from the region's live node list
// by smallest ID greater than the last yielded one, rather than holding a
// slice index or pointer that mutation could invalidate.
type TopDownIterator struct {
	region *Region
	lastID uint64
	done   bool
}

// TopDown returns a deletion-safe top-down iterator over r.
func (r *Region) TopDown() *TopDownIterator {
	return &TopDownIterator{region: r}
}

// Next returns the next live node in ascending insertion order, or
// (nil, false) once exhausted.
func (it *TopDownIterator) Next() (*Node, bool) {
	if it.done {
		return nil, false
	}
	var found *Node
	for _, n := range it.region.nodes {
		if n.id > it.lastID && (found == nil || n.id < found.id) {
			found = n
		}
	}
	if found == nil {
		it.done = true
		return nil, false
	}
	it.lastID = found.id
	return found, true
}

// BottomUpIterator walks a region's nodes in descending insertion order.
// Producers are always inserted before their consumers by this package's
// builders, so descending ID order visits consumers before the producers
// they depend on, the shape dead-node elimination and other bottom-up
// passes need. Like TopDownIterator it re-derives the next candidate from
// the live node list on every call, so it tolerates deletion of the
// current node and insertion of new nodes mid-walk.
type BottomUpIterator struct {
	region  *Region
	lastID  uint64
	started bool
	done    bool
}

// BottomUp returns a deletion-safe bottom-up iterator over r.
func (r *Region) BottomUp() *BottomUpIterator {
	return &BottomUpIterator{region: r}
}

// Next returns the next live node in descending insertion order, or
// (nil, false) once exhausted.
func (it *BottomUpIterator) Next() (*Node, bool) {
	if it.done {
		return nil, false
	}
	var found *Node
	for _, n := range it.region.nodes {
		if (!it.started || n.id < it.lastID) && (found == nil || n.id > found.id) {
			found = n
		}
	}
	it.started = true
	if found == nil {
		it.done = true
		return nil, false
	}
	it.lastID = found.id
	return found, true
}

// WalkStructural recursively applies fn to r and, for every structural
// node in r, to each of its sub-regions. This is the shape every
// optimization pass in internal/opt uses to apply itself top-down,
// recursively, into structural sub-regions.
func WalkStructural(r *Region, fn func(*Region)) {
	fn(r)
	it := r.TopDown()
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		for _, sub := range n.subregions {
			WalkStructural(sub, fn)
		}
	}
}

package bridge

import "rvsdgc/internal/tac"

// VarSet is an unordered set of SSA variables, keyed by identity. SSA
// guarantees each *tac.Variable has exactly one static definition, so
// identity is a sound and sufficient key.
type VarSet map[*tac.Variable]bool

func (s VarSet) add(v *tac.Variable) { s[v] = true }

func unionInto(dst, src VarSet) {
	for v := range src {
		dst[v] = true
	}
}

// ReadSet is every variable read by a tac anywhere within region, recursing
// into children.
func ReadSet(region *AggRegion) VarSet {
	reads := make(VarSet)
	collectReadsWrites(region, reads, nil)
	return reads
}

// DefSet is every variable defined (appearing as a Tac result) anywhere
// within region, recursing into children.
func DefSet(region *AggRegion) VarSet {
	writes := make(VarSet)
	collectReadsWrites(region, nil, writes)
	return writes
}

// ReadWriteSets computes both in a single walk.
func ReadWriteSets(region *AggRegion) (reads, writes VarSet) {
	reads, writes = make(VarSet), make(VarSet)
	collectReadsWrites(region, reads, writes)
	return
}

func collectReadsWrites(region *AggRegion, reads, writes VarSet) {
	if region == nil {
		return
	}
	if region.Block != nil {
		for _, t := range region.Block.Tacs {
			for _, o := range t.Operands {
				if reads != nil {
					reads.add(o)
				}
			}
			for _, r := range t.Results {
				if writes != nil {
					writes.add(r)
				}
			}
		}
	}
	if region.PredicateVar != nil && reads != nil {
		reads.add(region.PredicateVar)
	}
	if region.ContinuePredicateVar != nil && reads != nil {
		reads.add(region.ContinuePredicateVar)
	}
	for _, c := range region.Children {
		collectReadsWrites(c, reads, writes)
	}
}

// EntryVars is the free variables region reads but does not itself
// define, in first-read order. A stable order matters: callers building a
// gamma must offer every alternative the same entry-variable list, in
// the same positions.
func EntryVars(region *AggRegion) []*tac.Variable {
	writes := DefSet(region)
	var order []*tac.Variable
	seen := make(VarSet)
	var walk func(*AggRegion)
	walk = func(r *AggRegion) {
		if r == nil {
			return
		}
		if r.Block != nil {
			for _, t := range r.Block.Tacs {
				for _, o := range t.Operands {
					if !writes[o] && !seen[o] {
						seen[o] = true
						order = append(order, o)
					}
				}
			}
		}
		for _, pv := range []*tac.Variable{r.PredicateVar, r.ContinuePredicateVar} {
			if pv != nil && !writes[pv] && !seen[pv] {
				seen[pv] = true
				order = append(order, pv)
			}
		}
		for _, c := range r.Children {
			walk(c)
		}
	}
	walk(region)
	return order
}

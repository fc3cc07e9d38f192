package tableau

// Merge implements spec §4.10.2's node-merge discipline: "from" is
// folded into "to" (labels unioned, edges re-routed, inequality relation
// absorbed) and then purged. It returns the dependency set of a clash
// discovered during the merge (clashed=true) or, on success, the edges
// newly incident to `to` that the caller (rules.go) must re-run the
// universal/functional rule over (spec step 6).
//
// Merge auto-orders its two arguments to satisfy the precondition
// "to.nominalLevel <= from.nominalLevel" (the more global/nominal node
// survives) rather than requiring callers to get the order right.
func (g *CGraph) Merge(from, to *Node, dep DepSet) (newEdges []*Edge, clashDep DepSet, clashed bool) {
	if to.NominalLevel > from.NominalLevel {
		from, to = to, from
	}
	if from.ID == to.ID {
		return nil, DepSet{}, false
	}
	if d, isDiff := from.AreDifferent(to.ID); isDiff {
		g.stats.Merges++
		return nil, dep.Union(d), true
	}
	if from.Purge.Present {
		return nil, DepSet{}, false
	}

	g.touch(from)
	g.touch(to)

	if cd, ok := mergeClash(from.Label.Simple, to.Label); ok {
		return nil, cd.Union(dep), true
	}
	if cd, ok := mergeClash(from.Label.Complex, to.Label); ok {
		return nil, cd.Union(dep), true
	}

	for _, e := range from.Label.Simple.Snapshot() {
		if outcome, cd := to.Label.MergeAdd(e.BP, e.Dep.Union(dep)); outcome == AddClash {
			return nil, cd.Union(dep), true
		}
	}
	for _, e := range from.Label.Complex.Snapshot() {
		if outcome, cd := to.Label.MergeAdd(e.BP, e.Dep.Union(dep)); outcome == AddClash {
			return nil, cd.Union(dep), true
		}
	}

	newEdges = g.rerouteEdges(from, to, dep)
	g.absorbInequalities(from, to)
	g.Purge(from, to, dep)
	g.stats.Merges++
	return newEdges, DepSet{}, false
}

// mergeClash reports whether any entry of arr has its inverse already
// present in other's label (either array), and if so the union of the
// two witnessing dep-sets.
func mergeClash(arr *CWDArray, other *CGLabel) (DepSet, bool) {
	for _, e := range arr.Snapshot() {
		inv := e.BP.Inverse()
		if i := other.Simple.find(inv); i >= 0 {
			return e.Dep.Union(other.Simple.entries[i].Dep), true
		}
		if i := other.Complex.find(inv); i >= 0 {
			return e.Dep.Union(other.Complex.entries[i].Dep), true
		}
	}
	return DepSet{}, false
}

// rerouteEdges re-points every edge incident to from so it is instead
// incident to to, per spec §4.6: predecessors are always re-routed;
// successors are re-routed only when they lead to a nominal node (an
// ordinary blockable successor is abandoned — Purge below takes care of
// marking that subtree unreachable). Duplicate edges (an edge already
// exists between the same two endpoints with an equal-or-ancestor role)
// are not created: the duplicate's dependency is folded into the
// surviving edge and the duplicate is invalidated.
func (g *CGraph) rerouteEdges(from, to *Node, dep DepSet) []*Edge {
	var touched []*Edge
	var remainingSucc []*Edge

	for _, e := range append([]*Edge(nil), from.ParentEdges...) {
		if e.Invalidated() {
			continue
		}
		src := g.Node(e.From)
		if src == nil || src.ID == to.ID {
			e.Role = nil
			continue
		}
		if existing := g.findExistingEdge(src, to, e.Role); existing != nil && existing != e {
			existing.Dep = existing.Dep.Union(e.Dep).Union(dep)
			e.Role = nil
			touched = append(touched, existing)
			continue
		}
		e.To = to.ID
		e.Dep = e.Dep.Union(dep)
		to.ParentEdges = append(to.ParentEdges, e)
		g.touch(src)
		touched = append(touched, e)
	}

	for _, e := range append([]*Edge(nil), from.SuccEdges...) {
		if e.Invalidated() {
			continue
		}
		dst := g.Node(e.To)
		if dst == nil || !dst.IsNominal() {
			remainingSucc = append(remainingSucc, e) // left for Purge to orphan
			continue
		}
		if dst.ID == to.ID {
			e.Role = nil
			continue
		}
		if existing := g.findExistingEdge(to, dst, e.Role); existing != nil && existing != e {
			existing.Dep = existing.Dep.Union(e.Dep).Union(dep)
			e.Role = nil
			touched = append(touched, existing)
			continue
		}
		e.From = to.ID
		e.Dep = e.Dep.Union(dep)
		to.SuccEdges = append(to.SuccEdges, e)
		g.touch(dst)
		touched = append(touched, e)
	}

	from.ParentEdges = nil
	from.SuccEdges = remainingSucc
	return touched
}

// absorbInequalities folds from's inequality relation into to's,
// remapping every other node's IR entries that referenced from so they
// now reference to (spec §4.6: "Absorb from's inequality set into to's").
func (g *CGraph) absorbInequalities(from, to *Node) {
	for _, p := range from.IR {
		otherID := p.OtherID
		if otherID == to.ID {
			continue
		}
		to.IR = append(to.IR, irPair{OtherID: otherID, Dep: p.Dep})
		if other := g.Node(otherID); other != nil {
			g.touch(other)
			other.IR = append(other.IR, irPair{OtherID: to.ID, Dep: p.Dep})
		}
	}
	for _, n := range g.LiveNodes() {
		if n.ID == from.ID || n.ID == to.ID {
			continue
		}
		for i := range n.IR {
			if n.IR[i].OtherID == from.ID {
				g.touch(n)
				n.IR[i].OtherID = to.ID
			}
		}
	}
	from.IR = nil
}

// Purge marks from as p-blocked by to (recording the merge dependency
// that caused it), recurses into from's formerly-reachable blockable
// successors to mark them purged too (their only path from the live
// graph just died), and invalidates any arcs still pointing at a
// nominal successor from's reroute pass didn't already redirect.
func (g *CGraph) Purge(from, to *Node, dep DepSet) {
	if from.Purge.Present {
		return
	}
	g.touch(from)
	from.Purge = blockerInfo{Present: true, NodeID: to.ID, Dep: dep}
	g.stats.Purges++

	for _, e := range from.SuccEdges {
		if e.Invalidated() {
			continue
		}
		child := g.Node(e.To)
		isTreeChild := child != nil && treeParent(g, child) == from
		e.Role = nil
		if isTreeChild && !child.Purge.Present {
			g.Purge(child, to, dep)
		}
	}
	from.SuccEdges = nil
}

package tableau

// treeParent returns the node n was created from (its first recorded
// parent edge, which CreateNeighbour always appends before any later
// reroute — reroutes only ever append, never prepend, so index 0 stays
// the creation edge for as long as n lives). Root and nominal nodes have
// no tree parent. A creator always has a lower id than the node it
// created, so a first parent edge from a higher-id node (the reverse arc
// AddEdge records on a node that had no creation edge) is not a tree edge.
func treeParent(g *CGraph, n *Node) *Node {
	if len(n.ParentEdges) == 0 || n.IsNominal() {
		return nil
	}
	e := n.ParentEdges[0]
	if e.Invalidated() || e.From >= n.ID {
		return nil
	}
	return g.Node(e.From)
}

// ancestorsOf walks the tree-parent chain from n upward, n excluded.
func ancestorsOf(g *CGraph, n *Node) []*Node {
	var out []*Node
	seen := map[int]bool{n.ID: true}
	cur := n
	for {
		p := treeParent(g, cur)
		if p == nil || seen[p.ID] {
			break
		}
		seen[p.ID] = true
		out = append(out, p)
		cur = p
	}
	return out
}

// isBlocked reports whether n is currently direct- or indirect-blocked.
func isBlocked(n *Node) bool { return n.Direct.Present || n.Indirect.Present }

// needsEqualityBlocking reports whether the role hierarchy contains a
// symmetric role — a cheap, conservative proxy for "the logic needs SHI
// semantics rather than SH" (spec §4.7's subset-vs-equality choice).
// A full feature-complexity analyser (tracking inverse roles, number
// restrictions under inverses, etc., the way FaCT++'s DLDag sorter does)
// is out of scope here; see DESIGN.md.
func (rm *RoleMaster) needsEqualityBlocking() bool {
	for _, r := range rm.allRoles() {
		if r.ID > 0 && r.Flags.Symmetric {
			return true
		}
	}
	return false
}

// hasNominals reports whether any individual has been bound to a node in
// the current session — fairness for the NN-rule forces ancestor-mode
// blocking whenever nominals are present (spec §9 open question).
func (e *Engine) hasNominals() bool { return len(e.nominalOwner) > 0 }

// detectBlockedStatus runs the blocking search for n (spec §4.7): B1
// subset blocking is always applied; when the role hierarchy needs
// equality semantics, the candidate's label must also be a subset of
// n's. The optimised-double refinement's B2-B6 rules (matching
// forall/number-restriction successors one-for-one) are not implemented.
// This is a known incompleteness, not a free guarantee: Motik & Horrocks
// showed plain subset/equality blocking can fail to terminate once
// inverse roles and number restrictions interact (the exact SHIQ case
// double blocking exists to fix), so a reasoning session combining both
// can in principle fail to terminate rather than fall back to simply
// answering more conservatively. See DESIGN.md for the scope decision.
func (e *Engine) detectBlockedStatus(n *Node) {
	if n.Direct.Present || n.Indirect.Present || n.IsNominal() {
		return
	}
	equality := e.rm.needsEqualityBlocking()
	var candidates []*Node
	if e.cfg.AnywhereBlocking && !e.hasNominals() {
		candidates = e.g.LiveNodes()
	} else {
		candidates = ancestorsOf(e.g, n)
	}
	for _, y := range candidates {
		if y.ID == n.ID || y.IsNominal() {
			continue
		}
		e.stats.bumpBlock(1, false)
		if !y.Label.IsSupersetOf(n.Label) {
			e.stats.bumpBlock(1, true)
			continue
		}
		if equality {
			e.stats.bumpBlock(2, false)
			if !n.Label.IsSupersetOf(y.Label) {
				e.stats.bumpBlock(2, true)
				continue
			}
		}
		e.g.touch(n)
		n.Direct = blockerInfo{Present: true, NodeID: y.ID}
		e.setIBlocked(n, y.ID)
		return
	}
}

// setIBlocked marks n's tree-descendants as indirectly blocked by
// blockerID, per spec §4.7's "propagate to all non-i-blocked
// successors".
func (e *Engine) setIBlocked(n *Node, blockerID int) {
	for _, ed := range n.SuccEdges {
		if ed.Invalidated() {
			continue
		}
		c := e.g.Node(ed.To)
		if c == nil || c.ID == n.ID || c.IsNominal() || c.Indirect.Present {
			continue
		}
		if tp := treeParent(e.g, c); tp == nil || tp.ID != n.ID {
			continue
		}
		e.g.touch(c)
		c.Indirect = blockerInfo{Present: true, NodeID: blockerID}
		c.Affected = true
		e.setIBlocked(c, blockerID)
	}
}

// unblock re-queues every one of n's label entries (spec §4.7: "re-apply
// all generating rules on the newly-unblocked subtree by re-adding every
// label entry back to ToDo") and re-evaluates n's own blocked status.
func (e *Engine) unblock(n *Node) {
	for i, le := range n.Label.Simple.entries {
		e.todo.Add(e.g, n, le.BP, false, i)
	}
	for i, le := range n.Label.Complex.entries {
		e.todo.Add(e.g, n, le.BP, true, i)
	}
	e.detectBlockedStatus(n)
}

// retestBlockedNodes re-examines every directly-blocked node's blocker;
// if the blocker's label is no longer a superset (it shrank on a
// backjump restore since the block was decided), the node is unblocked
// and requeued. Called once the main loop's ToDo queue empties, per
// spec §4.10's "re-test all blocked nodes' status" step. Returns
// whether anything changed (the caller should keep looping if so).
func (e *Engine) retestBlockedNodes() bool {
	changed := false
	for _, n := range e.g.LiveNodes() {
		if !n.Direct.Present {
			continue
		}
		blocker := e.g.Node(n.Direct.NodeID)
		if blocker == nil || !blocker.Label.IsSupersetOf(n.Label) {
			n.Direct = blockerInfo{}
			n.Indirect = blockerInfo{}
			e.unblock(n)
			changed = true
		}
	}
	return changed
}

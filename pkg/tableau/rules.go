package tableau

import "context"

// Engine owns one reasoning session's mutable state: the completion graph
// under construction, the ToDo queue and branching-context stack driving
// it, and the shared read-only structures (concept DAG, role master) every
// tactic consults. It is the sum-type-free replacement for the teacher's
// "solver state" value — one struct threaded through every rule instead of
// a package of free functions closing over globals.
type Engine struct {
	dag *DAG
	rm  *RoleMaster

	g         *CGraph
	todo      *ToDoQueue
	branch    *BranchStack
	restorers *RestorerChain
	depMgr    *DepSetManager
	stats     *Stats2
	data      DataReasoner
	cfg       *Config

	// tg is the residual global axiom (absorption.go's Absorb result)
	// conjoined into every fresh node's label.
	tg BP

	// nominalOwner maps an individual/nominal name to the node currently
	// representing it in this session; rebuilt fresh by resetSession.
	nominalOwner map[string]int

	iter      int
	timedOut  bool
	cancelled bool
}

// ctxErr reports the distinguished error (if any) a suspended mainLoop
// left behind: ErrTimeout when the configured per-session deadline fired,
// ErrCancelled for any other context cancellation (spec §5/§6).
func (e *Engine) ctxErr() error {
	switch {
	case e.timedOut:
		return ErrTimeout
	case e.cancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// NewEngine wires a session around the shared, already-built DAG and role
// master. cfg/stats/data are held for the life of the Engine; of cfg, the
// engine reads ToDoPriority (resetSession), Backjumping (backtrack) and
// AnywhereBlocking (blocking.go).
func NewEngine(dag *DAG, rm *RoleMaster, cfg *Config, stats *Stats2, data DataReasoner) *Engine {
	if data == nil {
		data = noopDataReasoner{}
	}
	e := &Engine{dag: dag, rm: rm, cfg: cfg, stats: stats, data: data}
	e.resetSession()
	return e
}

// SetGlobalAxiom installs the global axiom concept (absorption's residual
// T_G) to be conjoined into every node this session creates from now on.
func (e *Engine) SetGlobalAxiom(tg BP) { e.tg = tg }

// resetSession discards the current completion graph and every structure
// scoped to it, starting a fresh independent SAT session (spec §4.10's
// "clear CGraph, ToDo, branching stack, dep-set manager" reset, run once
// per top-level satisfiability query).
func (e *Engine) resetSession() {
	e.depMgr = NewDepSetManager()
	e.restorers = NewRestorerChain()
	e.branch = NewBranchStack()
	e.g = NewCGraph(e.dag, e.stats, e.depMgr, e.restorers)
	e.todo = NewToDoQueue(e.cfg.ToDoPriority, e.restorers, e.stats)
	e.nominalOwner = make(map[string]int)
	e.data.Clear()
	e.iter = 0
	e.timedOut = false
	e.cancelled = false
	if e.tg.IsValid() && e.tg != TOP {
		e.addConcept(e.g.Root(), e.tg, DepSet{})
	}
}

// freshNode allocates a node and conjoins the session's global axiom into
// it, the way every node-creating tactic below needs (root nodes get this
// from resetSession directly; every other node goes through here or
// createNeighbour).
func (e *Engine) freshNode() *Node {
	n := e.g.NewNode()
	if e.tg.IsValid() && e.tg != TOP {
		e.addConcept(n, e.tg, DepSet{})
	}
	return n
}

// createNeighbour allocates an R-successor of n and conjoins the global
// axiom into it, mirroring freshNode for the edge-creating path.
func (e *Engine) createNeighbour(n *Node, role *Role, dep DepSet, level int) *Node {
	v := e.g.CreateNeighbour(n, role, dep, level)
	if e.tg.IsValid() && e.tg != TOP {
		e.addConcept(v, e.tg, DepSet{})
	}
	return v
}

// individualNode returns the node currently bound to a nominal's name,
// creating one (at nominal level 0) the first time it is referenced this
// session.
func (e *Engine) individualNode(name string) *Node {
	if id, ok := e.nominalOwner[name]; ok {
		if n := e.g.Node(id); n != nil {
			return n
		}
	}
	n := e.freshNode()
	e.g.touch(n)
	n.NominalLevel = 0
	e.nominalOwner[name] = n.ID
	return n
}

// addConcept is the single entry point every tactic uses to add bp to n's
// label: it handles the TOP/BOTTOM shortcuts, routes through CGLabel's
// TryAdd/Add, and on success enqueues the new entry into the ToDo queue.
// Returns the clash witness and true if adding bp clashed with n's label.
func (e *Engine) addConcept(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	if !bp.IsValid() || bp == TOP {
		return DepSet{}, false
	}
	if bp == BOTTOM {
		return dep, true
	}
	e.g.touch(n)
	arr := n.Label.arrayFor(bp)
	outcome, clashDep := arr.TryAdd(bp, dep)
	switch outcome {
	case AddClash:
		return clashDep, true
	case AddExists:
		return DepSet{}, false
	}
	arr.Add(bp, dep)
	idx := arr.Save() - 1
	e.todo.Add(e.g, n, bp, isComplexTag(e.dag.Tag(bp)), idx)
	return DepSet{}, false
}

// roleMatchesEdgeRole reports whether an edge labelled got also satisfies
// a requirement for role want (want itself or any of its sub-roles).
func roleMatchesEdgeRole(want, got *Role) bool {
	return got.ID == want.ID || got.Ancestors.Contains(roleKey(want.ID))
}

// testSat runs one independent satisfiability test of bp: a fresh session,
// bp added to the root node, then the main loop to a fixed point. Used by
// both the public satisfiability query and the cascaded cache builder
// (cascade.go).
func (e *Engine) testSat(ctx context.Context, bp BP) bool {
	e.resetSession()
	if cd, clash := e.addConcept(e.g.Root(), bp, DepSet{}); clash {
		_ = cd
		return false
	}
	return e.mainLoop(ctx)
}

// mainLoop drives the reactive search: pull the next ToDo entry, dispatch
// it, and on clash attempt to backjump; returns true (satisfiable) once
// the queue is empty and every blocked node has been re-tested without
// change, false (unsatisfiable) once backtracking is exhausted.
func (e *Engine) mainLoop(ctx context.Context) bool {
	for {
		e.iter++
		if e.iter%5000 == 0 && ctx != nil {
			select {
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					e.timedOut = true
				} else {
					e.cancelled = true
				}
				return false
			default:
			}
		}
		entry, ok := e.todo.GetNext(e.g)
		if !ok {
			if e.retestBlockedNodes() {
				continue
			}
			return true
		}
		n := e.g.Node(entry.NodeID)
		bp, dep, valid := entry.resolve(e.g)
		if !valid || n == nil {
			continue
		}
		clashDep, clashed := e.commonTactic(n, bp, dep)
		if clashed {
			if !e.backtrack(clashDep) {
				return false
			}
		}
	}
}

// isGeneratingTag reports whether the rule a (tag, bp) pair dispatches to
// can create new completion-graph nodes or edges: the ∃ reading of a
// Forall/UAll vertex (negative polarity) and the ≥n reading of an LE
// vertex (negative polarity). Blocked/cached nodes skip generating rules
// only (spec §4.10); non-generating rules still fire harmlessly, since
// re-deriving an already-blocked label entry cannot change anything but
// is never unsound either.
func isGeneratingTag(t Tag, bp BP) bool {
	switch t {
	case TagForall, TagUAll:
		return !bp.IsPositive()
	case TagLE:
		return !bp.IsPositive()
	}
	return false
}

// commonTactic dispatches n's pending (bp, dep) entry to the tactic its
// tag and polarity select, per spec §4.10.1's rule table.
func (e *Engine) commonTactic(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	if n.Purge.Present {
		return DepSet{}, false
	}
	tag := e.dag.Tag(bp)
	if (isBlocked(n) || n.Cached) && isGeneratingTag(tag, bp) {
		return DepSet{}, false
	}
	e.stats.bumpRule(tag)
	switch tag {
	case TagTop:
		return DepSet{}, false
	case TagDataType, TagDataValue, TagDataExpr:
		return e.tacticData(n, bp, dep)
	case TagPConcept, TagNConcept:
		return e.tacticNamed(n, bp, dep)
	case TagPSingleton, TagNSingleton:
		return e.tacticSingleton(n, bp, dep)
	case TagAnd, TagCollection, TagSplitConcept:
		if bp.IsPositive() {
			return e.tacticAnd(n, bp, dep)
		}
		return e.tacticOr(n, bp, dep)
	case TagForall, TagUAll:
		if bp.IsPositive() {
			return e.tacticForallPos(n, bp, dep)
		}
		return e.tacticExists(n, bp, dep)
	case TagLE:
		if bp.IsPositive() {
			return e.tacticAtMost(n, bp, dep)
		}
		return e.tacticAtLeast(n, bp, dep)
	case TagIrr:
		return e.tacticIrr(n, bp, dep)
	case TagProj:
		return e.tacticProj(n, bp, dep)
	}
	return DepSet{}, false
}

// tacticData hands a datatype/value/expression constraint off to the
// DataReasoner plug-in (spec §6).
func (e *Engine) tacticData(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	_ = n
	if e.data.AddDataEntry(bp, dep) {
		return e.data.GetClashSet(), true
	}
	return DepSet{}, false
}

// tacticNamed unfolds a named (primitive or defined) concept's description
// into n's label, if one has been posted. A primitive concept's
// description is only a necessary condition, so its negative occurrence
// unfolds nothing.
func (e *Engine) tacticNamed(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	owner := e.dag.NamedOwner(bp.WithPolarity(true))
	if owner == nil || !owner.Description.IsValid() {
		return DepSet{}, false
	}
	desc := owner.Description
	if !bp.IsPositive() {
		if owner.Primitive {
			return DepSet{}, false
		}
		desc = desc.Inverse()
	}
	return e.addConcept(n, desc, dep)
}

// tacticSingleton implements the o-rule (spec §4.6/§4.10.1): two positive
// occurrences of the same nominal's name on different nodes force those
// nodes to merge; a negative occurrence records n as provably different
// from the individual.
func (e *Engine) tacticSingleton(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	owner := e.dag.NamedOwner(bp.WithPolarity(true))
	name := owner.Name
	if bp.IsPositive() {
		existingID, ok := e.nominalOwner[name]
		if !ok {
			e.nominalOwner[name] = n.ID
			if n.NominalLevel == BlockableLevel {
				e.g.touch(n)
				n.NominalLevel = 0
			}
			return DepSet{}, false
		}
		if existingID == n.ID {
			return DepSet{}, false
		}
		existing := e.g.Node(existingID)
		if existing == nil {
			e.nominalOwner[name] = n.ID
			return DepSet{}, false
		}
		newEdges, clashDep, clashed := e.g.Merge(n, existing, dep)
		if clashed {
			return clashDep, true
		}
		survivor := existing
		if existing.ID != n.ID && existing.Purge.Present {
			survivor = e.g.Node(existing.Purge.NodeID)
		}
		if survivor.Purge.Present {
			survivor = e.g.Node(survivor.Purge.NodeID)
		}
		e.nominalOwner[name] = survivor.ID
		return e.reapplyAfterMerge(survivor, newEdges, dep)
	}
	if otherID, ok := e.nominalOwner[name]; ok {
		if other := e.g.Node(otherID); other != nil && other.ID != n.ID {
			e.g.SetCurIR(n, []*Node{other}, dep)
		}
	}
	return DepSet{}, false
}

// reapplyAfterMerge re-runs the universal rule over every edge newly
// incident to survivor after a merge (spec §4.10.2 step 6), so that any
// ∀/∀U restriction already on survivor's label propagates onto the
// neighbours it just inherited.
func (e *Engine) reapplyAfterMerge(survivor *Node, newEdges []*Edge, dep DepSet) (DepSet, bool) {
	for _, ed := range newEdges {
		if ed.Invalidated() {
			continue
		}
		if cd, clash := e.applyUniversalOverEdge(survivor, ed, dep); clash {
			return cd, true
		}
	}
	return DepSet{}, false
}

// applyUniversalOverEdge re-fires every positive ∀/∀U entry already on n's
// label across a single edge incident to n, onto the node at its far end.
// Functional/at-most re-merge forcing on the same newly-rerouted edge is
// not repeated here: tacticAtMost and tacticExists's functional shortcut
// already enforce it the first time such an edge is created, and a rare
// double-merge cascade re-triggering it is left undone.
func (e *Engine) applyUniversalOverEdge(n *Node, ed *Edge, dep DepSet) (DepSet, bool) {
	edgeFromN := ed
	if ed.From != n.ID {
		edgeFromN = ed.Reverse
	}
	if edgeFromN == nil || edgeFromN.Invalidated() {
		return DepSet{}, false
	}
	v := e.g.Node(edgeFromN.To)
	if v == nil {
		return DepSet{}, false
	}
	for _, le := range n.Label.Complex.Snapshot() {
		if !le.BP.IsPositive() {
			continue
		}
		vx := e.dag.vertex(le.BP)
		switch vx.Tag {
		case TagUAll:
			if cd, clash := e.addConcept(v, vx.C, dep.Union(le.Dep)); clash {
				return cd, true
			}
		case TagForall:
			if vx.Role == nil || !roleMatchesEdgeRole(vx.Role, edgeFromN.Role) {
				continue
			}
			if cd, clash := e.addConcept(v, vx.C, dep.Union(le.Dep)); clash {
				return cd, true
			}
		}
	}
	return DepSet{}, false
}

// tacticAnd expands a positive conjunction by adding every conjunct to n's
// label.
func (e *Engine) tacticAnd(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp)
	for _, c := range v.Children {
		if cd, clash := e.addConcept(n, c, dep); clash {
			return cd, true
		}
	}
	return DepSet{}, false
}

// tacticOr expands a disjunction (negative And/Collection, §4.10.1's
// Or-rule): any disjunct already refuted is dropped; if exactly one
// remains it is added deterministically, otherwise a BCOr branch point is
// pushed and the first option tried.
func (e *Engine) tacticOr(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp.WithPolarity(true))
	var options []BP
	clashAcc := DepSet{}
	for _, c := range v.Children {
		d := c.Inverse()
		if n.Label.Contains(d) {
			return DepSet{}, false
		}
		arr := n.Label.arrayFor(d.Inverse())
		if i := arr.find(d.Inverse()); i >= 0 {
			clashAcc = clashAcc.Union(arr.entries[i].Dep)
			continue
		}
		options = append(options, d)
	}
	if len(options) == 0 {
		return clashAcc.Union(dep), true
	}
	if len(options) == 1 {
		return e.addConcept(n, options[0], dep)
	}
	bc := e.pushBranch(BCOr)
	branchDep := dep.Union(SingletonDep(bc.Level))
	bc.OrNode = n
	bc.OrDep = branchDep
	bc.OrOptions = options[1:]
	return e.addConcept(n, options[0], branchDep)
}

// tacticForallPos expands a positive ∀ restriction across every matching
// R-successor (simple roles) or automaton transition (non-simple roles),
// per spec §4.1/§4.10.1. ∀U.C applies to every live node instead of a
// role-specific neighbour set.
func (e *Engine) tacticForallPos(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp)
	if v.Tag == TagUAll {
		for _, ln := range e.g.LiveNodes() {
			if cd, clash := e.addConcept(ln, v.C, dep); clash {
				return cd, true
			}
		}
		return DepSet{}, false
	}
	role := v.Role
	if role.Simple() {
		for _, ed := range n.SuccEdges {
			if ed.Invalidated() || !roleMatchesEdgeRole(role, ed.Role) {
				continue
			}
			if cd, clash := e.addConcept(e.g.Node(ed.To), v.C, dep); clash {
				return cd, true
			}
		}
		return DepSet{}, false
	}
	state := v.AutoState
	for _, tr := range role.Automaton.transitionsFrom(state) {
		next := func(target *Node) (DepSet, bool) {
			if tr.To == 1 {
				return e.addConcept(target, v.C, dep)
			}
			return e.addConcept(target, e.dag.AddForall(role, tr.To, v.C), dep)
		}
		if len(tr.Labels) == 0 {
			if cd, clash := next(n); clash {
				return cd, true
			}
			continue
		}
		for _, ed := range n.SuccEdges {
			if ed.Invalidated() || !tr.matches(ed.Role) {
				continue
			}
			if cd, clash := next(e.g.Node(ed.To)); clash {
				return cd, true
			}
		}
	}
	return DepSet{}, false
}

// tacticExists expands ∃R.C (the negative reading of a Forall vertex):
// re-use an existing R-neighbour already in C if one exists, short-cut via
// a positive nominal filler, re-use the neighbour a functional super-role
// already forces, or else generate a fresh one (§4.10.1's exists-rule).
func (e *Engine) tacticExists(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp.WithPolarity(true))
	role, c := v.Role, v.C

	for _, ed := range n.SuccEdges {
		if ed.Invalidated() || !roleMatchesEdgeRole(role, ed.Role) {
			continue
		}
		if target := e.g.Node(ed.To); target != nil && target.Label.Contains(c) {
			return DepSet{}, false
		}
	}

	if c.IsValid() && c.IsPositive() && e.dag.Tag(c) == TagPSingleton {
		owner := e.dag.NamedOwner(c)
		target := e.individualNode(owner.Name)
		e.g.AddRoleLabel(n, target, role, dep)
		return DepSet{}, false
	}

	for _, f := range role.TopFunctionalSupers {
		for _, ed := range n.SuccEdges {
			if ed.Invalidated() || !roleMatchesEdgeRole(f, ed.Role) {
				continue
			}
			target := e.g.Node(ed.To)
			e.g.AddRoleLabel(n, target, role, dep)
			return e.addConcept(target, c, dep)
		}
	}

	level := BlockableLevel
	if n.IsNominal() {
		level = n.NominalLevel + 1
	}
	target := e.createNeighbour(n, role, dep, level)
	if role.Domain.IsValid() {
		if cd, clash := e.addConcept(n, role.Domain, dep); clash {
			return cd, true
		}
	}
	if role.Range.IsValid() {
		if cd, clash := e.addConcept(target, role.Range, dep); clash {
			return cd, true
		}
	}
	if role.Flags.Reflexive {
		e.g.AddRoleLabel(target, target, role, dep)
	}
	if cd, clash := e.addConcept(target, c, dep); clash {
		return cd, true
	}
	e.detectBlockedStatus(target)
	return DepSet{}, false
}

// tacticAtMost expands ≤n R.C: every R-successor already definitely in C
// counts toward the bound; once more than n are found, the excess is
// merged pairwise into the survivors in a fixed deterministic order
// (last-into-first). This is a sound but incomplete simplification of the
// original's full choice-point search over which pair to merge first (a
// single merge order can occasionally fail where another would have
// succeeded).
func (e *Engine) tacticAtMost(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp)
	role, c, bound := v.Role, v.C, v.N

	var neighbours []*Edge
	for _, ed := range n.SuccEdges {
		if ed.Invalidated() || !roleMatchesEdgeRole(role, ed.Role) {
			continue
		}
		target := e.g.Node(ed.To)
		if target == nil {
			continue
		}
		if c != TOP && !target.Label.Contains(c) {
			continue
		}
		neighbours = append(neighbours, ed)
	}

	for len(neighbours) > bound {
		last := neighbours[len(neighbours)-1]
		neighbours = neighbours[:len(neighbours)-1]
		from := e.g.Node(last.To)
		to := e.g.Node(neighbours[0].To)
		if from == nil || to == nil || from.ID == to.ID {
			continue
		}
		if d, isDiff := from.AreDifferent(to.ID); isDiff {
			return dep.Union(d), true
		}
		newEdges, clashDep, clashed := e.g.Merge(from, to, dep)
		if clashed {
			return clashDep, true
		}
		survivor := to
		if survivor.Purge.Present {
			survivor = e.g.Node(survivor.Purge.NodeID)
		}
		if cd, clash := e.reapplyAfterMerge(survivor, newEdges, dep); clash {
			return cd, true
		}
	}
	return DepSet{}, false
}

// tacticAtLeast expands ≥n R.C (the negative reading of an LE vertex):
// generates n+1 fresh, pairwise-distinct R-successors in C, each one
// different from every other by construction (spec §4.10.1's at-least
// rule). Nominal nodes generate their children at the next positive
// nominal level rather than as ordinary blockables, per the NN-rule — the
// original's further search over which of 1..n children to commit to is
// simplified to always committing exactly n+1.
func (e *Engine) tacticAtLeast(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp.WithPolarity(true))
	role, c, bound := v.Role, v.C, v.N

	level := BlockableLevel
	if n.IsNominal() {
		level = n.NominalLevel + 1
	}

	count := bound + 1
	fresh := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		target := e.createNeighbour(n, role, dep, level)
		if role.Range.IsValid() {
			if cd, clash := e.addConcept(target, role.Range, dep); clash {
				return cd, true
			}
		}
		if cd, clash := e.addConcept(target, c, dep); clash {
			return cd, true
		}
		fresh = append(fresh, target)
	}
	for i := range fresh {
		e.g.SetCurIR(fresh[i], fresh[:i], dep)
	}
	if role.Domain.IsValid() {
		if cd, clash := e.addConcept(n, role.Domain, dep); clash {
			return cd, true
		}
	}
	for _, t := range fresh {
		e.detectBlockedStatus(t)
	}
	return DepSet{}, false
}

// tacticIrr implements both readings of the irreflexivity vertex: the
// positive occurrence (Irr axiom) clashes if n carries an R-self-loop; the
// negative occurrence (∃R.Self) ensures one exists.
func (e *Engine) tacticIrr(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp.WithPolarity(true))
	role := v.Role
	for _, ed := range n.SuccEdges {
		if ed.Invalidated() || !ed.IsReflexive() || !roleMatchesEdgeRole(role, ed.Role) {
			continue
		}
		if bp.IsPositive() {
			return dep.Union(ed.Dep), true
		}
		return DepSet{}, false
	}
	if bp.IsPositive() {
		return DepSet{}, false
	}
	e.g.AddRoleLabel(n, n, role, dep)
	return DepSet{}, false
}

// tacticProj implements the projection rule (§4.10.1): when C's membership
// at n is undecided, a BCChoose branch point is pushed to split on C vs
// ¬C; once C holds at n, R' is added to every R-edge leaving n.
func (e *Engine) tacticProj(n *Node, bp BP, dep DepSet) (DepSet, bool) {
	v := e.dag.vertex(bp)
	role, c, rPrime := v.Role, v.C, v.ProjRole
	if n.Label.Contains(c.Inverse()) {
		return DepSet{}, false
	}
	if !n.Label.Contains(c) {
		bc := e.pushBranch(BCChoose)
		branchDep := dep.Union(SingletonDep(bc.Level))
		bc.ChooseNode = n
		bc.ChooseConc = c
		bc.ChooseDep = branchDep
		return e.addConcept(n, c.Inverse(), branchDep)
	}
	for _, ed := range n.SuccEdges {
		if ed.Invalidated() || !roleMatchesEdgeRole(role, ed.Role) {
			continue
		}
		e.g.AddRoleLabel(n, e.g.Node(ed.To), rPrime, dep)
	}
	return DepSet{}, false
}

// pushBranch grows a fresh branching level, saves every structure a
// backjump might need to restore (completion graph, ToDo queue, restorer
// chain), and pushes a branch context of the given kind recording those
// watermarks.
func (e *Engine) pushBranch(kind BCKind) *BranchContext {
	level := e.depMgr.GrowLevel()
	e.g.SetLevel(level)
	bc := e.branch.Push(kind, level)
	bc.UsedWatermark = e.g.Save()
	bc.TodoSave = e.todo.Save()
	bc.RestorerSave = e.restorers.Save()
	return bc
}

// restoreForRetry undoes every mutation recorded since bc was pushed (or
// since its last retry), without discarding the branch level itself —
// used both before trying the next option at a branch point and, once
// more, right before that branch point is abandoned entirely.
func (e *Engine) restoreForRetry(bc *BranchContext) {
	e.restorers.Restore(bc.RestorerSave)
	e.g.Restore(bc.Level, bc.UsedWatermark)
	e.todo.Restore(bc.TodoSave)
	e.g.SetLevel(bc.Level)
}

// advanceBranch tries the next untried option at bc, restoring to the
// pre-attempt state first. Returns (true, _) on an option that doesn't
// immediately clash; (false, accumulatedClash) once every option at this
// branch point has been tried and clashed.
func (e *Engine) advanceBranch(bc *BranchContext) (bool, DepSet) {
	switch bc.Kind {
	case BCOr:
		for len(bc.OrOptions) > 0 {
			next := bc.OrOptions[0]
			bc.OrOptions = bc.OrOptions[1:]
			e.restoreForRetry(bc)
			if cd, clash := e.addConcept(bc.OrNode, next, bc.OrDep); clash {
				bc.ClashDep = bc.ClashDep.Union(cd)
				continue
			}
			return true, DepSet{}
		}
		return false, bc.ClashDep
	case BCChoose:
		if !bc.ChooseTried1 {
			bc.ChooseTried1 = true
			e.restoreForRetry(bc)
			if cd, clash := e.addConcept(bc.ChooseNode, bc.ChooseConc, bc.ChooseDep); clash {
				bc.ClashDep = bc.ClashDep.Union(cd)
				return false, bc.ClashDep
			}
			return true, DepSet{}
		}
		return false, bc.ClashDep
	default:
		// BCLE/BCNN merge/generation enumeration is not modelled as a true
		// branch point in this implementation (see tacticAtMost/
		// tacticAtLeast's doc comments) — no context of this kind is ever
		// pushed, so this arm is unreachable in practice.
		return false, bc.ClashDep
	}
}

// backtrack walks the branching-context stack from clashDep's deepest
// level upward, retrying (or discarding) branch points until one yields
// an untried, non-clashing option, or the stack is exhausted (global
// unsat). This is dependency-directed backjumping when cfg.Backjumping is
// set; with it off, clashDep's level is ignored in favour of always
// targeting the innermost open branch point (chronological backtracking).
func (e *Engine) backtrack(clashDep DepSet) bool {
	for {
		level := clashDep.Level()
		if !e.cfg.Backjumping {
			if top := e.branch.Top(); top != nil {
				level = top.Level
			}
		}
		if level < 0 {
			return false
		}
		idx := e.branch.findForLevel(level)
		if idx < 0 {
			return false
		}
		for e.branch.Depth()-1 > idx {
			e.branch.Pop()
		}
		bc := e.branch.Top()
		if bc == nil {
			return false
		}
		bc.ClashDep = bc.ClashDep.Union(clashDep)
		e.stats.bumpBackjump()
		ok, _ := e.advanceBranch(bc)
		if ok {
			return true
		}
		clashDep = bc.ClashDep
		e.restoreForRetry(bc)
		e.depMgr.Restore(bc.Level - 1)
		e.branch.Pop()
	}
}

package tableau

// BlockableLevel is the sentinel NominalLevel for an ordinary blockable
// node (as opposed to a root nominal, level 0, or an NN-generated nominal
// at a positive level).
const BlockableLevel = -1

// Edge is a directed arc of the completion graph. Role == nil marks the
// edge invalidated ("i-blocked"); invalidation is reversible via the
// rare-event restorer chain rather than a real delete, since edges are
// allocated from a deleteless (bump-pointer) arena (spec §3's Ownership
// section).
type Edge struct {
	id      int
	Role    *Role
	From    int // node id
	To      int // node id
	Dep     DepSet
	Reverse *Edge
}

// Invalidated reports whether the edge has been invalidated (Role == nil).
func (e *Edge) Invalidated() bool { return e.Role == nil }

// IsReflexive reports a self-loop edge.
func (e *Edge) IsReflexive() bool { return e.From == e.To }

// irPair is one member of a node's inequality relation: "this node is
// provably different from the node at OtherID, justified by Dep".
type irPair struct {
	OtherID int
	Dep     DepSet
}

// blockerInfo names a node's blocker and, for purge blocking, the merge
// dependency that caused the purge.
type blockerInfo struct {
	Present bool
	NodeID  int
	Dep     DepSet
}

// nodeSaveEntry is the pre-mutation snapshot pushed the first time a node
// is touched at a new branching level; see Node.ensureSaved.
type nodeSaveEntry struct {
	level int

	parentLen, succLen, irLen int
	label                     labelSaveState

	direct, indirect, purge blockerInfo
	affected, cached        bool
}

// Node is a completion-graph node: a dual-labelled vertex with parent and
// successor edges, an inequality relation, and blocking state. See spec
// §3's "Completion graph (CGraph) node" for the full field list this
// mirrors.
type Node struct {
	ID           int
	NominalLevel int // BlockableLevel, 0 (root nominal), or >0 (NN nominal)

	Label *CGLabel

	ParentEdges []*Edge
	SuccEdges   []*Edge

	IR []irPair

	InitConcept BP

	Direct, Indirect, Purge blockerInfo
	Affected, Cached        bool

	curLevel int
	saves    []nodeSaveEntry

	inUse bool
}

// IsNominal reports whether this node denotes a (root or NN-generated)
// nominal rather than an ordinary blockable node.
func (n *Node) IsNominal() bool { return n.NominalLevel != BlockableLevel }

// ensureSaved pushes a pre-mutation snapshot the first time the node is
// touched at branching level `level` (level must be ≥ any previously
// recorded level; the tableau only ever moves forward between saves).
// Every mutator in this file and in merge.go calls this before changing
// node state.
func (n *Node) ensureSaved(level int) {
	if n.curLevel == level {
		return
	}
	n.saves = append(n.saves, nodeSaveEntry{
		level:     level,
		parentLen: len(n.ParentEdges),
		succLen:   len(n.SuccEdges),
		irLen:     len(n.IR),
		label:     n.Label.save(level),
		direct:    n.Direct,
		indirect:  n.Indirect,
		purge:     n.Purge,
		affected:  n.Affected,
		cached:    n.Cached,
	})
	n.curLevel = level
}

// restoreToLevel restores the node to its state as of the start of
// `level`, discarding every mutation recorded since. No-op if the node
// was never touched at or after `level`.
func (n *Node) restoreToLevel(level int) {
	idx := -1
	for i, s := range n.saves {
		if s.level >= level {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	snap := n.saves[idx]
	n.ParentEdges = n.ParentEdges[:snap.parentLen]
	n.SuccEdges = n.SuccEdges[:snap.succLen]
	n.IR = n.IR[:snap.irLen]
	n.Label.restore(snap.label)
	n.Direct, n.Indirect, n.Purge = snap.direct, snap.indirect, snap.purge
	n.Affected, n.Cached = snap.affected, snap.cached
	n.saves = n.saves[:idx]
	n.curLevel = level - 1
	if n.curLevel < 0 {
		n.curLevel = 0
	}
}

// CGraph is the completion graph under construction: a growing arena of
// nodes (never freed mid-session, only reused after Clear) and edges
// (bump-pointer allocated; "deletion" is reversible invalidation).
type CGraph struct {
	dag    *DAG
	stats  *Stats2
	depMgr *DepSetManager

	nodes []*Node // index 0 unused; nodes[1:used] are live
	used  int

	edges []*Edge

	curLevel int

	// touchedAtLevel lists, per branching level, the node ids first
	// touched at that level — so Restore can visit exactly the nodes
	// that changed instead of sweeping every node (spec §3's save state
	// field "list of nodes saved at this level").
	touchedAtLevel map[int][]int

	restorers *RestorerChain
}

// NewCGraph creates an empty completion graph.
func NewCGraph(dag *DAG, stats *Stats2, depMgr *DepSetManager, restorers *RestorerChain) *CGraph {
	g := &CGraph{
		dag: dag, stats: stats, depMgr: depMgr,
		nodes:          []*Node{nil},
		touchedAtLevel: make(map[int][]int),
		restorers:      restorers,
	}
	g.Clear()
	return g
}

// Clear resets the graph to a single root node at level 0 (init level).
func (g *CGraph) Clear() {
	g.nodes = g.nodes[:1]
	g.used = 0
	g.edges = g.edges[:0]
	g.curLevel = 0
	g.touchedAtLevel = make(map[int][]int)
	g.newNodeLocked()
}

// SetLevel records the current branching level; called by the main loop
// whenever it advances past a save point.
func (g *CGraph) SetLevel(level int) { g.curLevel = level }

func (g *CGraph) touch(n *Node) {
	n.ensureSaved(g.curLevel)
	ids := g.touchedAtLevel[g.curLevel]
	for _, id := range ids {
		if id == n.ID {
			return
		}
	}
	g.touchedAtLevel[g.curLevel] = append(ids, n.ID)
}

// newNodeLocked grows the node arena (reusing a freed slot if one is
// available from before the last Clear) and returns a fresh node.
func (g *CGraph) newNodeLocked() *Node {
	g.used++
	if g.used < len(g.nodes) {
		n := g.nodes[g.used]
		*n = Node{ID: n.ID, NominalLevel: BlockableLevel}
		n.Label = newCGLabel(g.dag, g.stats)
		return n
	}
	n := &Node{ID: g.used, NominalLevel: BlockableLevel}
	n.Label = newCGLabel(g.dag, g.stats)
	g.nodes = append(g.nodes, n)
	return n
}

// NewNode allocates a fresh node at the current level.
func (g *CGraph) NewNode() *Node {
	n := g.newNodeLocked()
	g.stats.NodesCreated++
	n.ensureSaved(g.curLevel)
	return n
}

// Node returns the node with the given id.
func (g *CGraph) Node(id int) *Node {
	if id <= 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Root returns the graph's root node (id 1, created by Clear/NewCGraph).
func (g *CGraph) Root() *Node { return g.nodes[1] }

// LiveNodes returns every currently in-use node, in id order.
func (g *CGraph) LiveNodes() []*Node {
	return g.nodes[1 : g.used+1]
}

// AddEdge allocates a forward arc u→v and its reverse arc v→u (role
// inverse), threads their Reverse pointers, appends to each side's
// parent/successor lists, and touches both endpoints at the current
// level. No deduplication is performed here — see AddRoleLabel for the
// deduplicating entry point used by the tableau rules.
func (g *CGraph) AddEdge(u, v *Node, role *Role, dep DepSet) *Edge {
	g.touch(u)
	g.touch(v)
	fwd := &Edge{id: len(g.edges), Role: role, From: u.ID, To: v.ID, Dep: dep}
	g.edges = append(g.edges, fwd)
	bwd := &Edge{id: len(g.edges), Role: role.Inverse(), From: v.ID, To: u.ID, Dep: dep}
	g.edges = append(g.edges, bwd)
	fwd.Reverse = bwd
	bwd.Reverse = fwd
	u.SuccEdges = append(u.SuccEdges, fwd)
	v.ParentEdges = append(v.ParentEdges, fwd)
	v.SuccEdges = append(v.SuccEdges, bwd)
	u.ParentEdges = append(u.ParentEdges, bwd)
	g.stats.EdgesCreated++
	return fwd
}

// findExistingEdge returns the live (non-invalidated) u→v edge labelled
// by a role ≥ role, if any.
func (g *CGraph) findExistingEdge(u, v *Node, role *Role) *Edge {
	for _, e := range u.SuccEdges {
		if e.Invalidated() || e.To != v.ID {
			continue
		}
		if e.Role.ID == role.ID || e.Role.Ancestors.Contains(roleKey(role.ID)) {
			return e
		}
	}
	return nil
}

// AddRoleLabel adds dep to an existing u→v edge labelled by (at least)
// role, widening its dependency via a restorable update; if no such edge
// exists, it delegates to AddEdge.
func (g *CGraph) AddRoleLabel(u, v *Node, role *Role, dep DepSet) *Edge {
	if e := g.findExistingEdge(u, v, role); e != nil {
		old := e.Dep
		e.Dep = old.Union(dep)
		eid := e.id
		edges := g.edges
		g.restorers.Push(restoreEdgeRolify, func() {
			edges[eid].Dep = old
		})
		return e
	}
	return g.AddEdge(u, v, role, dep)
}

// CreateNeighbour allocates a fresh R-successor of u. nominalLevel, when
// ≥ 0, marks the new node as an NN-generated nominal at that level;
// BlockableLevel marks an ordinary blockable successor.
func (g *CGraph) CreateNeighbour(u *Node, role *Role, dep DepSet, nominalLevel int) *Node {
	v := g.NewNode()
	v.NominalLevel = nominalLevel
	g.AddEdge(u, v, role, dep)
	return v
}

// InitIR clears the current-iteration inequality bookkeeping; used by
// the ≥n rule to build an inequality relation so that n fresh successors
// end up pairwise distinct (spec §4.6's initIR/setCurIR/finiIR trio).
// With IR represented per-node as an append-only slice, Init/Fini are
// no-ops — the behaviour they bracket in the original design (building a
// scratch IR set and flushing it) reduces here to directly calling
// SetCurIR on the node that needs it, at the cost of no shared scratch
// buffer, which this package does not need since nodes are never shared
// across concurrent SAT tests (single-threaded, spec §5).
func (g *CGraph) InitIR() {}
func (g *CGraph) FiniIR() {}

// SetCurIR records that node and every node already in forbidSet are
// pairwise different, with dependency dep.
func (g *CGraph) SetCurIR(node *Node, forbid []*Node, dep DepSet) {
	g.touch(node)
	for _, o := range forbid {
		if o.ID == node.ID {
			continue
		}
		node.IR = append(node.IR, irPair{OtherID: o.ID, Dep: dep})
		g.touch(o)
		o.IR = append(o.IR, irPair{OtherID: node.ID, Dep: dep})
	}
}

// AreDifferent reports whether a and b are already known unequal, and if
// so the justifying dependency.
func (n *Node) AreDifferent(otherID int) (DepSet, bool) {
	for _, p := range n.IR {
		if p.OtherID == otherID {
			return p.Dep, true
		}
	}
	return DepSet{}, false
}

// Save captures the graph's used-node watermark for a branch point.
func (g *CGraph) Save() int { return g.used }

// Restore undoes every node mutation recorded at or after `level`
// (restoring each touched node's state) and resets the used-node
// watermark to `usedWatermark`, making nodes beyond it available for
// reuse by NewNode.
func (g *CGraph) Restore(level int, usedWatermark int) {
	for l, ids := range g.touchedAtLevel {
		if l < level {
			continue
		}
		for _, id := range ids {
			if n := g.Node(id); n != nil {
				n.restoreToLevel(level)
			}
		}
		delete(g.touchedAtLevel, l)
	}
	g.used = usedWatermark
	g.curLevel = level - 1
	if g.curLevel < 0 {
		g.curLevel = 0
	}
}

package tableau

// todoEntry is one pending (node, label-slot) expansion. Spec §3 encodes
// the label slot as a signed "offset" (negative => complex array,
// non-negative => simple array) into a single int; this package instead
// carries the two fields that offset packs (Complex bool, Index int)
// directly — equivalent information, without needing callers to decode
// a sign-and-magnitude index, and the CWDArrays this indexes are
// append-only between saves, so the index stays valid exactly as long
// as the packed offset would have.
type todoEntry struct {
	NodeID  int
	Complex bool
	Index   int
}

// resolve returns the (bp, dep) pair this entry currently points at,
// reading through to the node's label.
func (e todoEntry) resolve(g *CGraph) (BP, DepSet, bool) {
	n := g.Node(e.NodeID)
	if n == nil {
		return INVALID, DepSet{}, false
	}
	arr := n.Label.Simple
	if e.Complex {
		arr = n.Label.Complex
	}
	if e.Index < 0 || e.Index >= len(arr.entries) {
		return INVALID, DepSet{}, false
	}
	le := arr.entries[e.Index]
	return le.BP, le.Dep, true
}

// classKey names one of the ToDo queue's priority classes (spec §4.9):
// "ID" and "NN" are always scanned first and in that order; the
// remaining classes are scanned in the order given by a priority
// string (default "IAOEFLG" — Irr, And, Or, Exists(negative-Forall),
// Forall, LE-atmost, LE-atleast).
type classKey byte

const (
	classID classKey = 'D' // nominal/singleton identification entries
	classNN classKey = 'N' // NN-rule candidates (≥n on a nominal node)
)

// classFor maps a label entry's (tag, polarity, isNominalNode) to the
// ToDo priority class it belongs to, or ok=false if the entry is never
// queued (e.g. TOP, which no rule dispatches on).
func classFor(tag Tag, positive, isNominal bool) (classKey, bool) {
	switch tag {
	case TagTop:
		return 0, false
	case TagPSingleton, TagNSingleton:
		return classID, true
	case TagLE:
		if !positive && isNominal {
			return classNN, true
		}
		if positive {
			return classKey('L'), true // ≤n: at-most merge
		}
		return classKey('G'), true // ≥n: at-least generate
	case TagIrr:
		return classKey('I'), true
	case TagAnd, TagCollection, TagSplitConcept:
		if positive {
			return classKey('A'), true // ∧
		}
		return classKey('O'), true // ∨ (disjunction)
	case TagForall, TagUAll:
		if positive {
			return classKey('F'), true // ∀
		}
		return classKey('E'), true // ∃ (Forall negated)
	case TagPConcept, TagNConcept:
		return classKey('A'), true // named-concept unfold, non-generating
	case TagDataType, TagDataValue, TagDataExpr:
		return classKey('A'), true
	case TagProj:
		return classKey('F'), true
	default:
		return classKey('A'), true
	}
}

// DefaultPriority is the teacher-documented default regular-class
// ordering (spec §4.9's example "IAOEFLG").
const DefaultPriority = "IAOEFLG"

// ToDoQueue holds the pending (node, concept) expansions, partitioned by
// priority class, each an append-mostly slice. ID/NN classes (the
// "nominal queue") additionally support out-of-order insertion to keep
// entries ordered by ascending nominal level within the class (spec
// §4.9); because that reordering can shuffle entries added at an earlier
// branching level, both nominal classes restore via a full-slice
// snapshot pushed onto the shared rare-event restorer chain rather than
// by simple length truncation, even on plain appends — a conservative
// but always-correct reading of "register a restorer ... on rollback
// (rare event)".
type ToDoQueue struct {
	order     []classKey // ID, NN, then one per priority-string letter, in scan order
	classes   map[classKey][]todoEntry
	restorers *RestorerChain
	stats     *Stats2
}

// NewToDoQueue builds a queue scanning ID, then NN, then the regular
// classes named by priority (duplicate or unknown letters are ignored).
func NewToDoQueue(priority string, restorers *RestorerChain, stats *Stats2) *ToDoQueue {
	q := &ToDoQueue{
		classes:   make(map[classKey][]todoEntry),
		restorers: restorers,
		stats:     stats,
	}
	q.order = append(q.order, classID, classNN)
	seen := map[classKey]bool{classID: true, classNN: true}
	for i := 0; i < len(priority); i++ {
		k := classKey(priority[i])
		if seen[k] {
			continue
		}
		seen[k] = true
		q.order = append(q.order, k)
	}
	for _, k := range q.order {
		q.classes[k] = nil
	}
	return q
}

// nominalLevelOf reads a node's nominal level for queue ordering; ordinary
// blockable nodes sort first within their class (BlockableLevel is -1,
// below every nominal level).
func nominalLevelOf(g *CGraph, id int) int {
	if n := g.Node(id); n != nil {
		return n.NominalLevel
	}
	return BlockableLevel
}

// Add enqueues (node, bp, dep) if its tag/polarity routes to a tracked
// class; entries whose class is unrecognised are silently dropped
// (spec §4.9: e.g. ⊤). index/complex must match the slot the caller just
// appended to node.Label.
func (q *ToDoQueue) Add(g *CGraph, node *Node, bp BP, complex bool, index int) {
	k, ok := classFor(g.dag.Tag(bp), bp.IsPositive(), node.IsNominal())
	if !ok {
		return
	}
	e := todoEntry{NodeID: node.ID, Complex: complex, Index: index}
	if k == classID || k == classNN {
		q.nominalInsert(g, k, e)
		return
	}
	q.classes[k] = append(q.classes[k], e)
}

// nominalInsert appends e to class k, first snapshotting the class for
// rare-event restore, then — if e's node has a strictly lower nominal
// level than the class's current last entry — searching backward for the
// correct insertion point instead of appending at the end, so that
// entries within a class stay ordered by ascending nominal level.
func (q *ToDoQueue) nominalInsert(g *CGraph, k classKey, e todoEntry) {
	cur := q.classes[k]
	snapshot := make([]todoEntry, len(cur))
	copy(snapshot, cur)
	q.restorers.Push(restoreMoveQueue, func() {
		q.classes[k] = snapshot
	})

	newLevel := nominalLevelOf(g, e.NodeID)
	pos := len(cur)
	for pos > 0 && nominalLevelOf(g, cur[pos-1].NodeID) > newLevel {
		pos--
	}
	if pos == len(cur) {
		q.classes[k] = append(cur, e)
		return
	}
	out := make([]todoEntry, len(cur)+1)
	copy(out, cur[:pos])
	out[pos] = e
	copy(out[pos+1:], cur[pos:])
	q.classes[k] = out
}

// todoSave captures each regular class's slice header (its start and end
// pointers into the backing array).
type todoSave struct {
	regular map[classKey][]todoEntry
}

// Save returns a token capturing every regular class's current slice.
// GetNext pops by advancing a class's start and Add only writes past its
// end, so the entries a saved slice covers are never overwritten and
// restoring the header brings back exactly the saved pending set.
// ID/NN classes restore through the rare-event restorer chain instead
// (pushed by nominalInsert), so they need no entry here.
func (q *ToDoQueue) Save() todoSave {
	s := todoSave{regular: make(map[classKey][]todoEntry, len(q.order))}
	for _, k := range q.order {
		if k == classID || k == classNN {
			continue
		}
		s.regular[k] = q.classes[k]
	}
	return s
}

// Restore resets every regular class to its saved slice, re-queuing
// entries popped since the save and dropping entries added since. The
// ID/NN classes are restored separately, by replaying the rare-event
// restorer chain (RestorerChain.Restore), which the caller (Engine's
// backjump path) always does in the same transaction.
func (q *ToDoQueue) Restore(s todoSave) {
	for k, saved := range s.regular {
		q.classes[k] = saved
	}
}

// GetNext scans ID, then NN, then the regular classes in priority order;
// the first non-empty class yields its front entry, which is popped.
// Returns ok=false when every class is empty.
func (q *ToDoQueue) GetNext(g *CGraph) (todoEntry, bool) {
	for _, k := range q.order {
		entries := q.classes[k]
		for len(entries) > 0 {
			e := entries[0]
			entries = entries[1:]
			q.classes[k] = entries
			if _, _, ok := e.resolve(g); ok {
				return e, true
			}
			// stale entry (its level was truncated/restored out from
			// under it on a prior branch): skip rather than dispatch on
			// garbage.
		}
	}
	return todoEntry{}, false
}

// Empty reports whether every class is empty.
func (q *ToDoQueue) Empty() bool {
	for _, k := range q.order {
		if len(q.classes[k]) > 0 {
			return false
		}
	}
	return true
}

package tableau

// AddOutcome classifies the result of adding a concept to a label.
type AddOutcome uint8

const (
	AddDone AddOutcome = iota
	AddExists
	AddClash
)

// labelEntry is one (BP, DepSet) pair held in a CWDArray.
type labelEntry struct {
	BP  BP
	Dep DepSet
}

// CWDArray ("concept-with-dependency array") is an append-mostly vector
// of (BP, dep) pairs. It has no internal synchronisation: the tableau is
// single-threaded (spec §5), and concurrent access is never required.
type CWDArray struct {
	entries []labelEntry
	stats   *Stats2 // shared per-session lookup counter, see stats.go
}

func newCWDArray(stats *Stats2) *CWDArray {
	return &CWDArray{stats: stats}
}

// Contains reports whether bp is present, ignoring its dependency set.
func (a *CWDArray) Contains(bp BP) bool {
	for i := range a.entries {
		a.stats.bumpLookup()
		if a.entries[i].BP == bp {
			return true
		}
	}
	return false
}

// find returns the index of bp, or -1.
func (a *CWDArray) find(bp BP) int {
	for i := range a.entries {
		a.stats.bumpLookup()
		if a.entries[i].BP == bp {
			return i
		}
	}
	return -1
}

// TryAdd scans for bp and its inverse before any mutation: if bp is
// already present, it reports AddExists; if the inverse is present, it
// reports AddClash and returns the union of the two dependency sets (the
// clash witness); otherwise AddDone, meaning the caller should follow up
// with Add.
func (a *CWDArray) TryAdd(bp BP, dep DepSet) (AddOutcome, DepSet) {
	if i := a.find(bp.Inverse()); i >= 0 {
		return AddClash, dep.Union(a.entries[i].Dep)
	}
	if a.find(bp) >= 0 {
		return AddExists, DepSet{}
	}
	return AddDone, DepSet{}
}

// Add unconditionally appends (bp, dep). Callers are expected to have
// called TryAdd first and acted on AddDone.
func (a *CWDArray) Add(bp BP, dep DepSet) {
	a.entries = append(a.entries, labelEntry{BP: bp, Dep: dep})
}

// UpdateDep widens the dependency set of an existing entry for bp during
// a merge, returning a Restorer that narrows it back to the prior value
// on rollback. No-op (nil-undo Restorer) if bp is absent.
func (a *CWDArray) UpdateDep(bp BP, dep DepSet) Restorer {
	i := a.find(bp)
	if i < 0 {
		return Restorer{kind: restoreUpdateDep}
	}
	old := a.entries[i].Dep
	a.entries[i].Dep = old.Union(dep)
	idx := i
	return Restorer{kind: restoreUpdateDep, undo: func() {
		a.entries[idx].Dep = old
	}}
}

// Save returns the current length, to be passed to Restore.
func (a *CWDArray) Save() int { return len(a.entries) }

// Restore truncates the array back to a saved length (the "static,
// stack-based" restore of spec §4.5).
func (a *CWDArray) Restore(saved int) {
	a.entries = a.entries[:saved]
}

// RestoreDynamic walks the array removing every entry whose dependency
// level is ≥ the restoration level, rather than truncating by length,
// for entries appended out of save-order. Nothing in this package calls
// it: every restore path uses Restore's length truncation.
func (a *CWDArray) RestoreDynamic(level int) {
	kept := a.entries[:0]
	for _, e := range a.entries {
		d := e.Dep
		if d.Level() >= level {
			continue
		}
		kept = append(kept, e)
	}
	a.entries = kept
}

// Snapshot returns a defensive copy of the current entries, for callers
// (caching, blocking) that need to examine the label without risking
// aliasing into a slice the array later reallocates.
func (a *CWDArray) Snapshot() []labelEntry {
	out := make([]labelEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// isComplexTag reports whether a vertex of this tag belongs in a
// CGLabel's complex array (∀, ≤n, Irr, universal-∀) rather than its
// simple array (atomic/∃-derived concepts: Collection, And, named
// concepts, singletons).
func isComplexTag(t Tag) bool {
	switch t {
	case TagForall, TagUAll, TagLE, TagIrr:
		return true
	default:
		return false
	}
}

// CGLabel holds the two dep-annotated concept sets a completion-graph
// node carries: Simple (atomic/∃-derived) and Complex (∀/≤n/Irr/∀U).
// Which array a given BP's tag routes to is fixed by isComplexTag.
type CGLabel struct {
	dag     *DAG
	Simple  *CWDArray
	Complex *CWDArray
}

func newCGLabel(dag *DAG, stats *Stats2) *CGLabel {
	return &CGLabel{dag: dag, Simple: newCWDArray(stats), Complex: newCWDArray(stats)}
}

// arrayFor returns the array a BP's tag routes to.
func (l *CGLabel) arrayFor(bp BP) *CWDArray {
	if isComplexTag(l.dag.Tag(bp)) {
		return l.Complex
	}
	return l.Simple
}

// TryAdd routes bp to the correct array and attempts to add it there.
func (l *CGLabel) TryAdd(bp BP, dep DepSet) (AddOutcome, DepSet) {
	return l.arrayFor(bp).TryAdd(bp, dep)
}

// Add routes bp to the correct array and appends it unconditionally.
func (l *CGLabel) Add(bp BP, dep DepSet) {
	l.arrayFor(bp).Add(bp, dep)
}

// Contains reports membership in whichever array bp's tag routes to.
func (l *CGLabel) Contains(bp BP) bool {
	return l.arrayFor(bp).Contains(bp)
}

// IsSupersetOf reports whether l ⊇ other: every entry of other.Simple is
// in l.Simple, and every entry of other.Complex is in l.Complex. This is
// the subset test the blocking engine's B1 rule (and SH/SHI blocking in
// full) is built from — see blocking.go.
func (l *CGLabel) IsSupersetOf(other *CGLabel) bool {
	for _, e := range other.Simple.entries {
		if !l.Simple.Contains(e.BP) {
			return false
		}
	}
	for _, e := range other.Complex.entries {
		if !l.Complex.Contains(e.BP) {
			return false
		}
	}
	return true
}

// MergeAdd is the merge-time counterpart of TryAdd/Add: it adds bp with
// dep if absent, widens the existing entry's dep (via UpdateDep) if bp is
// already present, or reports AddClash (with the unioned clash dep) if
// bp's inverse is present. Used by CGraph.Merge (§4.10.2 step 3-4: "check
// label clash ... copy all from-labels into to, widening dep-sets").
func (l *CGLabel) MergeAdd(bp BP, dep DepSet) (AddOutcome, DepSet) {
	arr := l.arrayFor(bp)
	outcome, clashDep := arr.TryAdd(bp, dep)
	switch outcome {
	case AddClash:
		return AddClash, clashDep
	case AddExists:
		arr.UpdateDep(bp, dep)
		return AddExists, DepSet{}
	default:
		arr.Add(bp, dep)
		return AddDone, DepSet{}
	}
}

// labelSaveState is a node's saved label state at some branching level
// (spec §3's "stack of per-level SaveStates for the label").
type labelSaveState struct {
	level        int
	simpleSave   int
	complexSave  int
}

func (l *CGLabel) save(level int) labelSaveState {
	return labelSaveState{level: level, simpleSave: l.Simple.Save(), complexSave: l.Complex.Save()}
}

func (l *CGLabel) restore(s labelSaveState) {
	l.Simple.Restore(s.simpleSave)
	l.Complex.Restore(s.complexSave)
}

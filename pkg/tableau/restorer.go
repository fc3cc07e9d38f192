package tableau

// restorerKind labels a Restorer for debugging/statistics only; the undo
// action itself is carried as a closure, which is the idiomatic Go
// replacement for spec §9's "TRestorer subclasses in a rare-event stack"
// hierarchy — each Restorer still carries just the fields its undo
// closure captures, and the chain below is a plain slice rather than an
// intrusive linked list, but the semantics (LIFO rare-event undo,
// popped-not-freed) are the ones spec §3's Ownership section and §9's
// design note both call for.
type restorerKind uint8

const (
	restoreUpdateDep restorerKind = iota
	restoreUnpurge
	restoreEdgeRolify
	restoreIRResize
	restoreMoveQueue
)

// Restorer is one entry in the rare-event restorer chain: an action that,
// when Apply()-ed, undoes a single mutation that was too rare or too
// expensive to make an ordinary part of the per-level save/restore
// discipline (label saves, ToDo save/restore, branch-stack pops already
// cover the common case).
type Restorer struct {
	kind restorerKind
	undo func()
}

// Apply runs the restorer's undo action.
func (r Restorer) Apply() {
	if r.undo != nil {
		r.undo()
	}
}

// RestorerChain is a growable LIFO stack of Restorers. Save/Restore are
// index-watermark based, like every other structure's save/restore
// discipline in this package: popped entries are discarded (not pooled —
// restorers are cheap closures, unlike branching contexts).
type RestorerChain struct {
	entries []Restorer
}

// NewRestorerChain returns an empty chain.
func NewRestorerChain() *RestorerChain { return &RestorerChain{} }

// Push appends a restorer to the chain.
func (c *RestorerChain) Push(kind restorerKind, undo func()) {
	c.entries = append(c.entries, Restorer{kind: kind, undo: undo})
}

// Save returns the current chain length, to be passed to Restore later.
func (c *RestorerChain) Save() int { return len(c.entries) }

// Restore applies every restorer pushed since the matching Save, in
// reverse (LIFO) order, then truncates the chain.
func (c *RestorerChain) Restore(saved int) {
	for i := len(c.entries) - 1; i >= saved; i-- {
		c.entries[i].Apply()
	}
	c.entries = c.entries[:saved]
}

package tableau

import (
	"fmt"
	"strings"
)

// Tag identifies the shape of a concept-DAG vertex. The tag set is small
// and closed, so a tagged-variant representation (rather than an
// interface-per-tag hierarchy) is the right fit: dispatch throughout the
// package switches on Tag instead of relying on type assertions or RTTI.
type Tag uint8

const (
	TagTop Tag = iota
	TagAnd
	TagCollection
	TagForall
	TagLE
	TagUAll
	TagIrr
	TagPConcept
	TagNConcept
	TagPSingleton
	TagNSingleton
	TagDataType
	TagDataValue
	TagDataExpr
	TagProj
	TagSplitConcept
	TagNN
)

func (t Tag) String() string {
	names := [...]string{
		"Top", "And", "Collection", "Forall", "LE", "UAll", "Irr",
		"PConcept", "NConcept", "PSingleton", "NSingleton",
		"DataType", "DataValue", "DataExpr", "Proj", "SplitConcept", "NN",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "Tag(?)"
}

// NamedEntry is the owner record for a named concept or individual: the
// user-facing name, whether it is primitive (C ⊑ D) or defined (C ≡ D),
// and the BP of its description.
type NamedEntry struct {
	Name        string
	Primitive   bool
	Description BP
	// Told is the set of told-subsumer BPs syntactically visible in
	// Description, used by taxonomy construction (C13) to short-cut
	// subsumption tests.
	Told []BP
}

// Stats holds per-vertex statistics used for ToDo priority weighting and
// branching-order heuristics (spec §2's "branching weight").
type Stats struct {
	Depth           int
	Size            int
	BranchingWeight int
	Frequency       int
}

// Vertex is an immutable (after construction) concept-DAG node. Two
// Vertex values that are "equal" per hashKey are hash-consed to the same
// BP; see DAG.addVertex.
type Vertex struct {
	Tag      Tag
	Children []BP // And / Collection / SplitConcept

	Role       *Role // Forall / LE / Irr / Proj
	AutoState  int   // Forall: automaton state index for non-simple roles
	N          int   // LE: cardinality bound
	C          BP    // Forall / LE qualifier concept; Proj: the projected-on concept

	ProjRole *Role // Proj: R' (the role added after projection)

	Owner *NamedEntry // PConcept/NConcept/PSingleton/NSingleton

	DataTypeName string // DataType
	DataValue    string // DataValue
	DataExprOp   string // DataExpr

	Stats     Stats
	SortLabel int // mergeable equivalence class for sorted pre-filtering; 0 = unset

	caches [2]Cache // index 0 = positive polarity, 1 = negative
}

// cacheSlot returns the cache slot index for the given polarity.
func cacheSlot(positive bool) int {
	if positive {
		return 0
	}
	return 1
}

// hashKey returns a string key distinguishing vertices that must be
// hash-consed (And, Forall, LE, Irr). Collisions across tags are
// impossible since the tag is embedded in the key.
func (v *Vertex) hashKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", v.Tag)
	switch v.Tag {
	case TagAnd, TagCollection, TagSplitConcept:
		for _, c := range v.Children {
			fmt.Fprintf(&b, "%d,", c)
		}
	case TagForall, TagUAll:
		rid := 0
		if v.Role != nil {
			rid = v.Role.ID
		}
		fmt.Fprintf(&b, "%d|%d|%d", rid, v.AutoState, v.C)
	case TagLE:
		rid := 0
		if v.Role != nil {
			rid = v.Role.ID
		}
		fmt.Fprintf(&b, "%d|%d|%d", rid, v.N, v.C)
	case TagIrr:
		rid := 0
		if v.Role != nil {
			rid = v.Role.ID
		}
		fmt.Fprintf(&b, "%d", rid)
	}
	return b.String()
}

// DAG is the normalised concept DAG: a shared, tagged-vertex, hash-consed
// pool of concept expressions. It is read-only once reasoning begins;
// per-vertex caches are the only fields mutated after construction, and
// only once each (write-once — first writer wins, enforced by the
// cascaded cache builder's inProcess guard, see cascade.go).
type DAG struct {
	vertices []*Vertex // 1-based; vertices[0] is an unused sentinel

	// hash-consing indices, one per deduplicated tag family.
	andIndex   map[string]BP
	forallIdx  map[string]BP
	leIndex    map[string]BP
	irrIndex   map[string]BP

	// ordering spec applied to SAT vs SUB sessions; see setOrdering.
	satOrder string
	subOrder string
}

// NewDAG creates an empty concept DAG pre-seeded with TOP/BOTTOM at
// index 1 (BOTTOM is TOP's negative polarity, per the BP constants).
func NewDAG() *DAG {
	d := &DAG{
		vertices:  make([]*Vertex, 1, 64),
		andIndex:  make(map[string]BP),
		forallIdx: make(map[string]BP),
		leIndex:   make(map[string]BP),
		irrIndex:  make(map[string]BP),
	}
	d.vertices = append(d.vertices, &Vertex{Tag: TagTop})
	return d
}

// addVertex hash-conses v against the appropriate tag-specific index. On a
// hit, v is discarded and the existing BP is returned; on a miss, v is
// appended and indexed. Tags outside {And, Collection/Split, Forall/UAll,
// LE, Irr} are never deduplicated (each PConcept/NConcept/etc. vertex is
// already unique by construction, keyed by name elsewhere).
func (d *DAG) addVertex(v *Vertex) BP {
	var idx map[string]BP
	switch v.Tag {
	case TagAnd, TagCollection, TagSplitConcept:
		idx = d.andIndex
	case TagForall, TagUAll:
		idx = d.forallIdx
	case TagLE:
		idx = d.leIndex
	case TagIrr:
		idx = d.irrIndex
	default:
		return d.directAdd(v)
	}
	key := v.hashKey()
	if bp, ok := idx[key]; ok {
		return bp
	}
	bp := d.directAdd(v)
	idx[key] = bp
	return bp
}

// directAdd appends v without consulting the hash-consing index. Used when
// uniqueness is already guaranteed by the caller: named concepts,
// singletons and projection vertices. Successor-state ∀ vertices are not
// built here; they go through AddForall's hash-consing.
func (d *DAG) directAdd(v *Vertex) BP {
	bp := bpFromIndex(len(d.vertices))
	d.vertices = append(d.vertices, v)
	return bp
}

// vertex returns the vertex addressed by bp (ignoring polarity). Panics on
// an out-of-range index: callers must only pass BPs obtained from this DAG.
func (d *DAG) vertex(bp BP) *Vertex {
	idx := bp.Index()
	if idx <= 0 || idx >= len(d.vertices) {
		panic(fmt.Sprintf("tableau: invalid BP %v", bp))
	}
	return d.vertices[idx]
}

// Tag returns the tag of the vertex addressed by bp.
func (d *DAG) Tag(bp BP) Tag { return d.vertex(bp).Tag }

// getCache returns the cache stored for bp at its polarity, or nil.
func (d *DAG) getCache(bp BP) Cache {
	return d.vertex(bp).caches[cacheSlot(bp.IsPositive())]
}

// setCache installs c as the cache for bp at its polarity. Once set for a
// given polarity, the slot is never overwritten (testable property 6:
// cache monotonicity) — callers must check getCache first.
func (d *DAG) setCache(bp BP, c Cache) {
	d.vertex(bp).caches[cacheSlot(bp.IsPositive())] = c
}

// AddAnd builds (and hash-conses) a conjunction vertex. TOP children are
// dropped and a BOTTOM child collapses the whole conjunction to BOTTOM,
// per spec §3's invariant that TOP/BOTTOM never appear inside And
// children.
func (d *DAG) AddAnd(children ...BP) BP {
	filtered := make([]BP, 0, len(children))
	for _, c := range children {
		if c == TOP {
			continue
		}
		if c == BOTTOM {
			return BOTTOM
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return TOP
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return d.addVertex(&Vertex{Tag: TagAnd, Children: filtered})
}

// AddOr builds a disjunction via De Morgan over AddAnd: C1 ⊔ ... ⊔ Cn =
// ¬(¬C1 ⊓ ... ⊓ ¬Cn). Absorption (C3) builds every residual GCI this
// way, so Or vertices are never a distinct tag — they are negative-
// polarity And/Collection BPs, matching spec §3's "TagCollection" being
// the negative reading of a conjunction.
func (d *DAG) AddOr(children ...BP) BP {
	inv := make([]BP, len(children))
	for i, c := range children {
		inv[i] = c.Inverse()
	}
	return d.AddAnd(inv...).Inverse()
}

// NamedOwner returns the NamedEntry backing a PConcept/NConcept/
// PSingleton/NSingleton vertex, or nil for any other tag.
func (d *DAG) NamedOwner(bp BP) *NamedEntry {
	return d.vertex(bp).Owner
}

// SetDescription installs (or replaces) a named concept's description
// BP — used by absorption's C/N rules to fold a disjunct into a primitive
// concept's definition.
func (d *DAG) SetDescription(bp BP, desc BP) {
	d.vertex(bp).Owner.Description = desc
}

// AddForall builds (and hash-conses) a ∀R{state}.C vertex.
func (d *DAG) AddForall(r *Role, state int, c BP) BP {
	return d.addVertex(&Vertex{Tag: TagForall, Role: r, AutoState: state, C: c})
}

// AddUAll builds the universal-role restriction vertex ∀U.C.
func (d *DAG) AddUAll(c BP) BP {
	return d.addVertex(&Vertex{Tag: TagUAll, C: c})
}

// AddLE builds (and hash-conses) a ≤n R.C vertex. Its negation, reached
// via BP.Inverse, is the existential ≥(n+1) R.C reading used by the
// at-least rule (§4.10.1).
func (d *DAG) AddLE(r *Role, n int, c BP) BP {
	return d.addVertex(&Vertex{Tag: TagLE, Role: r, N: n, C: c})
}

// AddIrr builds (and hash-conses) a ¬∃R.Self vertex.
func (d *DAG) AddIrr(r *Role) BP {
	return d.addVertex(&Vertex{Tag: TagIrr, Role: r})
}

// AddProj builds a projection vertex used by the Proj rule (§4.10.1).
func (d *DAG) AddProj(r *Role, c BP, rPrime *Role) BP {
	return d.directAdd(&Vertex{Tag: TagProj, Role: r, C: c, ProjRole: rPrime})
}

// validateSimpleRoles checks that every number-restriction and
// irreflexivity-axiom vertex built so far is over a simple role (spec
// §4.1: number restrictions, ¬∃R.Self, and Irr(R) all require R simple).
// Must run after RoleMaster.finishConstruction, since Role.Simple() is
// only meaningful once every role's automaton has been built.
func (d *DAG) validateSimpleRoles() error {
	for _, v := range d.vertices[1:] {
		switch v.Tag {
		case TagLE, TagIrr:
			if !v.Role.Simple() {
				return ErrNonSimpleRole
			}
		}
	}
	return nil
}

// AddNamedConcept registers a new named concept (primitive or defined) and
// returns its positive BP. description is INVALID for a concept whose
// definition has not yet been posted (forward reference).
func (d *DAG) AddNamedConcept(name string, primitive bool, description BP) BP {
	owner := &NamedEntry{Name: name, Primitive: primitive, Description: description}
	tag := TagPConcept
	if !primitive {
		tag = TagNConcept
	}
	return d.directAdd(&Vertex{Tag: tag, Owner: owner})
}

// AddSingleton registers a nominal (singleton concept naming one
// individual) and returns its positive BP.
func (d *DAG) AddSingleton(name string) BP {
	owner := &NamedEntry{Name: name, Primitive: true}
	return d.directAdd(&Vertex{Tag: TagPSingleton, Owner: owner})
}

// setOrdering recomputes each vertex's branching weight from a 7-character
// priority spec selecting priorities for ∧/∨/∃/∀/≤/≥ plus an optional
// trailing 'p' or 'n' flag favouring non-generating rules first. Separate
// orderings are kept for SAT and SUB sessions (sat=true selects which).
// Each vertex's weight comes from its own tag letter alone
// (branchingWeightFor); children are not walked and contribute nothing.
func (d *DAG) setOrdering(spec string, sat bool) {
	if sat {
		d.satOrder = spec
	} else {
		d.subOrder = spec
	}
	for _, v := range d.vertices[1:] {
		v.Stats.BranchingWeight = branchingWeightFor(v, spec)
	}
}

// branchingWeightFor computes a single vertex's branching weight: lower
// values are tried first. The ordering string's character at the position
// for this vertex's rule family gives its relative priority (earlier
// letters in spec = higher priority = lower weight).
func branchingWeightFor(v *Vertex, spec string) int {
	letter := byte(0)
	switch v.Tag {
	case TagAnd, TagCollection:
		letter = 'A'
	case TagForall, TagUAll:
		letter = 'F'
	case TagLE:
		if v.N == 0 {
			letter = 'L' // at-most, deterministic-leaning
		} else {
			letter = 'G' // at-least, generating
		}
	}
	if letter == 0 {
		return len(spec) // unranked: lowest priority
	}
	if pos := strings.IndexByte(spec, letter); pos >= 0 {
		return pos
	}
	return len(spec)
}

package tableau

import "github.com/gitrdm/dltableau/internal/bitset"

// RoleFlags bundles the boolean properties a role may carry.
type RoleFlags struct {
	Functional  bool
	Symmetric   bool
	Transitive  bool
	Reflexive   bool
	Irreflexive bool
	Data        bool
}

// Role is one half of an inverse pair: its Id is positive, its Inverse's
// Id is the negation. Per spec §9's design note on pair-up, each field
// conceptually "belongs" to the positive twin; the negative twin is a
// thin view obtained via RoleMaster.role(-id).
type Role struct {
	ID    int // signed; the inverse role has ID = -ID
	Name  string
	Flags RoleFlags

	Domain BP // INVALID until posted
	Range  BP // = inverse's domain

	inverse *Role

	// synonym canonicalisation: Repr points to the lowest-id member of
	// this role's synonym cycle (nil if it is the representative).
	Repr *Role

	// subRoles / superRoles hold direct edges only; Ancestors/Descendants
	// (computed by finishConstruction) are the transitive closures,
	// represented as bitsets over |role| for O(1) membership tests.
	subRoles   []*Role
	superRoles []*Role
	Ancestors  *bitset.Set // includes self
	Descendants *bitset.Set // includes self

	// TopFunctionalSupers holds every super-role (including self) that is
	// functional — used by the ∃-rule's "most specific functional
	// super-role already forcing a single neighbour" lookup (§4.10.1).
	TopFunctionalSupers []*Role

	Disjoint *bitset.Set // ids of roles pairwise-disjoint with this one

	Automaton *Automaton

	simple bool // computed by finishConstruction
}

// roleKey maps a signed role id (inverse roles carry negative ids, §3) to
// a non-negative key suitable for bitset.Set, which stores uint32
// members: negative ints cast directly to uint32 would wrap around into
// enormous, colliding values. The mapping is an injective bijection onto
// the non-negative integers (even = positive id doubled, odd = negative
// id doubled minus one), so Ancestors/Descendants/Disjoint/applicable-role
// bitsets can hold both twins of every role without collision.
func roleKey(id int) int {
	if id < 0 {
		return -2*id - 1
	}
	return 2 * id
}

// unroleKey inverts roleKey, recovering the signed role id from a bitset
// member. Needed wherever code iterates a role bitset and must look the
// member back up via RoleMaster.role.
func unroleKey(key int) int {
	if key%2 == 1 {
		return -(key + 1) / 2
	}
	return key / 2
}

// Simple reports whether R is simple: |states|=2 and both i-safe/o-safe.
func (r *Role) Simple() bool { return r.simple }

// Inverse returns R's inverse role (always present; roles are allocated
// in pairs by RoleMaster.ensureRole).
func (r *Role) Inverse() *Role { return r.inverse }

// canonical returns the synonym representative for r.
func (r *Role) canonical() *Role {
	if r.Repr == nil {
		return r
	}
	return r.Repr
}

// complexInclusion is a posted role-inclusion axiom R1∘…∘Rn ⊑ R.
type complexInclusion struct {
	chain []*Role
	super *Role
}

// RoleMaster owns every role (and its paired inverse), the synonym and
// sub/super-role relation, and drives automaton construction. It is the
// sole mutator of Role values; after finishConstruction it is read-only.
type RoleMaster struct {
	byName map[string]*Role
	byID   map[int]*Role
	nextID int

	synonymEdges []struct{ a, b *Role }
	complexIncl  []complexInclusion

	universal *Role // the implicit universal role U used by ∀U.C (TagUAll)

	finished bool
}

// NewRoleMaster creates an empty role master, pre-populated with the
// universal role (spec §4.3 "R" for UAll restrictions; it has no name
// visible to axiom posting and cannot be sub/super-roled).
func NewRoleMaster() *RoleMaster {
	rm := &RoleMaster{byName: make(map[string]*Role), byID: make(map[int]*Role)}
	rm.universal, _ = rm.ensureRole("<universal>")
	rm.universal.Flags.Transitive = true
	rm.universal.Flags.Symmetric = true
	return rm
}

// Universal returns the built-in universal role (used by TagUAll).
func (rm *RoleMaster) Universal() *Role { return rm.universal }

// ensureRole is idempotent: it allocates a role and its inverse together
// (ids ±k) on first use, and returns the existing pair on subsequent
// calls with the same name.
func (rm *RoleMaster) ensureRole(name string) (*Role, error) {
	if r, ok := rm.byName[name]; ok {
		return r, nil
	}
	rm.nextID++
	id := rm.nextID
	pos := &Role{ID: id, Name: name}
	neg := &Role{ID: -id, Name: "inv(" + name + ")"}
	pos.inverse = neg
	neg.inverse = pos
	rm.byName[name] = pos
	rm.byID[id] = pos
	rm.byID[-id] = neg
	return pos, nil
}

// EnsureRole is the public, error-returning entry point; it fails once
// finishConstruction has run, since roles must be fixed before the
// automata that depend on them are built.
func (rm *RoleMaster) EnsureRole(name string) (*Role, error) {
	if rm.finished {
		return nil, ErrFailedReasoning
	}
	return rm.ensureRole(name)
}

// role looks up a role (positive or negative id) without allocating.
func (rm *RoleMaster) role(id int) *Role { return rm.byID[id] }

// AddDisjointRoles records that R and S can never both relate the same
// pair of nodes.
func (rm *RoleMaster) AddDisjointRoles(r, s *Role) {
	if r.Disjoint == nil {
		r.Disjoint = bitset.New()
	}
	if s.Disjoint == nil {
		s.Disjoint = bitset.New()
	}
	r.Disjoint.Add(roleKey(s.ID))
	s.Disjoint.Add(roleKey(r.ID))
}

// AddRoleSynonym records R ≡ S, resolved transitively at
// finishConstruction time.
func (rm *RoleMaster) AddRoleSynonym(r, s *Role) {
	rm.synonymEdges = append(rm.synonymEdges, struct{ a, b *Role }{r, s})
}

// AddSubRole records R ⊑ S (a simple role inclusion).
func (rm *RoleMaster) AddSubRole(sub, super *Role) {
	sub.superRoles = append(sub.superRoles, super)
	super.subRoles = append(super.subRoles, sub)
}

// AddComplexInclusion records R1∘…∘Rn ⊑ R (a role-inclusion axiom, RIA).
func (rm *RoleMaster) AddComplexInclusion(chain []*Role, super *Role) {
	rm.complexIncl = append(rm.complexIncl, complexInclusion{chain: chain, super: super})
}

func (rm *RoleMaster) SetFunctional(r *Role)  { r.Flags.Functional = true }
func (rm *RoleMaster) SetTransitive(r *Role)  { r.Flags.Transitive = true }
func (rm *RoleMaster) SetSymmetric(r *Role)   { r.Flags.Symmetric = true }
func (rm *RoleMaster) SetReflexive(r *Role)   { r.Flags.Reflexive = true }
func (rm *RoleMaster) SetIrreflexive(r *Role) { r.Flags.Irreflexive = true }
func (rm *RoleMaster) SetDomain(r *Role, c BP) {
	r.Domain = c
	r.inverse.Range = c
}
func (rm *RoleMaster) SetRange(r *Role, c BP) {
	r.Range = c
	r.inverse.Domain = c
}

// allRoles returns every allocated role, positive and negative twins
// both, in no particular order (map iteration order) — callers only use
// this for full-closure sweeps.
func (rm *RoleMaster) allRoles() []*Role {
	out := make([]*Role, 0, len(rm.byID))
	for _, r := range rm.byID {
		out = append(out, r)
	}
	return out
}

// finishConstruction computes synonym closure, eliminates told-subsumer
// cycles (folding a cycle into a synonym class keyed by its lowest id),
// propagates domains from super-roles, determines simplicity, and builds
// each role's automaton. See §4.1.
func (rm *RoleMaster) finishConstruction() error {
	rm.resolveSynonyms()
	rm.collapseCycles()
	rm.computeClosures()
	rm.propagateDomains()
	if err := rm.buildAutomata(); err != nil {
		return err
	}
	rm.computeSimplicity()
	rm.finished = true
	return nil
}

// resolveSynonyms computes the transitive closure of synonym edges with a
// union-find over role ids, then points every member's Repr at the
// lowest-id representative of its class.
func (rm *RoleMaster) resolveSynonyms() {
	parent := make(map[int]int)
	var find func(int) int
	find = func(x int) int {
		p, ok := parent[x]
		if !ok {
			parent[x] = x
			return x
		}
		if p != x {
			parent[x] = find(p)
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}
	for _, e := range rm.synonymEdges {
		union(e.a.ID, e.b.ID)
		union(-e.a.ID, -e.b.ID) // inverses are synonyms too
	}
	for id, r := range rm.byID {
		if root := find(id); root != id {
			r.Repr = rm.byID[root]
		}
	}
}

// collapseCycles detects told-subsumer cycles in the sub/super-role graph
// (R ⊑ S ⊑ R) and folds each cycle into a synonym class, picking the
// lowest-id member as representative — the same rule resolveSynonyms uses,
// so a second union-find pass over detected cycles suffices.
func (rm *RoleMaster) collapseCycles() {
	visited := make(map[int]int) // 0 unvisited, 1 in-progress, 2 done
	var stack []*Role
	var visit func(r *Role)
	visit = func(r *Role) {
		switch visited[r.ID] {
		case 1:
			// found a cycle: fold every role from r's occurrence on the
			// stack through the top into one synonym class.
			start := -1
			for i, s := range stack {
				if s.ID == r.ID {
					start = i
					break
				}
			}
			if start >= 0 {
				for i := start; i < len(stack)-1; i++ {
					rm.AddRoleSynonym(stack[i], stack[i+1])
				}
			}
			return
		case 2:
			return
		}
		visited[r.ID] = 1
		stack = append(stack, r)
		for _, s := range r.superRoles {
			visit(s)
		}
		stack = stack[:len(stack)-1]
		visited[r.ID] = 2
	}
	for _, r := range rm.allRoles() {
		if visited[r.ID] == 0 {
			visit(r)
		}
	}
	if len(rm.synonymEdges) > 0 {
		rm.resolveSynonyms()
	}
}

// computeClosures fills Ancestors/Descendants bitsets (each includes the
// role itself) and TopFunctionalSupers by transitive closure over
// sub/super edges, honouring synonym canonicalisation.
func (rm *RoleMaster) computeClosures() {
	for _, r := range rm.allRoles() {
		r.Ancestors = bitset.New()
		r.Descendants = bitset.New()
	}
	var ancestors func(r *Role, seen map[int]bool) *bitset.Set
	ancestors = func(r *Role, seen map[int]bool) *bitset.Set {
		r = r.canonical()
		set := bitset.Of(roleKey(r.ID))
		if seen[r.ID] {
			return set
		}
		seen[r.ID] = true
		for _, s := range r.superRoles {
			set.Or(ancestors(s, seen))
		}
		return set
	}
	for _, r := range rm.allRoles() {
		r.Ancestors = ancestors(r, map[int]bool{})
	}
	// descendants: invert ancestors
	for _, r := range rm.allRoles() {
		r.Ancestors.Iterate(func(aid int) bool {
			if a := rm.role(unroleKey(aid)); a != nil {
				a.Descendants.Add(roleKey(r.ID))
			}
			return true
		})
	}
	for _, r := range rm.allRoles() {
		r.TopFunctionalSupers = nil
		r.Ancestors.Iterate(func(aid int) bool {
			if a := rm.role(unroleKey(aid)); a != nil && a.Flags.Functional {
				r.TopFunctionalSupers = append(r.TopFunctionalSupers, a)
			}
			return true
		})
	}
}

// propagateDomains copies a super-role's domain down to every sub-role
// lacking one of its own, per §4.1 step "propagate domain from
// super-roles".
func (rm *RoleMaster) propagateDomains() {
	for _, r := range rm.allRoles() {
		if r.Domain != INVALID {
			continue
		}
		r.Ancestors.Iterate(func(aid int) bool {
			if a := rm.role(unroleKey(aid)); a != nil && a.Domain != INVALID {
				r.Domain = a.Domain
				return false
			}
			return true
		})
	}
}

// computeSimplicity marks each role simple iff its automaton has exactly
// two states, both i-safe and o-safe.
func (rm *RoleMaster) computeSimplicity() {
	for _, r := range rm.allRoles() {
		r.simple = r.Automaton != nil && r.Automaton.states == 2 &&
			r.Automaton.iSafe() && r.Automaton.oSafe()
	}
}

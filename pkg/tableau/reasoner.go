package tableau

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitrdm/dltableau/internal/taxgraph"
)

type roleAssertion struct {
	from, to string
	role     *Role
}

type conceptAssertion struct {
	individual string
	bp         BP
}

// Reasoner is the public entry point (spec §6): it owns the concept DAG,
// role master, and axiom set during knowledge-base construction, then
// wires an Engine session once the knowledge base is frozen by the first
// query. A failed axiom load marks the reasoner permanently failed, per
// §7's "pre-reasoning errors" row.
type Reasoner struct {
	dag    *DAG
	rm     *RoleMaster
	axioms *AxiomSet
	cfg    *Config
	stats  *Stats2
	data   DataReasoner
	log    *zap.SugaredLogger

	sessionID uuid.UUID

	concepts    map[string]BP
	individuals map[string]bool

	conceptAssertions []conceptAssertion
	roleAssertions    []roleAssertion
	differentGroups   [][]string
	sameGroups        [][]string

	engine *Engine
	built  bool

	failed  bool
	failErr error
}

// NewReasoner creates an empty knowledge base. A nil cfg uses
// DefaultConfig(); a nil data reasoner uses the no-op stub.
func NewReasoner(cfg *Config, data DataReasoner) *Reasoner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	dag := NewDAG()
	r := &Reasoner{
		dag:         dag,
		rm:          NewRoleMaster(),
		axioms:      NewAxiomSet(dag),
		cfg:         cfg,
		stats:       NewStats2(),
		data:        data,
		log:         newLogger(cfg.Verbose),
		sessionID:   uuid.New(),
		concepts:    make(map[string]BP),
		individuals: make(map[string]bool),
	}
	r.log.Infow("reasoner created", "session", r.sessionID)
	return r
}

func (r *Reasoner) fail(err error) error {
	r.failed = true
	r.failErr = err
	r.log.Errorw("reasoner marked failed", "err", err)
	return err
}

func (r *Reasoner) checkFailed() error {
	if r.failed {
		return ErrFailedReasoning
	}
	return nil
}

// --- Creation (spec §6 "Creation of roles, concepts, and individuals") ---

// NewRole creates (or returns the existing) role by name.
func (r *Reasoner) NewRole(name string) (*Role, error) {
	if err := r.checkFailed(); err != nil {
		return nil, err
	}
	role, err := r.rm.EnsureRole(name)
	if err != nil {
		return nil, r.fail(err)
	}
	return role, nil
}

// NewConcept registers a named concept (primitive or defined, description
// added later via SubClassOf/EquivalentClasses) and returns its BP.
func (r *Reasoner) NewConcept(name string, primitive bool) BP {
	if bp, ok := r.concepts[name]; ok {
		return bp
	}
	bp := r.dag.AddNamedConcept(name, primitive, INVALID)
	r.concepts[name] = bp
	return bp
}

// NewIndividual registers an individual's name and returns the singleton
// concept naming it.
func (r *Reasoner) NewIndividual(name string) BP {
	r.individuals[name] = true
	return r.dag.AddSingleton(name)
}

// --- Axiom posting (spec §6) ---

func (r *Reasoner) SubClassOf(c, d BP)       { r.axioms.AddSubsumption(c, d) }
func (r *Reasoner) EquivalentClasses(c, d BP) { r.axioms.AddEquivalence(c, d) }
func (r *Reasoner) Disjoint(concepts ...BP)  { r.axioms.AddDisjoint(concepts) }

// Related posts a role assertion R(a,b) between two individuals.
func (r *Reasoner) Related(a string, role *Role, b string) {
	r.individuals[a] = true
	r.individuals[b] = true
	r.roleAssertions = append(r.roleAssertions, roleAssertion{from: a, to: b, role: role})
}

// DifferentIndividuals posts pairwise inequality among the named
// individuals.
func (r *Reasoner) DifferentIndividuals(names ...string) {
	for _, n := range names {
		r.individuals[n] = true
	}
	r.differentGroups = append(r.differentGroups, append([]string{}, names...))
}

// SameIndividuals posts that every named individual denotes the same
// element of the model.
func (r *Reasoner) SameIndividuals(names ...string) {
	for _, n := range names {
		r.individuals[n] = true
	}
	r.sameGroups = append(r.sameGroups, append([]string{}, names...))
}

// AssertConcept posts C(a): individual a is an instance of concept bp.
func (r *Reasoner) AssertConcept(individual string, bp BP) {
	r.individuals[individual] = true
	r.conceptAssertions = append(r.conceptAssertions, conceptAssertion{individual: individual, bp: bp})
}

func (r *Reasoner) EquivalentRoles(a, b *Role)         { r.rm.AddRoleSynonym(a, b) }
func (r *Reasoner) SubRole(sub, super *Role)           { r.rm.AddSubRole(sub, super) }
func (r *Reasoner) DisjointRoles(a, b *Role)           { r.rm.AddDisjointRoles(a, b) }
func (r *Reasoner) RoleDomain(role *Role, c BP)        { r.rm.SetDomain(role, c) }
func (r *Reasoner) RoleRange(role *Role, c BP)         { r.rm.SetRange(role, c) }
func (r *Reasoner) Transitive(role *Role)              { r.rm.SetTransitive(role) }
func (r *Reasoner) Functional(role *Role)              { r.rm.SetFunctional(role) }
func (r *Reasoner) Symmetric(role *Role)               { r.rm.SetSymmetric(role) }
func (r *Reasoner) Reflexive(role *Role)               { r.rm.SetReflexive(role) }
func (r *Reasoner) Irreflexive(role *Role)             { r.rm.SetIrreflexive(role) }
func (r *Reasoner) RoleComposition(chain []*Role, super *Role) {
	r.rm.AddComplexInclusion(chain, super)
}

// --- Freeze / engine wiring ---

// finish runs role-master closure and absorption exactly once, then wires
// an Engine around the frozen DAG/role-master pair. Every query method
// calls this first.
func (r *Reasoner) finish() error {
	if r.built {
		return r.checkFailed()
	}
	if err := r.checkFailed(); err != nil {
		return err
	}
	if err := r.rm.finishConstruction(); err != nil {
		return r.fail(err)
	}
	if err := r.dag.validateSimpleRoles(); err != nil {
		return r.fail(err)
	}
	tg := r.axioms.Absorb(r.cfg.AbsorptionOrder)
	r.dag.setOrdering(r.cfg.ToDoPriority, true)
	r.engine = NewEngine(r.dag, r.rm, r.cfg, r.stats, r.data)
	r.engine.SetGlobalAxiom(tg)
	r.built = true
	r.log.Infow("reasoner frozen", "session", r.sessionID, "concepts", len(r.concepts), "individuals", len(r.individuals))
	return nil
}

func (r *Reasoner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.cfg.TestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.TestTimeout)
}

// buildABox resets the session and materialises every posted individual,
// concept assertion, role assertion, and (in)equality group into fresh
// completion-graph state, plus one extra concept assertion (used by
// Realize's refutation queries). Returns the clash dependency and true if
// the ABox itself is immediately inconsistent (e.g. a same/different
// contradiction).
func (r *Reasoner) buildABox(extraInd string, extraBP BP) (DepSet, bool) {
	e := r.engine
	e.resetSession()

	names := make([]string, 0, len(r.individuals))
	for n := range r.individuals {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		e.individualNode(n)
	}

	for _, a := range r.conceptAssertions {
		n := e.individualNode(a.individual)
		if cd, clash := e.addConcept(n, a.bp, DepSet{}); clash {
			return cd, true
		}
	}
	for _, a := range r.roleAssertions {
		from := e.individualNode(a.from)
		to := e.individualNode(a.to)
		e.g.AddRoleLabel(from, to, a.role, DepSet{})
	}
	for _, grp := range r.differentGroups {
		nodes := make([]*Node, len(grp))
		for i, nm := range grp {
			nodes[i] = e.individualNode(nm)
		}
		for i := range nodes {
			others := append(append([]*Node{}, nodes[:i]...), nodes[i+1:]...)
			e.g.SetCurIR(nodes[i], others, DepSet{})
		}
	}
	for _, grp := range r.sameGroups {
		if len(grp) == 0 {
			continue
		}
		first := e.individualNode(grp[0])
		for _, nm := range grp[1:] {
			other := e.individualNode(nm)
			if other.ID == first.ID {
				continue
			}
			newEdges, clashDep, clashed := e.g.Merge(other, first, DepSet{})
			if clashed {
				return clashDep, true
			}
			survivor := first
			if survivor.Purge.Present {
				survivor = e.g.Node(survivor.Purge.NodeID)
			}
			e.nominalOwner[nm] = survivor.ID
			e.nominalOwner[grp[0]] = survivor.ID
			first = survivor
			if cd, clash := e.reapplyAfterMerge(survivor, newEdges, DepSet{}); clash {
				return cd, true
			}
		}
	}
	if extraBP.IsValid() {
		n := e.individualNode(extraInd)
		if cd, clash := e.addConcept(n, extraBP, DepSet{}); clash {
			return cd, true
		}
	}
	return DepSet{}, false
}

// --- Public queries (spec §6) ---

// IsConsistent decides whether the whole knowledge base (TBox axioms plus
// every posted individual assertion) admits a model.
func (r *Reasoner) IsConsistent(ctx context.Context) (bool, error) {
	if err := r.finish(); err != nil {
		return false, err
	}
	ctx2, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, clash := r.buildABox("", INVALID); clash {
		return false, nil
	}
	ok := r.engine.mainLoop(ctx2)
	if err := r.engine.ctxErr(); err != nil {
		return false, err
	}
	r.log.Debugw("consistency check", "session", r.sessionID, "result", ok)
	return ok, nil
}

// IsSatisfiable decides whether concept bp has a model independent of any
// posted individual assertions.
func (r *Reasoner) IsSatisfiable(ctx context.Context, bp BP) (bool, error) {
	if err := r.finish(); err != nil {
		return false, err
	}
	ctx2, cancel := r.withTimeout(ctx)
	defer cancel()
	ok := r.engine.testSat(ctx2, bp)
	if err := r.engine.ctxErr(); err != nil {
		return false, err
	}
	return ok, nil
}

// IsSubHolds decides C ⊑ D by testing C ⊓ ¬D for unsatisfiability.
func (r *Reasoner) IsSubHolds(ctx context.Context, c, d BP) (bool, error) {
	if err := r.finish(); err != nil {
		return false, err
	}
	ctx2, cancel := r.withTimeout(ctx)
	defer cancel()
	ok := r.engine.testSub(ctx2, c, d)
	if err := r.engine.ctxErr(); err != nil {
		return false, err
	}
	return ok, nil
}

// CheckDisjointRoles reports whether a and b were posted disjoint.
func (r *Reasoner) CheckDisjointRoles(a, b *Role) bool {
	return a.Disjoint != nil && a.Disjoint.Contains(roleKey(b.ID))
}

// IsSubRole reports sub ⊑ super in the role hierarchy (testable property
// 8: transitive by construction, since Ancestors is already the
// transitive closure).
func (r *Reasoner) IsSubRole(sub, super *Role) bool {
	return sub.Ancestors != nil && sub.Ancestors.Contains(roleKey(super.ID))
}

// RoleChildren returns every role known to be a sub-role of parent
// (parent's Descendants bitset, parent excluded).
func (r *Reasoner) RoleChildren(parent *Role) []*Role {
	var out []*Role
	if parent.Descendants == nil {
		return out
	}
	parent.Descendants.Iterate(func(key int) bool {
		if id := unroleKey(key); id != parent.ID {
			if role := r.rm.role(id); role != nil {
				out = append(out, role)
			}
		}
		return true
	})
	return out
}

// RoleParents returns every role known to be a super-role of child
// (child's Ancestors bitset, child excluded).
func (r *Reasoner) RoleParents(child *Role) []*Role {
	var out []*Role
	if child.Ancestors == nil {
		return out
	}
	child.Ancestors.Iterate(func(key int) bool {
		if id := unroleKey(key); id != child.ID {
			if role := r.rm.role(id); role != nil {
				out = append(out, role)
			}
		}
		return true
	})
	return out
}

// Realize returns the most-specific named concepts an individual provably
// belongs to, by refutation: a is an instance of C iff KB ∪ {¬C(a)} is
// inconsistent. Results subsumed by another result are pruned, per spec
// §4.11's "mirror ascendants for the realisation of individuals".
func (r *Reasoner) Realize(ctx context.Context, individual string) ([]string, error) {
	if err := r.finish(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(r.concepts))
	for n := range r.concepts {
		names = append(names, n)
	}
	sort.Strings(names)

	var instances []string
	for _, name := range names {
		bp := r.concepts[name]
		ctx2, cancel := r.withTimeout(ctx)
		_, clash := r.buildABox(individual, bp.Inverse())
		var ok bool
		if clash {
			ok = false
		} else {
			ok = !r.engine.mainLoop(ctx2)
		}
		ctxErr := r.engine.ctxErr()
		cancel()
		if ctxErr != nil {
			return nil, ctxErr
		}
		if ok {
			instances = append(instances, name)
		}
	}

	var mostSpecific []string
	for i, a := range instances {
		subsumed := false
		for j, b := range instances {
			if i == j {
				continue
			}
			ok, err := r.IsSubHolds(ctx, r.concepts[a], r.concepts[b])
			if err != nil {
				return nil, err
			}
			if ok {
				holdsBack, err := r.IsSubHolds(ctx, r.concepts[b], r.concepts[a])
				if err != nil {
					return nil, err
				}
				if !holdsBack || a > b {
					subsumed = true
					break
				}
			}
		}
		if !subsumed {
			mostSpecific = append(mostSpecific, a)
		}
	}
	return mostSpecific, nil
}

// Classify builds the taxonomy over every named concept posted so far
// (spec §4.11/C13).
func (r *Reasoner) Classify(ctx context.Context, mon ProgressMonitor) (*taxgraph.Graph, map[string]string, error) {
	if err := r.finish(); err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(r.concepts))
	for n := range r.concepts {
		names = append(names, n)
	}
	sort.Strings(names)
	concepts := make([]NamedConcept, len(names))
	for i, n := range names {
		concepts[i] = NamedConcept{Name: n, BP: r.concepts[n]}
	}
	return r.engine.Classify(ctx, concepts, mon)
}

// Stats returns a read-only snapshot of the session's counters (spec
// §6's "instrumentation (timing, counters)" boundary).
func (r *Reasoner) Stats() Stats2 { return r.stats.Snapshot() }

// SessionID returns the reasoner's session identifier, used in log
// correlation.
func (r *Reasoner) SessionID() string { return r.sessionID.String() }

func (r *Reasoner) String() string {
	return fmt.Sprintf("Reasoner{session=%s concepts=%d individuals=%d}", r.sessionID, len(r.concepts), len(r.individuals))
}

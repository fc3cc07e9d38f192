package tableau

// rawAxiom is a GCI in clausal form: the disjunction of Disjuncts must
// hold at every individual. A subsumption C ⊑ D is stored as the two-
// literal clause {¬C, D}; AddDisjoint(C1,...,Cn) posts one clause per
// pair {¬Ci, ¬Cj}. Absorption (spec §4.3) rewrites clauses that mention
// a named concept into that concept's Description, leaving only the
// genuinely general clauses to become the global axiom T_G.
type rawAxiom struct {
	disjuncts []BP
	absorbed  bool
}

// AxiomSet accumulates GCIs and reduces them to (a) primitive/defined
// concept descriptions folded in place, (b) role domain/range
// constraints, and (c) a residual global concept T_G conjoined into
// every fresh node's label. Grounded on FaCT++'s TAxiomSet (tAxiom.cpp,
// tAxiomSet.cpp — see _examples/original_source/Kernel/tAxiomSet.cpp):
// the rewrite-letter dispatch loop here mirrors its absorbGCIs, though
// simplified to the handful of rules that carry semantic weight (B/C/N/R/S);
// see the per-rule comments below and DESIGN.md for what was left out.
type AxiomSet struct {
	dag    *DAG
	axioms []*rawAxiom
}

// NewAxiomSet creates an empty axiom set over dag.
func NewAxiomSet(dag *DAG) *AxiomSet {
	return &AxiomSet{dag: dag}
}

// AddSubsumption posts C ⊑ D as the clause {¬C, D}.
func (as *AxiomSet) AddSubsumption(c, d BP) {
	as.axioms = append(as.axioms, &rawAxiom{disjuncts: []BP{c.Inverse(), d}})
}

// AddEquivalence posts C ≡ D as the pair of subsumptions.
func (as *AxiomSet) AddEquivalence(c, d BP) {
	as.AddSubsumption(c, d)
	as.AddSubsumption(d, c)
}

// AddDisjoint posts pairwise disjointness among concepts.
func (as *AxiomSet) AddDisjoint(concepts []BP) {
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			as.axioms = append(as.axioms, &rawAxiom{
				disjuncts: []BP{concepts[i].Inverse(), concepts[j].Inverse()},
			})
		}
	}
}

// simplifyDisjuncts drops every BOTTOM literal (never satisfiable, so it
// never contributes to the clause being true) and reports whether a TOP
// literal was present (in which case the whole clause is a tautology).
func simplifyDisjuncts(ds []BP) (out []BP, tautology bool) {
	out = make([]BP, 0, len(ds))
	for _, d := range ds {
		switch d {
		case TOP:
			tautology = true
		case BOTTOM:
			// drop
		default:
			out = append(out, d)
		}
	}
	return out, tautology
}

func without(ds []BP, idx int) []BP {
	out := make([]BP, 0, len(ds)-1)
	for i, d := range ds {
		if i != idx {
			out = append(out, d)
		}
	}
	return out
}

// findNegativePrimitive locates a clause literal that is the negative
// occurrence of a primitive named concept (¬A for primitive A): the C
// rule folds the rest of the clause into A's description, since ¬A ⊔
// rest ≡ A ⊑ Or(rest).
func (as *AxiomSet) findNegativePrimitive(ds []BP) (idx int, owner *NamedEntry) {
	for i, d := range ds {
		if d.IsPositive() {
			continue
		}
		v := d.Inverse()
		if as.dag.Tag(v) == TagPConcept {
			if o := as.dag.NamedOwner(v); o != nil && o.Primitive {
				return i, o
			}
		}
	}
	return -1, nil
}

// findNegativeNonPrimitive mirrors findNegativePrimitive for defined
// (NConcept) names — the N rule.
func (as *AxiomSet) findNegativeNonPrimitive(ds []BP) (idx int, owner *NamedEntry) {
	for i, d := range ds {
		if d.IsPositive() {
			continue
		}
		v := d.Inverse()
		if as.dag.Tag(v) == TagNConcept {
			if o := as.dag.NamedOwner(v); o != nil {
				return i, o
			}
		}
	}
	return -1, nil
}

// findPositiveForall locates a positive ∀R.C literal suitable for the R
// rule: a singleton clause {∀R.C} means ⊤ ⊑ ∀R.C, i.e. every R-filler is
// in C — a role range constraint, not a per-node label addition.
func (as *AxiomSet) findPositiveForall(ds []BP) (idx int, ok bool) {
	if len(ds) != 1 {
		return -1, false
	}
	d := ds[0]
	if !d.IsPositive() {
		return -1, false
	}
	if as.dag.Tag(d) == TagForall {
		return 0, true
	}
	return -1, false
}

// findPositiveAnd locates a literal that is a positive conjunction: the S
// rule splits {..., C1⊓...⊓Ck} into k clauses {..., Ci}, each strictly
// simpler and each a candidate for further absorption.
func (as *AxiomSet) findPositiveAnd(ds []BP) (idx int, children []BP) {
	for i, d := range ds {
		if d.IsPositive() && as.dag.Tag(d) == TagAnd {
			return i, as.dag.vertex(d).Children
		}
	}
	return -1, nil
}

// Absorb applies the rewrite letters in order, to a fixed point, over
// every un-absorbed clause, then folds whatever remains into a single
// global concept T_G (conjoined into every fresh node's label — see
// rules.go's resetSession/freshNode/createNeighbour). order is a string
// such as "BTESCNFRS"; letters this implementation does not rewrite
// (T, E, F) are accepted and skipped.
func (as *AxiomSet) Absorb(order string) BP {
	maxPasses := len(as.axioms)*4 + 16
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, ax := range as.axioms {
			if ax.absorbed {
				continue
			}
			ds, tautology := simplifyDisjuncts(ax.disjuncts)
			if tautology {
				ax.absorbed = true
				changed = true
				continue
			}
			ax.disjuncts = ds
			if len(ds) == 0 {
				// An unsatisfiable clause (every disjunct was BOTTOM) means
				// the ontology itself is inconsistent; leave it as a
				// residual BOTTOM clause so Absorb's caller's T_G collapses
				// to BOTTOM rather than silently discarding it.
				ax.disjuncts = []BP{BOTTOM}
				continue
			}
			if as.rewriteOne(ax, ds, order) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	var residual []BP
	for _, ax := range as.axioms {
		if ax.absorbed {
			continue
		}
		residual = append(residual, as.dag.AddOr(ax.disjuncts...))
	}
	return as.dag.AddAnd(residual...)
}

// conjoinDescription folds add into owner's description, which is INVALID
// for a concept that has not been given one yet: AddAnd treats INVALID as
// an ordinary (bogus) child rather than as "no constraint", so a bare
// owner.Description must be used as-is on that first absorption instead
// of being passed through AddAnd.
func conjoinDescription(dag *DAG, owner *NamedEntry, add BP) BP {
	if owner.Description == INVALID {
		return add
	}
	return dag.AddAnd(owner.Description, add)
}

// rewriteOne tries each letter of order against ax's (already simplified)
// disjuncts ds, applying the first one that matches. Returns whether a
// rewrite fired.
func (as *AxiomSet) rewriteOne(ax *rawAxiom, ds []BP, order string) bool {
	for i := 0; i < len(order); i++ {
		switch order[i] {
		case 'C':
			if idx, owner := as.findNegativePrimitive(ds); idx >= 0 {
				rest := without(ds, idx)
				add := as.dag.AddOr(rest...)
				owner.Description = conjoinDescription(as.dag, owner, add)
				ax.absorbed = true
				return true
			}
		case 'N':
			if idx, owner := as.findNegativeNonPrimitive(ds); idx >= 0 {
				rest := without(ds, idx)
				add := as.dag.AddOr(rest...)
				owner.Description = conjoinDescription(as.dag, owner, add)
				ax.absorbed = true
				return true
			}
		case 'R':
			if idx, ok := as.findPositiveForall(ds); ok {
				v := as.dag.vertex(ds[idx])
				if v.Role != nil && v.Role.Simple() {
					cur := v.Role.Range
					if cur == INVALID {
						cur = TOP
					}
					v.Role.Range = as.dag.AddAnd(cur, v.C)
					v.Role.inverse.Domain = v.Role.Range
					ax.absorbed = true
					return true
				}
			}
		case 'S':
			if idx, children := as.findPositiveAnd(ds); idx >= 0 {
				rest := without(ds, idx)
				for _, ch := range children {
					as.axioms = append(as.axioms, &rawAxiom{
						disjuncts: append(append([]BP{}, rest...), ch),
					})
				}
				ax.absorbed = true
				return true
			}
		}
	}
	return false
}

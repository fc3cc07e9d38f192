package tableau

import (
	"context"
	"testing"
)

// TestSimpleSubsumption is spec.md §8 scenario 1: A ⊑ B, B ⊑ C implies
// A ⊑ C but not C ⊑ A.
func TestSimpleSubsumption(t *testing.T) {
	r := NewReasoner(nil, nil)
	a := r.NewConcept("A", true)
	b := r.NewConcept("B", true)
	c := r.NewConcept("C", true)
	r.SubClassOf(a, b)
	r.SubClassOf(b, c)

	ctx := context.Background()
	if ok, err := r.IsSubHolds(ctx, a, c); err != nil || !ok {
		t.Errorf("A subClassOf C: got (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := r.IsSubHolds(ctx, c, a); err != nil || ok {
		t.Errorf("C subClassOf A: got (%v, %v), want (false, nil)", ok, err)
	}
}

// TestDisjointCycle is spec.md §8 scenario 2: A ⊑ B, B ⊑ ¬A makes A
// unsatisfiable.
func TestDisjointCycle(t *testing.T) {
	r := NewReasoner(nil, nil)
	a := r.NewConcept("A", true)
	b := r.NewConcept("B", true)
	r.SubClassOf(a, b)
	r.SubClassOf(b, a.Inverse())

	sat, err := r.IsSatisfiable(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if sat {
		t.Error("A should be unsatisfiable once B excludes it")
	}
}

// TestFunctionalRoleForcesMerge is spec.md §8 scenario 3: Func(R),
// ∃R.A(x), ∃R.B(x) is satisfiable with one merged R-successor.
func TestFunctionalRoleForcesMerge(t *testing.T) {
	r := NewReasoner(nil, nil)
	a := r.NewConcept("A", true)
	b := r.NewConcept("B", true)
	role, err := r.NewRole("R")
	if err != nil {
		t.Fatal(err)
	}
	r.Functional(role)

	// The DAG's Forall vertex at negative polarity *is* ∃R.C (spec.md §3
	// "Forall ... (negative = ∃R.C)"), so ∃R.A / ∃R.B are built as the
	// inverse of ∀R.¬A / ∀R.¬B.
	existsRA := r.dag.AddForall(role, 0, a.Inverse()).Inverse()
	existsRB := r.dag.AddForall(role, 0, b.Inverse()).Inverse()

	r.NewIndividual("x")
	r.AssertConcept("x", existsRA)
	r.AssertConcept("x", existsRB)

	ok, err := r.IsConsistent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("functional role with two exists-restrictions on the same individual should be consistent")
	}
}

// TestTransitiveRole is spec.md §8 scenario 4: Trans(R), A ⊑ ∀R.A, A(a),
// R(a,b), R(b,c) entails A(c).
func TestTransitiveRole(t *testing.T) {
	r := NewReasoner(nil, nil)
	a := r.NewConcept("A", true)
	role, err := r.NewRole("R")
	if err != nil {
		t.Fatal(err)
	}
	r.Transitive(role)

	forallRA := r.dag.AddForall(role, 0, a)
	r.SubClassOf(a, forallRA)

	r.AssertConcept("a", a)
	r.Related("a", role, "b")
	r.Related("b", role, "c")

	// ¬A(c) together with the KB should be inconsistent, i.e. A(c) is
	// entailed.
	r.AssertConcept("c", a.Inverse())
	ok, err := r.IsConsistent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("A(c) should be entailed by transitivity, making ¬A(c) inconsistent")
	}
}

// TestAtMostForcesClashWithInequality is spec.md §8 scenario 5: ≤1 R.⊤(x),
// R(x,a), R(x,b), a ≠ b asserted is inconsistent.
func TestAtMostForcesClashWithInequality(t *testing.T) {
	r := NewReasoner(nil, nil)
	role, err := r.NewRole("R")
	if err != nil {
		t.Fatal(err)
	}
	le1 := r.dag.AddLE(role, 1, TOP)

	r.AssertConcept("x", le1)
	r.Related("x", role, "a")
	r.Related("x", role, "b")
	r.DifferentIndividuals("a", "b")

	ok, err := r.IsConsistent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("≤1 R with two provably distinct R-successors should be inconsistent")
	}
}

// TestNominalShortcut is spec.md §8 scenario 6: A ⊑ ∃R.{o}, ∀R.B(o), A(x)
// entails B(o).
func TestNominalShortcut(t *testing.T) {
	r := NewReasoner(nil, nil)
	a := r.NewConcept("A", true)
	b := r.NewConcept("B", true)
	role, err := r.NewRole("R")
	if err != nil {
		t.Fatal(err)
	}
	o := r.NewIndividual("o")

	existsRO := r.dag.AddForall(role, 0, o.Inverse()).Inverse()
	r.SubClassOf(a, existsRO)
	r.AssertConcept("o", r.dag.AddForall(role, 0, b))
	r.AssertConcept("x", a)

	// ¬B(o) should now be inconsistent with the KB.
	r.AssertConcept("o", b.Inverse())
	ok, err := r.IsConsistent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("B(o) should be entailed via the nominal short-cut")
	}
}

// TestEmptyOntologyIsConsistent covers spec.md §8's boundary behaviour:
// an empty ontology is consistent.
func TestEmptyOntologyIsConsistent(t *testing.T) {
	r := NewReasoner(nil, nil)
	ok, err := r.IsConsistent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("empty ontology should be consistent")
	}
}

func TestRoleHierarchyTransitiveClosure(t *testing.T) {
	r := NewReasoner(nil, nil)
	rr, _ := r.NewRole("R")
	s, _ := r.NewRole("S")
	tt, _ := r.NewRole("T")
	r.SubRole(rr, s)
	r.SubRole(s, tt)

	// Force finishConstruction by running a trivial query.
	if _, err := r.IsConsistent(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !r.IsSubRole(rr, tt) {
		t.Error("R sub S sub T should make R a sub-role of T (transitivity)")
	}
	if !r.IsSubRole(rr, rr) {
		t.Error("R should always be a sub-role of itself")
	}
}

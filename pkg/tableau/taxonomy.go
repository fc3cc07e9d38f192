package tableau

import (
	"context"

	"github.com/gitrdm/dltableau/internal/taxgraph"
)

// NamedConcept pairs a concept name with its DAG address, the unit
// Classify works over.
type NamedConcept struct {
	Name string
	BP   BP
}

// testSub decides C ⊑ D by testing C ⊓ ¬D for unsatisfiability — the
// standard subsumption-via-satisfiability reduction (spec §4.9).
func (e *Engine) testSub(ctx context.Context, c, d BP) bool {
	if c == d {
		return true
	}
	if d == TOP || c == BOTTOM {
		return true
	}
	conj := e.dag.AddAnd(c, d.Inverse())
	if conj == BOTTOM {
		return true
	}
	return !e.testSat(ctx, conj)
}

// Classify builds a taxonomy over concepts (spec §4.9/C13), a top-down
// search seeded at the Top/Bottom sentinels: each concept is first
// checked against every already-placed vertex for equivalence (a full
// subsumption test in each direction; mutual subsumption ⇒ synonym, no
// new vertex), then located
// by descending from Top and ascending from Bottom along edges already
// present in the graph, pruning a branch as soon as a candidate fails
// to still subsume (or be subsumed by) the concept being inserted. This
// is a direct, if unoptimised, rendition of FaCT++'s enhanced-Baader
// top-down classification (_examples/original_source/Kernel/Taxonomy.cpp);
// the "told subsumer" position hints that let that implementation skip
// most of the search are not computed here — every insertion restarts
// its descent from Top/Bottom.
//
// The returned synonyms map takes an aliased concept's name to the
// canonical vertex name it was merged into; such names never appear as
// graph vertices themselves.
func (e *Engine) Classify(ctx context.Context, concepts []NamedConcept, mon ProgressMonitor) (*taxgraph.Graph, map[string]string, error) {
	if mon == nil {
		mon = noopMonitor{}
	}
	g := taxgraph.New()
	g.EnsureVertex("Top")
	g.EnsureVertex("Bottom")
	bpOf := map[string]BP{"Top": TOP, "Bottom": BOTTOM}
	synonyms := make(map[string]string)

	mon.SetClassificationStarted(len(concepts))
	for _, nc := range concepts {
		if mon.IsCancelled() {
			return g, synonyms, ErrCancelled
		}
		e.insertConcept(ctx, g, bpOf, synonyms, nc)
		mon.NextProcessed(nc.Name)
	}
	mon.SetFinished()
	return g, synonyms, nil
}

func (e *Engine) insertConcept(ctx context.Context, g *taxgraph.Graph, bpOf map[string]BP, synonyms map[string]string, nc NamedConcept) {
	for name, bp := range bpOf {
		if name == "Top" || name == "Bottom" {
			continue
		}
		if e.testSub(ctx, nc.BP, bp) && e.testSub(ctx, bp, nc.BP) {
			synonyms[nc.Name] = name
			return
		}
	}

	bpOf[nc.Name] = nc.BP
	g.EnsureVertex(nc.Name)

	for _, p := range e.searchSupers(ctx, g, bpOf, "Top", nc.BP, make(map[string]bool)) {
		_ = g.AddSubsumption(p, nc.Name)
	}
	for _, c := range e.searchSubs(ctx, g, bpOf, "Bottom", nc.BP, make(map[string]bool)) {
		_ = g.AddSubsumption(nc.Name, c)
	}
}

// searchSupers descends from cur (known to subsume bp) to find the
// deepest existing vertices that still subsume bp — bp's direct
// parents.
func (e *Engine) searchSupers(ctx context.Context, g *taxgraph.Graph, bpOf map[string]BP, cur string, bp BP, visited map[string]bool) []string {
	if visited[cur] {
		return nil
	}
	visited[cur] = true

	var matched []string
	for _, k := range g.Children(cur) {
		if k == "Bottom" {
			continue
		}
		if e.testSub(ctx, bp, bpOf[k]) {
			matched = append(matched, k)
		}
	}
	if len(matched) == 0 {
		return []string{cur}
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range matched {
		for _, p := range e.searchSupers(ctx, g, bpOf, m, bp, visited) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// searchSubs ascends from cur (known to be subsumed by bp, or the
// "Bottom" sentinel) to find the most general existing vertices still
// subsumed by bp — bp's direct children.
func (e *Engine) searchSubs(ctx context.Context, g *taxgraph.Graph, bpOf map[string]BP, cur string, bp BP, visited map[string]bool) []string {
	if visited[cur] {
		return nil
	}
	visited[cur] = true

	var matched []string
	for _, p := range g.Parents(cur) {
		if p == "Top" {
			continue
		}
		if e.testSub(ctx, bpOf[p], bp) {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return []string{cur}
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range matched {
		for _, c := range e.searchSubs(ctx, g, bpOf, m, bp, visited) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

package tableau

import "context"

// cascadeBuilder drives the cascaded cache construction of spec §4.8: a
// depth-first walk of the concept DAG that builds (and memoises, via
// DAG.getCache/setCache) a satisfiability witness for every vertex a
// completion-graph expansion might need one for, recursing into the
// conjuncts of positive And/Collection/SplitConcept vertices; every other
// vertex (an Or included) gets a direct SAT test. inProcess guards
// against the concept DAG's (rare, but legal) cyclic named-concept
// references: a cycle is resolved optimistically (assume satisfiable),
// since the real SAT test that eventually runs over the whole axiom set
// catches any genuine inconsistency regardless of what the cache says.
type cascadeBuilder struct {
	e         *Engine
	inProcess map[BP]bool
}

// BuildCache returns bp's satisfiability-witness cache, building (and
// memoising) it first if absent. Safe to call repeatedly — getCache's
// write-once slot means a second call is a pure lookup.
func (e *Engine) BuildCache(ctx context.Context, bp BP) Cache {
	cb := &cascadeBuilder{e: e, inProcess: make(map[BP]bool)}
	return cb.build(ctx, bp)
}

func (cb *cascadeBuilder) build(ctx context.Context, bp BP) Cache {
	if c := cb.e.dag.getCache(bp); c != nil {
		return c
	}
	if bp == TOP {
		return cb.install(bp, NewConstCache(true))
	}
	if bp == BOTTOM {
		return cb.install(bp, NewConstCache(false))
	}
	if cb.inProcess[bp] {
		return NewConstCache(true)
	}
	cb.inProcess[bp] = true
	defer delete(cb.inProcess, bp)

	v := cb.e.dag.vertex(bp)
	if bp.IsPositive() && (v.Tag == TagAnd || v.Tag == TagCollection || v.Tag == TagSplitConcept) {
		return cb.install(bp, cb.buildAnd(ctx, v))
	}
	return cb.install(bp, cb.buildViaSAT(ctx, bp))
}

func (cb *cascadeBuilder) install(bp BP, c Cache) Cache {
	cb.e.dag.setCache(bp, c)
	return c
}

// buildAnd recurses into every conjunct, merging their caches with the
// fail-fast algebra (spec §4.8 step 3: "recurse into children, merge via
// CanMerge/Merge, short-circuiting on the first invalid/failed result").
func (cb *cascadeBuilder) buildAnd(ctx context.Context, v *Vertex) Cache {
	var merged Cache = NewConstCache(true)
	for _, c := range v.Children {
		cc := cb.build(ctx, c)
		if merged.CanMerge(cc) != CacheValid {
			return NewConstCache(false)
		}
		merged = merged.Merge(cc)
	}
	return merged
}

// buildViaSAT runs an independent satisfiability test of bp and, on
// success, harvests an Ian cache from the resulting shallow root node
// (spec §4.8 step 4: "on a successful shallow SAT test, harvest an Ian
// cache from the root's label and successor-edge roles").
func (cb *cascadeBuilder) buildViaSAT(ctx context.Context, bp BP) Cache {
	if !cb.e.testSat(ctx, bp) {
		return NewConstCache(false)
	}
	return cb.harvest(cb.e.g.Root())
}

// harvest reads a saturated root node's label and successor edges into a
// fresh Ian cache: named-concept occurrences split deterministic
// (empty dep) from non-deterministic, plus the role bitsets the ∃/∀/
// functional-role optimisations key off.
func (cb *cascadeBuilder) harvest(root *Node) Cache {
	ic := NewIanCache()
	for _, le := range root.Label.Simple.Snapshot() {
		tag := cb.e.dag.Tag(le.BP)
		if tag == TagPConcept || tag == TagNConcept {
			ic.AddNamedConcept(le.BP, le.Dep.IsEmpty())
		}
	}
	for _, le := range root.Label.Complex.Snapshot() {
		v := cb.e.dag.vertex(le.BP)
		if v.Tag == TagForall && le.BP.IsPositive() && v.Role != nil {
			ic.AddForallRole(v.Role)
		}
	}
	for _, ed := range root.SuccEdges {
		if ed.Invalidated() {
			continue
		}
		ic.AddExistsRole(ed.Role)
		if ed.Role.Flags.Functional {
			ic.AddFuncRole(ed.Role)
		}
	}
	ic.shallow = len(root.SuccEdges) == 0
	return ic
}

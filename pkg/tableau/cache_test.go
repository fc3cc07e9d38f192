package tableau

import "testing"

func TestConstCacheMerge(t *testing.T) {
	top := NewConstCache(true)
	bottom := NewConstCache(false)
	singleton := NewSingletonCache(5)

	if top.CanMerge(singleton) != CacheValid {
		t.Error("TOP cache should merge trivially with anything")
	}
	if bottom.CanMerge(singleton) != CacheInvalid {
		t.Error("BOTTOM cache should never merge validly")
	}
}

func TestSingletonCacheClash(t *testing.T) {
	a := NewSingletonCache(5)
	b := NewSingletonCache(-5)
	if a.CanMerge(b) != CacheInvalid {
		t.Error("singleton caches for bp and its inverse must not merge")
	}

	c := NewSingletonCache(7)
	if a.CanMerge(c) != CacheValid {
		t.Error("singleton caches for unrelated bps should merge")
	}
}

func TestIanCacheCanMergeSymmetric(t *testing.T) {
	a := NewIanCache()
	a.AddNamedConcept(5, true)
	b := NewIanCache()
	b.AddNamedConcept(-5, true)

	if a.CanMerge(b) != b.CanMerge(a) {
		t.Errorf("CanMerge should be symmetric: a.CanMerge(b)=%v b.CanMerge(a)=%v", a.CanMerge(b), b.CanMerge(a))
	}
	if a.CanMerge(b) != CacheInvalid {
		t.Error("det x det named-concept contradiction should be invalid")
	}
}

func TestIanCacheNonDetContradictionFailsNotInvalid(t *testing.T) {
	a := NewIanCache()
	a.AddNamedConcept(5, false) // nondet positive
	b := NewIanCache()
	b.AddNamedConcept(-5, true) // det negative

	if got := a.CanMerge(b); got != CacheFailed {
		t.Errorf("det/nondet contradiction should be CacheFailed, got %v", got)
	}
}

func TestIanCacheFuncRoleIntersectionFails(t *testing.T) {
	rm := NewRoleMaster()
	r, err := rm.EnsureRole("R")
	if err != nil {
		t.Fatal(err)
	}

	a := NewIanCache()
	a.AddFuncRole(r)
	b := NewIanCache()
	b.AddFuncRole(r)

	if got := a.CanMerge(b); got != CacheFailed {
		t.Errorf("shared functional role should fail merge, got %v", got)
	}
}

func TestIanCacheMergeValidUnionsBitsets(t *testing.T) {
	a := NewIanCache()
	a.AddNamedConcept(5, true)
	b := NewIanCache()
	b.AddNamedConcept(7, true)

	merged := a.Merge(b)
	ic, ok := merged.(*IanCache)
	if !ok {
		t.Fatalf("merge of two valid Ian caches should stay an IanCache, got %T", merged)
	}
	if !ic.detPos.Contains(5) || !ic.detPos.Contains(7) {
		t.Error("merged cache should contain both named concepts")
	}
}

func TestIanCacheMergeInvalidYieldsUnsatConst(t *testing.T) {
	a := NewIanCache()
	a.AddNamedConcept(5, true)
	b := NewIanCache()
	b.AddNamedConcept(-5, true)

	merged := a.Merge(b)
	cc, ok := merged.(*ConstCache)
	if !ok || cc.Sat {
		t.Errorf("merge of contradictory Ian caches should yield an unsat const cache, got %#v", merged)
	}
}

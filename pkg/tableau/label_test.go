package tableau

import "testing"

func TestCWDArrayTryAddThenAdd(t *testing.T) {
	stats := NewStats2()
	a := newCWDArray(stats)

	outcome, _ := a.TryAdd(5, EmptyDep())
	if outcome != AddDone {
		t.Fatalf("TryAdd on empty array = %v, want AddDone", outcome)
	}
	a.Add(5, EmptyDep())
	if !a.Contains(5) {
		t.Fatal("array should contain 5 after Add")
	}

	outcome, _ = a.TryAdd(5, EmptyDep())
	if outcome != AddExists {
		t.Errorf("TryAdd(5) after Add(5) = %v, want AddExists", outcome)
	}
}

func TestCWDArrayTryAddClash(t *testing.T) {
	stats := NewStats2()
	a := newCWDArray(stats)
	a.Add(5, SingletonDep(1))

	outcome, dep := a.TryAdd(-5, SingletonDep(2))
	if outcome != AddClash {
		t.Fatalf("TryAdd(-5) with 5 present = %v, want AddClash", outcome)
	}
	if !dep.Contains(1) || !dep.Contains(2) {
		t.Errorf("clash dep = %v, want union of {1} and {2}", dep.Levels())
	}
}

func TestCWDArraySaveRestore(t *testing.T) {
	stats := NewStats2()
	a := newCWDArray(stats)
	a.Add(1, EmptyDep())
	saved := a.Save()
	a.Add(2, EmptyDep())
	a.Add(3, EmptyDep())
	if !a.Contains(2) || !a.Contains(3) {
		t.Fatal("expected 2 and 3 present before restore")
	}
	a.Restore(saved)
	if a.Contains(2) || a.Contains(3) {
		t.Error("entries added after save should be gone after restore")
	}
	if !a.Contains(1) {
		t.Error("entry added before save should survive restore")
	}
}

func TestCWDArrayUpdateDepWidensAndRestorerNarrows(t *testing.T) {
	stats := NewStats2()
	a := newCWDArray(stats)
	a.Add(5, SingletonDep(1))

	restorer := a.UpdateDep(5, SingletonDep(2))
	idx := a.find(5)
	if !a.entries[idx].Dep.Contains(1) || !a.entries[idx].Dep.Contains(2) {
		t.Fatalf("UpdateDep should widen to union, got %v", a.entries[idx].Dep.Levels())
	}

	restorer.Apply()
	if !a.entries[idx].Dep.Contains(1) || a.entries[idx].Dep.Contains(2) {
		t.Errorf("after undo, dep should be back to {1}, got %v", a.entries[idx].Dep.Levels())
	}
}

func TestCGLabelIsSupersetOf(t *testing.T) {
	dag := NewDAG()
	a := dag.AddNamedConcept("A", true, INVALID)
	b := dag.AddNamedConcept("B", true, INVALID)
	stats := NewStats2()

	l1 := newCGLabel(dag, stats)
	l2 := newCGLabel(dag, stats)

	l1.Add(a, EmptyDep())
	l1.Add(b, EmptyDep())
	l2.Add(a, EmptyDep())

	if !l1.IsSupersetOf(l2) {
		t.Error("l1 should be a superset of l2")
	}
	if l2.IsSupersetOf(l1) {
		t.Error("l2 should not be a superset of l1")
	}
}

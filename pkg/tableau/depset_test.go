package tableau

import "testing"

func TestDepSetUnionIdempotent(t *testing.T) {
	d := SingletonDep(3).Union(SingletonDep(5))
	if got := d.Union(d); got.Level() != d.Level() || len(got.Levels()) != len(d.Levels()) {
		t.Errorf("Union(d, d) = %v, want %v", got.Levels(), d.Levels())
	}
}

func TestDepSetUnionEmpty(t *testing.T) {
	d := SingletonDep(2)
	if got := d.Union(EmptyDep()); got.Level() != d.Level() {
		t.Errorf("Union with empty changed level: got %d want %d", got.Level(), d.Level())
	}
	if got := EmptyDep().Union(d); got.Level() != d.Level() {
		t.Errorf("empty.Union(d) changed level: got %d want %d", got.Level(), d.Level())
	}
}

func TestDepSetLevel(t *testing.T) {
	d := SingletonDep(1).Union(SingletonDep(4)).Union(SingletonDep(2))
	if got := d.Level(); got != 4 {
		t.Errorf("Level() = %d, want 4", got)
	}
	empty := EmptyDep()
	if got := empty.Level(); got != -1 {
		t.Errorf("empty Level() = %d, want -1", got)
	}
}

func TestDepSetRestrictIsSubset(t *testing.T) {
	d := SingletonDep(1).Union(SingletonDep(4)).Union(SingletonDep(7))
	r := d.Restrict(5)
	for _, lvl := range r.Levels() {
		if !d.Contains(lvl) {
			t.Errorf("restrict(d,5) contains %d, not in d", lvl)
		}
		if lvl >= 5 {
			t.Errorf("restrict(d,5) retained level %d >= 5", lvl)
		}
	}
}

func TestDepSetManagerSaveRestore(t *testing.T) {
	m := NewDepSetManager()
	m.GrowLevel()
	m.GrowLevel()
	saved := m.Save()
	m.GrowLevel()
	m.GrowLevel()
	if m.CurrentLevel() != 4 {
		t.Fatalf("CurrentLevel() = %d, want 4", m.CurrentLevel())
	}
	m.Restore(saved)
	if m.CurrentLevel() != 2 {
		t.Errorf("after Restore, CurrentLevel() = %d, want 2", m.CurrentLevel())
	}
}

package tableau

import "github.com/gitrdm/dltableau/internal/bitset"

// DepSet is a set of branching levels: the non-deterministic choices a
// derived fact depends on. An empty DepSet marks a deterministic
// derivation. DepSet is backed by a roaring bitmap (internal/bitset) —
// the alternative representation spec §3 allows alongside a sorted
// small-set, chosen here because the same package already wires
// RoaringBitmap for role/automaton sets and a dep-set is exactly a sparse
// set of small integers with the same Or/restrict access pattern.
type DepSet struct {
	levels  *bitset.Set
	maxOK   bool
	maxVal  int
}

// EmptyDep is the dependency-free (deterministic) dep-set.
func EmptyDep() DepSet { return DepSet{} }

// SingletonDep returns the dep-set {level}.
func SingletonDep(level int) DepSet {
	return DepSet{levels: bitset.Of(level), maxOK: true, maxVal: level}
}

// IsEmpty reports whether d carries no dependency.
func (d DepSet) IsEmpty() bool {
	return d.levels == nil || d.levels.IsEmpty()
}

// Union returns d ∪ other. Union is commutative, associative, and
// idempotent (testable property: addDepSet(d, d) = d).
func (d DepSet) Union(other DepSet) DepSet {
	if d.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return d
	}
	merged := d.levels.Clone()
	merged.Or(other.levels)
	return DepSet{levels: merged}
}

// Level returns max(d), or -1 if d is empty. Results are cached on first
// computation per spec §4.4's "each node ... records max(level) for O(1)
// level() queries".
func (d *DepSet) Level() int {
	if d.IsEmpty() {
		return -1
	}
	if d.maxOK {
		return d.maxVal
	}
	max := -1
	d.levels.Iterate(func(x int) bool {
		if x > max {
			max = x
		}
		return true
	})
	d.maxVal = max
	d.maxOK = true
	return max
}

// Restrict returns the subset of d strictly below level (restrict(d,l) ⊆
// d, testable property in spec §8).
func (d DepSet) Restrict(level int) DepSet {
	if d.IsEmpty() {
		return d
	}
	out := bitset.New()
	d.levels.Iterate(func(x int) bool {
		if x < level {
			out.Add(x)
		}
		return true
	})
	return DepSet{levels: out}
}

// Contains reports whether level ∈ d.
func (d DepSet) Contains(level int) bool {
	return d.levels != nil && d.levels.Contains(level)
}

// Levels returns the member levels in ascending order.
func (d DepSet) Levels() []int {
	if d.levels == nil {
		return nil
	}
	return d.levels.ToSlice()
}

// DepSetManager tracks the highest branching level representable right
// now; growLevel/ensureLevel grow it before a save, and restore/Save
// capture/reset it across backjumps. It owns no per-fact state — DepSet
// values are self-contained — only the watermark.
type DepSetManager struct {
	highWater int
}

// NewDepSetManager returns a manager with no levels yet allocated.
func NewDepSetManager() *DepSetManager { return &DepSetManager{} }

// GrowLevel ensures the next level (highWater+1) is representable and
// returns it. Call before save().
func (m *DepSetManager) GrowLevel() int {
	m.highWater++
	return m.highWater
}

// EnsureLevel grows the manager to accommodate level n, if it doesn't
// already.
func (m *DepSetManager) EnsureLevel(n int) {
	if n > m.highWater {
		m.highWater = n
	}
}

// CurrentLevel returns the highest level currently allocated.
func (m *DepSetManager) CurrentLevel() int { return m.highWater }

// Save captures the manager's watermark for later Restore.
func (m *DepSetManager) Save() int { return m.highWater }

// Restore resets the watermark to a previously captured value. Levels at
// or above the restored watermark are considered reclaimed; any DepSet
// still referencing them is expected to have been Restrict()-ed by its
// owner (CGraph/ToDo/branch-stack) during the same backjump.
func (m *DepSetManager) Restore(saved int) { m.highWater = saved }

// Package bitset wraps github.com/RoaringBitmap/roaring/v2 for the small,
// dense, non-negative integer sets the tableau core keeps in large
// numbers: role ancestor/descendant sets, per-automaton-state
// applicableRoles sets, pairwise-disjoint-role sets, dependency sets and
// Ian-cache sets. Roaring's run-length compression keeps these cheap
// even when a role hierarchy or concept pool has thousands of members,
// and the set operations (Or/And/AndNot) used by the role master, the
// dep-sets and the caches are exactly roaring's native API.
package bitset

import "github.com/RoaringBitmap/roaring/v2"

// Set is a mutable set of non-negative integers.
type Set struct {
	bm *roaring.Bitmap
}

// New returns an empty Set.
func New() *Set {
	return &Set{bm: roaring.New()}
}

// Of returns a Set containing the given members.
func Of(members ...int) *Set {
	s := New()
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Add inserts x into the set.
func (s *Set) Add(x int) {
	s.bm.Add(uint32(x))
}

// Contains reports whether x is a member.
func (s *Set) Contains(x int) bool {
	return s.bm.Contains(uint32(x))
}

// Remove deletes x from the set, if present.
func (s *Set) Remove(x int) {
	s.bm.Remove(uint32(x))
}

// Or unions other into s in place.
func (s *Set) Or(other *Set) {
	s.bm.Or(other.bm)
}

// And intersects s with other in place.
func (s *Set) And(other *Set) {
	s.bm.And(other.bm)
}

// Intersects reports whether s and other share any member.
func (s *Set) Intersects(other *Set) bool {
	return s.bm.Intersects(other.bm)
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	return s.bm.IsEmpty()
}

// Cardinality returns the number of members.
func (s *Set) Cardinality() int {
	return int(s.bm.GetCardinality())
}

// Clone returns a deep, independent copy of s.
func (s *Set) Clone() *Set {
	return &Set{bm: s.bm.Clone()}
}

// ToSlice returns the members in ascending order.
func (s *Set) ToSlice() []int {
	arr := s.bm.ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}

// Iterate calls f for each member in ascending order, stopping early if f
// returns false.
func (s *Set) Iterate(f func(x int) bool) {
	it := s.bm.Iterator()
	for it.HasNext() {
		if !f(int(it.Next())) {
			return
		}
	}
}

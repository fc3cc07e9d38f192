package tableau

import "sync/atomic"

// Stats2 holds the counters spec §2's component table assigns "share"
// weights to (and spec §9's design note asks to factor out of static
// globals into an explicit per-session context). Reasoner holds it by
// pointer and passes that pointer to the structures that bump it, so
// nothing here is package-level mutable state.
type Stats2 struct {
	Lookups int64 // CWDArray scans (spec §4.5's nLookups)

	RuleFirings map[Tag]int64
	Backjumps   int64
	CacheHits   map[CacheState]int64 // nothing in this package bumps it
	// BlockAttempts/BlockFailures: index 1 counts the subset (B1) check,
	// index 2 the reverse-subset check of equality blocking; indices 0
	// and 3..6 are never bumped.
	BlockAttempts [7]int64
	BlockFailures [7]int64

	NodesCreated int64
	EdgesCreated int64
	Merges       int64
	Purges       int64
}

// NewStats2 returns a zeroed Stats2 with its maps initialised.
func NewStats2() *Stats2 {
	return &Stats2{
		RuleFirings: make(map[Tag]int64),
		CacheHits:   make(map[CacheState]int64),
	}
}

func (s *Stats2) bumpLookup() {
	if s == nil {
		return
	}
	atomic.AddInt64(&s.Lookups, 1)
}

func (s *Stats2) bumpRule(t Tag) {
	if s == nil {
		return
	}
	s.RuleFirings[t]++
}

func (s *Stats2) bumpBackjump() {
	if s == nil {
		return
	}
	s.Backjumps++
}

func (s *Stats2) bumpCacheHit(st CacheState) {
	if s == nil {
		return
	}
	s.CacheHits[st]++
}

func (s *Stats2) bumpBlock(rule int, failed bool) {
	if s == nil || rule < 0 || rule >= len(s.BlockAttempts) {
		return
	}
	s.BlockAttempts[rule]++
	if failed {
		s.BlockFailures[rule]++
	}
}

// Snapshot returns a copy safe to hand to a caller (Reasoner.Stats,
// spec.md's "instrumentation (timing, counters)" boundary).
func (s *Stats2) Snapshot() Stats2 {
	out := Stats2{
		Lookups:       atomic.LoadInt64(&s.Lookups),
		RuleFirings:   make(map[Tag]int64, len(s.RuleFirings)),
		CacheHits:     make(map[CacheState]int64, len(s.CacheHits)),
		BlockAttempts: s.BlockAttempts,
		BlockFailures: s.BlockFailures,
		NodesCreated:  s.NodesCreated,
		EdgesCreated:  s.EdgesCreated,
		Merges:        s.Merges,
		Purges:        s.Purges,
		Backjumps:     s.Backjumps,
	}
	for k, v := range s.RuleFirings {
		out.RuleFirings[k] = v
	}
	for k, v := range s.CacheHits {
		out.CacheHits[k] = v
	}
	return out
}

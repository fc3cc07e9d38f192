// Package tableau implements a tableau-based reasoning core for expressive
// Description Logics (SROIQ(D) and sub-logics): completion-graph expansion
// with dependency-directed backtracking, caching, blocking, and
// role-automaton driven universal expansion.
//
// The package is organised as a bottom-up pipeline (role master, concept
// DAG, absorption, dependency-set manager, completion graph, ToDo queue,
// branching-context stack, cache hierarchy, expansion rules, blocking,
// taxonomy) followed by a reactive search loop. See Reasoner for the
// top-level entry point.
package tableau

import "fmt"

// BP (bipolar pointer) is a signed index into the concept DAG. A positive
// value denotes the vertex interpreted positively; the corresponding
// negative value denotes the same vertex negated. Inversion is arithmetic
// negation, so Inverse(Inverse(bp)) == bp always holds.
type BP int32

// Distinguished constants. TOP and BOTTOM are each other's inverse;
// INVALID never denotes a real vertex and is returned by lookups that
// fail without panicking.
const (
	INVALID BP = 0
	TOP     BP = 1
	BOTTOM  BP = -1
)

// Inverse returns the negation of bp. Applying it twice is the identity.
func (bp BP) Inverse() BP { return -bp }

// IsPositive reports whether bp denotes its vertex positively.
func (bp BP) IsPositive() bool { return bp > 0 }

// IsValid reports whether bp could denote a real vertex.
func (bp BP) IsValid() bool { return bp != INVALID }

// Index returns the unsigned vertex index addressed by bp, irrespective
// of polarity.
func (bp BP) Index() int {
	if bp < 0 {
		return int(-bp)
	}
	return int(bp)
}

// WithPolarity returns the BP for the same vertex index as bp but with the
// given polarity.
func (bp BP) WithPolarity(positive bool) BP {
	idx := BP(bp.Index())
	if positive {
		return idx
	}
	return -idx
}

func (bp BP) String() string {
	if bp == INVALID {
		return "INVALID"
	}
	return fmt.Sprintf("%+d", int32(bp))
}

// bpFromIndex builds a positive BP from a 1-based vertex index. Index 0 is
// reserved for INVALID.
func bpFromIndex(idx int) BP { return BP(idx) }

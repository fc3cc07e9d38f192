package tableau

import (
	"errors"
	"strconv"
)

// Error kinds surfaced across the external interfaces (spec §6, §7).
// Clash during SAT is never one of these: it is local to the current
// branch and is resolved (or not) by backjumping inside the main loop,
// never escaping as a Go error.
var (
	// ErrNonSimpleRole is returned when a non-simple role is used where
	// only simple roles are legal (number restrictions, ¬∃R.Self, the
	// irreflexivity axiom). Corresponds to EFPPNonSimpleRole.
	ErrNonSimpleRole = errors.New("tableau: non-simple role used in a number restriction or (ir)reflexivity axiom")

	// ErrCycleInRIA is returned when role-automaton construction would
	// loop non-trivially on a role (e.g. R∘S∘R ⊑ R with R non-transitive).
	// Corresponds to EFPPCycleInRIA.
	ErrCycleInRIA = errors.New("tableau: cyclic role inclusion axiom cannot be embedded in a finite automaton")

	// ErrFailedReasoning is returned by every query once the reasoner has
	// been marked failed by a prior axiom-load error.
	ErrFailedReasoning = errors.New("tableau: reasoner is in a failed state; no query can be answered")

	// ErrTimeout is returned when a SAT test exceeds its configured
	// per-session timeout.
	ErrTimeout = errors.New("tableau: reasoning timed out")

	// ErrCancelled is returned when the caller-supplied cancellation flag
	// (or a context.Context) is observed at a suspension point.
	ErrCancelled = errors.New("tableau: reasoning was cancelled")

	// ErrSaveLoad is returned by the persistence boundary (out of scope
	// for this package beyond its signature; see dataiface.go/monitor.go
	// for the plug-in interfaces this package does own).
	ErrSaveLoad = errors.New("tableau: save/load failure")
)

// AxiomError wraps a failure to load a specific axiom, surfaced so the
// caller can report which axiom (by index in load order) was at fault.
type AxiomError struct {
	AxiomIndex int
	Err        error
}

func (e *AxiomError) Error() string {
	return "tableau: failed to load axiom #" + strconv.Itoa(e.AxiomIndex) + ": " + e.Err.Error()
}

func (e *AxiomError) Unwrap() error { return e.Err }

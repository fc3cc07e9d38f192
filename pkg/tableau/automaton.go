package tableau

import "github.com/gitrdm/dltableau/internal/bitset"

// transition is one arc of a role automaton. An empty Labels set denotes
// an ε-transition.
type transition struct {
	Labels []*Role
	To     int
}

// Automaton is a labelled NFA over role pointers. State 0 is always the
// initial state, state 1 is always the final state. Forall(R{k}, C)
// vertices for k > 0 are built on demand through DAG.AddForall, which
// hash-conses them by (role, state, C); they do not occupy consecutive
// BPs, so a state transition looks up the target state's vertex rather
// than computing it by BP arithmetic.
type Automaton struct {
	states      int
	transitions map[int][]transition

	complete bool

	// applicableRoles[state] is the union, over every transition out of
	// state, of the transition's role labels closed under sub-roles —
	// used by the ∀-rule to know which neighbour-edge roles can fire a
	// transition out of a given state without scanning every transition.
	applicableRoles []*bitset.Set
}

func newAutomaton() *Automaton {
	return &Automaton{states: 2, transitions: make(map[int][]transition)}
}

func (a *Automaton) addState() int {
	s := a.states
	a.states++
	return s
}

func (a *Automaton) addTransition(from int, labels []*Role, to int) {
	a.transitions[from] = append(a.transitions[from], transition{Labels: labels, To: to})
}

// iSafe reports that no transition targets the initial state (state 0).
// The transitive loop 1 →ε 0 that buildAutomata adds counts like any
// other arc, so the automaton of a transitive role is never i-safe.
func (a *Automaton) iSafe() bool {
	for _, ts := range a.transitions {
		for _, t := range ts {
			if t.To == 0 {
				return false
			}
		}
	}
	return true
}

// oSafe reports that no transition originates from the final state
// (state 1).
func (a *Automaton) oSafe() bool {
	_, has := a.transitions[1]
	return !has
}

// transitionsFrom returns the arcs leaving state.
func (a *Automaton) transitionsFrom(state int) []transition {
	return a.transitions[state]
}

// matches reports whether label (a concrete role appearing on a
// completion-graph edge) fires a transition whose Labels set contains it
// or one of its super-roles, i.e. label ∈ closure(Labels).
func (t transition) matches(label *Role) bool {
	for _, l := range t.Labels {
		if l.ID == label.ID {
			return true
		}
		if label.Ancestors != nil && label.Ancestors.Contains(roleKey(l.ID)) {
			return true
		}
	}
	return false
}

// buildAutomata constructs every role's automaton, per §4.1. Cycle
// detection: ErrCycleInRIA is returned when embedding sub-role automata
// reaches a non-transitive role whose own automaton is still being built.
// Sub-roles that collapseCycles folded into R's synonym class are skipped.
// Complex role inclusions are chained label by label without recursion,
// so an inclusion whose chain mentions R itself (R∘S∘R ⊑ R) is not
// checked and raises no error. A plain transitive self-reference
// (R ⊑ R via Trans(R)) is not a cycle — it is the reflexive-transitive
// self-loop "1 →ε 0" and is handled directly, not through recursion.
func (rm *RoleMaster) buildAutomata() error {
	inProgress := make(map[int]bool)
	var build func(r *Role) error
	build = func(r *Role) error {
		r = r.canonical()
		if r.Automaton != nil {
			return nil
		}
		if inProgress[r.ID] {
			if r.Flags.Transitive {
				return nil
			}
			return ErrCycleInRIA
		}
		inProgress[r.ID] = true
		defer delete(inProgress, r.ID)

		a := newAutomaton()
		// Step 1: base transition 0 →{R} 1.
		a.addTransition(0, []*Role{r}, 1)
		// Step 2: transitive self-loop.
		if r.Flags.Transitive {
			a.addTransition(1, nil, 0)
		}
		// Step 3: embed each sub-role's automaton.
		for _, s := range r.subRoles {
			if s.canonical().ID == r.ID {
				continue // a synonym of r, folded in by collapseCycles
			}
			if err := build(s); err != nil {
				return err
			}
			embedAutomaton(a, s.Automaton)
		}
		// Step 4: chain complex role inclusions R1∘…∘Rn ⊑ R.
		for _, incl := range rm.complexIncl {
			if incl.super.canonical().ID != r.ID {
				continue
			}
			chainAutomaton(a, incl.chain)
		}
		a.complete = true
		r.Automaton = a
		return nil
	}
	for _, r := range rm.allRoles() {
		if r.ID < 0 {
			continue // build on the positive twin; negative shares nothing distinct here
		}
		if err := build(r); err != nil {
			return err
		}
	}
	// Every inverse role needs its own automaton too: ∀R⁻.C (built via the
	// exported DAG.AddForall(role.Inverse(), ...)) dispatches through
	// tacticForallPos exactly like ∀R.C, and non-simple roles reach
	// role.Automaton.transitionsFrom directly. The inverse's automaton is
	// R's automaton with every arc reversed and every label role replaced
	// by its own inverse (edges created by CGraph.AddEdge already store
	// the reverse arc under the inverse role, so the reversed automaton
	// matches the reverse arcs it will be asked about).
	for _, r := range rm.allRoles() {
		if r.ID < 0 || r.Repr != nil {
			continue // act only from each synonym class's canonical positive representative
		}
		inv := r.inverse.canonical()
		if inv.Automaton == nil {
			inv.Automaton = invertAutomaton(r.Automaton)
		}
	}
	rm.computeApplicableRoles()
	return nil
}

// invertAutomaton builds the automaton for R⁻ from R's completed
// automaton by reversing every arc and swapping states 0/1 (initial and
// final keep their fixed meaning, so they trade places), and relabels
// every transition's role set with each label's own inverse.
func invertAutomaton(a *Automaton) *Automaton {
	inv := &Automaton{states: a.states, transitions: make(map[int][]transition), complete: a.complete}
	swap01 := func(s int) int {
		switch s {
		case 0:
			return 1
		case 1:
			return 0
		default:
			return s
		}
	}
	for from, ts := range a.transitions {
		for _, t := range ts {
			labels := make([]*Role, len(t.Labels))
			for i, l := range t.Labels {
				labels[i] = l.inverse
			}
			nf, nt := swap01(t.To), swap01(from)
			inv.transitions[nf] = append(inv.transitions[nf], transition{Labels: labels, To: nt})
		}
	}
	return inv
}

// embedAutomaton copies sub's transitions into dst, renumbering sub's
// internal states (everything but 0 and 1) to fresh dst states. Arcs
// touching sub's state 0/1 are rewired to dst's state 0/1, since sub's
// initial/final states are identified with dst's.
func embedAutomaton(dst, sub *Automaton) {
	remap := map[int]int{0: 0, 1: 1}
	fresh := func(s int) int {
		if r, ok := remap[s]; ok {
			return r
		}
		r := dst.addState()
		remap[s] = r
		return r
	}
	for from, ts := range sub.transitions {
		df := fresh(from)
		for _, t := range ts {
			dt := fresh(t.To)
			dst.addTransition(df, t.Labels, dt)
		}
	}
}

// chainAutomaton adds a fresh path of states for a complex role-inclusion
// axiom R1∘…∘Rn ⊑ R: state0 -R1-> m1 -R2-> m2 -...-> state1. When the
// chain has a single link it degenerates to the base transition's
// sibling arc (still useful: multiple arcs out of state 0 for the same
// label-set are legal in an NFA).
func chainAutomaton(dst *Automaton, chain []*Role) {
	if len(chain) == 0 {
		return
	}
	cur := 0
	for i, r := range chain {
		var next int
		if i == len(chain)-1 {
			next = 1
		} else {
			next = dst.addState()
		}
		dst.addTransition(cur, []*Role{r}, next)
		cur = next
	}
}

// computeApplicableRoles fills each automaton's per-state applicableRoles
// set: the union, over transitions leaving that state, of each label role
// and its descendants (a sub-role of an applicable role is itself
// applicable, since it also fires the transition per transition.matches).
func (rm *RoleMaster) computeApplicableRoles() {
	for _, r := range rm.allRoles() {
		a := r.Automaton
		if a == nil || a.applicableRoles != nil {
			continue
		}
		a.applicableRoles = make([]*bitset.Set, a.states)
		for s := 0; s < a.states; s++ {
			set := bitset.New()
			for _, t := range a.transitions[s] {
				for _, l := range t.Labels {
					set.Add(roleKey(l.ID))
					if l.Descendants != nil {
						set.Or(l.Descendants)
					}
				}
			}
			a.applicableRoles[s] = set
		}
	}
}

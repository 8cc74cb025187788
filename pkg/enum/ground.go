// Package enum implements the CORE's enumerator (spec.md §4.6): lazy
// enumeration of substitutions satisfying a boolean term over a
// variable list, plus the smaller ground-term enumeration that the
// rewrite engine's forall/exists congruence handlers rely on
// (spec.md §4.1).
package enum

import (
	"iter"

	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// maxGroundTerms and maxRounds bound GroundTerms so that a forall/
// exists over a recursively-defined (and therefore infinite) sort
// terminates rather than looping forever when no witness/
// counter-example is found — spec.md §5's deadline-based cancellation
// is the general mechanism; these constants are the pragmatic
// fallback for call sites (the forall/exists congruence handlers)
// that do not thread a context through enumeration.
const (
	// MaxGroundTerms is exported so callers (e.g. the rewrite engine's
	// forall/exists congruence handlers) can tell a naturally-exhausted
	// enumeration (count < MaxGroundTerms) apart from one that was cut
	// off by this non-termination guard.
	MaxGroundTerms        = 2000
	maxRounds             = 64
	maxCombosPerRoundStep = 500
)

// GroundTerms lazily yields ground terms of sort in roughly
// increasing size, by repeatedly applying every constructor reachable
// from sort to combinations of previously-discovered ground terms
// (spec.md §4.1's "every ground constructor instantiation" and §4.6's
// constructor enumeration share this same closure). A non-inductive
// sort (no constructors reachable) yields nothing; a finite sort
// terminates once no round makes progress; an infinite sort stops after
// maxRounds rounds or MaxGroundTerms yielded terms, whichever comes
// first (Peano naturals gain one term per round, so they stop after 65
// terms).
func GroundTerms(tbl *term.Table, sort *term.Sort) iter.Seq[term.Term] {
	return func(yield func(term.Term) bool) {
		sorts := reachableSorts(sort)
		if len(sorts) == 0 {
			return
		}

		byName := make(map[string][]term.Term)
		seen := make(map[term.Term]bool)
		emitted := 0

		for round := 0; round < maxRounds && emitted < MaxGroundTerms; round++ {
			progressed := false
			for _, s := range sorts {
				for _, c := range s.Constructors {
					for _, combo := range combinations(c, byName) {
						var t term.Term
						if len(combo) == 0 {
							t = tbl.SymbolTermOf(c)
						} else {
							t = tbl.Apply(tbl.SymbolTermOf(c), combo...)
						}
						if seen[t] {
							continue
						}
						seen[t] = true
						byName[s.Name] = append(byName[s.Name], t)
						progressed = true

						if s.Name == sort.Name {
							emitted++
							if !yield(t) {
								return
							}
							if emitted >= MaxGroundTerms {
								return
							}
						}
					}
				}
			}
			if !progressed {
				return
			}
		}
	}
}

// reachableSorts returns sort and every sort transitively reachable
// through its constructors' argument sorts.
func reachableSorts(sort *term.Sort) []*term.Sort {
	var out []*term.Sort
	visited := map[string]bool{}
	var walk func(*term.Sort)
	walk = func(s *term.Sort) {
		if s == nil || visited[s.Name] {
			return
		}
		visited[s.Name] = true
		out = append(out, s)
		for _, c := range s.Constructors {
			for i := 0; i < c.Arity(); i++ {
				walk(c.ArgSort(i))
			}
		}
	}
	walk(sort)
	return out
}

// combinations enumerates argument tuples for c from the
// already-discovered terms of each argument position's sort, capped
// at maxCombosPerRoundStep to keep a multi-arity constructor from
// exploding the round's cost.
func combinations(c *term.Symbol, byName map[string][]term.Term) [][]term.Term {
	arity := c.Arity()
	if arity == 0 {
		return [][]term.Term{nil}
	}
	pools := make([][]term.Term, arity)
	for i := 0; i < arity; i++ {
		pools[i] = byName[c.ArgSort(i).Name]
		if len(pools[i]) == 0 {
			return nil
		}
	}
	var out [][]term.Term
	var rec func(i int, cur []term.Term)
	rec = func(i int, cur []term.Term) {
		if len(out) >= maxCombosPerRoundStep {
			return
		}
		if i == len(pools) {
			out = append(out, append([]term.Term(nil), cur...))
			return
		}
		for _, t := range pools[i] {
			rec(i+1, append(cur, t))
			if len(out) >= maxCombosPerRoundStep {
				return
			}
		}
	}
	rec(0, nil)
	return out
}

// NonEnumerableSortError reports a request to enumerate a function
// sort or a sort without constructors (spec.md §4.6, §7).
func NonEnumerableSortError(sortName string) error {
	return engineerr.New(engineerr.NonEnumerableSort, "sort %q has no constructors and cannot be enumerated", sortName)
}

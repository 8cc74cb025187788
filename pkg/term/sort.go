// Package term implements the CORE's term representation (spec §3): sorts,
// function symbols, variables, and maximally-shared applicative terms.
//
// Every term is built through a Table, which interns symbols and
// hash-conses application nodes so that structurally equal subterms share
// one address. Equality on interned terms therefore reduces to pointer
// (interface value) equality, matching spec.md §3's "Equality on terms is
// pointer equality" invariant.
package term

import "fmt"

// Sort names a domain of terms. Function sorts carry the argument sorts
// of a curried function symbol; inductive sorts additionally carry a
// non-empty set of constructor symbols.
type Sort struct {
	Name         string
	ArgSorts     []*Sort
	Constructors []*Symbol // nil for non-inductive / opaque sorts
}

// NewSort creates a base (non-function) sort with the given name.
func NewSort(name string) *Sort {
	return &Sort{Name: name}
}

// NewFunctionSort creates a sort for a function from argSorts to result.
// Function sorts are never themselves inductive.
func NewFunctionSort(name string, argSorts ...*Sort) *Sort {
	return &Sort{Name: name, ArgSorts: argSorts}
}

// IsFunctionSort reports whether s is a sort of functions (has declared
// argument sorts) rather than a base data sort.
func (s *Sort) IsFunctionSort() bool {
	return len(s.ArgSorts) > 0
}

// IsInductive reports whether s carries a finite constructor set, and is
// therefore a candidate for enumeration (§4.6) and structural induction
// (§4.4).
func (s *Sort) IsInductive() bool {
	return len(s.Constructors) > 0
}

// AddConstructor registers sym as a constructor of the inductive sort s.
func (s *Sort) AddConstructor(sym *Symbol) {
	s.Constructors = append(s.Constructors, sym)
}

func (s *Sort) String() string {
	if s == nil {
		return "<nil-sort>"
	}
	if len(s.ArgSorts) == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s/%d->%s", s.Name, len(s.ArgSorts), s.Name)
}

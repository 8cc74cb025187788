// Package subst implements the CORE's substitution store (spec.md §4.3):
// a flat mapping from a variable's stable small integer identity to a
// term, used both as the ambient substitution under which open terms are
// reduced (rewrite.Engine.SetSubstitution) and as the per-task binding
// environment threaded through match-tree execution and enumeration.
package subst

import "github.com/gitrdm/rewrcore/pkg/term"

// Store is a variable -> term binding environment keyed by a variable's
// dense integer ID (spec.md §4.3). Lookup is one map access on that ID
// and returns nil for an unbound variable; Walk returns the unbound
// variable itself.
//
// A Store is owned by exactly one reduction task at a time (spec.md §5);
// it is not safe for concurrent use by two goroutines simultaneously, by
// design — disjoint generators are expected to hold disjoint Stores.
type Store struct {
	bindings map[int32]term.Term
}

// New creates an empty substitution store.
func New() *Store {
	return &Store{bindings: make(map[int32]term.Term)}
}

// Clone returns a shallow copy of s whose bindings map is independent of
// the original — the bound terms themselves are shared (terms are
// immutable once built through a term.Table), so cloning is O(n) in the
// number of bindings, not in term size.
func (s *Store) Clone() *Store {
	cp := make(map[int32]term.Term, len(s.bindings))
	for k, v := range s.bindings {
		cp[k] = v
	}
	return &Store{bindings: cp}
}

// Set binds v to t, overwriting any existing binding.
func (s *Store) Set(v *term.Var, t term.Term) {
	s.bindings[v.ID] = t
}

// Clear removes any binding for v.
func (s *Store) Clear(v *term.Var) {
	delete(s.bindings, v.ID)
}

// ClearAll removes every binding, leaving an empty store.
func (s *Store) ClearAll() {
	s.bindings = make(map[int32]term.Term)
}

// Lookup returns the term bound to v, or nil if v is unbound.
func (s *Store) Lookup(v *term.Var) term.Term {
	return s.bindings[v.ID]
}

// Size returns the number of bindings currently held.
func (s *Store) Size() int {
	return len(s.bindings)
}

// Walk follows one level of variable binding: if t is a bound variable,
// returns its binding (unwalked further); otherwise returns t unchanged.
// Rewriting is expected to re-walk after substituting into head position,
// since a variable may be bound to another variable.
func (s *Store) Walk(t term.Term) term.Term {
	v, ok := t.(*term.VarTerm)
	if !ok {
		return t
	}
	if bound := s.Lookup(v.V); bound != nil {
		return bound
	}
	return t
}

// DeepWalk fully resolves t under s: variables are followed until a
// non-variable or an unbound variable is reached, and the result is
// rebuilt (through tbl, to preserve hash-consing) with every bound
// variable replaced by its resolved value. A variable bound to a partial
// application spliced into head position is flattened by tbl.Apply, per
// spec.md §4.3.
func (s *Store) DeepWalk(tbl *term.Table, t term.Term) term.Term {
	switch n := t.(type) {
	case *term.VarTerm:
		bound := s.Lookup(n.V)
		if bound == nil {
			return t
		}
		return s.DeepWalk(tbl, bound)
	case *term.App:
		head := s.DeepWalk(tbl, n.Head)
		args := make([]term.Term, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.DeepWalk(tbl, a)
		}
		return tbl.Apply(head, args...)
	default:
		return t
	}
}

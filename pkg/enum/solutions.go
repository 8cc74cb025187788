package enum

import (
	"iter"

	"github.com/gitrdm/rewrcore/pkg/rewrite"
	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Config parameterises Solutions. Equality names the symbol (if any)
// the residual formula uses for equality, so equality-directed
// variable elimination (spec.md §4.6) can recognise "x = e" without
// the enumerator hardcoding a symbol name — the same injection
// discipline pkg/rewrite's WithBooleans uses for true/false.
// WarnThreshold bounds the number of sum variables Solutions will
// introduce before calling OnWarn once; 0 disables the warning.
type Config struct {
	Equality      *term.Symbol
	WarnThreshold int
	OnWarn        func(introduced int)
}

// Solutions implements spec.md §4.6: given a variable list and a
// boolean term phi, lazily yields every substitution under which phi
// rewrites to true. Returns a non-enumerable-sort error up front if
// any variable's sort is a function sort or has no constructors.
//
// A yielded store's bindings may chain through fresh sum variables
// introduced during enumeration; callers read a variable's ground
// value via store.DeepWalk(tbl, tbl.VarTermOf(v)), not a bare Lookup.
func Solutions(vars []*term.Var, phi term.Term, engine *rewrite.Engine, cfg Config) (iter.Seq[*subst.Store], error) {
	for _, v := range vars {
		if v.Sort == nil || v.Sort.IsFunctionSort() || !v.Sort.IsInductive() {
			name := "<nil>"
			if v.Sort != nil {
				name = v.Sort.Name
			}
			return nil, NonEnumerableSortError(name)
		}
	}

	tbl := engine.Table()
	trueSym, falseSym := engine.Booleans()

	return func(yield func(*subst.Store) bool) {
		type frame struct {
			remaining []*term.Var
			partial   *subst.Store
		}
		stack := []frame{{remaining: vars, partial: subst.New()}}
		introduced := 0
		warned := false

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			residual := engine.Rewrite(f.partial.DeepWalk(tbl, phi))

			if isSym(residual, falseSym) {
				continue
			}
			if len(f.remaining) == 0 {
				if isSym(residual, trueSym) {
					if !yield(f.partial) {
						return
					}
				}
				continue
			}
			if isSym(residual, trueSym) {
				// Vacuously satisfied for any value of the remaining
				// variables: emit one solution per remaining variable's
				// first constructor rather than leaving them unbound.
				if !yield(closeArbitrarily(tbl, f.partial, f.remaining)) {
					return
				}
				continue
			}

			if cfg.Equality != nil {
				if x, e, ok := matchEquality(residual, cfg.Equality, f.remaining); ok {
					next := f.partial.Clone()
					next.Set(x, e)
					stack = append(stack, frame{remaining: removeVar(f.remaining, x), partial: next})
					continue
				}
			}

			head := f.remaining[0]
			rest := f.remaining[1:]
			// Pushed in reverse so the stack (LIFO) pops constructors in
			// their declared order — e.g. Nat's 0 before S — giving a
			// smallest-instance-first enumeration order rather than an
			// arbitrary one.
			cs := head.Sort.Constructors
			for ci := len(cs) - 1; ci >= 0; ci-- {
				c := cs[ci]
				extra := make([]*term.Var, c.Arity())
				argTerms := make([]term.Term, c.Arity())
				for i := 0; i < c.Arity(); i++ {
					fresh := tbl.FreshVar(head.Name+"$"+c.Name, c.ArgSort(i))
					extra[i] = fresh
					argTerms[i] = tbl.VarTermOf(fresh)
				}
				introduced += len(extra)
				if cfg.WarnThreshold > 0 && !warned && introduced > cfg.WarnThreshold {
					warned = true
					if cfg.OnWarn != nil {
						cfg.OnWarn(introduced)
					}
				}

				var inst term.Term
				if len(argTerms) == 0 {
					inst = tbl.SymbolTermOf(c)
				} else {
					inst = tbl.Apply(tbl.SymbolTermOf(c), argTerms...)
				}

				next := f.partial.Clone()
				next.Set(head, inst)
				newRemaining := append(append([]*term.Var{}, rest...), extra...)
				stack = append(stack, frame{remaining: newRemaining, partial: next})
			}
		}
	}, nil
}

func isSym(t term.Term, sym *term.Symbol) bool {
	st, ok := t.(*term.SymbolTerm)
	return ok && sym != nil && st.Sym == sym
}

// closeArbitrarily binds every still-unbound variable in remaining to
// its sort's first constructor (recursively, for any further
// recursive argument positions), so a vacuously-true residual still
// yields one concrete, total substitution.
func closeArbitrarily(tbl *term.Table, partial *subst.Store, remaining []*term.Var) *subst.Store {
	out := partial.Clone()
	for _, v := range remaining {
		out.Set(v, groundWitness(tbl, v.Sort))
	}
	return out
}

func groundWitness(tbl *term.Table, sort *term.Sort) term.Term {
	if sort == nil || len(sort.Constructors) == 0 {
		return nil
	}
	c := sort.Constructors[0]
	if c.Arity() == 0 {
		return tbl.SymbolTermOf(c)
	}
	args := make([]term.Term, c.Arity())
	for i := 0; i < c.Arity(); i++ {
		args[i] = groundWitness(tbl, c.ArgSort(i))
	}
	return tbl.Apply(tbl.SymbolTermOf(c), args...)
}

// matchEquality recognises residual as eqSym(x, e) or eqSym(e, x) with
// x a still-unbound remaining variable not free in e (spec.md §4.6
// "equality-directed variable elimination").
func matchEquality(residual term.Term, eqSym *term.Symbol, remaining []*term.Var) (*term.Var, term.Term, bool) {
	app, ok := residual.(*term.App)
	if !ok || len(app.Args) != 2 {
		return nil, nil, false
	}
	head, ok := term.HeadSymbol(app.Head)
	if !ok || head != eqSym {
		return nil, nil, false
	}
	a, b := app.Args[0], app.Args[1]
	if v, ok := a.(*term.VarTerm); ok && isRemaining(v.V, remaining) && !occursIn(b, v.V) {
		return v.V, b, true
	}
	if v, ok := b.(*term.VarTerm); ok && isRemaining(v.V, remaining) && !occursIn(a, v.V) {
		return v.V, a, true
	}
	return nil, nil, false
}

func isRemaining(v *term.Var, remaining []*term.Var) bool {
	for _, r := range remaining {
		if r == v {
			return true
		}
	}
	return false
}

func occursIn(t term.Term, v *term.Var) bool {
	switch n := t.(type) {
	case *term.VarTerm:
		return n.V == v
	case *term.App:
		if occursIn(n.Head, v) {
			return true
		}
		for _, a := range n.Args {
			if occursIn(a, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func removeVar(vars []*term.Var, v *term.Var) []*term.Var {
	out := make([]*term.Var, 0, len(vars)-1)
	for _, x := range vars {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

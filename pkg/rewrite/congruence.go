package rewrite

import (
	"github.com/gitrdm/rewrcore/pkg/enum"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// dispatchCongruence routes a symbol application to its dedicated
// congruence handler (spec.md §4.1 "Congruence operators") instead of
// the argument-wise match-tree dispatch. ok is false when sym is not
// one of the registered binders, or the application's arity doesn't
// match the handler's expected shape (in which case it is left to
// ordinary dispatch, which will simply find no rule and rebuild it
// unreduced).
func (e *Engine) dispatchCongruence(sym *term.Symbol, args []term.Term) (term.Term, bool) {
	switch {
	case e.lambdaSym != nil && sym == e.lambdaSym:
		return e.reduceLambdaApplication(args)
	case e.forallSym != nil && sym == e.forallSym:
		return e.reduceQuantifier(args, true)
	case e.existsSym != nil && sym == e.existsSym:
		return e.reduceQuantifier(args, false)
	case e.whereSym != nil && sym == e.whereSym:
		return e.reduceWhere(args)
	}
	return nil, false
}

// reduceLambdaApplication handles apply(lambda, x, body, v): a lambda
// value apply(lambda, x, body) applied to an argument v, which our
// uniform apply(head, args...) representation flattens into one
// 3-argument application. A bare, unapplied lambda value (arity 2) is
// already in normal form and is left to ordinary dispatch.
func (e *Engine) reduceLambdaApplication(args []term.Term) (term.Term, bool) {
	if len(args) != 3 {
		return nil, false
	}
	xv, ok := args[0].(*term.VarTerm)
	if !ok {
		return nil, false
	}
	body, v := args[1], args[2]

	saved := e.subst.Lookup(xv.V)
	e.subst.Set(xv.V, e.rewrite(v))
	result := e.rewrite(body)
	restore(e, xv.V, saved)
	return result, true
}

// reduceQuantifier handles apply(forall, x, body) / apply(exists, x,
// body) by evaluating body for every ground constructor instance of
// x's sort (spec.md §4.1), stopping as soon as the quantifier's fixed
// truth value is found. isForall selects which truth value is fixed
// (false for forall, true for exists) and which is the default when
// enumeration is naturally exhausted without finding it.
func (e *Engine) reduceQuantifier(args []term.Term, isForall bool) (term.Term, bool) {
	if len(args) != 2 || e.trueSym == nil || e.falseSym == nil {
		return nil, false
	}
	xv, ok := args[0].(*term.VarTerm)
	if !ok {
		return nil, false
	}
	body := args[1]

	saved := e.subst.Lookup(xv.V)
	defer restore(e, xv.V, saved)

	count := 0
	for g := range enum.GroundTerms(e.tbl, xv.V.Sort) {
		count++
		e.subst.Set(xv.V, g)
		r := e.rewrite(body)
		switch {
		case isForall && e.isFalse(r):
			return e.tbl.SymbolTermOf(e.falseSym), true
		case !isForall && e.isTrue(r):
			return e.tbl.SymbolTermOf(e.trueSym), true
		}
	}

	if count < enum.MaxGroundTerms {
		// Naturally exhausted (finite sort, or none found): the
		// quantifier settles at its default value.
		if isForall {
			return e.tbl.SymbolTermOf(e.trueSym), true
		}
		return e.tbl.SymbolTermOf(e.falseSym), true
	}
	// Enumeration was cut off by the non-termination guard without
	// determining a value: leave the quantifier unreduced.
	return nil, false
}

// reduceWhere handles apply(where, body, v1, e1, v2, e2, ...): body is
// rewritten under the bindings added by its assignments, each value
// itself rewritten first.
func (e *Engine) reduceWhere(args []term.Term) (term.Term, bool) {
	if len(args) < 1 || (len(args)-1)%2 != 0 {
		return nil, false
	}
	body := args[0]

	type saved struct {
		v   *term.Var
		old term.Term
	}
	var savedBindings []saved
	for i := 1; i < len(args); i += 2 {
		xv, ok := args[i].(*term.VarTerm)
		if !ok {
			return nil, false
		}
		savedBindings = append(savedBindings, saved{v: xv.V, old: e.subst.Lookup(xv.V)})
		e.subst.Set(xv.V, e.rewrite(args[i+1]))
	}

	result := e.rewrite(body)
	for _, s := range savedBindings {
		restore(e, s.v, s.old)
	}
	return result, true
}

func restore(e *Engine, v *term.Var, old term.Term) {
	if old != nil {
		e.subst.Set(v, old)
	} else {
		e.subst.Clear(v)
	}
}

func (e *Engine) isTrue(t term.Term) bool {
	st, ok := t.(*term.SymbolTerm)
	return ok && st.Sym == e.trueSym
}

func (e *Engine) isFalse(t term.Term) bool {
	st, ok := t.(*term.SymbolTerm)
	return ok && st.Sym == e.falseSym
}

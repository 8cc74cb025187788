// Package induct implements the EQ-BDD prover's structural-induction
// escalation (spec.md §4.4 "Induction (optional)"): when a formula's
// BDD does not collapse to a constant, strengthen the proof attempt by
// splitting one of the formula's inductively-sorted free variables
// into its sort's constructor cases and re-proving each case, with the
// induction hypothesis installed as a temporary rewrite rule over each
// case's recursive sub-variables.
package induct

import (
	"context"

	"github.com/gitrdm/rewrcore/pkg/bdd"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Selector picks which of phi's free, inductively-sorted variables to
// split on. A nil Selector defaults to the first one found.
type Selector func(candidates []*term.Var) *term.Var

// Strengthen implements spec.md §4.4's three termination conditions:
// all constructor cases prove true (success, Yes), some case proves
// its negation instead — i.e. that case's Prove call returns No —
// (contradiction, No), or some case closes neither way (undefined; the
// caller may retry with a different Selector before giving up).
func Strengthen(ctx context.Context, prover *bdd.Prover, phi term.Term, pick Selector) bdd.Verdict {
	candidates := inductiveFreeVars(phi)
	if len(candidates) == 0 {
		return bdd.Undefined
	}
	v := candidates[0]
	if pick != nil {
		if chosen := pick(candidates); chosen != nil {
			v = chosen
		}
	}

	tbl := prover.Table()
	engine := prover.Engine()
	trueSym, _ := engine.Booleans()

	for _, c := range v.Sort.Constructors {
		freshArgs := freshArgsFor(tbl, v, c)
		replacement := buildReplacement(tbl, c, freshArgs)
		instance := substituteVar(tbl, phi, v, replacement)

		var ihRules []*term.Rule
		if trueSym != nil {
			for i, fv := range freshArgs {
				if c.ArgSort(i) != v.Sort {
					continue // not a recursive argument position, no hypothesis to assume
				}
				ihLHS := substituteVar(tbl, phi, v, tbl.VarTermOf(fv))
				app, ok := ihLHS.(*term.App)
				if !ok {
					continue // phi is a bare variable; nothing to install a hypothesis for
				}
				rule := &term.Rule{
					FreeVars: term.FreeVars(ihLHS),
					LHS:      app,
					RHS:      tbl.SymbolTermOf(trueSym),
				}
				if err := engine.AddRule(rule); err == nil {
					ihRules = append(ihRules, rule)
				}
			}
		}

		res := prover.Prove(ctx, instance)

		for _, r := range ihRules {
			engine.RemoveRule(r)
		}

		switch res.Tautology {
		case bdd.No:
			return bdd.No
		case bdd.Yes:
			continue
		default:
			return bdd.Undefined
		}
	}
	return bdd.Yes
}

// inductiveFreeVars returns phi's free variables whose sort carries
// constructors, in a stable (first-occurrence) order.
func inductiveFreeVars(phi term.Term) []*term.Var {
	var out []*term.Var
	seen := map[*term.Var]bool{}
	for _, v := range term.FreeVars(phi) {
		if seen[v] || v.Sort == nil || len(v.Sort.Constructors) == 0 {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// freshArgsFor returns one fresh variable per argument position of c,
// named after v so the induction hypothesis rules read naturally.
func freshArgsFor(tbl *term.Table, v *term.Var, c *term.Symbol) []*term.Var {
	args := make([]*term.Var, c.Arity())
	for i := 0; i < c.Arity(); i++ {
		args[i] = tbl.FreshVar(v.Name+"'", c.ArgSort(i))
	}
	return args
}

func buildReplacement(tbl *term.Table, c *term.Symbol, args []*term.Var) term.Term {
	if len(args) == 0 {
		return tbl.SymbolTermOf(c)
	}
	terms := make([]term.Term, len(args))
	for i, a := range args {
		terms[i] = tbl.VarTermOf(a)
	}
	return tbl.Apply(tbl.SymbolTermOf(c), terms...)
}

func substituteVar(tbl *term.Table, t term.Term, v *term.Var, replacement term.Term) term.Term {
	switch n := t.(type) {
	case *term.VarTerm:
		if n.V == v {
			return replacement
		}
		return t
	case *term.App:
		head := n.Head
		if vh, ok := head.(*term.VarTerm); ok && vh.V == v {
			head = replacement
		}
		args := make([]term.Term, len(n.Args))
		changed := head != n.Head
		for i, a := range n.Args {
			r := substituteVar(tbl, a, v, replacement)
			args[i] = r
			if r != a {
				changed = true
			}
		}
		if !changed {
			return t
		}
		return tbl.Apply(head, args...)
	default:
		return t
	}
}

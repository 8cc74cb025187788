package confluence

import (
	"context"
	"testing"

	"github.com/gitrdm/rewrcore/pkg/bdd"
	"github.com/gitrdm/rewrcore/pkg/lps"
	"github.com/gitrdm/rewrcore/pkg/rewrite"
	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/stretchr/testify/require"
)

// natEngine builds Nat = 0 | S(Nat), a rule-driven equality predicate,
// and and/not boolean connectives — everything Check needs to build
// and discharge a commutative condition.
func natEngine(t *testing.T) (e *rewrite.Engine, tbl *term.Table, zero, sSym, eq, and, not, trueSym, falseSym *term.Symbol) {
	tbl = term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	boolSort := tbl.InternSort(term.NewSort("Bool"))

	zero = tbl.Intern("0", nat)
	sSym = tbl.Intern("S", term.NewFunctionSort("S", nat, nat))
	nat.AddConstructor(zero)
	nat.AddConstructor(sSym)

	eq = tbl.Intern("=?", term.NewFunctionSort("=?", nat, nat, boolSort))
	and = tbl.Intern("and", term.NewFunctionSort("and", boolSort, boolSort, boolSort))
	not = tbl.Intern("not", term.NewFunctionSort("not", boolSort, boolSort))
	trueSym = tbl.Intern("true", boolSort)
	falseSym = tbl.Intern("false", boolSort)

	e = rewrite.NewEngine(tbl, rewrite.WithBooleans(trueSym, falseSym))

	require.NoError(t, e.AddRule(&term.Rule{
		LHS: tbl.Apply(tbl.SymbolTermOf(eq), tbl.SymbolTermOf(zero), tbl.SymbolTermOf(zero)).(*term.App),
		RHS: tbl.SymbolTermOf(trueSym),
	}))
	yv := tbl.FreshVar("y", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{yv},
		LHS:      tbl.Apply(tbl.SymbolTermOf(eq), tbl.SymbolTermOf(zero), tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(yv))).(*term.App),
		RHS:      tbl.SymbolTermOf(falseSym),
	}))
	xv := tbl.FreshVar("x", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{xv},
		LHS:      tbl.Apply(tbl.SymbolTermOf(eq), tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(xv)), tbl.SymbolTermOf(zero)).(*term.App),
		RHS:      tbl.SymbolTermOf(falseSym),
	}))
	xv2, yv2 := tbl.FreshVar("x", nat), tbl.FreshVar("y", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{xv2, yv2},
		LHS: tbl.Apply(tbl.SymbolTermOf(eq),
			tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(xv2)),
			tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(yv2))).(*term.App),
		RHS: tbl.Apply(tbl.SymbolTermOf(eq), tbl.VarTermOf(xv2), tbl.VarTermOf(yv2)),
	}))

	a1, b1 := tbl.FreshVar("a", boolSort), tbl.FreshVar("b", boolSort)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{b1},
		LHS:      tbl.Apply(tbl.SymbolTermOf(and), tbl.SymbolTermOf(trueSym), tbl.VarTermOf(b1)).(*term.App),
		RHS:      tbl.VarTermOf(b1),
	}))
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{a1},
		LHS:      tbl.Apply(tbl.SymbolTermOf(and), tbl.VarTermOf(a1), tbl.SymbolTermOf(falseSym)).(*term.App),
		RHS:      tbl.SymbolTermOf(falseSym),
	}))
	require.NoError(t, e.AddRule(&term.Rule{
		LHS: tbl.Apply(tbl.SymbolTermOf(and), tbl.SymbolTermOf(falseSym), tbl.SymbolTermOf(trueSym)).(*term.App),
		RHS: tbl.SymbolTermOf(falseSym),
	}))
	require.NoError(t, e.AddRule(&term.Rule{
		LHS: tbl.Apply(tbl.SymbolTermOf(not), tbl.SymbolTermOf(trueSym)).(*term.App),
		RHS: tbl.SymbolTermOf(falseSym),
	}))
	require.NoError(t, e.AddRule(&term.Rule{
		LHS: tbl.Apply(tbl.SymbolTermOf(not), tbl.SymbolTermOf(falseSym)).(*term.App),
		RHS: tbl.SymbolTermOf(trueSym),
	}))

	// eq(x, x) -> true: a non-linear reflexivity rule (same pattern
	// variable in both argument positions), letting structurally
	// identical open terms (e.g. S(x) compared to itself) collapse to
	// true without needing either side ground.
	rx := tbl.FreshVar("x", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{rx},
		LHS:      tbl.Apply(tbl.SymbolTermOf(eq), tbl.VarTermOf(rx), tbl.VarTermOf(rx)).(*term.App),
		RHS:      tbl.SymbolTermOf(trueSym),
	}))

	return e, tbl, zero, sSym, eq, and, not, trueSym, falseSym
}

// TestCheckCommutingIndependentCounters runs two summands over
// params (x, y: Nat) that each bump one counter and leave the other
// unchanged — they commute regardless of order, so Check must return
// bdd.Yes.
func TestCheckCommutingIndependentCounters(t *testing.T) {
	e, tbl, zero, sSym, eq, and, not, trueSym, _ := natEngine(t)
	_ = zero
	nat := tbl.LookupSort("Nat")

	x := tbl.FreshVar("x", nat)
	y := tbl.FreshVar("y", nat)
	params := []*term.Var{x, y}

	incX := &lps.Summand{
		Name:      "incX",
		Condition: tbl.SymbolTermOf(trueSym),
		NextState: []term.Term{tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(x)), tbl.VarTermOf(y)},
	}
	incY := &lps.Summand{
		Name:      "incY",
		Condition: tbl.SymbolTermOf(trueSym),
		NextState: []term.Term{tbl.VarTermOf(x), tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(y))},
	}

	p := bdd.NewProver(e, bdd.Config{})
	cfg := Config{And: and, Not: not, Equality: eq}

	verdict := Check(context.Background(), p, params, incX, incY, cfg)
	require.Equal(t, bdd.Yes, verdict)
}

func TestFastPathDisjointSkipsSharedNothing(t *testing.T) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	x := tbl.FreshVar("x", nat)
	y := tbl.FreshVar("y", nat)

	a := &lps.Summand{Name: "a", Condition: tbl.VarTermOf(x), NextState: []term.Term{tbl.VarTermOf(x)}}
	b := &lps.Summand{Name: "b", Condition: tbl.VarTermOf(y), NextState: []term.Term{tbl.VarTermOf(y)}}
	require.True(t, FastPathDisjoint(a, b))

	c := &lps.Summand{Name: "c", Condition: tbl.VarTermOf(x), NextState: []term.Term{tbl.VarTermOf(x)}}
	require.False(t, FastPathDisjoint(a, c))
}

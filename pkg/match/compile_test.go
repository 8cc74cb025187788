package match

import (
	"testing"

	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/stretchr/testify/require"
)

// peanoFixture builds Nat = 0 | S(Nat) and the two rules of Peano
// addition: plus(0, y) -> y ; plus(S(x), y) -> S(plus(x, y)).
func peanoFixture(t *testing.T) (tbl *term.Table, zero, sSym, plus *term.Symbol, rules []*term.Rule) {
	tbl = term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	zero = tbl.Intern("0", nat)
	sSym = tbl.Intern("S", term.NewFunctionSort("S", nat, nat))
	plus = tbl.Intern("+", term.NewFunctionSort("+", nat, nat, nat))

	y1 := tbl.FreshVar("y", nat)
	rule1 := &term.Rule{
		FreeVars: []*term.Var{y1},
		LHS:      tbl.Apply(tbl.SymbolTermOf(plus), tbl.SymbolTermOf(zero), tbl.VarTermOf(y1)).(*term.App),
		RHS:      tbl.VarTermOf(y1),
	}

	x2, y2 := tbl.FreshVar("x", nat), tbl.FreshVar("y", nat)
	sx := tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(x2))
	rule2 := &term.Rule{
		FreeVars: []*term.Var{x2, y2},
		LHS:      tbl.Apply(tbl.SymbolTermOf(plus), sx, tbl.VarTermOf(y2)).(*term.App),
		RHS:      tbl.Apply(tbl.SymbolTermOf(sSym), tbl.Apply(tbl.SymbolTermOf(plus), tbl.VarTermOf(x2), tbl.VarTermOf(y2))),
	}

	return tbl, zero, sSym, plus, []*term.Rule{rule1, rule2}
}

func natLit(tbl *term.Table, sSym, zero *term.Symbol, n int) term.Term {
	t := tbl.SymbolTermOf(zero)
	for i := 0; i < n; i++ {
		t = tbl.Apply(tbl.SymbolTermOf(sSym), t)
	}
	return t
}

func TestCompileMatchesZeroRule(t *testing.T) {
	tbl, zero, sSym, _, rules := peanoFixture(t)
	strategy := Compile(rules)

	two := natLit(tbl, sSym, zero, 2)
	callArgs := []term.Term{tbl.SymbolTermOf(zero), two}

	var tree *Tree
	for _, s := range strategy.Steps {
		if s.Kind == StepTree {
			tree = s.Tree
		}
	}
	require.NotNil(t, tree)

	rhs, trailing, ok := Exec(tree, callArgs, subst.New(), tbl, nil, nil)
	require.True(t, ok)
	require.Nil(t, trailing)
	require.Same(t, two, rhs)
}

func TestCompileMatchesSuccessorRuleAndBindsRecursiveCall(t *testing.T) {
	tbl, zero, sSym, plus, rules := peanoFixture(t)
	strategy := Compile(rules)

	one := natLit(tbl, sSym, zero, 1)
	three := natLit(tbl, sSym, zero, 3)
	callArgs := []term.Term{one, three}

	var tree *Tree
	for _, s := range strategy.Steps {
		if s.Kind == StepTree {
			tree = s.Tree
		}
	}

	rhs, trailing, ok := Exec(tree, callArgs, subst.New(), tbl, nil, nil)
	require.True(t, ok)
	require.Nil(t, trailing)

	// rhs should be S(plus(0, three)) -- the recursive call is not
	// itself reduced by the match tree, only instantiated.
	app, isApp := rhs.(*term.App)
	require.True(t, isApp)
	sym, _ := term.HeadSymbol(app.Head)
	require.Equal(t, sSym, sym)

	inner, isApp := app.Args[0].(*term.App)
	require.True(t, isApp)
	innerSym, _ := term.HeadSymbol(inner.Head)
	require.Equal(t, plus, innerSym)
	require.Same(t, term.Term(tbl.SymbolTermOf(zero)), inner.Args[0])
	require.Same(t, three, inner.Args[1])
}

func TestCompileProducesTrailingArgumentsForOverApplication(t *testing.T) {
	tbl, zero, sSym, _, rules := peanoFixture(t)
	strategy := Compile(rules)

	two := natLit(tbl, sSym, zero, 2)
	extra := tbl.SymbolTermOf(tbl.Intern("extra", tbl.LookupSort("Nat")))
	callArgs := []term.Term{tbl.SymbolTermOf(zero), two, extra}

	var tree *Tree
	for _, s := range strategy.Steps {
		if s.Kind == StepTree {
			tree = s.Tree
		}
	}

	rhs, trailing, ok := Exec(tree, callArgs, subst.New(), tbl, nil, nil)
	require.True(t, ok)
	require.Same(t, two, rhs)
	require.Equal(t, []term.Term{extra}, trailing)
}

func TestCompileNoRuleMatchesAnUnrelatedHead(t *testing.T) {
	tbl, zero, sSym, _, rules := peanoFixture(t)
	strategy := Compile(rules)
	_ = sSym

	other := tbl.SymbolTermOf(tbl.Intern("bogus", tbl.LookupSort("Nat")))
	callArgs := []term.Term{other, tbl.SymbolTermOf(zero)}

	var tree *Tree
	for _, s := range strategy.Steps {
		if s.Kind == StepTree {
			tree = s.Tree
		}
	}

	_, _, ok := Exec(tree, callArgs, subst.New(), tbl, nil, nil)
	require.False(t, ok)
}

func TestConditionalRuleFallsThroughOnFailedGuard(t *testing.T) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	boolSort := tbl.InternSort(term.NewSort("Bool"))
	trueSym := tbl.Intern("true", boolSort)
	falseSym := tbl.Intern("false", boolSort)
	isZero := tbl.Intern("isZero?", term.NewFunctionSort("isZero?", nat, boolSort))
	f := tbl.Intern("f", term.NewFunctionSort("f", nat, nat))
	a := tbl.Intern("a", nat)
	b := tbl.Intern("b", nat)

	x := tbl.FreshVar("x", nat)
	guarded := &term.Rule{
		FreeVars: []*term.Var{x},
		LHS:      tbl.Apply(tbl.SymbolTermOf(f), tbl.VarTermOf(x)).(*term.App),
		Cond:     tbl.Apply(tbl.SymbolTermOf(isZero), tbl.VarTermOf(x)),
		RHS:      tbl.SymbolTermOf(a),
	}
	y := tbl.FreshVar("y", nat)
	fallback := &term.Rule{
		FreeVars: []*term.Var{y},
		LHS:      tbl.Apply(tbl.SymbolTermOf(f), tbl.VarTermOf(y)).(*term.App),
		RHS:      tbl.SymbolTermOf(b),
	}

	strategy := Compile([]*term.Rule{guarded, fallback})
	var tree *Tree
	for _, s := range strategy.Steps {
		if s.Kind == StepTree {
			tree = s.Tree
		}
	}

	reduce := func(t term.Term) term.Term { return tbl.SymbolTermOf(falseSym) } // guard never holds
	callArgs := []term.Term{tbl.SymbolTermOf(tbl.Intern("whatever", nat))}

	rhs, _, ok := Exec(tree, callArgs, subst.New(), tbl, trueSym, reduce)
	require.True(t, ok)
	require.Same(t, term.Term(tbl.SymbolTermOf(b)), rhs)
}

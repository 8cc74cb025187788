package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyFlattensNestedHeads(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	g := tbl.Intern("g", NewFunctionSort("g", nat, nat, nat))
	a := tbl.SymbolTermOf(tbl.Intern("a", nat))
	b := tbl.SymbolTermOf(tbl.Intern("b", nat))
	c := tbl.SymbolTermOf(tbl.Intern("c", nat))

	partial := tbl.Apply(tbl.SymbolTermOf(g), a)
	full := tbl.Apply(partial, b, c)

	direct := tbl.Apply(tbl.SymbolTermOf(g), a, b, c)
	require.Same(t, direct, full, "splicing a partial application must hash-cons to the same node as the direct application")
}

func TestApplyHashConsesStructurallyEqualTerms(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	s := tbl.Intern("S", NewFunctionSort("S", nat, nat))
	zero := tbl.SymbolTermOf(tbl.Intern("0", nat))

	t1 := tbl.Apply(tbl.SymbolTermOf(s), zero)
	t2 := tbl.Apply(tbl.SymbolTermOf(s), zero)

	require.Same(t, t1, t2)
}

func TestApplyWithNoArgsReturnsHeadUnchanged(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	zero := tbl.SymbolTermOf(tbl.Intern("0", nat))

	require.Same(t, Term(zero), tbl.Apply(zero))
}

func TestFreeVarsOrderAndDedup(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	plus := tbl.Intern("+", NewFunctionSort("+", nat, nat, nat))
	x := tbl.FreshVar("x", nat)
	y := tbl.FreshVar("y", nat)

	xt := tbl.VarTermOf(x)
	yt := tbl.VarTermOf(y)
	term := tbl.Apply(tbl.SymbolTermOf(plus), xt, tbl.Apply(tbl.SymbolTermOf(plus), xt, yt))

	fv := FreeVars(term)
	require.Len(t, fv, 2)
	require.Equal(t, x.ID, fv[0].ID)
	require.Equal(t, y.ID, fv[1].ID)
}

func TestIsGround(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	s := tbl.Intern("S", NewFunctionSort("S", nat, nat))
	zero := tbl.SymbolTermOf(tbl.Intern("0", nat))
	x := tbl.VarTermOf(tbl.FreshVar("x", nat))

	require.True(t, IsGround(tbl.Apply(tbl.SymbolTermOf(s), zero)))
	require.False(t, IsGround(tbl.Apply(tbl.SymbolTermOf(s), x)))
}

func TestRuleValidateRejectsVariableHead(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	x := tbl.FreshVar("x", nat)
	bogusHead := tbl.VarTermOf(x)
	// Construct an *App by hand with a variable head to exercise Validate
	// directly, bypassing Table.Apply's normal symbol-head usage.
	lhs := &App{Head: bogusHead, Args: []Term{tbl.VarTermOf(x)}}
	rule := &Rule{FreeVars: []*Var{x}, LHS: lhs, RHS: tbl.VarTermOf(x)}

	err := rule.Validate()
	require.Error(t, err)
}

func TestRuleValidateRejectsUnboundRHSVariable(t *testing.T) {
	tbl := NewTable()
	nat := tbl.InternSort(NewSort("Nat"))
	f := tbl.Intern("f", NewFunctionSort("f", nat, nat))
	x := tbl.FreshVar("x", nat)
	y := tbl.FreshVar("y", nat) // not bound by LHS

	lhs := tbl.Apply(tbl.SymbolTermOf(f), tbl.VarTermOf(x)).(*App)
	rule := &Rule{FreeVars: []*Var{x}, LHS: lhs, RHS: tbl.VarTermOf(y)}

	err := rule.Validate()
	require.Error(t, err)
}

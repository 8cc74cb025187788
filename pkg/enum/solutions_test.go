package enum

import (
	"testing"

	"github.com/gitrdm/rewrcore/pkg/rewrite"
	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/stretchr/testify/require"
)

// ltEngine builds Nat = 0 | S(Nat) plus a rule-driven strict-less-than
// predicate, returning the engine and symbols a test needs.
func ltEngine(t *testing.T) (e *rewrite.Engine, tbl *term.Table, zero, sSym, lt, trueSym, falseSym *term.Symbol) {
	tbl = term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	boolSort := tbl.InternSort(term.NewSort("Bool"))

	zero = tbl.Intern("0", nat)
	sSym = tbl.Intern("S", term.NewFunctionSort("S", nat, nat))
	nat.AddConstructor(zero)
	nat.AddConstructor(sSym)

	lt = tbl.Intern("<?", term.NewFunctionSort("<?", nat, nat, boolSort))
	trueSym = tbl.Intern("true", boolSort)
	falseSym = tbl.Intern("false", boolSort)

	e = rewrite.NewEngine(tbl, rewrite.WithBooleans(trueSym, falseSym))

	// <?(x, 0) -> false
	xv := tbl.FreshVar("x", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{xv},
		LHS:      tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(xv), tbl.SymbolTermOf(zero)).(*term.App),
		RHS:      tbl.SymbolTermOf(falseSym),
	}))
	// <?(0, S(y)) -> true
	yv := tbl.FreshVar("y", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{yv},
		LHS:      tbl.Apply(tbl.SymbolTermOf(lt), tbl.SymbolTermOf(zero), tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(yv))).(*term.App),
		RHS:      tbl.SymbolTermOf(trueSym),
	}))
	// <?(S(x), S(y)) -> <?(x, y)
	xv2, yv2 := tbl.FreshVar("x", nat), tbl.FreshVar("y", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{xv2, yv2},
		LHS: tbl.Apply(tbl.SymbolTermOf(lt),
			tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(xv2)),
			tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(yv2))).(*term.App),
		RHS: tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(xv2), tbl.VarTermOf(yv2)),
	}))

	return e, tbl, zero, sSym, lt, trueSym, falseSym
}

func natLit(tbl *term.Table, sSym, zero *term.Symbol, n int) term.Term {
	r := tbl.SymbolTermOf(zero)
	for i := 0; i < n; i++ {
		r = tbl.Apply(tbl.SymbolTermOf(sSym), r)
	}
	return r
}

// TestSolutionsEnumeratesBoundedRange runs n <? 2 over Nat and expects
// exactly the two solutions n=0 and n=S(0), in the order constructors
// are tried (0 before S).
func TestSolutionsEnumeratesBoundedRange(t *testing.T) {
	e, tbl, zero, sSym, lt, _, _, _ := ltEngine(t)
	nat := tbl.LookupSort("Nat")

	n := tbl.FreshVar("n", nat)
	two := natLit(tbl, sSym, zero, 2)
	phi := tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(n), two)

	seq, err := Solutions([]*term.Var{n}, phi, e, Config{})
	require.NoError(t, err)

	var got []term.Term
	for store := range seq {
		got = append(got, store.DeepWalk(tbl, tbl.VarTermOf(n)))
	}

	require.Len(t, got, 2)
	require.Same(t, natLit(tbl, sSym, zero, 0), got[0])
	require.Same(t, natLit(tbl, sSym, zero, 1), got[1])
}

// TestSolutionsEarlyStop confirms the iterator honours yield returning
// false (range-over-func's "break" protocol) by collecting only the
// first solution even though more exist.
func TestSolutionsEarlyStop(t *testing.T) {
	e, tbl, zero, sSym, lt, _, _, _ := ltEngine(t)
	nat := tbl.LookupSort("Nat")

	n := tbl.FreshVar("n", nat)
	three := natLit(tbl, sSym, zero, 3)
	phi := tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(n), three)

	seq, err := Solutions([]*term.Var{n}, phi, e, Config{})
	require.NoError(t, err)

	count := 0
	for range seq {
		count++
		break
	}
	require.Equal(t, 1, count)
}

// TestSolutionsRejectsFunctionSort confirms enumerating a function-
// sorted variable is rejected up front rather than attempted.
func TestSolutionsRejectsFunctionSort(t *testing.T) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	e := rewrite.NewEngine(tbl)

	fn := tbl.FreshVar("f", term.NewFunctionSort("Nat->Nat", nat, nat))
	_, err := Solutions([]*term.Var{fn}, tbl.VarTermOf(fn), e, Config{})
	require.Error(t, err)
}

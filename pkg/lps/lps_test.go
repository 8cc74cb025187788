package lps

import (
	"context"
	"testing"

	"github.com/gitrdm/rewrcore/pkg/rewrite"
	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/stretchr/testify/require"
)

// tickProcess builds the spec's literal scenario 6: parameter n: Nat,
// a single summand "sum i: Nat . (i <? n) -> tick(i) . n' = n", and
// Nat = 0 | S(Nat) with a rule-driven strict less-than predicate.
func tickProcess(t *testing.T) (*Process, *rewrite.Engine) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	boolSort := tbl.InternSort(term.NewSort("Bool"))

	zero := tbl.Intern("0", nat)
	sSym := tbl.Intern("S", term.NewFunctionSort("S", nat, nat))
	nat.AddConstructor(zero)
	nat.AddConstructor(sSym)

	lt := tbl.Intern("<?", term.NewFunctionSort("<?", nat, nat, boolSort))
	trueSym := tbl.Intern("true", boolSort)
	falseSym := tbl.Intern("false", boolSort)

	e := rewrite.NewEngine(tbl, rewrite.WithBooleans(trueSym, falseSym))

	xv := tbl.FreshVar("x", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{xv},
		LHS:      tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(xv), tbl.SymbolTermOf(zero)).(*term.App),
		RHS:      tbl.SymbolTermOf(falseSym),
	}))
	yv := tbl.FreshVar("y", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{yv},
		LHS:      tbl.Apply(tbl.SymbolTermOf(lt), tbl.SymbolTermOf(zero), tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(yv))).(*term.App),
		RHS:      tbl.SymbolTermOf(trueSym),
	}))
	xv2, yv2 := tbl.FreshVar("x", nat), tbl.FreshVar("y", nat)
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{xv2, yv2},
		LHS: tbl.Apply(tbl.SymbolTermOf(lt),
			tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(xv2)),
			tbl.Apply(tbl.SymbolTermOf(sSym), tbl.VarTermOf(yv2))).(*term.App),
		RHS: tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(xv2), tbl.VarTermOf(yv2)),
	}))

	n := tbl.FreshVar("n", nat)
	i := tbl.FreshVar("i", nat)
	proc := &Process{
		Params:  []*term.Var{n},
		Initial: []term.Term{natLit(tbl, sSym, zero, 2)}, // n = S(S(0))
		Summands: []*Summand{
			{
				Name:       "tick",
				LocalVars:  []*term.Var{i},
				Condition:  tbl.Apply(tbl.SymbolTermOf(lt), tbl.VarTermOf(i), tbl.VarTermOf(n)),
				ActionArgs: []term.Term{tbl.VarTermOf(i)},
				NextState:  []term.Term{tbl.VarTermOf(n)},
			},
		},
	}
	return proc, e
}

// TestStateEnumerationTick runs the spec's literal scenario 6: from
// n=S(S(0)), breadth-first exploration with max_states=10 sees two
// distinct multi-actions, tick(0) and tick(S(0)), both self-looping
// (n' = n), and no deadlock.
func TestStateEnumerationTick(t *testing.T) {
	proc, e := tickProcess(t)
	g := New(proc, e)
	init := g.InitialState()

	for ma, next := range g.Successors(context.Background(), init) {
		require.Equal(t, "tick", ma.Name)
		require.Equal(t, stateKey(init), stateKey(next), "every successor self-loops: n' = n")
	}

	rep, err := Explore(context.Background(), g, Breadth, ExploreOptions{MaxStates: 10})
	require.NoError(t, err)
	require.Equal(t, 1, rep.StatesVisited, "both tick successors collapse back to the initial state")
	require.Empty(t, rep.Deadlocks)
}

// TestSuccessorsProducesExpectedTicks confirms the two concrete
// multi-actions directly, independent of Explore's bookkeeping.
func TestSuccessorsProducesExpectedTicks(t *testing.T) {
	proc, e := tickProcess(t)
	tbl := e.Table()
	nat := tbl.LookupSort("Nat")
	zero := nat.Constructors[0]
	sSym := nat.Constructors[1]

	g := New(proc, e)
	init := g.InitialState()

	var got []term.Term
	for ma, _ := range g.Successors(context.Background(), init) {
		got = append(got, ma.Args[0])
	}
	require.Len(t, got, 2)
	require.Same(t, natLit(tbl, sSym, zero, 0), got[0])
	require.Same(t, natLit(tbl, sSym, zero, 1), got[1])
}

func natLit(tbl *term.Table, sSym, zero *term.Symbol, n int) term.Term {
	r := tbl.SymbolTermOf(zero)
	for i := 0; i < n; i++ {
		r = tbl.Apply(tbl.SymbolTermOf(sSym), r)
	}
	return r
}

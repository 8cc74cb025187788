package subst

import (
	"testing"

	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/stretchr/testify/require"
)

func TestWalkReturnsVariableItselfWhenUnbound(t *testing.T) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	x := tbl.FreshVar("x", nat)
	xt := tbl.VarTermOf(x)

	s := New()
	require.Same(t, term.Term(xt), s.Walk(xt))
}

func TestBindAndDeepWalkFlattensPartialApplication(t *testing.T) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	g := tbl.Intern("g", term.NewFunctionSort("g", nat, nat, nat))
	a := tbl.SymbolTermOf(tbl.Intern("a", nat))
	b := tbl.SymbolTermOf(tbl.Intern("b", nat))
	h := tbl.FreshVar("h", nat)

	s := New()
	s.Set(h, tbl.Apply(tbl.SymbolTermOf(g), a)) // h := g(a), a partial application

	ht := tbl.VarTermOf(h)
	applied := tbl.Apply(ht, b) // apply(h, b) -- h is in head position

	result := s.DeepWalk(tbl, applied)
	expect := tbl.Apply(tbl.SymbolTermOf(g), a, b)
	require.Same(t, expect, result)
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := term.NewTable()
	nat := tbl.InternSort(term.NewSort("Nat"))
	x := tbl.FreshVar("x", nat)
	zero := tbl.SymbolTermOf(tbl.Intern("0", nat))

	s := New()
	s.Set(x, zero)
	clone := s.Clone()
	clone.Clear(x)

	require.NotNil(t, s.Lookup(x))
	require.Nil(t, clone.Lookup(x))
}

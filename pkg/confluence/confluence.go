// Package confluence implements the state generator's companion
// confluence and invariant-checking module (spec.md §4.7): deciding
// whether two summands commute, fast-pathing disjoint summands, and
// renaming confluent tau-summands to a distinguished action so
// pkg/lps's confluent-tau reduction can collapse them. This package
// depends only on pkg/bdd and pkg/lps, per spec.md §4.7.
package confluence

import (
	"context"

	"github.com/gitrdm/rewrcore/pkg/bdd"
	"github.com/gitrdm/rewrcore/pkg/lps"
	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Verdict is the BDD prover's three-valued outcome, reused here rather
// than re-declared: confluence is itself a tautology question over a
// boolean condition discharged through pkg/bdd.
type Verdict = bdd.Verdict

// Config names the boolean connectives Check builds its commutative
// condition out of — injected rather than hardcoded, the same
// discipline pkg/enum's Config.Equality and pkg/rewrite's
// WithBooleans use elsewhere in this module. Equality is assumed to
// cover every process parameter's sort; a generator with
// heterogeneously-sorted parameters needs one Config per sort pairing.
type Config struct {
	And      *term.Symbol
	Not      *term.Symbol
	Equality *term.Symbol
}

// FastPathDisjoint reports whether a and b share no free or bound
// variable (spec.md §4.7: "summands that share no free or bound
// variable are fast-pathed as disjoint"), in which case they commute
// trivially without needing the BDD prover at all.
func FastPathDisjoint(a, b *lps.Summand) bool {
	av := varSet(a)
	for v := range varSet(b) {
		if av[v] {
			return false
		}
	}
	return true
}

func varSet(s *lps.Summand) map[*term.Var]bool {
	out := map[*term.Var]bool{}
	for _, v := range s.LocalVars {
		out[v] = true
	}
	collect := func(t term.Term) {
		for _, v := range term.FreeVars(t) {
			out[v] = true
		}
	}
	collect(s.Condition)
	for _, a := range s.ActionArgs {
		collect(a)
	}
	for _, n := range s.NextState {
		collect(n)
	}
	return out
}

// Check decides whether summands a and b are confluent over params
// (the linear process's parameter list), per spec.md §4.7: build the
// commutative condition — both enabled and reaching different
// successor valuations is a contradiction — and discharge it through
// prover. FastPathDisjoint is tried first since it needs no proof
// attempt at all. Two summands that are literally the same summand
// are trivially confluent with themselves.
func Check(ctx context.Context, prover *bdd.Prover, params []*term.Var, a, b *lps.Summand, cfg Config) Verdict {
	if a == b {
		return bdd.Yes
	}
	if FastPathDisjoint(a, b) {
		return bdd.Yes
	}
	phi := commuteFormula(prover.Table(), params, a, b, cfg)
	res := prover.Prove(ctx, phi)
	return res.Contradiction
}

// commuteFormula builds "cᵢ ∧ cⱼ ∧ ¬(gᵢ∘gⱼ = gⱼ∘gᵢ)": both summands'
// conditions hold, yet firing them in opposite orders reaches
// different states. If this is a contradiction, the two summands
// always commute where both are enabled.
func commuteFormula(tbl *term.Table, params []*term.Var, a, b *lps.Summand, cfg Config) term.Term {
	afterA, afterB := subst.New(), subst.New()
	for i, p := range params {
		afterA.Set(p, a.NextState[i])
		afterB.Set(p, b.NextState[i])
	}

	var stateEq term.Term
	for i := range params {
		bThenA := afterA.DeepWalk(tbl, b.NextState[i])
		aThenB := afterB.DeepWalk(tbl, a.NextState[i])
		eq := tbl.Apply(tbl.SymbolTermOf(cfg.Equality), bThenA, aThenB)
		stateEq = conjoin(tbl, cfg.And, stateEq, eq)
	}

	bothEnabled := tbl.Apply(tbl.SymbolTermOf(cfg.And), a.Condition, b.Condition)
	differ := tbl.Apply(tbl.SymbolTermOf(cfg.Not), stateEq)
	return tbl.Apply(tbl.SymbolTermOf(cfg.And), bothEnabled, differ)
}

func conjoin(tbl *term.Table, and *term.Symbol, acc, next term.Term) term.Term {
	if acc == nil {
		return next
	}
	return tbl.Apply(tbl.SymbolTermOf(and), acc, next)
}

// RenameCTau implements spec.md §4.7's "confluent tau-summands may be
// renamed to a distinguished ctau action": every prioritised
// tau-summand whose verdict against every other enabled summand is
// bdd.Yes is renamed, so pkg/lps.WithConfluentTau's SCC search treats
// it as part of the collapsible subgraph. verdicts is keyed by
// summand pointer identity, as produced by checking each prioritised
// tau-summand pairwise against its siblings.
func RenameCTau(proc *lps.Process, verdicts map[*lps.Summand]Verdict) *lps.Process {
	out := &lps.Process{Params: proc.Params, Initial: proc.Initial}
	for _, sm := range proc.Summands {
		renamed := *sm
		if sm.Tau && sm.Prioritised && verdicts[sm] == bdd.Yes {
			renamed.Name = "ctau"
		}
		out.Summands = append(out.Summands, &renamed)
	}
	return out
}

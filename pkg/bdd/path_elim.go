package bdd

import (
	"context"

	"github.com/gitrdm/rewrcore/pkg/term"
)

// eliminate walks b top-down, asking cfg.Oracle whether each branch's
// guard path is still satisfiable before descending into it (spec.md
// §4.4 "Path elimination"): if extending path with g is unsatisfiable
// the then-branch is unreachable and the node collapses to the
// (recursively eliminated) else-branch, and symmetrically for ¬g.
// Neither branch being prunable leaves the node as ite(g, ...).
func (p *Prover) eliminate(ctx context.Context, b *BDD, path []term.Term) *BDD {
	if b.Kind != KindIte {
		return b
	}

	notG := p.negate(b.Guard)

	thenPath := p.conflictPath(path, b.Guard)
	elsePath := p.conflictPath(path, notG)

	thenSat := p.checkSat(ctx, append(append([]term.Term{}, thenPath...), b.Guard))
	if thenSat == Unsatisfiable {
		return p.eliminate(ctx, b.Else, path)
	}

	elseSat := p.checkSat(ctx, append(append([]term.Term{}, elsePath...), notG))
	if elseSat == Unsatisfiable {
		return p.eliminate(ctx, b.Then, path)
	}

	then := p.eliminate(ctx, b.Then, append(append([]term.Term{}, path...), b.Guard))
	els := p.eliminate(ctx, b.Else, append(append([]term.Term{}, path...), notG))
	return p.reduceIte(b.Guard, then, els)
}

func (p *Prover) negate(g term.Term) term.Term {
	return p.engine.Table().Apply(p.engine.Table().SymbolTermOf(p.cfg.NotSymbol), g)
}

func (p *Prover) conflictPath(path []term.Term, candidate term.Term) []term.Term {
	if !p.cfg.MinimalConflict {
		return path
	}
	return minimalConflict(path, candidate)
}

func (p *Prover) checkSat(ctx context.Context, path []term.Term) Sat {
	sat, err := p.cfg.Oracle.CheckSat(ctx, path)
	if err != nil {
		// A solver-unavailable error degrades to "no path elimination"
		// (spec.md §7): treat the path as satisfiable so nothing is
		// pruned on the strength of a missing solver.
		return Satisfiable
	}
	return sat
}

// minimalConflict narrows path to the guards that share a free
// variable with candidate, closing transitively (spec.md §4.4
// "minimal-conflict mode"). It lives here, not in pkg/bdd/smt: smt
// only answers CheckSat through the Oracle interface defined in this
// package.
func minimalConflict(path []term.Term, candidate term.Term) []term.Term {
	keep := varSet(candidate)
	kept := make([]bool, len(path))

	for changed := true; changed; {
		changed = false
		for i, g := range path {
			if kept[i] {
				continue
			}
			gv := varSet(g)
			if overlaps(gv, keep) {
				kept[i] = true
				for v := range gv {
					keep[v] = true
				}
				changed = true
			}
		}
	}

	out := make([]term.Term, 0, len(path))
	for i, g := range path {
		if kept[i] {
			out = append(out, g)
		}
	}
	return out
}

func varSet(t term.Term) map[*term.Var]bool {
	out := make(map[*term.Var]bool)
	var walk func(term.Term)
	walk = func(t term.Term) {
		switch n := t.(type) {
		case *term.VarTerm:
			out[n.V] = true
		case *term.App:
			walk(n.Head)
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

func overlaps(a, b map[*term.Var]bool) bool {
	for v := range a {
		if b[v] {
			return true
		}
	}
	return false
}

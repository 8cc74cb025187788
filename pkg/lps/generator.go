package lps

import (
	"context"
	"iter"

	"github.com/gitrdm/rewrcore/pkg/enum"
	"github.com/gitrdm/rewrcore/pkg/rewrite"
	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// MultiAction is the label produced by firing one summand instance.
type MultiAction struct {
	Name string
	Args []term.Term
}

// Option configures a Generator at construction time.
type Option func(*Generator)

// WithTreeState selects TreeState instead of the default VectorState
// (spec.md §4.5: "the representation is fixed at configuration time").
func WithTreeState() Option { return func(g *Generator) { g.tree = true } }

// WithConfluentTau enables representative() collapsing of prioritised
// tau-SCCs in Successors (spec.md §4.5 "Confluent-tau reduction").
func WithConfluentTau() Option { return func(g *Generator) { g.confluentTau = true } }

// WithEquality names the symbol pkg/enum's Solutions should recognise
// for equality-directed elimination when enumerating a summand's local
// variables — see enum.Config.Equality.
func WithEquality(sym *term.Symbol) Option {
	return func(g *Generator) { g.equality = sym }
}

// Generator computes successors of a Process's states (spec.md §4.5).
type Generator struct {
	proc         *Process
	engine       *rewrite.Engine
	tree         bool
	confluentTau bool
	equality     *term.Symbol
}

// New configures a Generator over proc.
func New(proc *Process, engine *rewrite.Engine, opts ...Option) *Generator {
	g := &Generator{proc: proc, engine: engine}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Prioritise flags every summand whose action name is exactly name as
// prioritised (spec.md §4.5): whenever a prioritised summand is
// enabled in a state, Successors emits only prioritised successors
// from that state.
func (g *Generator) Prioritise(name string) {
	for _, s := range g.proc.Summands {
		if s.Name == name {
			s.Prioritised = true
		}
	}
}

// InitialState returns the process's initial state.
func (g *Generator) InitialState() State {
	return g.makeState(g.proc.Initial)
}

func (g *Generator) makeState(vals []term.Term) State {
	if g.tree {
		return buildTree(vals)
	}
	return VectorState{Vals: append([]term.Term(nil), vals...)}
}

type firedSummand struct {
	summand *Summand
	sols    []*subst.Store
}

// fire enumerates every summand whose local variables can be
// instantiated to satisfy its condition in state s (spec.md §4.5
// "Successor computation" step (i)), restricted to tauOnly summands
// when tauOnly is true (used by the confluent-tau SCC search).
func (g *Generator) fire(s State, tauOnly bool) (base *subst.Store, enabled []firedSummand) {
	tbl := g.engine.Table()
	base = subst.New()
	for i, p := range g.proc.Params {
		base.Set(p, s.Values()[i])
	}

	for _, sm := range g.proc.Summands {
		if tauOnly && !(sm.Tau && sm.Prioritised) {
			continue
		}
		cond := base.DeepWalk(tbl, sm.Condition)
		seq, err := enum.Solutions(sm.LocalVars, cond, g.engine, enum.Config{Equality: g.equality})
		if err != nil {
			continue
		}
		var sols []*subst.Store
		for sol := range seq {
			sols = append(sols, sol)
		}
		if len(sols) > 0 {
			enabled = append(enabled, firedSummand{summand: sm, sols: sols})
		}
	}
	return base, enabled
}

// Successors yields (multiAction, nextState) pairs for s (spec.md
// §4.5): for each enabled summand and each solution of its condition,
// the action arguments and gᵢ are rewritten under the combined
// substitution and emitted. When any prioritised summand is enabled,
// only prioritised summands' successors are emitted. When confluent-
// tau reduction is on, every emitted successor state is replaced by
// its representative under the prioritised-tau subgraph.
func (g *Generator) Successors(ctx context.Context, s State) iter.Seq2[MultiAction, State] {
	return func(yield func(MultiAction, State) bool) {
		if ctx.Err() != nil {
			return
		}
		base, enabled := g.fire(s, false)
		anyPrioritised := false
		for _, f := range enabled {
			if f.summand.Prioritised {
				anyPrioritised = true
				break
			}
		}

		for _, f := range enabled {
			if anyPrioritised && !f.summand.Prioritised {
				continue
			}
			for _, sol := range f.sols {
				if ctx.Err() != nil {
					return
				}
				ma, next := g.fireOne(base, f, sol)
				if g.confluentTau {
					next = g.representative(ctx, next)
					if stateKey(next) == stateKey(s) {
						continue // self-loop within the SCC, suppressed
					}
				}
				if !yield(ma, next) {
					return
				}
			}
		}
	}
}

// fireOne computes the multi-action and successor state for one
// (summand, solution) pair: bind the solution's local-variable
// bindings on top of base, then rewrite every action argument and
// next-state term under the combined substitution (spec.md §4.5
// "Successor computation" steps (ii)-(iii)).
func (g *Generator) fireOne(base *subst.Store, f firedSummand, sol *subst.Store) (MultiAction, State) {
	tbl := g.engine.Table()
	combined := base.Clone()
	for _, lv := range f.summand.LocalVars {
		if sol.Lookup(lv) != nil {
			combined.Set(lv, sol.DeepWalk(tbl, tbl.VarTermOf(lv)))
		}
	}
	argTerms := make([]term.Term, len(f.summand.ActionArgs))
	for i, a := range f.summand.ActionArgs {
		argTerms[i] = g.engine.Rewrite(combined.DeepWalk(tbl, a))
	}
	nextVals := make([]term.Term, len(f.summand.NextState))
	for i, nt := range f.summand.NextState {
		nextVals[i] = g.engine.Rewrite(combined.DeepWalk(tbl, nt))
	}
	return MultiAction{Name: f.summand.Name, Args: argTerms}, g.makeState(nextVals)
}

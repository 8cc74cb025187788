package codegen

import (
	"sync"

	"github.com/gitrdm/rewrcore/pkg/match"
	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Eval mirrors the interpreter's reduce callback (pkg/match.Eval):
// generated modules call back through it to normalize arguments and
// evaluate Check guards, exactly as pkg/rewrite's own dispatch loop
// does for the interpreted back-end.
type Eval = match.Eval

// registration is everything a generated module's Reduce needs to
// walk its symbol's strategy the way the interpreter walks one: the
// decision tree(s) pkg/match.Compile built, the ambient substitution
// store open-term reduction reads and writes, the boolean-true symbol
// Check nodes compare against, and the engine's own reduce callback
// for argument normalization, guard evaluation, and re-normalizing the
// instantiated right-hand side.
type registration struct {
	strat    *match.Strategy
	bindings *subst.Store
	trueSym  *term.Symbol
	reduce   Eval
}

var registry sync.Map // int32 symbol index -> registration

// Register installs sym's compiled dispatch state so a later-loaded
// module's Reduce — which carries only its symbol's index, baked in
// as a literal at Emit time — can find it. A Go plugin opened via
// plugin.Open shares this package's instance with the host process
// (spec.md §4.1: "shares the term representation with the
// interpreter"), so no serialization of the tree or the store is
// needed. Re-registering the same index replaces the previous entry.
func Register(symIndex int32, strat *match.Strategy, bindings *subst.Store, trueSym *term.Symbol, reduce Eval) {
	registry.Store(symIndex, registration{strat: strat, bindings: bindings, trueSym: trueSym, reduce: reduce})
}

// Unregister drops symIndex's compiled dispatch state, e.g. once its
// rule set changes and the cached module is discarded.
func Unregister(symIndex int32) {
	registry.Delete(symIndex)
}

// Exec is what every generated module's Reduce calls. It walks
// symIndex's registered strategy exactly as
// pkg/rewrite.Engine.dispatch walks an interpreted one: normalizing
// the argument positions the strategy schedules before the tree, then
// matching the merged argument vector against the tree and
// re-normalizing the instantiated right-hand side on a hit.
func Exec(symIndex int32, tbl *term.Table, args []term.Term) (term.Term, bool) {
	v, ok := registry.Load(symIndex)
	if !ok {
		return nil, false
	}
	reg := v.(registration)
	strat := reg.strat
	n := len(args)
	if n < strat.MinArity || len(strat.Steps) == 0 {
		return nil, false
	}

	r := make([]term.Term, n)
	for _, step := range strat.Steps {
		switch step.Kind {
		case match.StepArgIndex:
			i := step.Index
			if i >= n {
				return nil, false
			}
			if r[i] == nil {
				r[i] = reg.reduce(args[i])
			}
		case match.StepTree:
			callArgs := make([]term.Term, n)
			for i := 0; i < n; i++ {
				if r[i] != nil {
					callArgs[i] = r[i]
				} else {
					callArgs[i] = args[i]
				}
			}
			rhs, trailing, matched := match.Exec(step.Tree, callArgs, reg.bindings, tbl, reg.trueSym, reg.reduce)
			if matched {
				result := rhs
				if len(trailing) > 0 {
					result = tbl.Apply(rhs, trailing...)
				}
				return reg.reduce(result), true
			}
		}
	}
	return nil, false
}

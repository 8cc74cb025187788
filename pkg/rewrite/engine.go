// Package rewrite implements the CORE's innermost rewrite engine
// (spec.md §4.1): given a rule set compiled per symbol by pkg/match,
// it reduces ground and open terms to normal form, maintains an
// ambient substitution for open-term reduction, and hosts the
// congruence operators (lambda application, forall/exists, where) that
// are not reduced argument-wise.
package rewrite

import (
	"sync"

	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/match"
	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/sirupsen/logrus"
)

// Engine is the process-wide rule set, strategy cache, and ambient
// substitution for one term.Table (spec.md §9: passed explicitly, not
// a package singleton).
type Engine struct {
	mu  sync.RWMutex
	tbl *term.Table

	rulesBySymbol map[int32][]*term.Rule
	strategies    map[int32]*match.Strategy // nil entry (absent) means dirty/uncached

	subst *subst.Store

	trueSym, falseSym *term.Symbol

	lambdaSym, forallSym, existsSym, whereSym *term.Symbol

	backend  Backend
	compiler Compiler
	compiled map[int32]NativeModule

	// lastCompileErr is the most recent compiled-back-end build
	// failure, surfaced via LastCompileError (pkg/rewrite/compiled.go).
	lastCompileErr error

	log *logrus.Entry
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithBooleans tells the engine which nullary symbols represent the
// boolean constants true/false, used by Check nodes and by the
// prover's leaf recognition.
func WithBooleans(trueSym, falseSym *term.Symbol) Option {
	return func(e *Engine) { e.trueSym, e.falseSym = trueSym, falseSym }
}

// WithBinders registers the symbols used to encode lambda application,
// forall/exists quantification, and where-expressions (spec.md §4.1
// "Congruence operators"). Any of them may be nil if unused.
func WithBinders(lambda, forall, exists, where *term.Symbol) Option {
	return func(e *Engine) {
		e.lambdaSym, e.forallSym, e.existsSym, e.whereSym = lambda, forall, exists, where
	}
}

// WithLogger attaches a structured logger; a nil logger is replaced by
// the logrus standard logger (NewEngine's default) so callers never
// need a nil check.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) { e.log = log }
}

// WithCompiler enables the compiled back-end (spec.md §4.1 "Compiled
// back-end"): when set and the active Backend requests compilation, a
// symbol's native module is built whenever its strategy is compiled.
// AddRule and RemoveRule discard that symbol's module; the next
// reduction of the symbol recompiles the strategy and rebuilds it.
func WithCompiler(c Compiler) Option {
	return func(e *Engine) { e.compiler = c }
}

// NewEngine constructs an Engine over tbl with the interpreted
// back-end active by default.
func NewEngine(tbl *term.Table, opts ...Option) *Engine {
	e := &Engine{
		tbl:           tbl,
		rulesBySymbol: make(map[int32][]*term.Rule),
		strategies:    make(map[int32]*match.Strategy),
		subst:         subst.New(),
		compiled:      make(map[int32]NativeModule),
		backend:       Interpreted,
		log:           logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return e
}

// SetBackend selects the active rewrite back-end (spec.md §6's
// rewrite-strategy selector).
func (e *Engine) SetBackend(b Backend) { e.mu.Lock(); e.backend = b; e.mu.Unlock() }

// Table returns the term table this engine reduces over, so
// collaborators (the BDD prover, the state generator) can build terms
// to feed back into Rewrite without holding a second reference.
func (e *Engine) Table() *term.Table { return e.tbl }

// Booleans returns the nullary symbols registered via WithBooleans.
func (e *Engine) Booleans() (trueSym, falseSym *term.Symbol) { return e.trueSym, e.falseSym }

// AddRule validates r (spec.md §4.1 "Failure semantics") and, if well
// formed, adds it to its head symbol's rule list, marking that
// symbol's cached strategy dirty. An invalid rule is rejected and the
// rule set is left unchanged.
func (e *Engine) AddRule(r *term.Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	sym := r.HeadSymbol()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rulesBySymbol[sym.Index] = append(e.rulesBySymbol[sym.Index], r)
	delete(e.strategies, sym.Index)
	e.invalidateCompiled(sym.Index)
	return nil
}

// RemoveRule removes r from its head symbol's rule list (by pointer
// identity) and marks that symbol's strategy dirty. It is a no-op if r
// was never added.
func (e *Engine) RemoveRule(r *term.Rule) {
	sym := r.HeadSymbol()

	e.mu.Lock()
	defer e.mu.Unlock()
	rules := e.rulesBySymbol[sym.Index]
	for i, existing := range rules {
		if existing == r {
			e.rulesBySymbol[sym.Index] = append(rules[:i:i], rules[i+1:]...)
			delete(e.strategies, sym.Index)
			e.invalidateCompiled(sym.Index)
			return
		}
	}
}

// SetSubstitution binds v under the ambient substitution used to
// reduce open terms.
func (e *Engine) SetSubstitution(v *term.Var, t term.Term) { e.subst.Set(v, t) }

// ClearSubstitution removes any ambient binding for v.
func (e *Engine) ClearSubstitution(v *term.Var) { e.subst.Clear(v) }

// ClearAll removes every ambient binding.
func (e *Engine) ClearAll() { e.subst.ClearAll() }

// strategyFor returns the (lazily compiled, cached) Strategy for sym,
// compiling it from the symbol's current rule set if absent.
func (e *Engine) strategyFor(sym *term.Symbol) *match.Strategy {
	e.mu.RLock()
	s, ok := e.strategies[sym.Index]
	rules := e.rulesBySymbol[sym.Index]
	e.mu.RUnlock()
	if ok {
		return s
	}

	s = match.Compile(rules)
	e.mu.Lock()
	e.strategies[sym.Index] = s
	e.mu.Unlock()

	if e.compiler != nil && (e.backend == Compiled || e.backend == CompiledProver) {
		e.tryCompile(sym, s)
	}
	return s
}

// RewriteList rewrites ts pointwise (spec.md §4.1 "rewrite_list").
func (e *Engine) RewriteList(ts []term.Term) []term.Term {
	out := make([]term.Term, len(ts))
	for i, t := range ts {
		out[i] = e.Rewrite(t)
	}
	return out
}

// Rewrite reduces t to normal form with respect to the current rule
// set and the innermost strategy (spec.md §4.1).
func (e *Engine) Rewrite(t term.Term) term.Term {
	return e.rewrite(t)
}

func (e *Engine) rewrite(t term.Term) term.Term {
	t = e.resolveHead(t)

	switch n := t.(type) {
	case *term.VarTerm:
		return n

	case *term.SymbolTerm:
		return e.dispatch(n.Sym, nil, t)

	case *term.App:
		sym, ok := term.HeadSymbol(n.Head)
		if !ok {
			// Head is a genuinely free variable: no rule can apply, but
			// arguments are still reduced innermost-first.
			args := make([]term.Term, len(n.Args))
			for i, a := range n.Args {
				args[i] = e.rewrite(a)
			}
			return e.tbl.Apply(n.Head, args...)
		}
		return e.dispatch(sym, n.Args, t)
	}
	return t
}

// resolveHead implements algorithm step 1: if t is headed by a
// variable, substitute it (default: leave unchanged); a resulting
// application is spliced by tbl.Apply's own flattening.
func (e *Engine) resolveHead(t term.Term) term.Term {
	switch n := t.(type) {
	case *term.VarTerm:
		if bound := e.subst.Lookup(n.V); bound != nil {
			return e.resolveHead(bound)
		}
		return t
	case *term.App:
		if vh, ok := n.Head.(*term.VarTerm); ok {
			if bound := e.subst.Lookup(vh.V); bound != nil {
				return e.tbl.Apply(bound, n.Args...)
			}
		}
		return t
	default:
		return t
	}
}

// dispatch implements algorithm steps 2–4 for a resolved symbol head,
// routing to a congruence handler first when sym names a binder.
func (e *Engine) dispatch(sym *term.Symbol, args []term.Term, original term.Term) term.Term {
	if handled, ok := e.dispatchCongruence(sym, args); ok {
		return handled
	}

	if mod, ok := e.compiledModule(sym); ok {
		if result, ok := mod.Reduce(e.tbl, args); ok {
			return result
		}
	}

	strat := e.strategyFor(sym)
	n := len(args)

	if n < strat.MinArity || len(strat.Steps) == 0 {
		return e.rebuildNormalForm(sym, args, nil)
	}

	r := make([]term.Term, n)
	for _, step := range strat.Steps {
		switch step.Kind {
		case match.StepArgIndex:
			i := step.Index
			if i >= n {
				return e.rebuildNormalForm(sym, args, r)
			}
			if r[i] == nil {
				r[i] = e.rewrite(args[i])
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
			rhs, trailing, matched := match.Exec(step.Tree, callArgs, e.subst, e.tbl, e.trueSym, e.rewrite)
			if matched {
				result := rhs
				if len(trailing) > 0 {
					result = e.tbl.Apply(rhs, trailing...)
				}
				return e.rewrite(result)
			}
		}
	}
	return e.rebuildNormalForm(sym, args, r)
}

// rebuildNormalForm finishes algorithm step 4: any argument not yet
// normalized is rewritten, and apply(h, r...) is rebuilt.
func (e *Engine) rebuildNormalForm(sym *term.Symbol, args []term.Term, r []term.Term) term.Term {
	n := len(args)
	if r == nil {
		r = make([]term.Term, n)
	}
	for i := 0; i < n; i++ {
		if r[i] == nil {
			r[i] = e.rewrite(args[i])
		}
	}
	if n == 0 {
		return e.tbl.SymbolTermOf(sym)
	}
	return e.tbl.Apply(e.tbl.SymbolTermOf(sym), r...)
}

// TermStructureError reports an application whose head resolved to
// neither a function symbol nor a variable (spec.md §4.1 "Failure
// semantics"), surfaced via engineerr so a collaborator CLI can map it
// to exit code 1.
func TermStructureError(detail string) error {
	return engineerr.New(engineerr.TermStructure, "%s", detail)
}

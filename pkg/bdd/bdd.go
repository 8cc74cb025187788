// Package bdd implements the CORE's EQ-BDD prover (spec.md §4.4): given
// a boolean term, it decides tautology/contradiction by building an
// ordered binary decision diagram over the term's own boolean-sorted
// subterms ("guards"), optionally pruning infeasible paths through an
// injected SMT oracle (pkg/bdd/smt) and escalating to structural
// induction (pkg/bdd/induct) when the diagram does not collapse to a
// constant.
package bdd

import (
	"context"

	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/rewrite"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Kind tags the shape of a BDD node (spec.md §4.4 "BDD shape"): the
// constants True/False, a bare unresolved guard (the degenerate
// reduce_ite(g, true, false) = g case), or a full ite(g, then, else).
type Kind int

const (
	KindTrue Kind = iota
	KindFalse
	KindGuard
	KindIte
)

// BDD is an ordered binary decision diagram over guard terms.
type BDD struct {
	Kind       Kind
	Guard      term.Term // KindGuard, KindIte
	Then, Else *BDD      // KindIte only
}

var trueBDD = &BDD{Kind: KindTrue}
var falseBDD = &BDD{Kind: KindFalse}

func bddEqual(a, b *BDD) bool {
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindTrue, KindFalse:
		return true
	case KindGuard:
		return a.Guard == b.Guard
	case KindIte:
		return a.Guard == b.Guard && bddEqual(a.Then, b.Then) && bddEqual(a.Else, b.Else)
	default:
		return false
	}
}

// Assignment is one guard/value pair collected while walking a BDD to
// a leaf, forming a witness or counter-example (spec.md §4.4
// "Witnesses").
type Assignment struct {
	Guard term.Term
	Value bool
}

// Witness walks b to a leaf labelled true, returning the guard
// assignments collected along the way.
func (b *BDD) Witness() ([]Assignment, bool) { return search(b, true, nil) }

// CounterExample walks b to a leaf labelled false.
func (b *BDD) CounterExample() ([]Assignment, bool) { return search(b, false, nil) }

func search(b *BDD, want bool, path []Assignment) ([]Assignment, bool) {
	switch b.Kind {
	case KindTrue:
		if want {
			return path, true
		}
		return nil, false
	case KindFalse:
		if !want {
			return path, true
		}
		return nil, false
	case KindGuard:
		// A bare guard behaves exactly like ite(g, true, false): the
		// guard's own value determines the formula's value.
		return append(append([]Assignment{}, path...), Assignment{Guard: b.Guard, Value: want}), true
	case KindIte:
		thenPath := append(append([]Assignment{}, path...), Assignment{Guard: b.Guard, Value: true})
		if r, ok := search(b.Then, want, thenPath); ok {
			return r, true
		}
		elsePath := append(append([]Assignment{}, path...), Assignment{Guard: b.Guard, Value: false})
		return search(b.Else, want, elsePath)
	default:
		return nil, false
	}
}

// Verdict is the three-valued answer to a tautology/contradiction
// query (spec.md §4.4 "Contract").
type Verdict int

const (
	Yes Verdict = iota
	No
	Undefined
)

func (v Verdict) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "undefined"
	}
}

// Config parameterises one Prove call: the lpo bias flags and the
// optional path-elimination oracle and negation symbol (spec.md §6
// "Prover configuration"). It carries no induction setting: induction
// is run separately through pkg/bdd/induct.Strengthen.
type Config struct {
	Reverse bool
	Full    bool

	PathElimination bool
	MinimalConflict bool
	Oracle          Oracle // nil disables path elimination regardless of the flag above
	NotSymbol       *term.Symbol
}

// Oracle answers satisfiability queries over a guard conjunction
// (implemented concretely by pkg/bdd/smt). Defined here, rather than
// imported from pkg/bdd/smt, so pkg/bdd/smt's CVC-backed
// implementation can depend on this package without a cycle.
type Oracle interface {
	CheckSat(ctx context.Context, path []term.Term) (Sat, error)
}

// Sat is an SMT oracle's three-valued answer.
type Sat int

const (
	Satisfiable Sat = iota
	Unsatisfiable
	Unknown
)

// Result is the outcome of one Prove call.
type Result struct {
	BDD                     *BDD
	Tautology, Contradiction Verdict
	DeadlineExceeded        bool
}

// Witness delegates to BDD.Witness, except once the deadline has
// expired, where witness retrieval is itself a failure (spec.md §4.4
// "Failure semantics": "witness retrieval raises a time-limit error").
func (r *Result) Witness() ([]Assignment, bool, error) {
	if r.DeadlineExceeded {
		return nil, false, engineerr.New(engineerr.TimeLimit, "bdd construction did not complete before the deadline")
	}
	a, ok := r.BDD.Witness()
	return a, ok, nil
}

// CounterExample is Witness's contradiction-side counterpart.
func (r *Result) CounterExample() ([]Assignment, bool, error) {
	if r.DeadlineExceeded {
		return nil, false, engineerr.New(engineerr.TimeLimit, "bdd construction did not complete before the deadline")
	}
	a, ok := r.BDD.CounterExample()
	return a, ok, nil
}

// Prover owns the memoisation tables shared across one rewrite
// Engine's worth of Prove calls (spec.md §4.4 "Memoisation tables
// ... keyed by pointer identity of maximally-shared terms").
type Prover struct {
	engine   *rewrite.Engine
	cfg      Config
	trueSym, falseSym *term.Symbol
	boolSort *term.Sort

	memoBDD   map[term.Term]*BDD
	memoGuard map[term.Term]term.Term
	iteMemo   map[iteKey]*BDD
}

type iteKey struct {
	guard    term.Term
	then, els *BDD
}

// NewProver constructs a Prover over engine's boolean constants
// (spec.md §4.4's guard/leaf recognition needs to know which nullary
// symbols mean true and false).
func NewProver(engine *rewrite.Engine, cfg Config) *Prover {
	trueSym, falseSym := engine.Booleans()
	var boolSort *term.Sort
	if trueSym != nil {
		boolSort = trueSym.ResultSort()
	}
	return &Prover{
		engine:    engine,
		cfg:       cfg,
		trueSym:   trueSym,
		falseSym:  falseSym,
		boolSort:  boolSort,
		memoBDD:   make(map[term.Term]*BDD),
		memoGuard: make(map[term.Term]term.Term),
		iteMemo:   make(map[iteKey]*BDD),
	}
}

// Table returns the term table this prover's engine reduces over, so
// collaborators (pkg/bdd/induct) can build instantiated formulas to
// feed back into Prove.
func (p *Prover) Table() *term.Table { return p.engine.Table() }

// Engine returns the rewrite engine this prover reduces formulas
// through, so pkg/bdd/induct can install an induction hypothesis as a
// temporary rule while proving one constructor case.
func (p *Prover) Engine() *rewrite.Engine { return p.engine }

// Prove implements spec.md §4.4's fixed-point BDD construction over
// phi, then (if configured) runs path elimination over the result.
func (p *Prover) Prove(ctx context.Context, phi term.Term) *Result {
	deadlineHit := false
	b := p.build(ctx, phi, &deadlineHit)

	if p.cfg.PathElimination && p.cfg.Oracle != nil && p.cfg.NotSymbol != nil && !deadlineHit {
		b = p.eliminate(ctx, b, nil)
	}

	return deriveResult(b, deadlineHit)
}

func deriveResult(b *BDD, deadlineHit bool) *Result {
	res := &Result{BDD: b, DeadlineExceeded: deadlineHit}
	if deadlineHit {
		res.Tautology, res.Contradiction = Undefined, Undefined
		return res
	}
	switch b.Kind {
	case KindTrue:
		res.Tautology, res.Contradiction = Yes, No
	case KindFalse:
		res.Tautology, res.Contradiction = No, Yes
	default:
		res.Tautology, res.Contradiction = Undefined, Undefined
	}
	return res
}

// build is the recursive construction of spec.md §4.4 steps 1-4: the
// recursion itself realises the "iterate to a fixed point" discipline
// (each recursive call fully resolves its sub-BDD before reduce_ite
// combines them, so there is no separate outer convergence loop to
// drive).
func (p *Prover) build(ctx context.Context, phi term.Term, deadlineHit *bool) *BDD {
	if ctx.Err() != nil {
		*deadlineHit = true
		return p.leafOrGuard(phi)
	}
	if cached, ok := p.memoBDD[phi]; ok {
		return cached
	}

	rewritten := p.engine.Rewrite(phi)
	if p.isTrue(rewritten) {
		p.memoBDD[phi] = trueBDD
		return trueBDD
	}
	if p.isFalse(rewritten) {
		p.memoBDD[phi] = falseBDD
		return falseBDD
	}

	g := p.smallestGuard(rewritten)
	if g == nil {
		result := &BDD{Kind: KindGuard, Guard: rewritten}
		p.memoBDD[phi] = result
		return result
	}

	tbl := p.engine.Table()
	thenPhi := replaceSubterm(tbl, rewritten, g, tbl.SymbolTermOf(p.trueSym))
	elsePhi := replaceSubterm(tbl, rewritten, g, tbl.SymbolTermOf(p.falseSym))

	thenBDD := p.build(ctx, thenPhi, deadlineHit)
	elseBDD := p.build(ctx, elsePhi, deadlineHit)

	result := p.reduceIte(g, thenBDD, elseBDD)
	p.memoBDD[phi] = result
	return result
}

func (p *Prover) leafOrGuard(phi term.Term) *BDD {
	if p.isTrue(phi) {
		return trueBDD
	}
	if p.isFalse(phi) {
		return falseBDD
	}
	return &BDD{Kind: KindGuard, Guard: phi}
}

func (p *Prover) reduceIte(g term.Term, then, els *BDD) *BDD {
	if bddEqual(then, els) {
		return then
	}
	if then.Kind == KindTrue && els.Kind == KindFalse {
		return &BDD{Kind: KindGuard, Guard: g}
	}
	key := iteKey{guard: g, then: then, els: els}
	if existing, ok := p.iteMemo[key]; ok {
		return existing
	}
	node := &BDD{Kind: KindIte, Guard: g, Then: then, Else: els}
	p.iteMemo[key] = node
	return node
}

func (p *Prover) isTrue(t term.Term) bool {
	st, ok := t.(*term.SymbolTerm)
	return ok && p.trueSym != nil && st.Sym == p.trueSym
}

func (p *Prover) isFalse(t term.Term) bool {
	st, ok := t.(*term.SymbolTerm)
	return ok && p.falseSym != nil && st.Sym == p.falseSym
}

// smallestGuard returns the lpo-smallest boolean-sorted subterm of t
// (t itself is always a candidate), memoised per t by pointer
// identity.
func (p *Prover) smallestGuard(t term.Term) term.Term {
	if cached, ok := p.memoGuard[t]; ok {
		return cached
	}
	candidates := p.collectGuards(t, make(map[term.Term]bool), nil)
	g := smallestGuard(candidates, p.cfg.Reverse, p.cfg.Full)
	p.memoGuard[t] = g
	return g
}

func (p *Prover) collectGuards(t term.Term, seen map[term.Term]bool, out []term.Term) []term.Term {
	if seen[t] {
		return out
	}
	seen[t] = true

	if p.sortOf(t) == p.boolSort && p.boolSort != nil && !p.isTrue(t) && !p.isFalse(t) {
		out = append(out, t)
	}
	if app, ok := t.(*term.App); ok {
		for _, a := range app.Args {
			out = p.collectGuards(a, seen, out)
		}
	}
	return out
}

func (p *Prover) sortOf(t term.Term) *term.Sort {
	switch n := t.(type) {
	case *term.VarTerm:
		return n.V.Sort
	case *term.SymbolTerm:
		return n.Sym.ResultSort()
	case *term.App:
		sym, ok := term.HeadSymbol(n.Head)
		if !ok {
			return nil
		}
		return sym.ResultSort()
	default:
		return nil
	}
}

// replaceSubterm rebuilds t with every occurrence of target (by
// pointer identity) replaced by replacement, re-interning through tbl
// so sharing is preserved (spec.md §4.3).
func replaceSubterm(tbl *term.Table, t, target, replacement term.Term) term.Term {
	if t == target {
		return replacement
	}
	app, ok := t.(*term.App)
	if !ok {
		return t
	}
	head := app.Head
	if head == target {
		head = replacement
	}
	args := make([]term.Term, len(app.Args))
	changed := head != app.Head
	for i, a := range app.Args {
		r := replaceSubterm(tbl, a, target, replacement)
		args[i] = r
		if r != a {
			changed = true
		}
	}
	if !changed {
		return t
	}
	return tbl.Apply(head, args...)
}

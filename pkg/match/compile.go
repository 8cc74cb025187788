// Package match compiles a set of rewrite rules sharing a head symbol
// into a decision tree (spec.md §4.2): Phase A flattens each rule's
// left-hand side into a linear trace, Phase B merges the traces into a
// single shared Tree by repeatedly peeling off the highest-priority
// pending operation, and Phase C schedules which call-site arguments
// must be reduced to normal form before the tree can be walked at all.
package match

import "github.com/gitrdm/rewrcore/pkg/term"

// StepKind tags one element of a Strategy.
type StepKind int

const (
	StepArgIndex StepKind = iota // normalize args[Index] to normal form before proceeding
	StepTree                     // walk Tree against the (partially normalized) argument vector
)

// Step is one element of a compiled Strategy.
type Step struct {
	Kind  StepKind
	Index int   // StepArgIndex
	Tree  *Tree // StepTree
}

// Strategy is the compiled dispatch plan for one function symbol: the
// ordered list of argument positions that must be reduced to normal
// form, followed by the single decision tree built from every rule
// headed by that symbol (spec.md §4.2, Phase C).
//
// Phase C's general form schedules argument reduction and decision-tree
// descent in an interleaved, dependency-count-ordered sequence so that
// shared structure across rules of differing inspected positions can be
// exploited as early as possible. This implementation takes the
// simpler, still-correct specialization of normalizing every position
// any rule inspects up front, then walking one combined tree — see
// DESIGN.md for the tradeoff.
type Strategy struct {
	Steps []Step

	// MinArity is the smallest rule arity contributing to this
	// strategy; call sites with fewer arguments never reach the tree.
	MinArity int
}

// Compile builds the Strategy for every rule in rules, which must all
// share the same LHS head symbol. Rules of differing arity are merged
// into one tree; at match time a call site shorter than a rule's arity
// silently never matches that rule (spec.md's resolved open question:
// both back-ends skip over-arity rules rather than erroring).
func Compile(rules []*term.Rule) *Strategy {
	if len(rules) == 0 {
		return &Strategy{}
	}

	traces := make([]ruleTrace, len(rules))
	inspected := make(map[int]bool)
	minArity := rules[0].Arity()
	for i, r := range rules {
		traces[i] = buildTrace(r, i)
		if r.Arity() < minArity {
			minArity = r.Arity()
		}
		markInspected(r.LHS.Args, inspected)
	}

	var positions []int
	for i := 0; i < maxArity(rules); i++ {
		if inspected[i] {
			positions = append(positions, i)
		}
	}

	steps := make([]Step, 0, len(positions)+1)
	for _, i := range positions {
		steps = append(steps, Step{Kind: StepArgIndex, Index: i})
	}
	steps = append(steps, Step{Kind: StepTree, Tree: mergeTraces(traces)})

	return &Strategy{Steps: steps, MinArity: minArity}
}

func maxArity(rules []*term.Rule) int {
	max := 0
	for _, r := range rules {
		if r.Arity() > max {
			max = r.Arity()
		}
	}
	return max
}

// markInspected records, for each top-level argument position of r's
// LHS, whether some rule's pattern there is anything other than a
// variable occurring nowhere else in the LHS — i.e. whether matching it
// actually depends on the argument's normal form (a repeated variable's
// bindings are compared by an Equal test).
func markInspected(args []term.Term, out map[int]bool) {
	for i, a := range args {
		if !isFreshVarPattern(a) {
			out[i] = true
			continue
		}
		v := a.(*term.VarTerm).V
		for j, b := range args {
			for _, w := range term.FreeVars(b) {
				if j != i && w == v {
					out[i] = true
				}
			}
		}
	}
}

func isFreshVarPattern(t term.Term) bool {
	_, ok := t.(*term.VarTerm)
	return ok
}

// mergeTraces implements Phase B: repeatedly pick the highest-priority
// pending operation among the active traces (Store > Equal > Head >
// Down > Next > Result), emit one Tree node for it, and recurse on the
// traces it produces. Traces not implicated by the chosen operation are
// carried through to every branch the operation produces (spec.md
// §4.2's general discipline: a variable-binding or a differently-keyed
// test never disqualifies an unrelated trace).
func mergeTraces(traces []ruleTrace) *Tree {
	if len(traces) == 0 {
		return &Tree{Kind: KindFail}
	}

	if storeVars, advanced, rest, ok := splitStore(traces); ok {
		return &Tree{Kind: KindStore, Vars: storeVars, Sub: mergeTraces(append(advanced, rest...))}
	}

	if v, yes, no, ok := splitEqual(traces); ok {
		return &Tree{Kind: KindMatchEq, Var: v, Yes: mergeTraces(yes), No: mergeTraces(no)}
	}

	if sym, yes, no, ok := splitHead(traces); ok {
		return &Tree{Kind: KindMatchHead, Sym: sym, Yes: mergeTraces(yes), No: mergeTraces(no)}
	}

	if advanced, rest, ok := splitFront(traces, itemDown); ok {
		return &Tree{Kind: KindDown, Sub: mergeTraces(append(advanced, rest...))}
	}

	if advanced, rest, ok := splitFront(traces, itemNext); ok {
		return &Tree{Kind: KindNext, Sub: mergeTraces(append(advanced, rest...))}
	}

	// Every remaining trace has an empty item list: it is result-ready.
	// The earliest-declared rule wins; if it is conditional, its failure
	// falls through to whatever the remaining (lower-priority) traces
	// produce.
	best := -1
	for i, tr := range traces {
		if len(tr.items) != 0 {
			continue
		}
		if best == -1 || tr.order < traces[best].order {
			best = i
		}
	}
	if best == -1 {
		return &Tree{Kind: KindFail}
	}
	winner := traces[best]
	result := &Tree{Kind: KindResult, RHS: winner.rule.RHS, Rule: winner.rule, Arity: winner.rule.Arity()}
	if winner.rule.Cond == nil {
		return result
	}
	rest := make([]ruleTrace, 0, len(traces)-1)
	for i, tr := range traces {
		if i != best {
			rest = append(rest, tr)
		}
	}
	return &Tree{Kind: KindCheck, Cond: winner.rule.Cond, Yes: result, No: mergeTraces(rest)}
}

// splitStore peels the Store item off every trace whose front item is
// Store, collecting their variables and advancing them past it.
// Traces whose front item is anything else (including an empty,
// result-ready trace) are returned untouched in rest.
func splitStore(traces []ruleTrace) (vars []*term.Var, advanced, rest []ruleTrace, ok bool) {
	for _, tr := range traces {
		if len(tr.items) > 0 && tr.items[0].kind == itemStore {
			ok = true
			vars = append(vars, tr.items[0].v)
			advanced = append(advanced, popFront(tr))
		} else {
			rest = append(rest, tr)
		}
	}
	return
}

// splitEqual picks the variable of the first (by declaration order)
// trace whose front item is Equal, then partitions: traces testing
// that same variable advance into yes (and only yes); every other
// trace — a different variable's Equal, a Head, or an already
// result-ready trace — is unaffected by this test and is carried,
// unadvanced, into both yes and no.
func splitEqual(traces []ruleTrace) (v *term.Var, yes, no []ruleTrace, ok bool) {
	var chosen *term.Var
	chosenOrder := -1
	for _, tr := range traces {
		if len(tr.items) > 0 && tr.items[0].kind == itemEqual {
			if chosen == nil || tr.order < chosenOrder {
				chosen = tr.items[0].v
				chosenOrder = tr.order
			}
		}
	}
	if chosen == nil {
		return nil, nil, nil, false
	}
	for _, tr := range traces {
		if len(tr.items) > 0 && tr.items[0].kind == itemEqual && tr.items[0].v == chosen {
			yes = append(yes, popFront(tr))
		} else {
			yes = append(yes, tr)
			no = append(no, tr)
		}
	}
	return chosen, yes, no, true
}

// splitHead picks the symbol of the first (by declaration order) trace
// whose front item is Head, then partitions: traces requiring that
// symbol advance into yes; a trace requiring a different head symbol
// is excluded from yes and carried, unadvanced, into no, where it stays
// a live candidate; a trace with no Head pending at all is unaffected
// and carried into both branches.
func splitHead(traces []ruleTrace) (sym *term.Symbol, yes, no []ruleTrace, ok bool) {
	var chosen *term.Symbol
	chosenOrder := -1
	for _, tr := range traces {
		if len(tr.items) > 0 && tr.items[0].kind == itemHead {
			if chosen == nil || tr.order < chosenOrder {
				chosen = tr.items[0].sym
				chosenOrder = tr.order
			}
		}
	}
	if chosen == nil {
		return nil, nil, nil, false
	}
	for _, tr := range traces {
		switch {
		case len(tr.items) > 0 && tr.items[0].kind == itemHead && tr.items[0].sym == chosen:
			yes = append(yes, popFront(tr))
		case len(tr.items) > 0 && tr.items[0].kind == itemHead:
			no = append(no, tr) // different head symbol: excluded from yes, stays a live candidate in no
		default:
			yes = append(yes, tr)
			no = append(no, tr)
		}
	}
	return chosen, yes, no, true
}

// splitFront advances every trace whose front item is kind (an
// unconditional, non-discriminating continuation — Down or Next),
// leaving every other trace untouched in rest.
func splitFront(traces []ruleTrace, kind itemKind) (advanced, rest []ruleTrace, ok bool) {
	for _, tr := range traces {
		if len(tr.items) > 0 && tr.items[0].kind == kind {
			ok = true
			advanced = append(advanced, popFront(tr))
		} else {
			rest = append(rest, tr)
		}
	}
	return
}

func popFront(tr ruleTrace) ruleTrace {
	return ruleTrace{rule: tr.rule, items: tr.items[1:], order: tr.order}
}

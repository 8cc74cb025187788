package term

import "github.com/gitrdm/rewrcore/internal/engineerr"

// Rule is a conditional rewrite rule (spec.md §3):
// LHS -> RHS if Cond, with FreeVars the rule's variables.
//
// LHS must be apply(head-symbol, p1, ..., pk); Cond may be nil, meaning
// "true" unconditionally.
type Rule struct {
	FreeVars []*Var
	LHS      *App
	Cond     Term // nil means unconditional
	RHS      Term
}

// HeadSymbol returns the LHS's leading function symbol.
func (r *Rule) HeadSymbol() *Symbol {
	sym, _ := HeadSymbol(r.LHS.Head)
	return sym
}

// Arity is the call-site arity of the rule's LHS.
func (r *Rule) Arity() int { return len(r.LHS.Args) }

// Validate checks the structural well-formedness rules of spec.md §4.1
// ("Failure semantics") and §7 (RuleInvalid): the LHS head must be a
// known function symbol (never a variable), and every free variable of
// Cond and RHS must occur in LHS.
func (r *Rule) Validate() error {
	if _, ok := r.LHS.Head.(*SymbolTerm); !ok {
		return engineerr.New(engineerr.RuleInvalid, "rule LHS head must be a function symbol, got %T", r.LHS.Head)
	}

	bound := make(map[int32]bool)
	collectVars(r.LHS, bound)

	if r.Cond != nil {
		free := make(map[int32]bool)
		collectVars(r.Cond, free)
		for id := range free {
			if !bound[id] {
				return engineerr.New(engineerr.RuleInvalid, "condition variable v%d does not occur in LHS", id)
			}
		}
	}

	free := make(map[int32]bool)
	collectVars(r.RHS, free)
	for id := range free {
		if !bound[id] {
			return engineerr.New(engineerr.RuleInvalid, "RHS variable v%d does not occur in LHS", id)
		}
	}

	return nil
}

func collectVars(t Term, out map[int32]bool) {
	switch n := t.(type) {
	case *VarTerm:
		out[n.V.ID] = true
	case *App:
		collectVars(n.Head, out)
		for _, a := range n.Args {
			collectVars(a, out)
		}
	}
}

// FreeVars returns the distinct variables occurring in t, in first-seen
// (left-to-right, head-before-args) order.
func FreeVars(t Term) []*Var {
	seen := make(map[int32]bool)
	var out []*Var
	var walk func(Term)
	walk = func(t Term) {
		switch n := t.(type) {
		case *VarTerm:
			if !seen[n.V.ID] {
				seen[n.V.ID] = true
				out = append(out, n.V)
			}
		case *App:
			walk(n.Head)
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// IsGround reports whether t contains no variables.
func IsGround(t Term) bool {
	switch n := t.(type) {
	case *VarTerm:
		_ = n
		return false
	case *App:
		if !IsGround(n.Head) {
			return false
		}
		for _, a := range n.Args {
			if !IsGround(a) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

package match

import "github.com/gitrdm/rewrcore/pkg/term"

// itemKind tags one step of a rule's flattened left-hand-side trace
// (spec.md §4.2, Phase A).
type itemKind int

const (
	itemStore itemKind = iota
	itemEqual
	itemHead
	itemDown
	itemNext
)

// item is one element of a rule's trace: a left-to-right, depth-first
// walk of the rule's argument patterns, with Head/Down bracketing a
// descent into a compound sub-pattern and Next separating siblings.
type item struct {
	kind itemKind
	v    *term.Var   // itemStore, itemEqual
	sym  *term.Symbol // itemHead
}

// ruleTrace pairs a rule with its flattened pattern trace and its
// position in the original, priority-determining rule order.
type ruleTrace struct {
	rule  *term.Rule
	items []item
	order int
}

// buildTrace walks r's argument patterns left to right (spec.md §4.2,
// Phase A): a variable's first occurrence emits Store, a repeated
// occurrence emits Equal, and a compound sub-application emits a
// Head/.../Down bracket around the trace of its own arguments.
func buildTrace(r *term.Rule, order int) ruleTrace {
	seen := make(map[int32]bool)
	var items []item
	emitArgs(r.LHS.Args, &items, seen)
	return ruleTrace{rule: r, items: items, order: order}
}

func emitArgs(args []term.Term, items *[]item, seen map[int32]bool) {
	for i, a := range args {
		emitPattern(a, items, seen)
		if i < len(args)-1 {
			*items = append(*items, item{kind: itemNext})
		}
	}
}

func emitPattern(p term.Term, items *[]item, seen map[int32]bool) {
	switch n := p.(type) {
	case *term.VarTerm:
		if seen[n.V.ID] {
			*items = append(*items, item{kind: itemEqual, v: n.V})
		} else {
			seen[n.V.ID] = true
			*items = append(*items, item{kind: itemStore, v: n.V})
		}
	case *term.SymbolTerm:
		*items = append(*items, item{kind: itemHead, sym: n.Sym})
		*items = append(*items, item{kind: itemDown})
	case *term.App:
		sym, _ := term.HeadSymbol(n.Head) // rule patterns always head on a known symbol
		*items = append(*items, item{kind: itemHead, sym: sym})
		emitArgs(n.Args, items, seen)
		*items = append(*items, item{kind: itemDown})
	}
}

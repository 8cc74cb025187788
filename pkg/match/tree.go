package match

import (
	"github.com/gitrdm/rewrcore/pkg/subst"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Kind tags the variant of a Tree node (spec.md §4.2). Tree is a single
// tagged-union struct rather than an interface hierarchy, so the
// compiler and the interpreter below can both switch on Kind without a
// type assertion per node.
type Kind int

const (
	KindStore Kind = iota
	KindMatchEq
	KindMatchHead
	KindNext
	KindDown
	KindCheck
	KindResult
	KindFail
)

// Tree is one node of a compiled decision tree for a single function
// symbol. Only the fields relevant to Kind are populated.
type Tree struct {
	Kind Kind

	Vars []*term.Var // KindStore: variables to bind to the current subterm
	Var  *term.Var   // KindMatchEq: variable whose binding to compare against
	Sym  *term.Symbol // KindMatchHead: symbol the current subterm's head must match

	Yes, No *Tree // KindMatchEq, KindMatchHead, KindCheck
	Sub     *Tree // KindStore, KindNext, KindDown

	Cond  term.Term  // KindCheck: guard, evaluated under the accumulated bindings
	RHS   term.Term  // KindResult: right-hand side, instantiated under the bindings
	Rule  *term.Rule // KindResult: originating rule, kept for diagnostics
	Arity int        // KindResult: the rule's own LHS arity, for trailing-argument splitting
}

// frame is the saved parent cursor restored by a KindDown node.
type frame struct {
	args []term.Term
	idx  int
}

// cursor is the interpreter's position while walking a Tree: the
// current application's argument vector and an index into it, with a
// stack of enclosing positions to return to on KindDown.
type cursor struct {
	args  []term.Term
	idx   int
	stack []frame
}

// normalizeHead reports the leading symbol and argument vector of t,
// treating a bare symbol as a zero-arity application so KindMatchHead
// can compare uniformly across both.
func normalizeHead(t term.Term) (*term.Symbol, []term.Term, bool) {
	switch n := t.(type) {
	case *term.SymbolTerm:
		return n.Sym, nil, true
	case *term.App:
		sym, ok := term.HeadSymbol(n.Head)
		if !ok {
			return nil, nil, false
		}
		return sym, n.Args, true
	default:
		return nil, nil, false
	}
}

// Eval reduces a term to normal form. It is the hook the rewrite engine
// supplies to Exec: Exec instantiates a Check guard under the current
// bindings with subst.Store.DeepWalk and passes the result to Eval; a
// Result's right-hand side is instantiated by DeepWalk alone.
type Eval func(t term.Term) term.Term

// Exec walks tree against args (the call site's normalized-as-needed
// argument vector), threading variable captures through bindings. It
// returns the instantiated right-hand side, any trailing arguments the
// matched rule did not consume (over-application, spec.md §3), and
// whether a rule matched at all.
//
// reduce is used to bring a Check node's guard to normal form; trueSym
// is the nullary symbol recognized as the boolean "true" result.
func Exec(tree *Tree, args []term.Term, bindings *subst.Store, tbl *term.Table, trueSym *term.Symbol, reduce Eval) (term.Term, []term.Term, bool) {
	c := &cursor{args: args}
	return exec(tree, c, bindings, tbl, trueSym, reduce)
}

func exec(node *Tree, c *cursor, bindings *subst.Store, tbl *term.Table, trueSym *term.Symbol, reduce Eval) (term.Term, []term.Term, bool) {
	switch node.Kind {
	case KindFail:
		return nil, nil, false

	case KindStore:
		if c.idx >= len(c.args) {
			return nil, nil, false
		}
		cur := c.args[c.idx]
		for _, v := range node.Vars {
			bindings.Set(v, cur)
		}
		return exec(node.Sub, c, bindings, tbl, trueSym, reduce)

	case KindMatchEq:
		if c.idx >= len(c.args) {
			return nil, nil, false
		}
		cur := c.args[c.idx]
		if bound := bindings.Lookup(node.Var); bound != nil && bound == cur {
			return exec(node.Yes, c, bindings, tbl, trueSym, reduce)
		}
		return exec(node.No, c, bindings, tbl, trueSym, reduce)

	case KindMatchHead:
		if c.idx >= len(c.args) {
			return nil, nil, false
		}
		cur := c.args[c.idx]
		sym, subArgs, ok := normalizeHead(cur)
		if ok && sym == node.Sym {
			c.stack = append(c.stack, frame{args: c.args, idx: c.idx})
			c.args = subArgs
			c.idx = 0
			return exec(node.Yes, c, bindings, tbl, trueSym, reduce)
		}
		return exec(node.No, c, bindings, tbl, trueSym, reduce)

	case KindDown:
		n := len(c.stack)
		f := c.stack[n-1]
		c.stack = c.stack[:n-1]
		c.args, c.idx = f.args, f.idx
		return exec(node.Sub, c, bindings, tbl, trueSym, reduce)

	case KindNext:
		c.idx++
		return exec(node.Sub, c, bindings, tbl, trueSym, reduce)

	case KindCheck:
		guard := bindings.DeepWalk(tbl, node.Cond)
		result := reduce(guard)
		if st, ok := result.(*term.SymbolTerm); ok && st.Sym == trueSym {
			return exec(node.Yes, c, bindings, tbl, trueSym, reduce)
		}
		return exec(node.No, c, bindings, tbl, trueSym, reduce)

	case KindResult:
		rhs := bindings.DeepWalk(tbl, node.RHS)
		var trailing []term.Term
		if len(c.args) > node.Arity {
			trailing = c.args[node.Arity:]
		}
		return rhs, trailing, true
	}
	return nil, nil, false
}

package term

import "fmt"

// Term is any node of the applicative term DAG: a bare symbol, a
// variable, or an n-ary application built by Table.Apply.
//
// Implementations are always produced and owned by a *Table, which
// hash-conses them; == on two Terms returned by the same Table is a
// correct structural-equality test, realizing spec.md §3's "Equality on
// terms is pointer equality" invariant without an explicit Clone step.
type Term interface {
	String() string
	IsVar() bool
}

// SymbolTerm is a nullary term: a bare function symbol occurring without
// arguments (e.g. the constant `0`, or a function symbol passed as a
// first-class value to a higher-order position).
type SymbolTerm struct {
	Sym *Symbol
}

func (s *SymbolTerm) String() string { return s.Sym.Name }
func (s *SymbolTerm) IsVar() bool    { return false }

// VarTerm wraps a Var as a Term.
type VarTerm struct {
	V *Var
}

func (v *VarTerm) String() string { return v.V.String() }
func (v *VarTerm) IsVar() bool    { return true }

// App is an n-ary application apply(Head, Args[0], ..., Args[len-1]),
// flattened so that Head is never itself an *App (Table.Apply splices a
// nested application's head and arguments into the enclosing one, per
// spec.md §4.3). len(Args) is the "arity at this site", independent of
// any function symbol's declared arity — partial and over-application
// are both ordinary *App values.
type App struct {
	Head Term
	Args []Term
}

func (a *App) IsVar() bool { return false }

func (a *App) String() string {
	s := a.Head.String() + "("
	for i, arg := range a.Args {
		if i > 0 {
			s += ", "
		}
		s += arg.String()
	}
	return s + ")"
}

// HeadSymbol returns the leading function symbol of t, if t is either a
// bare SymbolTerm or an App whose (possibly nested, already-flattened)
// Head is a SymbolTerm. Returns (nil, false) for a variable head.
func HeadSymbol(t Term) (*Symbol, bool) {
	switch n := t.(type) {
	case *SymbolTerm:
		return n.Sym, true
	case *App:
		return HeadSymbol(n.Head)
	default:
		return nil, false
	}
}

// Arity returns the call-site arity of t: 0 for a bare symbol or
// variable, len(Args) for an application.
func Arity(t Term) int {
	if a, ok := t.(*App); ok {
		return len(a.Args)
	}
	return 0
}

// nodeKey identifies a hash-consed node by the addresses of its already-
// interned head/args — since every child of a node built through Table is
// itself already unique-by-address, this is a correct (if unorthodox)
// structural key.
type nodeKey string

func keyOf(head Term, args []Term) nodeKey {
	b := make([]byte, 0, 12*(1+len(args)))
	b = appendAddr(b, head)
	for _, a := range args {
		b = appendAddr(b, a)
	}
	return nodeKey(b)
}

func appendAddr(b []byte, t Term) []byte {
	return append(b, []byte(fmt.Sprintf("%p|", t))...)
}


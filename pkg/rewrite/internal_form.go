package rewrite

import "github.com/gitrdm/rewrcore/pkg/term"

// RawKind distinguishes the three shapes an external, not-yet-interned
// term can take (spec.md §4.1 "external applicative form").
type RawKind int

const (
	RawSymbol RawKind = iota
	RawVar
	RawApp
)

// RawTerm is the external applicative form a collaborator builds before
// handing a term to the engine: names rather than interned *term.Symbol
// / *term.Var values, and an explicit Head/Args split for applications.
// ToInternal/FromInternal convert between this and term.Table's uniform
// apply(head, args...) representation, interning any symbol or variable
// name seen for the first time.
type RawTerm struct {
	Kind RawKind

	// Name is the symbol or variable name, used when Kind is RawSymbol
	// or RawVar.
	Name string
	// Sort is the name of Name's sort, looked up via the Table's
	// interned sorts. Empty means "unsorted" (nil Sort).
	Sort string

	// Head and Args are used when Kind is RawApp.
	Head *RawTerm
	Args []*RawTerm
}

// Sym builds a RawTerm naming a nullary symbol or first-class function
// value.
func Sym(name, sort string) *RawTerm { return &RawTerm{Kind: RawSymbol, Name: name, Sort: sort} }

// VarRaw builds a RawTerm naming a variable.
func VarRaw(name, sort string) *RawTerm { return &RawTerm{Kind: RawVar, Name: name, Sort: sort} }

// AppRaw builds a RawTerm application of head to args.
func AppRaw(head *RawTerm, args ...*RawTerm) *RawTerm {
	return &RawTerm{Kind: RawApp, Head: head, Args: args}
}

// ToInternal converts raw into the engine's interned, hash-consed
// representation (spec.md §4.1 "to_internal"), interning any symbol or
// variable name not already known to the underlying term.Table.
func (e *Engine) ToInternal(raw *RawTerm) (term.Term, error) {
	if raw == nil {
		return nil, TermStructureError("nil RawTerm")
	}
	switch raw.Kind {
	case RawSymbol:
		sym := e.tbl.Intern(raw.Name, e.tbl.LookupSort(raw.Sort))
		return e.tbl.SymbolTermOf(sym), nil

	case RawVar:
		v := e.tbl.InternVar(raw.Name, e.tbl.LookupSort(raw.Sort))
		return e.tbl.VarTermOf(v), nil

	case RawApp:
		head, err := e.ToInternal(raw.Head)
		if err != nil {
			return nil, err
		}
		args := make([]term.Term, len(raw.Args))
		for i, a := range raw.Args {
			arg, err := e.ToInternal(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return e.tbl.Apply(head, args...), nil

	default:
		return nil, TermStructureError("unrecognised RawTerm kind")
	}
}

// FromInternal converts an interned term.Term back to the external
// applicative form (spec.md §4.1 "from_internal").
func (e *Engine) FromInternal(t term.Term) *RawTerm {
	switch n := t.(type) {
	case *term.SymbolTerm:
		return Sym(n.Sym.Name, sortName(n.Sym.Sort))

	case *term.VarTerm:
		return VarRaw(n.V.Name, sortName(n.V.Sort))

	case *term.App:
		args := make([]*RawTerm, len(n.Args))
		for i, a := range n.Args {
			args[i] = e.FromInternal(a)
		}
		return AppRaw(e.FromInternal(n.Head), args...)

	default:
		return nil
	}
}

func sortName(s *term.Sort) string {
	if s == nil {
		return ""
	}
	return s.Name
}

package term

import (
	"fmt"
	"sync"
)

// Symbol is a function symbol: a name, a sort, and a dense, stable,
// non-negative Index assigned on first observation (spec.md §3). Indices
// are never reclaimed for the life of a Table.
type Symbol struct {
	Name  string
	Sort  *Sort
	Index int32
}

func (s *Symbol) String() string { return s.Name }

// Arity returns the symbol's declared arity: the number of real argument
// sorts of its (possibly function) sort. This is the symbol's *declared*
// arity, distinct from the arity-at-a-call-site that an application node
// carries (spec.md §3 draws this distinction explicitly: partial and
// over-application are represented uniformly).
//
// By convention, a non-nullary symbol's Sort.ArgSorts holds the argument
// sorts followed by the result sort as its final element (so
// NewFunctionSort("<=?", nat, nat, boolSort) declares two Nat arguments
// returning Bool); a nullary symbol's Sort is the bare result sort
// itself, with no ArgSorts at all. Arity accounts for the trailing
// result entry; ResultSort reads it back out.
func (s *Symbol) Arity() int {
	if s.Sort == nil || len(s.Sort.ArgSorts) == 0 {
		return 0
	}
	return len(s.Sort.ArgSorts) - 1
}

// ResultSort returns the sort of values s produces: the trailing entry
// of a function sort's ArgSorts, or the bare sort itself for a nullary
// symbol.
func (s *Symbol) ResultSort() *Sort {
	if s.Sort == nil {
		return nil
	}
	if len(s.Sort.ArgSorts) == 0 {
		return s.Sort
	}
	return s.Sort.ArgSorts[len(s.Sort.ArgSorts)-1]
}

// ArgSort returns the sort of s's i'th real argument (0-indexed).
func (s *Symbol) ArgSort(i int) *Sort {
	if s.Sort == nil || i < 0 || i >= s.Arity() {
		return nil
	}
	return s.Sort.ArgSorts[i]
}

// Var is a logic/rewrite variable: a name, a sort, and a dense ID used to
// key substitution stores (spec.md §3). IDs are never reused within a
// Table's lifetime.
type Var struct {
	Name string
	Sort *Sort
	ID   int32
}

func (v *Var) String() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("_v%d", v.ID)
}

// Table is the process-wide symbol and variable interning authority
// (spec.md §9: "no static singletons" — every caller threads an explicit
// *Table rather than reaching for package-level state). It is the one
// object that must be guarded at its mutation boundaries if shared across
// concurrently-running generators (spec.md §5).
type Table struct {
	mu sync.RWMutex

	symbolsByName map[string]*Symbol
	symbols       []*Symbol

	varsByName map[string]*Var
	vars       []*Var

	sorts map[string]*Sort

	nodes        map[nodeKey]*App      // hash-consing table for application nodes
	symbolLeaves map[int32]*SymbolTerm // hash-consing table for bare-symbol leaves
	varLeaves    map[int32]*VarTerm    // hash-consing table for variable leaves
}

// NewTable creates an empty, process-wide symbol/variable/term table.
func NewTable() *Table {
	return &Table{
		symbolsByName: make(map[string]*Symbol),
		varsByName:    make(map[string]*Var),
		sorts:         make(map[string]*Sort),
		nodes:         make(map[nodeKey]*App),
	}
}

// InternSort registers (or returns the existing) sort with this name.
func (t *Table) InternSort(s *Sort) *Sort {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.sorts[s.Name]; ok {
		return existing
	}
	t.sorts[s.Name] = s
	return s
}

// LookupSort returns the sort interned under name, or nil.
func (t *Table) LookupSort(name string) *Sort {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sorts[name]
}

// Intern assigns a dense Index to sym on first observation of its Name
// and returns the canonical *Symbol for that name (subsequent Sort values
// passed for an already-known name are ignored — the first interning
// wins, matching the "assigned on first encounter" rule of spec.md §3).
func (t *Table) Intern(name string, sort *Sort) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.symbolsByName[name]; ok {
		return existing
	}
	sym := &Symbol{Name: name, Sort: sort, Index: int32(len(t.symbols))}
	t.symbolsByName[name] = sym
	t.symbols = append(t.symbols, sym)
	return sym
}

// Symbol returns the interned symbol for name, if any.
func (t *Table) Symbol(name string) (*Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.symbolsByName[name]
	return sym, ok
}

// SymbolByIndex returns the symbol at the given dense index.
func (t *Table) SymbolByIndex(idx int32) *Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx < 0 || int(idx) >= len(t.symbols) {
		return nil
	}
	return t.symbols[idx]
}

// NumSymbols returns the number of interned symbols, i.e. the exclusive
// upper bound on symbol indices. Used to size per-symbol strategy caches.
func (t *Table) NumSymbols() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}

// FreshVar allocates a brand-new variable with a dense, never-reused ID.
func (t *Table) FreshVar(name string, sort *Sort) *Var {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := &Var{Name: name, Sort: sort, ID: int32(len(t.vars))}
	t.vars = append(t.vars, v)
	if name != "" {
		t.varsByName[name] = v
	}
	return v
}

// InternVar returns the named variable, creating it (with a fresh ID) if
// this is the first time name has been seen.
func (t *Table) InternVar(name string, sort *Sort) *Var {
	t.mu.Lock()
	if existing, ok := t.varsByName[name]; ok {
		t.mu.Unlock()
		return existing
	}
	t.mu.Unlock()
	return t.FreshVar(name, sort)
}

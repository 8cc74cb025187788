package term

// SymbolTermOf returns the canonical (hash-consed) SymbolTerm for sym.
func (t *Table) SymbolTermOf(sym *Symbol) *SymbolTerm {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.symbolLeaves == nil {
		t.symbolLeaves = make(map[int32]*SymbolTerm)
	}
	if existing, ok := t.symbolLeaves[sym.Index]; ok {
		return existing
	}
	leaf := &SymbolTerm{Sym: sym}
	t.symbolLeaves[sym.Index] = leaf
	return leaf
}

// VarTermOf returns the canonical (hash-consed) VarTerm for v.
func (t *Table) VarTermOf(v *Var) *VarTerm {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.varLeaves == nil {
		t.varLeaves = make(map[int32]*VarTerm)
	}
	if existing, ok := t.varLeaves[v.ID]; ok {
		return existing
	}
	leaf := &VarTerm{V: v}
	t.varLeaves[v.ID] = leaf
	return leaf
}

// Apply builds apply(head, args...), hash-consing the result so that two
// structurally equal applications built through this Table share one
// address. If len(args) == 0, head is returned unchanged (there is no
// zero-argument *App — spec.md §3 models a bare symbol/variable as its
// own leaf node, not a degenerate application).
//
// If head is itself an *App, it is spliced into the new application
// (apply(apply(g, b...), c...) == apply(g, b..., c...)), which is how a
// variable bound to a partially-applied term behaves once substituted
// into head position (spec.md §4.3).
func (t *Table) Apply(head Term, args ...Term) Term {
	if len(args) == 0 {
		return head
	}
	if inner, ok := head.(*App); ok {
		flat := make([]Term, 0, len(inner.Args)+len(args))
		flat = append(flat, inner.Args...)
		flat = append(flat, args...)
		return t.Apply(inner.Head, flat...)
	}

	key := keyOf(head, args)
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.nodes[key]; ok {
		return existing
	}
	node := &App{Head: head, Args: append([]Term(nil), args...)}
	t.nodes[key] = node
	return node
}

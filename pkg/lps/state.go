package lps

import (
	"fmt"
	"strings"

	"github.com/gitrdm/rewrcore/pkg/term"
)

// State is a process's parameter valuation. Two representations are
// available (spec.md §4.5); the choice is fixed at Generator
// construction time via New's options.
type State interface {
	// Values returns the parameter valuation in declaration order.
	Values() []term.Term
}

// VectorState is a flat vector of parameter values — the default
// representation.
type VectorState struct {
	Vals []term.Term
}

func (v VectorState) Values() []term.Term { return v.Vals }

// TreeState is a balanced binary tree keyed positionally (spec.md
// §4.5). Every state, successors included, is built as a new tree by
// buildTree: tree nodes are not shared between a state and its
// successors, only the hash-consed parameter terms at the leaves are.
// Leaf holds a value at a leaf node; Left/Right are nil at a leaf.
type TreeState struct {
	Leaf        term.Term
	Left, Right *TreeState
}

func (t *TreeState) Values() []term.Term {
	if t == nil {
		return nil
	}
	if t.Leaf != nil || (t.Left == nil && t.Right == nil) {
		return []term.Term{t.Leaf}
	}
	var out []term.Term
	out = append(out, t.Left.Values()...)
	out = append(out, t.Right.Values()...)
	return out
}

// buildTree constructs a balanced TreeState over vals.
func buildTree(vals []term.Term) *TreeState {
	if len(vals) == 0 {
		return &TreeState{}
	}
	if len(vals) == 1 {
		return &TreeState{Leaf: vals[0]}
	}
	mid := len(vals) / 2
	return &TreeState{Left: buildTree(vals[:mid]), Right: buildTree(vals[mid:])}
}

// stateKey is a cheap structural key for visited-set membership.
// Terms are hash-consed (pkg/term), so their pointer addresses are a
// valid structural identity; joining them is enough to distinguish
// any two distinct valuations.
func stateKey(s State) string {
	vals := s.Values()
	parts := make([]string, len(vals))
	for i, t := range vals {
		parts[i] = fmt.Sprintf("%p", t)
	}
	return strings.Join(parts, "|")
}

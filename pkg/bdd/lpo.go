package bdd

import "github.com/gitrdm/rewrcore/pkg/term"

// lpoLess implements spec.md §4.4's "lexicographic path ordering on
// guards": a concrete, total, deterministic order used to pick the
// smallest guard at each BDD construction step. Two flags bias it:
// reverse flips the polarity of the size and precedence comparisons,
// full compares argument vectors by their (order-independent) total
// size rather than lexicographically — spec.md leaves both knobs abstract ("can be
// parameterised ... to bias comparison of equation and argument
// positions"); this is the concrete instantiation (see DESIGN.md).
//
// The base order: smaller term size wins first, then lower symbol
// index (the order symbols were first interned in), then the argument
// vectors are compared. reverse swaps the size/precedence comparisons'
// polarity; full compares the summed sizes of the argument vectors
// (then their lengths) instead of position-by-position lexicographic
// comparison.
func lpoLess(a, b term.Term, reverse, full bool) bool {
	sa, sb := termSize(a), termSize(b)
	if sa != sb {
		if reverse {
			return sa > sb
		}
		return sa < sb
	}

	ha, aok := term.HeadSymbol(a)
	hb, bok := term.HeadSymbol(b)
	switch {
	case !aok && !bok:
		return false // both variable-headed, incomparable -> not less
	case !aok:
		return !reverse
	case !bok:
		return reverse
	}
	if ha.Index != hb.Index {
		if reverse {
			return ha.Index > hb.Index
		}
		return ha.Index < hb.Index
	}

	aa, ba := argsOf(a), argsOf(b)
	if full {
		return multisetLess(aa, ba, reverse, full)
	}
	for i := 0; i < len(aa) && i < len(ba); i++ {
		if !termEqual(aa[i], ba[i]) {
			return lpoLess(aa[i], ba[i], reverse, full)
		}
	}
	return len(aa) < len(ba)
}

func argsOf(t term.Term) []term.Term {
	if app, ok := t.(*term.App); ok {
		return app.Args
	}
	return nil
}

func termEqual(a, b term.Term) bool { return a == b }

func termSize(t term.Term) int {
	app, ok := t.(*term.App)
	if !ok {
		return 1
	}
	size := 1
	for _, a := range app.Args {
		size += termSize(a)
	}
	return size
}

func multisetLess(a, b []term.Term, reverse, full bool) bool {
	sizesA, sizesB := sizesOf(a), sizesOf(b)
	sumA, sumB := sum(sizesA), sum(sizesB)
	if sumA != sumB {
		if reverse {
			return sumA > sumB
		}
		return sumA < sumB
	}
	return len(a) < len(b)
}

func sizesOf(ts []term.Term) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = termSize(t)
	}
	return out
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

// smallestGuard returns the lpo-smallest candidate guard among
// candidates, or nil if candidates is empty.
func smallestGuard(candidates []term.Term, reverse, full bool) term.Term {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if lpoLess(c, best, reverse, full) {
			best = c
		}
	}
	return best
}

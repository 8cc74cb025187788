// Package lps implements the CORE's linear-process state-space
// generator (spec.md §4.5): successor computation over a linear
// process's summands, confluent-tau reduction, and breadth/depth/
// random exploration with detection, tracing, and bit-hash support.
package lps

import "github.com/gitrdm/rewrcore/pkg/term"

// Summand is one line of a linear process: an existentially
// quantified step "(eᵢ: Eᵢ, cᵢ(d̄,eᵢ), aᵢ(…), gᵢ(d̄,eᵢ))" (spec.md
// §4.5). LocalVars are the eᵢ, Condition is cᵢ, ActionArgs build the
// multi-action's argument terms, NextState builds one term per
// process parameter (gᵢ).
type Summand struct {
	Name        string
	LocalVars   []*term.Var
	Condition   term.Term
	ActionArgs  []term.Term
	NextState   []term.Term
	Prioritised bool
	Tau         bool
}

// Process is a linear process specification: its parameters d̄, their
// initial valuation, and its summand list (spec.md §4.5's "configured
// with a linear process P").
type Process struct {
	Params   []*term.Var
	Initial  []term.Term
	Summands []*Summand
}

// Package smt provides an optional SMT-backed satisfiability oracle
// for the EQ-BDD prover's path elimination (spec.md §4.4 "Path
// elimination"): a CVC-process implementation of bdd.Oracle. The
// minimal-conflict narrowing of a guard path lives in pkg/bdd itself
// (it is bdd.Prover-internal bookkeeping, not part of the oracle
// contract); this package only has to answer CheckSat.
package smt

import "github.com/gitrdm/rewrcore/pkg/bdd"

// Sat and its constants mirror pkg/bdd's, so callers that only import
// pkg/bdd/smt never need to import pkg/bdd just to name a result.
type Sat = bdd.Sat

const (
	Satisfiable   = bdd.Satisfiable
	Unsatisfiable = bdd.Unsatisfiable
	Unknown       = bdd.Unknown
)

// Oracle is the interface CVC (and any other solver-backed) oracle
// satisfies; it is exactly bdd.Oracle, aliased here so cvc.go's doc
// comments can speak in terms of this package.
type Oracle = bdd.Oracle

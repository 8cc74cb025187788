// Package engineerr defines the CORE's error taxonomy (spec §7): a small,
// closed set of error kinds that every package in rewrcore raises through,
// so that a collaborator (CLI, GUI, test harness) can recover the kind with
// a single errors.As/errors.Cause call regardless of which package raised
// it.
package engineerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the error taxonomy of spec.md §7.
type Kind int

const (
	// RuleInvalid: variable on LHS head, or a free variable of the
	// condition/RHS not bound by the LHS. Raised eagerly at rule
	// insertion; the rule set is left unchanged.
	RuleInvalid Kind = iota
	// TermStructure: application of a non-function, non-variable head.
	TermStructure
	// UnknownSort: a sort name was never interned.
	UnknownSort
	// NonEnumerableSort: enumeration requested over a function sort or a
	// sort with no constructors.
	NonEnumerableSort
	// CompileFailure: the compiled back-end could not build the
	// generated module; callers fall back to the interpreter.
	CompileFailure
	// SolverUnavailable: an SMT solver was requested but could not be
	// reached; callers degrade to "no path elimination".
	SolverUnavailable
	// TimeLimit: a deadline expired before a required verdict.
	TimeLimit
	// ResourceExhaustion: a state-space queue or bit-hash table
	// overflowed; callers switch to a capped mode.
	ResourceExhaustion
)

func (k Kind) String() string {
	switch k {
	case RuleInvalid:
		return "rule-invalid"
	case TermStructure:
		return "term-structure"
	case UnknownSort:
		return "unknown-sort"
	case NonEnumerableSort:
		return "non-enumerable-sort"
	case CompileFailure:
		return "compile-failure"
	case SolverUnavailable:
		return "solver-unavailable"
	case TimeLimit:
		return "time-limit"
	case ResourceExhaustion:
		return "resource-exhaustion"
	default:
		return "unknown"
	}
}

// Error is the concrete error value carried under a github.com/pkg/errors
// wrapper. Use errors.Cause(err).(*Error) (or errors.As) to recover it.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// New constructs a Kind-tagged error, wrapped so that it carries a stack
// trace per the github.com/pkg/errors convention used throughout rewrcore.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// Wrap attaches a Kind to an existing error while preserving its message
// as additional detail, mirroring errors.Wrap's "context: cause" shape.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return errors.WithStack(&Error{Kind: kind, Detail: fmt.Sprintf("%s: %v", msg, err)})
}

// As recovers the *Error beneath any wrapping, in the github.com/pkg/errors
// or standard errors.Wrap style.
func As(err error) (*Error, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		if u, ok := err.(interface{ Unwrap() error }); ok {
			err = u.Unwrap()
			continue
		}
		break
	}
	return nil, false
}

// KindOf returns the Kind of err, or a false ok if err does not carry one.
func KindOf(err error) (Kind, bool) {
	e, ok := As(err)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}

// ExitCode maps an error to the CLI-level exit codes of spec.md §6. This
// module never calls os.Exit itself; the mapping is exposed for a
// collaborator CLI to use.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case RuleInvalid, TermStructure:
		return 1
	case UnknownSort, NonEnumerableSort:
		return 2
	case TimeLimit:
		return 3
	default:
		return 1
	}
}

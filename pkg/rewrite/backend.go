package rewrite

import "github.com/gitrdm/rewrcore/internal/engineerr"

// Backend selects which rewrite back-end and prover pairing is active
// (spec.md §6 "Rewrite strategy selector"). The four values mirror the
// original rewriter's own selection strings — renamed here from
// `inner`/`innerc`/`jitty`/`jittyc` to their spelled-out equivalents
// per SPEC_FULL.md's expansion of the original rewriter's interface.
type Backend int

const (
	Interpreted Backend = iota
	Compiled
	InterpretedProver
	CompiledProver
)

func (b Backend) String() string {
	switch b {
	case Interpreted:
		return "interpreted"
	case Compiled:
		return "compiled"
	case InterpretedProver:
		return "interpreted+prover"
	case CompiledProver:
		return "compiled+prover"
	default:
		return "unknown"
	}
}

// ParseStrategy parses one of the four rewrite-strategy selector
// strings of spec.md §6, rejecting anything else as a malformed-input
// error (exit code 1 at the CLI level, via engineerr.ExitCode).
func ParseStrategy(s string) (Backend, error) {
	switch s {
	case "interpreted":
		return Interpreted, nil
	case "compiled":
		return Compiled, nil
	case "interpreted+prover":
		return InterpretedProver, nil
	case "compiled+prover":
		return CompiledProver, nil
	default:
		return 0, engineerr.New(engineerr.TermStructure, "unrecognised rewrite strategy selector %q", s)
	}
}

// UsesProver reports whether b pairs the rewrite back-end with the
// EQ-BDD prover (spec.md §6).
func (b Backend) UsesProver() bool { return b == InterpretedProver || b == CompiledProver }

// UsesCompiledBackend reports whether b requests the compiled
// back-end over the interpreter.
func (b Backend) UsesCompiledBackend() bool { return b == Compiled || b == CompiledProver }

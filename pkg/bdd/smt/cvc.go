package smt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// CVC is an Oracle backed by an external cvc5 (or cvc4) process,
// shelled out to via os/exec the same way pkg/rewrite/codegen's
// BuildCompiler shells out to a build script (spec.md §6 "External
// processes").
//
// Guard terms are opaque to this encoding except through notSym: each
// distinct guard (by pointer identity) becomes its own uninterpreted
// SMT-LIB Bool constant, and notSym(g) is encoded as the literal
// negation of g's constant rather than a second, independent atom.
// This is enough to catch the propositional contradictions path
// elimination cares about most (a guard and its own negation both on
// the path) without attempting to model the rewrite system's actual
// equational theory; anything this encoding cannot decide is reported
// Unknown; callers (pkg/bdd) treat Unknown the same as a satisfiable
// path and skip elimination rather than risk pruning a reachable
// branch.
type CVC struct {
	Binary string // "cvc5" or "cvc4"; defaults to "cvc5" if empty
	NotSym *term.Symbol
}

// NewCVC constructs a CVC oracle. binary may be "" to use the default.
func NewCVC(binary string, notSym *term.Symbol) *CVC {
	if binary == "" {
		binary = "cvc5"
	}
	return &CVC{Binary: binary, NotSym: notSym}
}

// CheckSat asks whether path's conjunction is satisfiable.
func (c *CVC) CheckSat(ctx context.Context, path []term.Term) (Sat, error) {
	script, err := c.encode(path)
	if err != nil {
		return Unknown, err
	}

	cmd := exec.CommandContext(ctx, c.Binary, "--lang", "smt2")
	cmd.Stdin = strings.NewReader(script)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return Unknown, engineerr.New(engineerr.SolverUnavailable, "running %s: %v", c.Binary, err)
	}

	switch firstLine(out.String()) {
	case "sat":
		return Satisfiable, nil
	case "unsat":
		return Unsatisfiable, nil
	default:
		return Unknown, nil
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// encode renders path's conjunction as an SMT-LIB2 script.
func (c *CVC) encode(path []term.Term) (string, error) {
	names := make(map[term.Term]string)
	var decls, asserts strings.Builder
	next := 0

	var nameOf func(t term.Term, negate bool) string
	nameOf = func(t term.Term, negate bool) string {
		if app, ok := t.(*term.App); ok && c.NotSym != nil {
			if head, ok := term.HeadSymbol(app.Head); ok && head == c.NotSym && len(app.Args) == 1 {
				return nameOf(app.Args[0], !negate)
			}
		}
		name, ok := names[t]
		if !ok {
			name = fmt.Sprintf("g%d", next)
			next++
			names[t] = name
			fmt.Fprintf(&decls, "(declare-const %s Bool)\n", name)
		}
		if negate {
			return fmt.Sprintf("(not %s)", name)
		}
		return name
	}

	for _, g := range path {
		fmt.Fprintf(&asserts, "(assert %s)\n", nameOf(g, false))
	}

	return decls.String() + asserts.String() + "(check-sat)\n", nil
}

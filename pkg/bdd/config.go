package bdd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProverOptions is the YAML-decodable form of spec.md §6's prover
// configuration document: integer time limit in seconds (0 = none),
// boolean path-elimination, enumeration solver selector, boolean
// apply-induction. This is distinct from Config, which carries live
// function values (Oracle) a text document cannot express; callers
// decode a ProverOptions and use it to build a Config plus a deadline
// context.
type ProverOptions struct {
	TimeLimitSeconds int    `yaml:"time_limit_seconds"`
	PathElimination  bool   `yaml:"path_elimination"`
	Solver           string `yaml:"solver"`
	ApplyInduction   bool   `yaml:"apply_induction"`
}

// ParseProverOptions decodes a prover configuration document (spec.md
// §6) from YAML text.
func ParseProverOptions(data []byte) (ProverOptions, error) {
	var o ProverOptions
	if err := yaml.Unmarshal(data, &o); err != nil {
		return ProverOptions{}, errors.Wrap(err, "decoding prover options")
	}
	return o, nil
}

// Deadline derives a context from parent honoring TimeLimitSeconds, per
// spec.md §4.4's "deadlines are checked at the top of every recursive
// step". A zero time limit means none: parent is returned unmodified.
func (o ProverOptions) Deadline(parent context.Context) (context.Context, context.CancelFunc) {
	if o.TimeLimitSeconds <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, time.Duration(o.TimeLimitSeconds)*time.Second)
}

// UnknownSolverError reports a solver name ProverOptions doesn't
// recognise; the only solver spec.md §6 names is "cvc".
type UnknownSolverError string

func (e UnknownSolverError) Error() string {
	return "bdd: unrecognised solver " + string(e)
}

// Validate rejects any solver name other than "cvc" (or empty, meaning
// path-elimination is simply unused).
func (o ProverOptions) Validate() error {
	if o.Solver != "" && o.Solver != "cvc" {
		return UnknownSolverError(o.Solver)
	}
	return nil
}

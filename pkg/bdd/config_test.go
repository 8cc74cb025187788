package bdd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseProverOptions(t *testing.T) {
	doc := []byte(`
time_limit_seconds: 5
path_elimination: true
solver: cvc
apply_induction: true
`)
	o, err := ParseProverOptions(doc)
	require.NoError(t, err)
	require.Equal(t, ProverOptions{
		TimeLimitSeconds: 5,
		PathElimination:  true,
		Solver:           "cvc",
		ApplyInduction:   true,
	}, o)
	require.NoError(t, o.Validate())
}

func TestParseProverOptionsRejectsUnknownSolver(t *testing.T) {
	o, err := ParseProverOptions([]byte(`solver: z3`))
	require.NoError(t, err)
	require.Error(t, o.Validate())
}

func TestProverOptionsDeadline(t *testing.T) {
	zero := ProverOptions{}
	ctx, cancel := zero.Deadline(t.Context())
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	require.False(t, hasDeadline, "time_limit_seconds: 0 means no deadline")

	bounded := ProverOptions{TimeLimitSeconds: 1}
	ctx2, cancel2 := bounded.Deadline(t.Context())
	defer cancel2()
	deadline, hasDeadline2 := ctx2.Deadline()
	require.True(t, hasDeadline2)
	require.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

package rewrite

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/rewrite/codegen"
	"github.com/gitrdm/rewrcore/pkg/term"
	"github.com/stretchr/testify/require"
)

// fakeCompiledModule stands in for a loaded Go plugin. A real plugin's
// Reduce is generated source that calls codegen.Exec under the symbol
// index codegen.Emit baked into it (codegen.go's moduleTemplate); this
// does exactly the same dispatch without needing an OS compiler or
// plugin.Open, so it exercises Emit, Register, and Exec together end
// to end.
type fakeCompiledModule struct{ symIndex int32 }

func (m fakeCompiledModule) Initialise(tbl *term.Table) error { return nil }
func (m fakeCompiledModule) Reduce(tbl *term.Table, args []term.Term) (term.Term, bool) {
	return codegen.Exec(m.symIndex, tbl, args)
}
func (m fakeCompiledModule) Cleanup() { codegen.Unregister(m.symIndex) }

// fakeCompiler recovers the symbol index codegen.Emit embedded as the
// `const symbolIndex int32 = N` literal, rather than shelling out to
// an external build script the way BuildCompiler does.
type fakeCompiler struct{}

func (fakeCompiler) Build(ctx context.Context, src []byte) (codegen.NativeModule, error) {
	const marker = "const symbolIndex int32 = "
	i := strings.Index(string(src), marker)
	if i < 0 {
		return nil, engineerr.New(engineerr.CompileFailure, "generated source missing symbolIndex literal")
	}
	rest := string(src)[i+len(marker):]
	end := strings.IndexByte(rest, '\n')
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.CompileFailure, err, "parsing symbolIndex literal")
	}
	return fakeCompiledModule{symIndex: int32(n)}, nil
}

// failingCompiler always reports a build failure, so tests can assert
// the degrade-to-interpreter path and LastCompileError together.
type failingCompiler struct{}

func (failingCompiler) Build(ctx context.Context, src []byte) (codegen.NativeModule, error) {
	return nil, engineerr.New(engineerr.CompileFailure, "simulated compile-script failure")
}

// TestCompiledBackendReducesViaGeneratedModule runs the spec's literal
// addition scenario through the Compiled back-end: strategyFor builds
// the symbol's Strategy, tryCompile emits and "builds" a module, and
// dispatch's compiled branch must genuinely return (term, true) from
// that module's Reduce — not silently fall through to the
// interpreter, which is what a permanently-stubbed Reduce would do.
func TestCompiledBackendReducesViaGeneratedModule(t *testing.T) {
	e, tbl, zero, sSym, plus, _, _, _, _ := peanoEngine(t)
	e.compiler = fakeCompiler{}
	e.SetBackend(Compiled)

	two := natLit(tbl, sSym, zero, 2)
	call := tbl.Apply(tbl.SymbolTermOf(plus), two, two)

	result := e.Rewrite(call)
	require.Same(t, natLit(tbl, sSym, zero, 4), result)

	_, ok := e.compiledModule(plus)
	require.True(t, ok, "plus's strategy should have built and cached a compiled module")
	require.NoError(t, e.LastCompileError())
}

// TestCompiledBackendFallsBackOnBuildFailure confirms a build failure
// still degrades to the interpreter (same answer, no compiled module
// cached) and that the discarded wrapped error from a failed Build is
// now actually surfaced via LastCompileError.
func TestCompiledBackendFallsBackOnBuildFailure(t *testing.T) {
	e, tbl, zero, sSym, plus, _, _, _, _ := peanoEngine(t)
	e.compiler = failingCompiler{}
	e.SetBackend(Compiled)

	two := natLit(tbl, sSym, zero, 2)
	call := tbl.Apply(tbl.SymbolTermOf(plus), two, two)

	result := e.Rewrite(call)
	require.Same(t, natLit(tbl, sSym, zero, 4), result)

	_, ok := e.compiledModule(plus)
	require.False(t, ok)

	err := e.LastCompileError()
	require.Error(t, err)
	kind, ok := engineerr.As(err)
	require.True(t, ok)
	require.Equal(t, engineerr.CompileFailure, kind.Kind)
}

// TestAddRuleInvalidatesCompiledModule confirms invalidateCompiled
// drops both the cached module and its registry entry, so a module
// built against a now-stale rule set is never reachable again.
func TestAddRuleInvalidatesCompiledModule(t *testing.T) {
	e, tbl, zero, sSym, plus, _, _, _, _ := peanoEngine(t)
	e.compiler = fakeCompiler{}
	e.SetBackend(Compiled)

	two := natLit(tbl, sSym, zero, 2)
	e.Rewrite(tbl.Apply(tbl.SymbolTermOf(plus), two, two))
	_, ok := e.compiledModule(plus)
	require.True(t, ok)

	y := tbl.FreshVar("y", tbl.LookupSort("Nat"))
	require.NoError(t, e.AddRule(&term.Rule{
		FreeVars: []*term.Var{y},
		LHS:      tbl.Apply(tbl.SymbolTermOf(plus), tbl.SymbolTermOf(zero), tbl.VarTermOf(y)).(*term.App),
		RHS:      tbl.VarTermOf(y),
	}))

	_, ok = e.compiledModule(plus)
	require.False(t, ok, "AddRule must invalidate the now-stale compiled module")
}

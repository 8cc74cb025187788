package rewrite

import (
	"context"
	"time"

	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/match"
	"github.com/gitrdm/rewrcore/pkg/rewrite/codegen"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// NativeModule is the three-entry-point ABI a compiled back-end module
// exposes (spec.md §4.1 "Compiled back-end": "initialise, reduce,
// cleanup"). It shares the term representation with the interpreter —
// Reduce receives and returns *term.Table-owned term.Term values
// directly, rather than crossing any serialization boundary. Defined
// in pkg/rewrite/codegen to avoid an import cycle with its
// BuildCompiler implementation; re-exported here as the name Engine's
// own API speaks in terms of.
type NativeModule = codegen.NativeModule

// Compiler turns generated Go source for one symbol's strategy into a
// loadable NativeModule. The concrete, OS-process-based implementation
// lives in pkg/rewrite/codegen (BuildCompiler) — this seam exists so
// Engine never assumes how (or whether) "go build" is invoked.
type Compiler = codegen.Compiler

// tryCompile generates and builds a native module for sym's strategy.
// A build failure degrades to the interpreter with a logged warning
// (spec.md §7 "Compile failures fall back to the interpreter with a
// warning") rather than propagating — the caller continues to use the
// already-cached interpreted Strategy.
func (e *Engine) tryCompile(sym *term.Symbol, strat *match.Strategy) {
	src, err := codegen.Emit(sym, strat)
	if err != nil {
		e.log.WithField("symbol", sym.Name).WithError(err).Warn("compile-failure: could not generate source, using interpreter")
		return
	}

	// The generated module's Reduce only carries sym.Index as a
	// literal; it finds the actual strategy, ambient substitution,
	// boolean-true symbol, and reduce callback through this registry
	// entry, installed before the module can be built and loaded.
	codegen.Register(sym.Index, strat, e.subst, e.trueSym, e.rewrite)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mod, err := e.compiler.Build(ctx, src)
	if err != nil {
		codegen.Unregister(sym.Index)
		wrapped := engineerr.Wrap(engineerr.CompileFailure, err, "building compiled module for %s", sym.Name)
		e.mu.Lock()
		e.lastCompileErr = wrapped
		e.mu.Unlock()
		e.log.WithField("symbol", sym.Name).WithError(wrapped).Warn("compile-failure: build failed, using interpreter")
		return
	}
	if err := mod.Initialise(e.tbl); err != nil {
		codegen.Unregister(sym.Index)
		e.log.WithField("symbol", sym.Name).WithError(err).Warn("compile-failure: initialise failed, using interpreter")
		return
	}

	e.mu.Lock()
	e.compiled[sym.Index] = mod
	e.mu.Unlock()
}

// LastCompileError returns the most recent compiled-back-end build
// failure (spec.md §7's CompileFailure kind), or nil if none has
// occurred. A caller that wants to surface why a symbol fell back to
// the interpreter — rather than just seeing the logged warning —
// reads this after a rule change triggers recompilation.
func (e *Engine) LastCompileError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastCompileErr
}

// invalidateCompiled discards sym's cached compiled module and its
// codegen registry entry together, so a stale module (or a stale
// registry entry a module's Reduce would still find) can never be
// reached once its rule set has changed. Callers must hold e.mu.
func (e *Engine) invalidateCompiled(symIndex int32) {
	delete(e.compiled, symIndex)
	codegen.Unregister(symIndex)
}

// compiledModule returns sym's compiled module, if the active Backend
// requests the compiled back-end and one has been successfully built.
func (e *Engine) compiledModule(sym *term.Symbol) (NativeModule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.backend != Compiled && e.backend != CompiledProver {
		return nil, false
	}
	mod, ok := e.compiled[sym.Index]
	return mod, ok
}

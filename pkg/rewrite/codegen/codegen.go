// Package codegen emits the compiled back-end's generated Go source
// (spec.md §4.1 "Compiled back-end"): the emitted module's Reduce
// dispatches symIndex's strategy through this package's own registry
// (registry.go) — a Go plugin loaded via plugin.Open shares package
// instances with the host process, so the decision tree built by
// pkg/match, the ambient substitution, and the reduce callback all
// reach the generated code with no serialization boundary, rather
// than needing to be unrolled into per-symbol conditionals at Emit
// time. The emitted source is handed to a Compiler
// (pkg/rewrite.Compiler) rather than built by this package itself.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/gitrdm/rewrcore/pkg/match"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// NativeModule is the three-entry-point ABI a compiled back-end module
// exposes (spec.md §4.1 "Compiled back-end": "initialise, reduce,
// cleanup"). Defined here rather than in pkg/rewrite so that this
// package's own Compiler implementation (BuildCompiler, in
// buildcompiler.go) can return it directly without an import cycle;
// pkg/rewrite re-exports it as rewrite.NativeModule via a type alias.
type NativeModule interface {
	// Initialise prepares the module against tbl. The generated
	// modules this package emits have nothing left to do here — their
	// strategy was already installed in this package's registry by
	// Register, ahead of the build — but the entry point stays part of
	// the ABI for a hand-written or differently-generated module that
	// does need tbl up front.
	Initialise(tbl *term.Table) error
	// Reduce attempts this module's compiled strategy against args; ok
	// is false if no compiled rule matched, mirroring match.Exec.
	Reduce(tbl *term.Table, args []term.Term) (term.Term, bool)
	// Cleanup releases any resources held by the module.
	Cleanup()
}

// Compiler turns generated Go source for one symbol's strategy into a
// loadable NativeModule. BuildCompiler is the concrete, OS-process-
// based implementation; pkg/rewrite depends only on this interface.
type Compiler interface {
	Build(ctx context.Context, src []byte) (NativeModule, error)
}

var moduleTemplate = template.Must(template.New("module").Parse(`// Code generated by rewrcore/pkg/rewrite/codegen for symbol {{.Symbol}}; DO NOT EDIT.
package main

import (
	"github.com/gitrdm/rewrcore/pkg/rewrite/codegen"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Strategy, straight-line form:
{{range .Steps}}//   {{.}}
{{end}}
const symbolIndex int32 = {{.SymbolIndex}}

func Initialise(tbl *term.Table) error { return nil }

// Reduce dispatches symbol {{.Symbol}} by walking the decision tree
// pkg/match built for it (spec.md §4.1's "match-tree nodes become
// conditionals"), via the host process's codegen registry rather than
// a copy unrolled into this file: plugin.Open shares package instances
// with the process that opened it, so the tree, the ambient
// substitution, and the reduce callback all cross with no
// serialization boundary.
func Reduce(tbl *term.Table, args []term.Term) (term.Term, bool) {
	return codegen.Exec(symbolIndex, tbl, args)
}

func Cleanup() { codegen.Unregister(symbolIndex) }
`))

type moduleData struct {
	Symbol      string
	SymbolIndex int32
	Steps       []string
}

// Emit renders strat's strategy for sym as generated Go source
// (spec.md §4.1). It never touches a filesystem or invokes a
// toolchain — that is the injected Compiler's job. The emitted
// Reduce body dispatches through this package's registry (see
// registry.go); pkg/rewrite.Engine.tryCompile calls Register with
// strat (and the engine's trueSym/ambient-substitution/reduce
// callback) under the same index before handing src to the Compiler,
// so the registry entry is in place before the loaded module's Reduce
// can ever be called.
func Emit(sym *term.Symbol, strat *match.Strategy) ([]byte, error) {
	data := moduleData{Symbol: sym.Name, SymbolIndex: sym.Index}
	for _, s := range strat.Steps {
		switch s.Kind {
		case match.StepArgIndex:
			data.Steps = append(data.Steps, fmt.Sprintf("normalize arg[%d]", s.Index))
		case match.StepTree:
			data.Steps = append(data.Steps, describeTree(s.Tree, 0))
		}
	}

	var buf bytes.Buffer
	if err := moduleTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describeTree(t *match.Tree, depth int) string {
	if t == nil {
		return "fail"
	}
	switch t.Kind {
	case match.KindStore:
		return "store -> " + describeTree(t.Sub, depth+1)
	case match.KindMatchEq:
		return "eq? -> " + describeTree(t.Yes, depth+1) + " | " + describeTree(t.No, depth+1)
	case match.KindMatchHead:
		return fmt.Sprintf("head=%s? -> (%s) | (%s)", t.Sym.Name, describeTree(t.Yes, depth+1), describeTree(t.No, depth+1))
	case match.KindNext:
		return "next -> " + describeTree(t.Sub, depth+1)
	case match.KindDown:
		return "down -> " + describeTree(t.Sub, depth+1)
	case match.KindCheck:
		return "check -> " + describeTree(t.Yes, depth+1) + " | " + describeTree(t.No, depth+1)
	case match.KindResult:
		return "result(" + t.RHS.String() + ")"
	default:
		return "fail"
	}
}

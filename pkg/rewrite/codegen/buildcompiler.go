package codegen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"plugin"

	"github.com/pkg/errors"
	"github.com/gitrdm/rewrcore/internal/engineerr"
	"github.com/gitrdm/rewrcore/pkg/term"
)

// Environment variables read by BuildCompiler (spec.md §6 "Environment
// variables (exposed to collaborators)").
const (
	EnvCompileScript = "REWRCORE_COMPILE_SCRIPT"
	EnvCompileDir    = "REWRCORE_COMPILE_DIR"
)

// BuildCompiler is the OS-process implementation of
// pkg/rewrite.Compiler: it writes generated source to a file under
// EnvCompileDir, invokes the script named by EnvCompileScript to turn
// it into a Go plugin, and loads that plugin's Initialise/Reduce/
// Cleanup symbols as a NativeModule. It and pkg/bdd/smt's CVC oracle
// are the two places in this module that start an external process.
type BuildCompiler struct {
	ScriptPath string
	Dir        string
}

// NewBuildCompilerFromEnv reads EnvCompileScript/EnvCompileDir; either
// being unset is reported as a CompileFailure error.
func NewBuildCompilerFromEnv() (*BuildCompiler, error) {
	script := os.Getenv(EnvCompileScript)
	dir := os.Getenv(EnvCompileDir)
	if script == "" || dir == "" {
		return nil, engineerr.New(engineerr.CompileFailure, "%s and %s must both be set to use the compiled back-end", EnvCompileScript, EnvCompileDir)
	}
	return &BuildCompiler{ScriptPath: script, Dir: dir}, nil
}

// Build writes src to a fresh file under c.Dir, runs c.ScriptPath
// against it (expected to produce a Go plugin, "<src>.so"), and opens
// that plugin as a NativeModule.
func (c *BuildCompiler) Build(ctx context.Context, src []byte) (NativeModule, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating compile directory")
	}

	f, err := os.CreateTemp(c.Dir, fmt.Sprintf("module_%d_*.go", os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(err, "creating generated source file")
	}
	srcPath := f.Name()
	_, err = f.Write(src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, errors.Wrap(err, "writing generated source")
	}

	soPath := srcPath + ".so"
	cmd := exec.CommandContext(ctx, c.ScriptPath, srcPath, soPath)
	cmd.Dir = c.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.Wrapf(err, "compile script failed: %s", string(out))
	}

	p, err := plugin.Open(soPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening compiled plugin")
	}
	return newPluginModule(p)
}

type pluginModule struct {
	initialise func(*term.Table) error
	reduce     func(*term.Table, []term.Term) (term.Term, bool)
	cleanup    func()
}

func newPluginModule(p *plugin.Plugin) (*pluginModule, error) {
	initSym, err := p.Lookup("Initialise")
	if err != nil {
		return nil, errors.Wrap(err, "looking up Initialise")
	}
	reduceSym, err := p.Lookup("Reduce")
	if err != nil {
		return nil, errors.Wrap(err, "looking up Reduce")
	}
	cleanupSym, err := p.Lookup("Cleanup")
	if err != nil {
		return nil, errors.Wrap(err, "looking up Cleanup")
	}

	init, ok := initSym.(func(*term.Table) error)
	if !ok {
		return nil, errors.New("Initialise has unexpected signature")
	}
	reduce, ok := reduceSym.(func(*term.Table, []term.Term) (term.Term, bool))
	if !ok {
		return nil, errors.New("Reduce has unexpected signature")
	}
	cleanup, ok := cleanupSym.(func())
	if !ok {
		return nil, errors.New("Cleanup has unexpected signature")
	}

	return &pluginModule{initialise: init, reduce: reduce, cleanup: cleanup}, nil
}

func (m *pluginModule) Initialise(tbl *term.Table) error { return m.initialise(tbl) }
func (m *pluginModule) Reduce(tbl *term.Table, args []term.Term) (term.Term, bool) {
	return m.reduce(tbl, args)
}
func (m *pluginModule) Cleanup() { m.cleanup() }

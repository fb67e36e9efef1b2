// Package shell assembles every collaborator (the expansion engine,
// parser, script parser/interpreter, pipeline executor, job manager,
// builtin registry, history store, hook bus, and config) into the one
// stateful object a REPL or `-c` invocation drives: the shell itself.
// It is the concrete implementation every narrow collaborator
// interface (parser.ShellView, scriptexec.Shell, exec.EnvProvider/
// BuiltinRunner/FunctionRunner, builtin.Shell) is written against.
package shell

import (
	"fmt"
	"sort"
	"sync"

	"github.com/phillarmonic/ushell/internal/command"
	"github.com/phillarmonic/ushell/internal/config"
	"github.com/phillarmonic/ushell/internal/exec"
	"github.com/phillarmonic/ushell/internal/expand"
	"github.com/phillarmonic/ushell/internal/historystore"
	"github.com/phillarmonic/ushell/internal/hook"
	"github.com/phillarmonic/ushell/internal/job"
	"github.com/phillarmonic/ushell/internal/parser"
	"github.com/phillarmonic/ushell/internal/script"
	"github.com/phillarmonic/ushell/internal/scriptexec"
	"github.com/phillarmonic/ushell/internal/shellenv"
	"github.com/phillarmonic/ushell/internal/ushellio"
)

// Shell is the top-level, stateful implementation of every
// collaborator interface the core packages depend on.
type Shell struct {
	mu      sync.RWMutex
	cwd     string
	env     *shellenv.Environment
	aliases map[string]string
	options map[string]bool

	positional [][]string

	cfg      *config.Config
	cfgPath  string
	reloadMu sync.Mutex

	expander *expand.Engine
	parser   *parser.Parser
	script   *script.Parser
	interp   *scriptexec.Interpreter
	funcs    *scriptexec.FunctionTable
	jobs     *job.Manager
	history  *historystore.Store
	hooks    *hook.Bus

	executor *exec.Executor
	streams  exec.Streams
	report   *ushellio.Reporter
}

// New assembles a shell from cfg (as loaded at startup from cfgPath,
// "" if none) and the stdio triple the REPL or `-c` invocation runs
// against.
func New(cfg *config.Config, cfgPath string, cwd string, streams exec.Streams) *Shell {
	sh := &Shell{
		cwd:     cwd,
		env:     shellenv.FromOS(),
		aliases: map[string]string{},
		options: map[string]bool{},
		cfg:     cfg,
		cfgPath: cfgPath,
		funcs:   scriptexec.NewFunctionTable(),
		jobs:    job.New(),
		history: historystore.New(1000, cfg.HistoryFile),
		hooks:   hook.New(),
		streams: streams,
		report:  ushellio.New(streams.Out, streams.Err),
	}

	sizes := expand.CacheSizes{
		ArgSplit:   cfg.CacheSizes.ArgSplit,
		Executable: cfg.CacheSizes.ExecResolve,
		Arithmetic: cfg.CacheSizes.Arithmetic,
	}
	sh.expander = expand.New(sizes)
	sh.parser = parser.New(sh.expander)
	sh.script = script.New()
	sh.interp = scriptexec.New(sh.parser, sh.expander)
	sh.executor = exec.New(sh.jobs, nil, sh, sh)
	_ = sh.history.Load()
	return sh
}

// AttachBuiltins wires a builtin registry built against this shell
// back into the executor. Done as a second step because the registry
// (internal/builtin) itself needs a live Shell to be constructed from,
// and the executor needs a live registry: the two are mutually
// recursive, broken here rather than by importing builtin from exec.
func (sh *Shell) AttachBuiltins(b exec.BuiltinRunner) {
	sh.executor.Builtins = b
}

// ---- parser.ShellView ----

func (sh *Shell) CWD() string {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.cwd
}

func (sh *Shell) Env() map[string]string {
	return sh.env.AsMap()
}

func (sh *Shell) Nounset() bool {
	return sh.Option("nounset")
}

// XTrace reports whether `set -x` is active, consulted by the executor
// before running each stage.
func (sh *Shell) XTrace() bool {
	return sh.Option("xtrace")
}

func (sh *Shell) SubstitutionMode() expand.Mode {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if sh.cfg.SubstitutionMode == "full" {
		return expand.ModeFull
	}
	return expand.ModeSandbox
}

func (sh *Shell) SandboxAllow() map[string]bool {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if len(sh.cfg.SandboxAllow) == 0 {
		return expand.DefaultSandboxAllow()
	}
	allow := make(map[string]bool, len(sh.cfg.SandboxAllow))
	for _, name := range sh.cfg.SandboxAllow {
		allow[name] = true
	}
	return allow
}

func (sh *Shell) Positional() []string {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if len(sh.positional) == 0 {
		return nil
	}
	return sh.positional[len(sh.positional)-1]
}

func (sh *Shell) LookupAlias(name string) (string, bool) {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.aliases[name]
	return v, ok
}

// ---- scriptexec.Shell ----

func (sh *Shell) Execute(pc command.ParsedCommand) (int, error) {
	before := hook.Payload{Command: pc.String()}
	sh.reportHookErrors(hook.CommandBefore, sh.hooks.FireBestEffort(hook.CommandBefore, before))

	exit, err := sh.executor.Run(pc, sh.streams)

	after := hook.Payload{Command: pc.String(), ExitCode: exit, Err: err}
	sh.reportHookErrors(hook.CommandAfter, sh.hooks.FireBestEffort(hook.CommandAfter, after))
	if err != nil {
		sh.reportHookErrors(hook.CommandError, sh.hooks.FireBestEffort(hook.CommandError, after))
	}
	return exit, err
}

// reportHookErrors surfaces a best-effort hook's failures as warnings,
// the same "hook failed, command proceeds anyway" contract the
// teacher's lifecycle hook runner uses.
func (sh *Shell) reportHookErrors(evt hook.Event, errs []error) {
	for _, e := range errs {
		sh.report.Warn("%s hook failed: %s", evt, e)
	}
}

func (sh *Shell) Functions() *scriptexec.FunctionTable { return sh.funcs }

func (sh *Shell) ExitOnErrorFlag() bool { return sh.Option("errexit") }

func (sh *Shell) PushPositional(args []string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.positional = append(sh.positional, args)
}

func (sh *Shell) PopPositional() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if len(sh.positional) > 0 {
		sh.positional = sh.positional[:len(sh.positional)-1]
	}
}

// ---- exec.EnvProvider, exec.FunctionRunner ----

func (sh *Shell) OSEnviron() []string { return sh.env.OSEnviron() }

func (sh *Shell) SetVar(name, value string) { sh.env.Set(name, value) }

func (sh *Shell) HasFunction(name string) bool {
	_, ok := sh.funcs.Lookup(name)
	return ok
}

func (sh *Shell) RunFunction(name string, args []string) (int, error) {
	return sh.interp.CallFunction(name, args, sh)
}

// ---- builtin.Shell ----

func (sh *Shell) Chdir(path string) error {
	sh.mu.Lock()
	old := sh.cwd
	sh.cwd = path
	sh.mu.Unlock()
	errs := sh.hooks.FireBestEffort(hook.DirectoryChange, hook.Payload{OldDir: old, NewDir: path})
	sh.reportHookErrors(hook.DirectoryChange, errs)
	return nil
}

func (sh *Shell) ExportVar(name string)       { sh.env.Export(name) }
func (sh *Shell) UnexportVar(name string)     { sh.env.Unexport(name) }
func (sh *Shell) UnsetVar(name string)        { sh.env.Unset(name) }
func (sh *Shell) IsExported(name string) bool { return sh.env.IsExported(name) }

func (sh *Shell) Aliases() map[string]string {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	out := make(map[string]string, len(sh.aliases))
	for k, v := range sh.aliases {
		out[k] = v
	}
	return out
}

func (sh *Shell) SetAlias(name, value string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.aliases[name] = value
}

func (sh *Shell) RemoveAlias(name string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.aliases, name)
}

func (sh *Shell) Jobs() *job.Manager           { return sh.jobs }
func (sh *Shell) History() *historystore.Store { return sh.history }

func (sh *Shell) SetOption(opt string, val bool) {
	sh.mu.Lock()
	sh.options[opt] = val
	sh.mu.Unlock()
	if opt == "allexport" {
		sh.env.SetAllExport(val)
	}
}

func (sh *Shell) Option(opt string) bool {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.options[opt]
}

// Reload re-runs the same config load path used at startup and swaps
// the pointer atomically. On error the previous config is kept and the
// error is returned for the `reload` builtin to report; nothing else
// may mutate sh.cfg.
func (sh *Shell) Reload() error {
	sh.reloadMu.Lock()
	defer sh.reloadMu.Unlock()

	cfg, err := config.Load(sh.cfgPath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	sh.mu.Lock()
	sh.cfg = cfg
	sh.mu.Unlock()
	sh.expander.ResetCaches()
	return nil
}

func (sh *Shell) RunLine(line string) (int, error) {
	stmts, err := sh.script.Parse(line)
	if err != nil {
		return 2, err
	}
	return sh.interp.Run(stmts, sh)
}

func (sh *Shell) RunScript(src string) (int, error) {
	stmts, err := sh.script.Parse(src)
	if err != nil {
		return 2, err
	}
	return sh.interp.Run(stmts, sh)
}

// AliasNames lists every defined alias name, sorted, for completion
// and `alias` with no arguments.
func (sh *Shell) AliasNames() []string {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	names := make([]string, 0, len(sh.aliases))
	for name := range sh.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the shell's current configuration snapshot.
func (sh *Shell) Config() *config.Config {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.cfg
}

// Package builtin implements the shell's builtin commands (B): cd,
// pwd, echo, exit, history, alias/unalias, export/unset, set, env,
// type, which, help, clear, source/., jobs/fg/bg/kill, time, reload.
package builtin

import (
	"github.com/phillarmonic/ushell/internal/exec"
	"github.com/phillarmonic/ushell/internal/historystore"
	"github.com/phillarmonic/ushell/internal/job"
	"github.com/phillarmonic/ushell/internal/scriptexec"
)

// Shell is the slice of shell state a builtin is allowed to touch.
// The concrete shell (assembled at the top level) implements this; a
// builtin never reaches past it into parser/executor internals.
type Shell interface {
	CWD() string
	Chdir(path string) error

	Env() map[string]string
	ExportVar(name string)
	UnexportVar(name string)
	UnsetVar(name string)
	IsExported(name string) bool

	Aliases() map[string]string
	SetAlias(name, value string)
	RemoveAlias(name string)

	Functions() *scriptexec.FunctionTable
	Jobs() *job.Manager
	History() *historystore.Store

	SetOption(opt string, val bool)
	Option(opt string) bool
	Reload() error

	// RunLine parses and executes a single input line against this
	// shell's live state (used by `time` to wrap a command).
	RunLine(line string) (int, error)
	// RunScript parses and executes full script source against this
	// shell's live state (used by `source`/`.` for a file).
	RunScript(src string) (int, error)
}

// Func is one builtin's implementation.
type Func func(args []string, streams exec.Streams, cwd string, sh Shell) (int, error)

// Registry is the builtin command table, bound to the shell it
// operates on. It implements exec.BuiltinRunner.
type Registry struct {
	sh    Shell
	funcs map[string]Func
}

// New creates a registry with every builtin registered, bound to sh.
func New(sh Shell) *Registry {
	r := &Registry{sh: sh, funcs: map[string]Func{}}
	r.registerAll()
	return r
}

func (r *Registry) register(name string, fn Func) {
	r.funcs[name] = fn
}

// HasBuiltin reports whether name is a registered builtin.
func (r *Registry) HasBuiltin(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// RunBuiltin runs a registered builtin, satisfying exec.BuiltinRunner.
func (r *Registry) RunBuiltin(name string, args []string, streams exec.Streams, cwd string) (int, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return 127, nil
	}
	return fn(args, streams, cwd, r.sh)
}

// Names lists every registered builtin, for `help`/completion.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	return out
}

func (r *Registry) registerAll() {
	r.register("cd", builtinCd)
	r.register("pwd", builtinPwd)
	r.register("echo", builtinEcho)
	r.register("exit", builtinExit)
	r.register("env", builtinEnv)
	r.register("export", builtinExport)
	r.register("unset", builtinUnset)
	r.register("set", builtinSet)
	r.register("alias", builtinAlias)
	r.register("unalias", builtinUnalias)
	r.register("type", builtinType)
	r.register("which", builtinWhich)
	r.register("help", builtinHelp)
	r.register("clear", builtinClear)
	r.register("history", builtinHistory)
	r.register("jobs", builtinJobs)
	r.register("fg", builtinFg)
	r.register("bg", builtinBg)
	r.register("kill", builtinKill)
	r.register("time", builtinTime)
	r.register("reload", builtinReload)
	r.register("source", builtinSource)
	r.register(".", builtinSource)
}

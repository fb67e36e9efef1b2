package exec

import (
	"context"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"sync"
	"unicode"

	"al.essio.dev/pkg/shellescape"

	"github.com/phillarmonic/ushell/internal/command"
	"github.com/phillarmonic/ushell/internal/job"
	"github.com/phillarmonic/ushell/internal/ushellerr"
)

// BuiltinRunner is the narrow slice of the builtin registry (B) the
// executor needs: whether a name is a builtin, and how to run one.
type BuiltinRunner interface {
	HasBuiltin(name string) bool
	RunBuiltin(name string, args []string, streams Streams, cwd string) (int, error)
}

// FunctionRunner is the narrow slice of the script executor (SE) the
// executor needs to give shell functions precedence over PATH lookup.
type FunctionRunner interface {
	HasFunction(name string) bool
	RunFunction(name string, args []string) (int, error)
}

// EnvProvider supplies the working directory and exported-variable
// view every spawned child process needs, and lets a bare assignment
// statement mutate the shell's live variable table.
type EnvProvider interface {
	CWD() string
	OSEnviron() []string
	SetVar(name, value string)
	XTrace() bool
}

// Executor runs parsed command chains: the X component.
type Executor struct {
	Jobs      *job.Manager
	Builtins  BuiltinRunner
	Functions FunctionRunner
	Env       EnvProvider
}

// New creates a pipeline executor.
func New(jobs *job.Manager, builtins BuiltinRunner, functions FunctionRunner, env EnvProvider) *Executor {
	return &Executor{Jobs: jobs, Builtins: builtins, Functions: functions, Env: env}
}

// Run executes a full parsed chain against streams, applying the
// `;`/`&&`/`||` short-circuit rules left to right across segments.
func (e *Executor) Run(pc command.ParsedCommand, streams Streams) (int, error) {
	last := 0
	for i, seg := range pc.Segments {
		if i > 0 {
			switch pc.Segments[i-1].Op {
			case "&&":
				if last != 0 {
					continue
				}
			case "||":
				if last == 0 {
					continue
				}
			}
		}
		exit, err := e.runSegment(seg, streams)
		if err != nil {
			return exit, err
		}
		last = exit
	}
	return last, nil
}

func (e *Executor) runSegment(seg command.Segment, streams Streams) (int, error) {
	if len(seg.Pipeline) == 0 {
		return 0, nil
	}

	background := seg.Pipeline[len(seg.Pipeline)-1].Command.Background
	if !background {
		return e.runPipeline(seg.Pipeline, streams)
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := e.Jobs.Add(describe(seg), 0, 0, cancel)
	go func() {
		exit, _ := e.runPipelineCtx(ctx, seg.Pipeline, streams)
		e.Jobs.Complete(j.ID, exit)
	}()
	return 0, nil
}

// describe renders a job-table label for seg from the argv it actually
// resolved to run, not the raw typed text (which may still carry
// unexpanded variables) — quoted with shellescape so `jobs -l` shows a
// re-runnable, unambiguous command line per stage.
func describe(seg command.Segment) string {
	var parts []string
	for _, st := range seg.Pipeline {
		if st.Command.Name == "" {
			continue
		}
		argv := append([]string{st.Command.Name}, st.Command.Args...)
		parts = append(parts, shellescape.QuoteCommand(argv))
	}
	return strings.Join(parts, " | ")
}

func (e *Executor) runPipeline(stages []command.Stage, streams Streams) (int, error) {
	return e.runPipelineCtx(context.Background(), stages, streams)
}

// runPipelineCtx wires os.Pipe between consecutive stages and runs
// every stage concurrently, returning the last stage's exit code (the
// pipeline's overall status, per POSIX default — no pipefail option).
func (e *Executor) runPipelineCtx(ctx context.Context, stages []command.Stage, streams Streams) (int, error) {
	n := len(stages)
	if n == 0 {
		return 0, nil
	}
	if n == 1 {
		return e.runStage(ctx, stages[0].Command, streams)
	}

	readers := make([]*os.File, n)
	writers := make([]*os.File, n)
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return 1, err
		}
		readers[i+1] = r
		writers[i] = w
	}

	type result struct {
		exit int
		err  error
	}
	results := make([]result, n)

	var wg sync.WaitGroup
	for i, st := range stages {
		wg.Add(1)
		go func(i int, cmd command.Command) {
			defer wg.Done()
			s := streams
			if i > 0 {
				s.In = readers[i]
			}
			if i < n-1 {
				s.Out = writers[i]
			}
			exit, err := e.runStage(ctx, cmd, s)
			results[i] = result{exit, err}
			if i > 0 {
				_ = readers[i].Close()
			}
			if i < n-1 {
				_ = writers[i].Close()
			}
		}(i, st.Command)
	}
	wg.Wait()

	last := results[n-1]
	return last.exit, last.err
}

// runStage resolves one pipeline stage in order: function, builtin,
// then an external process on PATH.
func (e *Executor) runStage(ctx context.Context, cmd command.Command, streams Streams) (int, error) {
	s, cleanup, err := applyRedirections(streams, e.Env.CWD(), cmd.Redirections)
	if err != nil {
		return 1, err
	}
	defer cleanup()

	if cmd.Name == "" {
		return 0, nil
	}

	if e.Env.XTrace() {
		traceLine(cmd, s.Err)
	}

	// A bare `NAME=value` with no arguments is a variable assignment,
	// not a command invocation: `i=$((i+1))` inside a loop body must
	// mutate the live environment rather than fail command resolution.
	if len(cmd.Args) == 0 {
		if name, value, ok := strings.Cut(cmd.Name, "="); ok && isAssignmentName(name) {
			e.Env.SetVar(name, value)
			return 0, nil
		}
	}

	if e.Functions != nil && e.Functions.HasFunction(cmd.Name) {
		return e.Functions.RunFunction(cmd.Name, cmd.Args)
	}
	if e.Builtins != nil && e.Builtins.HasBuiltin(cmd.Name) {
		return e.Builtins.RunBuiltin(cmd.Name, cmd.Args, s, e.Env.CWD())
	}
	return e.runExternal(ctx, cmd, s)
}

// traceLine writes the `set -x` pre-execution trace line to w: the
// resolved command name and args, quoted the same way describe's
// job-table label is, so a traced assignment (`+ i=1`) and a traced
// invocation (`+ echo hi`) both render as re-runnable shell syntax.
func traceLine(cmd command.Command, w io.Writer) {
	if w == nil {
		return
	}
	argv := append([]string{cmd.Name}, cmd.Args...)
	fmt.Fprintln(w, "+", shellescape.QuoteCommand(argv))
}

// isAssignmentName reports whether name is a valid shell identifier:
// a letter or underscore followed by letters, digits, or underscores.
func isAssignmentName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func (e *Executor) runExternal(ctx context.Context, cmd command.Command, s Streams) (int, error) {
	path, err := Resolve(cmd.Name, pathFromEnviron(e.Env.OSEnviron()))
	if err != nil {
		return 127, ushellerr.NewResolutionError(cmd.Name)
	}

	c := osexec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = e.Env.CWD()
	c.Env = e.Env.OSEnviron()
	c.Stdin = s.In
	c.Stdout = s.Out
	c.Stderr = s.Err

	if err := c.Run(); err != nil {
		return exitCodeFor(cmd.Name, err)
	}
	return 0, nil
}


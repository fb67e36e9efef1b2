package exec

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/phillarmonic/ushell/internal/command"
	"github.com/phillarmonic/ushell/internal/job"
	"github.com/phillarmonic/ushell/internal/redir"
)

type fakeEnv struct {
	cwd    string
	vars   map[string]string
	xtrace bool
}

func (f fakeEnv) CWD() string         { return f.cwd }
func (f fakeEnv) OSEnviron() []string { return os.Environ() }
func (f fakeEnv) SetVar(name, value string) {
	if f.vars != nil {
		f.vars[name] = value
	}
}
func (f fakeEnv) XTrace() bool { return f.xtrace }

type fakeBuiltins struct {
	names map[string]func(args []string, s Streams) int
}

func (b fakeBuiltins) HasBuiltin(name string) bool { _, ok := b.names[name]; return ok }
func (b fakeBuiltins) RunBuiltin(name string, args []string, s Streams, cwd string) (int, error) {
	return b.names[name](args, s), nil
}

type fakeFunctions struct{}

func (fakeFunctions) HasFunction(name string) bool                       { return false }
func (fakeFunctions) RunFunction(name string, args []string) (int, error) { return 0, nil }

func newTestExecutor() *Executor {
	return New(job.New(), fakeBuiltins{names: map[string]func([]string, Streams) int{}}, fakeFunctions{}, fakeEnv{cwd: os.TempDir()})
}

func singleStage(name string, args ...string) command.ParsedCommand {
	return command.ParsedCommand{Segments: []command.Segment{
		{Pipeline: []command.Stage{{Command: command.Command{Name: name, Args: args, Raw: name}}}},
	}}
}

func TestRunExternalCommand(t *testing.T) {
	e := newTestExecutor()
	var out bytes.Buffer
	exit, err := e.Run(singleStage("echo", "hello"), Streams{Out: &out})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Fatalf("got output %q", out.String())
	}
}

func TestRunExternalCommandNotFound(t *testing.T) {
	e := newTestExecutor()
	exit, err := e.Run(singleStage("this-command-does-not-exist-xyz"), Streams{})
	if err == nil {
		t.Fatalf("expected an error for an unresolvable command")
	}
	if exit != 127 {
		t.Fatalf("expected exit 127, got %d", exit)
	}
}

func TestRunPipeline(t *testing.T) {
	e := newTestExecutor()
	pc := command.ParsedCommand{Segments: []command.Segment{
		{Pipeline: []command.Stage{
			{Command: command.Command{Name: "echo", Args: []string{"a\nb\nc"}}},
			{Command: command.Command{Name: "wc", Args: []string{"-l"}}},
		}},
	}}
	var out bytes.Buffer
	exit, err := e.Run(pc, Streams{Out: &out})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if strings.TrimSpace(out.String()) != "3" {
		t.Fatalf("expected wc -l to count 3 lines, got %q", out.String())
	}
}

func TestRunAndOrShortCircuit(t *testing.T) {
	e := newTestExecutor()
	ranSecond := false
	bi := fakeBuiltins{names: map[string]func([]string, Streams) int{
		"fail":   func(args []string, s Streams) int { return 1 },
		"marker": func(args []string, s Streams) int { ranSecond = true; return 0 },
	}}
	e.Builtins = bi

	pc := command.ParsedCommand{Segments: []command.Segment{
		{Pipeline: []command.Stage{{Command: command.Command{Name: "fail"}}}, Op: "&&"},
		{Pipeline: []command.Stage{{Command: command.Command{Name: "marker"}}}},
	}}
	exit, err := e.Run(pc, Streams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 1 {
		t.Fatalf("expected exit 1 from the failing first segment, got %d", exit)
	}
	if ranSecond {
		t.Fatalf("&& should have short-circuited past the second segment")
	}
}

func TestRunOrRunsOnFailure(t *testing.T) {
	e := newTestExecutor()
	ranSecond := false
	bi := fakeBuiltins{names: map[string]func([]string, Streams) int{
		"fail":   func(args []string, s Streams) int { return 1 },
		"marker": func(args []string, s Streams) int { ranSecond = true; return 0 },
	}}
	e.Builtins = bi

	pc := command.ParsedCommand{Segments: []command.Segment{
		{Pipeline: []command.Stage{{Command: command.Command{Name: "fail"}}}, Op: "||"},
		{Pipeline: []command.Stage{{Command: command.Command{Name: "marker"}}}},
	}}
	exit, err := e.Run(pc, Streams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0 from the fallback segment, got %d", exit)
	}
	if !ranSecond {
		t.Fatalf("|| should have run the second segment after a failure")
	}
}

func TestRunBareAssignment(t *testing.T) {
	vars := map[string]string{}
	env := fakeEnv{cwd: os.TempDir(), vars: vars}
	e := New(job.New(), fakeBuiltins{names: map[string]func([]string, Streams) int{}}, fakeFunctions{}, env)

	exit, err := e.Run(singleStage("i=1"), Streams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if vars["i"] != "1" {
		t.Fatalf("expected i=1 assigned, got %v", vars)
	}
}

func TestRunTracesCommandsWhenXTraceEnabled(t *testing.T) {
	env := fakeEnv{cwd: os.TempDir(), xtrace: true}
	e := New(job.New(), fakeBuiltins{names: map[string]func([]string, Streams) int{}}, fakeFunctions{}, env)

	var out, errOut bytes.Buffer
	exit, err := e.Run(singleStage("echo", "hello"), Streams{Out: &out, Err: &errOut})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if strings.TrimSpace(errOut.String()) != "+ echo hello" {
		t.Fatalf("expected trace line on stderr, got %q", errOut.String())
	}
}

func TestRunRedirection(t *testing.T) {
	e := newTestExecutor()
	dir := t.TempDir()
	path := dir + "/out.txt"

	pc := command.ParsedCommand{Segments: []command.Segment{
		{Pipeline: []command.Stage{{Command: command.Command{
			Name:         "echo",
			Args:         []string{"redirected"},
			Redirections: []redir.Redirection{{FD: redir.FDStdout, Direction: redir.DirOut, Target: path}},
		}}}},
	}}
	exit, err := e.Run(pc, Streams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading redirected output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "redirected" {
		t.Fatalf("got file contents %q", data)
	}
}

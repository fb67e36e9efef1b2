package scriptexec

import (
	"strconv"
	"strings"
	"testing"

	"github.com/phillarmonic/ushell/internal/command"
	"github.com/phillarmonic/ushell/internal/expand"
	"github.com/phillarmonic/ushell/internal/parser"
	"github.com/phillarmonic/ushell/internal/script"
)

// fakeShell is a minimal Shell implementation for testing: Execute
// resolves a few fixed command names (true/false/echo, and any bare
// integer as its own exit code) without spawning anything.
type fakeShell struct {
	env         map[string]string
	aliases     map[string]string
	functions   *FunctionTable
	positional  [][]string
	exitOnError bool

	echoes  []string
	execLog []string
}

func newFakeShell() *fakeShell {
	return &fakeShell{
		env:       map[string]string{},
		aliases:   map[string]string{},
		functions: NewFunctionTable(),
	}
}

func (f *fakeShell) CWD() string                    { return "/tmp" }
func (f *fakeShell) Env() map[string]string         { return f.env }
func (f *fakeShell) Nounset() bool                  { return false }
func (f *fakeShell) SubstitutionMode() expand.Mode  { return expand.ModeSandbox }
func (f *fakeShell) SandboxAllow() map[string]bool  { return expand.DefaultSandboxAllow() }
func (f *fakeShell) LookupAlias(n string) (string, bool) {
	v, ok := f.aliases[n]
	return v, ok
}
func (f *fakeShell) Positional() []string {
	if len(f.positional) == 0 {
		return nil
	}
	return f.positional[len(f.positional)-1]
}
func (f *fakeShell) Functions() *FunctionTable { return f.functions }
func (f *fakeShell) ExitOnErrorFlag() bool     { return f.exitOnError }
func (f *fakeShell) PushPositional(args []string) {
	f.positional = append(f.positional, args)
}
func (f *fakeShell) PopPositional() {
	f.positional = f.positional[:len(f.positional)-1]
}

func (f *fakeShell) Execute(pc command.ParsedCommand) (int, error) {
	if len(pc.Segments) == 0 || len(pc.Segments[0].Pipeline) == 0 {
		return 0, nil
	}
	cmd := pc.Segments[0].Pipeline[0].Command
	f.execLog = append(f.execLog, strings.TrimSpace(cmd.Name+" "+strings.Join(cmd.Args, " ")))

	// A bare `NAME=value` with no arguments is a variable assignment,
	// not a command invocation — stands in here for what the real
	// pipeline executor does before it ever reaches PATH resolution.
	if len(cmd.Args) == 0 {
		if name, value, ok := strings.Cut(cmd.Name, "="); ok && isIdentifier(name) {
			f.env[name] = value
			return 0, nil
		}
	}

	switch cmd.Name {
	case "true":
		return 0, nil
	case "false":
		return 1, nil
	case "echo":
		f.echoes = append(f.echoes, strings.Join(cmd.Args, " "))
		return 0, nil
	}
	if n, err := strconv.Atoi(cmd.Name); err == nil {
		return n, nil
	}
	return 0, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func newInterp() (*Interpreter, *script.Parser, *fakeShell) {
	e := expand.New(expand.DefaultCacheSizes())
	p := parser.New(e)
	ip := New(p, e)
	return ip, script.New(), newFakeShell()
}

func TestRunIfThenBranch(t *testing.T) {
	ip, sp, sh := newInterp()
	stmts, err := sp.Parse("if true; then echo yes; fi")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	exit, err := ip.Run(stmts, sh)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "yes" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
}

func TestRunIfElseBranch(t *testing.T) {
	ip, sp, sh := newInterp()
	stmts, err := sp.Parse("if false; then echo yes; else echo no; fi")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	exit, err := ip.Run(stmts, sh)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exit != 1 {
		t.Fatalf("expected exit 1 (else branch ran), got %d", exit)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "no" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
}

func TestRunIfFalseNoElse(t *testing.T) {
	ip, sp, sh := newInterp()
	stmts, err := sp.Parse("if false; then echo yes; fi")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	exit, err := ip.Run(stmts, sh)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exit != 1 {
		t.Fatalf("expected exit 1, got %d", exit)
	}
	if len(sh.echoes) != 0 {
		t.Fatalf("then branch should not have run: %v", sh.echoes)
	}
}

func TestRunTestExpression(t *testing.T) {
	ip, sp, sh := newInterp()
	sh.env["X"] = "hello"
	stmts, err := sp.Parse(`if [ "$X" = "hello" ]; then echo matched; fi`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	exit, err := ip.Run(stmts, sh)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exit != 0 || len(sh.echoes) != 1 || sh.echoes[0] != "matched" {
		t.Fatalf("got exit=%d echoes=%v", exit, sh.echoes)
	}
}

func TestRunForLoop(t *testing.T) {
	ip, sp, sh := newInterp()
	stmts, err := sp.Parse("for X in a b c\ndo\n  echo $X\ndone")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(sh.echoes, ","); got != "a,b,c" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
	if _, ok := sh.env["X"]; ok {
		t.Fatalf("loop variable should be restored (unset) after the loop, got %q", sh.env["X"])
	}
}

func TestRunForLoopRestoresPriorValue(t *testing.T) {
	ip, sp, sh := newInterp()
	sh.env["x"] = "before"
	stmts, err := sp.Parse("for x in a b\ndo\n  echo $x\ndone")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sh.env["x"] != "before" {
		t.Fatalf("expected prior value restored, got %q", sh.env["x"])
	}
}

func TestRunForLoopBreak(t *testing.T) {
	ip, sp, sh := newInterp()
	stmts, err := sp.Parse("for X in a b c\ndo\n  echo $X\n  break\ndone")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "a" {
		t.Fatalf("break should stop after first iteration, got %v", sh.echoes)
	}
}

func TestRunForLoopContinue(t *testing.T) {
	ip, sp, sh := newInterp()
	stmts, err := sp.Parse("for X in a b c\ndo\n  if [ \"$X\" = \"b\" ]; then continue; fi\n  echo $X\ndone")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(sh.echoes, ","); got != "a,c" {
		t.Fatalf("continue should skip b, got %v", sh.echoes)
	}
}

func TestRunWhileLoop(t *testing.T) {
	ip, sp, sh := newInterp()
	sh.env["I"] = "0"
	stmts, err := sp.Parse("while [ \"$I\" -lt 3 ]\ndo\n  echo $I\n  I=$((I+1))\ndone")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(sh.echoes, ","); got != "0,1,2" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
}

func TestRunUntilLoop(t *testing.T) {
	ip, sp, sh := newInterp()
	sh.env["I"] = "0"
	stmts, err := sp.Parse("until [ \"$I\" -ge 2 ]\ndo\n  echo $I\n  I=$((I+1))\ndone")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(sh.echoes, ","); got != "0,1" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
}

func TestRunCaseMatch(t *testing.T) {
	ip, sp, sh := newInterp()
	sh.env["X"] = "b"
	stmts, err := sp.Parse("case $X in\na) echo first ;;\nb|c) echo second ;;\n*) echo default ;;\nesac")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "second" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
}

func TestRunCaseDefault(t *testing.T) {
	ip, sp, sh := newInterp()
	sh.env["x"] = "zzz"
	stmts, err := sp.Parse("case $x in\na) echo first ;;\n*) echo default ;;\nesac")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(stmts, sh); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "default" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
}

func TestCallFunctionPositionalParams(t *testing.T) {
	ip, sp, sh := newInterp()
	defStmts, err := sp.Parse("greet() { echo hi $1; }")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(defStmts, sh); err != nil {
		t.Fatalf("run def: %v", err)
	}
	if _, ok := sh.Functions().Lookup("greet"); !ok {
		t.Fatalf("expected greet to be registered")
	}

	exit, err := ip.CallFunction("greet", []string{"world"}, sh)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "hi world" {
		t.Fatalf("got echoes %v", sh.echoes)
	}
	if len(sh.positional) != 0 {
		t.Fatalf("positional frame should be popped after call, got %v", sh.positional)
	}
}

func TestCallFunctionReturn(t *testing.T) {
	ip, sp, sh := newInterp()
	defStmts, err := sp.Parse("fn() { echo before; return 3; echo after; }")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ip.Run(defStmts, sh); err != nil {
		t.Fatalf("run def: %v", err)
	}
	exit, err := ip.CallFunction("fn", nil, sh)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if exit != 3 {
		t.Fatalf("expected exit 3, got %d", exit)
	}
	if len(sh.echoes) != 1 || sh.echoes[0] != "before" {
		t.Fatalf("return should stop the function body, got echoes %v", sh.echoes)
	}
}

func TestCallFunctionNotFound(t *testing.T) {
	ip, _, sh := newInterp()
	exit, err := ip.CallFunction("missing", nil, sh)
	if err == nil {
		t.Fatalf("expected error for unknown function")
	}
	if exit != 127 {
		t.Fatalf("expected exit 127, got %d", exit)
	}
}

func TestEvaluateTestUnaryAndBinary(t *testing.T) {
	cases := []struct {
		tokens []string
		want   bool
	}{
		{[]string{""}, false},
		{[]string{"x"}, true},
		{[]string{"-z", ""}, true},
		{[]string{"-n", "x"}, true},
		{[]string{"1", "-lt", "2"}, true},
		{[]string{"2", "-ge", "2"}, true},
		{[]string{"a", "=", "a"}, true},
		{[]string{"a", "!=", "b"}, true},
	}
	for _, c := range cases {
		got, err := evaluateTest(c.tokens)
		if err != nil {
			t.Fatalf("evaluateTest(%v): %v", c.tokens, err)
		}
		if got != c.want {
			t.Fatalf("evaluateTest(%v) = %v, want %v", c.tokens, got, c.want)
		}
	}
}

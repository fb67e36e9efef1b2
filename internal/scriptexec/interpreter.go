package scriptexec

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phillarmonic/ushell/internal/command"
	"github.com/phillarmonic/ushell/internal/expand"
	"github.com/phillarmonic/ushell/internal/parser"
	"github.com/phillarmonic/ushell/internal/script"
)

// Shell is everything the script executor needs from the surrounding
// shell: the parser's narrow ShellView for re-parsing a statement's raw
// text, a way to run the resulting chain, and the function table and
// positional-parameter stack functions push and pop on call.
type Shell interface {
	parser.ShellView
	Execute(pc command.ParsedCommand) (int, error)
	Functions() *FunctionTable
	ExitOnErrorFlag() bool
	PushPositional(args []string)
	PopPositional()
}

// Interpreter walks a Statement tree, driving sh.Execute for every
// command statement it reaches.
type Interpreter struct {
	parser   *parser.Parser
	expander *expand.Engine
}

// New creates a script executor bound to the given command parser and
// expansion engine (the same engine instance the parser itself uses).
func New(p *parser.Parser, e *expand.Engine) *Interpreter {
	return &Interpreter{parser: p, expander: e}
}

// Run executes a parsed statement list as a fresh top-level call frame
// (a whole script, or a line typed at the REPL that turned out to be a
// block construct).
func (ip *Interpreter) Run(stmts []script.Statement, sh Shell) (int, error) {
	ctx := &Context{ExitOnError: sh.ExitOnErrorFlag()}
	return ip.runStatements(stmts, sh, ctx)
}

// CallFunction invokes a previously defined function by name, per §4.4:
// $0 is the function name, $1.."$#" the call arguments, unset again
// once the call returns.
func (ip *Interpreter) CallFunction(name string, args []string, sh Shell) (int, error) {
	body, ok := sh.Functions().Lookup(name)
	if !ok {
		return 127, &FunctionNotFoundError{Name: name}
	}
	sh.PushPositional(append([]string{name}, args...))
	defer sh.PopPositional()

	callCtx := &Context{ExitOnError: sh.ExitOnErrorFlag()}
	exit, err := ip.runStatements(body.Body, sh, callCtx)
	if err != nil {
		return exit, err
	}
	if callCtx.Returning {
		return callCtx.ReturnValue, nil
	}
	return exit, nil
}

// FunctionNotFoundError is returned by CallFunction for an
// unregistered name; the executor (X) uses this to fall through to the
// builtin/PATH resolution stages instead of failing outright.
type FunctionNotFoundError struct{ Name string }

func (e *FunctionNotFoundError) Error() string { return "function not found: " + e.Name }

func (ip *Interpreter) runStatements(stmts []script.Statement, sh Shell, ctx *Context) (int, error) {
	last := 0
	for _, st := range stmts {
		exit, err := ip.runStatement(st, sh, ctx)
		if err != nil {
			return exit, err
		}
		last = exit
		if ctx.Returning || ctx.BreakLevel > 0 || ctx.ContinueLevel > 0 {
			break
		}
		if ctx.ExitOnError && exit != 0 {
			break
		}
	}
	return last, nil
}

func (ip *Interpreter) runStatement(st script.Statement, sh Shell, ctx *Context) (int, error) {
	if st.Kind == script.KindBlock {
		return ip.runBlock(st.Block, sh, ctx)
	}
	return ip.runCommandStatement(st.Raw, sh, ctx)
}

// runCommandStatement re-parses (and so re-expands) the statement's raw
// text fresh every time it runs, which is what lets the same loop body
// see a different $i on each pass. break/continue/return are
// recognized here rather than sent through the pipeline executor: they
// act on this interpreter's Context, not on any process.
func (ip *Interpreter) runCommandStatement(raw string, sh Shell, ctx *Context) (int, error) {
	pc, err := ip.parser.Parse(raw, sh)
	if err != nil {
		return 2, err
	}

	if name, rest, ok := soleCommand(pc); ok {
		switch name {
		case "break":
			ctx.BreakLevel = levelArg(rest)
			return 0, nil
		case "continue":
			ctx.ContinueLevel = levelArg(rest)
			return 0, nil
		case "return":
			ctx.Returning = true
			ctx.ReturnValue = returnArg(rest)
			return ctx.ReturnValue, nil
		}
	}

	return sh.Execute(pc)
}

// soleCommand reports the name and arguments of a parsed chain when it
// is exactly one unpiped, unchained stage (the shape break/continue/
// return/function calls always take).
func soleCommand(pc command.ParsedCommand) (name string, args []string, ok bool) {
	if len(pc.Segments) != 1 || len(pc.Segments[0].Pipeline) != 1 {
		return "", nil, false
	}
	cmd := pc.Segments[0].Pipeline[0].Command
	return cmd.Name, cmd.Args, true
}

func levelArg(args []string) int {
	if len(args) == 0 {
		return 1
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func returnArg(args []string) int {
	if len(args) == 0 {
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0
	}
	return n
}

func (ip *Interpreter) runBlock(blk *script.Block, sh Shell, ctx *Context) (int, error) {
	switch blk.Type {
	case script.BlockIf:
		return ip.runIf(blk, sh, ctx)
	case script.BlockFor:
		return ip.runFor(blk, sh, ctx)
	case script.BlockWhile:
		return ip.runWhileUntil(blk, sh, ctx, false)
	case script.BlockUntil:
		return ip.runWhileUntil(blk, sh, ctx, true)
	case script.BlockCase:
		return ip.runCase(blk, sh, ctx)
	case script.BlockFunction:
		sh.Functions().Define(blk.FuncName, blk)
		return 0, nil
	default:
		return 0, nil
	}
}

// runIf's own exit status reflects which branch ran rather than that
// branch's last command status: 0 once the then branch runs, 1 once
// the else branch runs or the condition is false with no else, so
// `if cond; then ...; fi || fallback` reacts to a false condition.
func (ip *Interpreter) runIf(blk *script.Block, sh Shell, ctx *Context) (int, error) {
	cond, err := ip.evalCondition(blk.Condition, sh, ctx)
	if err != nil {
		return 1, err
	}
	if cond {
		if _, err := ip.runStatements(blk.Body, sh, ctx); err != nil {
			return 1, err
		}
		return 0, nil
	}
	if blk.ElseBody != nil {
		if _, err := ip.runStatements(blk.ElseBody, sh, ctx); err != nil {
			return 1, err
		}
	}
	return 1, nil
}

func (ip *Interpreter) runFor(blk *script.Block, sh Shell, ctx *Context) (int, error) {
	values, err := ip.expandForValues(blk.Values, sh)
	if err != nil {
		return 1, err
	}

	env := sh.Env()
	prev, hadPrev := env[blk.LoopVar]
	last := 0

	for _, v := range values {
		env[blk.LoopVar] = v
		exit, err := ip.runStatements(blk.Body, sh, ctx)
		if err != nil {
			restoreVar(env, blk.LoopVar, prev, hadPrev)
			return exit, err
		}
		last = exit
		if ctx.consumeLoopSignal() {
			break
		}
	}
	restoreVar(env, blk.LoopVar, prev, hadPrev)
	return last, nil
}

func restoreVar(env map[string]string, name, prev string, hadPrev bool) {
	if hadPrev {
		env[name] = prev
	} else {
		delete(env, name)
	}
}

func (ip *Interpreter) runWhileUntil(blk *script.Block, sh Shell, ctx *Context, until bool) (int, error) {
	last := 0
	for {
		cond, err := ip.evalCondition(blk.Condition, sh, ctx)
		if err != nil {
			return 1, err
		}
		if until {
			cond = !cond
		}
		if !cond {
			break
		}
		exit, err := ip.runStatements(blk.Body, sh, ctx)
		if err != nil {
			return exit, err
		}
		last = exit
		if ctx.consumeLoopSignal() {
			break
		}
	}
	return last, nil
}

func (ip *Interpreter) runCase(blk *script.Block, sh Shell, ctx *Context) (int, error) {
	val, err := ip.expandString(blk.CaseValue, sh)
	if err != nil {
		return 1, err
	}
	for _, arm := range blk.Arms {
		for _, pat := range arm.Patterns {
			expPat, err := ip.expandString(pat, sh)
			if err != nil {
				return 1, err
			}
			matched, mErr := filepath.Match(expPat, val)
			if mErr != nil {
				continue
			}
			if matched {
				return ip.runStatements(arm.Body, sh, ctx)
			}
		}
	}
	return 0, nil
}

// evalCondition evaluates an if/while/until condition: a `[ ]`/`[[ ]]`
// test expression is evaluated directly, anything else is parsed and
// run as a command chain whose exit status of 0 means true.
func (ip *Interpreter) evalCondition(raw string, sh Shell, ctx *Context) (bool, error) {
	trimmed := strings.TrimSpace(raw)
	if inner, ok := isTestExpr(trimmed); ok {
		toks, err := ip.evalTestTokens(inner, sh)
		if err != nil {
			return false, err
		}
		return evaluateTest(toks)
	}

	pc, err := ip.parser.Parse(raw, sh)
	if err != nil {
		return false, err
	}
	exit, err := sh.Execute(pc)
	if err != nil {
		return false, err
	}
	return exit == 0, nil
}

func (ip *Interpreter) buildExpandContext(sh Shell) *expand.Context {
	return &expand.Context{
		CWD:              sh.CWD(),
		Environment:      sh.Env(),
		Nounset:          sh.Nounset(),
		SubstitutionMode: sh.SubstitutionMode(),
		SandboxAllow:     sh.SandboxAllow(),
		Positional:       sh.Positional(),
	}
}

func (ip *Interpreter) expandString(s string, sh Shell) (string, error) {
	return ip.expander.Expand(s, ip.buildExpandContext(sh))
}

func (ip *Interpreter) expandForValues(raw []string, sh Shell) ([]string, error) {
	var out []string
	for _, r := range raw {
		expanded, err := ip.expandString(r, sh)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.Fields(expanded)...)
	}
	return out, nil
}

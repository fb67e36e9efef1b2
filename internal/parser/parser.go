// Package parser implements the command parser (P): it splits a raw
// input line on the chain operators, groups pipe-connected stages,
// extracts and expands redirections, expands and tokenizes each stage,
// and performs single-pass alias expansion.
package parser

import (
	"strings"

	"github.com/phillarmonic/ushell/internal/command"
	"github.com/phillarmonic/ushell/internal/expand"
	"github.com/phillarmonic/ushell/internal/redir"
	"github.com/phillarmonic/ushell/internal/token"
)

// ShellView is the narrow slice of shell state the parser needs to
// build an ExpansionContext and resolve aliases. The shell itself
// implements this; the parser never reaches past it into the rest of
// the shell's state.
type ShellView interface {
	CWD() string
	Env() map[string]string
	Nounset() bool
	SubstitutionMode() expand.Mode
	SandboxAllow() map[string]bool
	Positional() []string
	LookupAlias(name string) (string, bool)
}

// Parser turns input lines into ParsedCommand chains, via the shared
// expansion engine.
type Parser struct {
	expander *expand.Engine
}

// New creates a parser bound to the given expansion engine.
func New(e *expand.Engine) *Parser {
	return &Parser{expander: e}
}

// Parse implements §4.1's `parse(input, shell) → ParsedCommand`.
func (p *Parser) Parse(input string, sh ShellView) (command.ParsedCommand, error) {
	raw := token.SplitByOperatorsDetailed(input)
	if len(raw) == 0 {
		return command.ParsedCommand{}, nil
	}

	background := false
	last := &raw[len(raw)-1]
	if trimmed := strings.TrimRight(last.Text, " \t"); strings.HasSuffix(trimmed, "&") && !strings.HasSuffix(trimmed, "&&") {
		last.Text = strings.TrimRight(strings.TrimSuffix(trimmed, "&"), " \t")
		background = true
	}

	ctx := p.exprContext(sh)

	var segments []command.Segment
	var pipeline []command.Stage
	for _, rs := range raw {
		cmd, err := p.buildCommand(rs.Text, sh, ctx)
		if err != nil {
			return command.ParsedCommand{}, err
		}
		pipeline = append(pipeline, command.Stage{Command: cmd})
		if rs.Op == "|" {
			continue
		}
		segments = append(segments, command.Segment{Pipeline: pipeline, Op: rs.Op})
		pipeline = nil
	}
	if len(pipeline) > 0 {
		segments = append(segments, command.Segment{Pipeline: pipeline, Op: ""})
	}

	if background && len(segments) > 0 {
		lastSeg := segments[len(segments)-1]
		if len(lastSeg.Pipeline) > 0 {
			lastSeg.Pipeline[len(lastSeg.Pipeline)-1].Command.Background = true
		}
	}

	pc := command.ParsedCommand{Segments: segments}
	pc.Redirects = flattenAll(segments)
	return pc, nil
}

func flattenAll(segments []command.Segment) map[redir.FD]redir.Redirection {
	var all []redir.Redirection
	for _, seg := range segments {
		for _, st := range seg.Pipeline {
			all = append(all, st.Command.Redirections...)
		}
	}
	return redir.Flatten(all)
}

func (p *Parser) exprContext(sh ShellView) *expand.Context {
	return &expand.Context{
		CWD:              sh.CWD(),
		Environment:       sh.Env(),
		Nounset:           sh.Nounset(),
		SubstitutionMode:  sh.SubstitutionMode(),
		SandboxAllow:      sh.SandboxAllow(),
		Positional:        sh.Positional(),
	}
}

// buildCommand extracts redirections, expands the stage and its
// redirection targets, tokenizes, and performs single-pass alias
// expansion of the resulting first token.
func (p *Parser) buildCommand(text string, sh ShellView, ctx *expand.Context) (command.Command, error) {
	clean, redirs, err := redir.Extract(text)
	if err != nil {
		return command.Command{}, err
	}

	origToks := p.expander.TokenizeCached(clean)
	originalArgs := make([]string, 0, len(origToks))
	for _, t := range origToks {
		originalArgs = append(originalArgs, t.Text)
	}

	expanded, err := p.expander.Expand(clean, ctx)
	if err != nil {
		return command.Command{}, err
	}
	for i := range redirs {
		target, err := p.expander.Expand(redirs[i].Target, ctx)
		if err != nil {
			return command.Command{}, err
		}
		redirs[i].Target = target
	}

	toks := p.expander.TokenizeCached(expanded)
	args := make([]string, 0, len(toks))
	for _, t := range toks {
		args = append(args, token.StripQuotes(t))
	}

	if len(args) == 0 {
		return command.Command{Raw: text, Redirections: redirs}, nil
	}

	name := args[0]
	rest := args[1:]
	if aliasVal, ok := sh.LookupAlias(name); ok {
		aliasToks := p.expander.TokenizeCached(aliasVal)
		var aliasArgs []string
		for _, t := range aliasToks {
			aliasArgs = append(aliasArgs, token.StripQuotes(t))
		}
		if len(aliasArgs) > 0 {
			name = aliasArgs[0]
			rest = append(aliasArgs[1:], rest...)
		}
	}

	return command.Command{
		Name:         name,
		Args:         rest,
		OriginalArgs: originalArgs,
		Raw:          text,
		Redirections: redirs,
	}, nil
}

// Package command defines the shared data model the parser, executor,
// and script engine all operate on: a Command is one pipeline stage, a
// ParsedCommand a chain of them joined by ;, &&, ||, |.
package command

import "github.com/phillarmonic/ushell/internal/redir"

// Command is one resolved pipeline stage: a name, its expanded
// arguments, and enough of the pre-expansion state to support alias
// expansion and diagnostics.
type Command struct {
	Name          string
	Args          []string
	OriginalArgs  []string // pre-quote-stripping form, for alias expansion
	Raw           string   // the source slice this command was parsed from
	Background    bool
	Redirections  []redir.Redirection
}

// Stage is one pipeline stage within a segment. It carries no operator:
// the `|` between stages is implied by their order in Segment.Pipeline.
type Stage struct {
	Command Command
}

// Segment is a `|`-connected pipeline together with the chain operator
// that links it to the next segment (";", "&&", "||", or "" for the
// last segment in the chain).
type Segment struct {
	Pipeline []Stage
	Op       string
}

// ParsedCommand is the result of parsing one input line: an ordered
// chain of segments plus a flattened view of every redirection seen,
// for executors that don't need the per-stage breakdown.
type ParsedCommand struct {
	Segments []Segment
	Redirects map[redir.FD]redir.Redirection
}

// Background reports whether the chain's final segment was marked to
// run detached.
func (p ParsedCommand) Background() bool {
	if len(p.Segments) == 0 {
		return false
	}
	last := p.Segments[len(p.Segments)-1]
	if len(last.Pipeline) == 0 {
		return false
	}
	return last.Pipeline[len(last.Pipeline)-1].Command.Background
}

// String joins the raw source text of every stage with single spaces
// (chain and pipe operators are not included); the shell uses it for
// hook payloads.
func (p ParsedCommand) String() string {
	var raws []string
	for _, seg := range p.Segments {
		for _, st := range seg.Pipeline {
			if st.Command.Raw != "" {
				raws = append(raws, st.Command.Raw)
			}
		}
	}
	if len(raws) == 0 {
		return ""
	}
	out := raws[0]
	for _, r := range raws[1:] {
		out += " " + r
	}
	return out
}

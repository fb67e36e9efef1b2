// Package ushellerr defines the error taxonomy the core reports to its
// callers: parse errors, expansion errors, resolution errors and spawn
// errors, each carrying enough position/context to render a readable
// diagnostic.
package ushellerr

import (
	"fmt"
	"strings"
)

// Pos is a source position within a parsed line or script.
type Pos struct {
	Line   int
	Column int
}

// ParseError is returned when the lexer or parser rejects an input line:
// an unterminated quoted string, an unexpected block terminator, or an
// unknown redirection form.
type ParseError struct {
	Message  string
	Pos      Pos
	Filename string
	Source   string
}

func (e *ParseError) Error() string { return e.Message }

// FormatError renders the error with a file:line:column header and a
// caret pointing at the offending column, matching the rest of the
// shell's colorized diagnostics.
func (e *ParseError) FormatError() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\033[31mError\033[0m: %s\n", e.Message)
	if e.Filename != "" {
		fmt.Fprintf(&b, "  \033[36m--> %s:%d:%d\033[0m\n", e.Filename, e.Pos.Line, e.Pos.Column)
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > 0 && e.Pos.Line <= len(lines) {
		sourceLine := lines[e.Pos.Line-1]
		lineNumStr := fmt.Sprintf("%d", e.Pos.Line)

		fmt.Fprintf(&b, "   \033[34m%s\033[0m | %s\n", lineNumStr, sourceLine)

		col := e.Pos.Column - 1
		if col < 0 {
			col = 0
		}
		spaces := strings.Repeat(" ", len(lineNumStr)) + " | " + strings.Repeat(" ", col)
		fmt.Fprintf(&b, "   %s\033[31m^\033[0m\n", spaces)
	}

	return b.String()
}

func NewParseError(message string, pos Pos, filename, source string) *ParseError {
	return &ParseError{Message: message, Pos: pos, Filename: filename, Source: source}
}

// ExpansionError covers ${VAR:?msg}, nounset violations, and sandbox
// denials raised while expanding a string.
type ExpansionError struct {
	Message string
}

func (e *ExpansionError) Error() string { return e.Message }

func NewExpansionError(format string, args ...interface{}) *ExpansionError {
	return &ExpansionError{Message: fmt.Sprintf(format, args...)}
}

// ResolutionError is "command not found" — exit code 127 by convention.
type ResolutionError struct {
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: command not found", e.Name)
}

func NewResolutionError(name string) *ResolutionError {
	return &ResolutionError{Name: name}
}

// SpawnError wraps an OS-level failure to execute a resolved program.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func NewSpawnError(name string, err error) *SpawnError {
	return &SpawnError{Name: name, Err: err}
}

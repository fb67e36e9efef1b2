// Package ushellio implements the shell's user-facing diagnostic
// output: colorized info/warn/error lines written to an io.Writer
// pair, mirroring the teacher's plain fmt.Fprintf-to-io.Writer
// reporting style (internal/errors/errors.go's colorized error
// rendering, internal/engine/executor/executor.go's "hook failed"
// lines) rather than a structured-logging library.
package ushellio

import "fmt"

// Reporter writes colorized info/warn/error lines to a stdout/stderr
// pair. It carries no state beyond the two writers: every call is
// independent, same as the teacher's direct fmt.Fprintf calls.
type Reporter struct {
	Out Writer
	Err Writer
}

// Writer is the narrow slice of io.Writer a Reporter needs.
type Writer interface {
	Write(p []byte) (n int, err error)
}

// New creates a Reporter writing to out/err.
func New(out, err Writer) *Reporter {
	return &Reporter{Out: out, Err: err}
}

// Info prints a plain informational line to Out.
func (r *Reporter) Info(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// Warn prints a yellow-prefixed warning line to Err, the style the
// teacher's hook-failure messages use.
func (r *Reporter) Warn(format string, args ...interface{}) {
	fmt.Fprintf(r.Err, "\033[33mwarning:\033[0m "+format+"\n", args...)
}

// Error prints a red-prefixed error line to Err.
func (r *Reporter) Error(format string, args ...interface{}) {
	fmt.Fprintf(r.Err, "\033[31merror:\033[0m "+format+"\n", args...)
}

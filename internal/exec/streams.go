// Package exec implements the pipeline executor (X): it walks a
// command.ParsedCommand's chain of `;`/`&&`/`||`-joined segments,
// fans each segment's pipeline out over connected pipes, applies
// redirections, and dispatches each stage to a shell function, a
// builtin, or a program found on PATH, in that order (aliases are
// already expanded by the parser).
package exec

import "io"

// Streams is the stdio triple a stage or pipeline runs against.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

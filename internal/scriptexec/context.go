// Package scriptexec implements the script executor (SE): a
// tree-walking interpreter over the Statement trees produced by
// internal/script, driving the shared command parser and pipeline
// executor for every command statement it reaches.
package scriptexec

import (
	"sync"

	"github.com/phillarmonic/ushell/internal/script"
)

// Context is one ScriptContext per §3: local to the current function
// call frame, carrying the control-flow sentinels break/continue/return
// use to unwind the statement tree without panicking. A plain call
// (top-level script, or a block not inside a function) uses a single
// root Context for its whole run.
type Context struct {
	ExitOnError bool

	// ReturnValue is meaningful once Returning is true: the function's
	// (or script's) exit code.
	Returning   bool
	ReturnValue int

	// BreakLevel / ContinueLevel count how many enclosing loops a
	// `break N` / `continue N` still needs to unwind through. A loop
	// that sees its own level (1) decrements it to 0 and stops
	// propagating; deeper values keep bubbling up.
	BreakLevel    int
	ContinueLevel int
}

// consumeLoopSignal is called by a loop after running one iteration's
// body. It reports whether the loop itself should stop; a continue
// aimed at this loop is consumed here and the loop goes on with its
// next iteration.
func (c *Context) consumeLoopSignal() (stop bool) {
	if c.Returning {
		return true
	}
	if c.BreakLevel > 0 {
		c.BreakLevel--
		return true
	}
	if c.ContinueLevel > 0 {
		c.ContinueLevel--
		if c.ContinueLevel > 0 {
			return true
		}
		return false
	}
	return false
}

// FunctionTable is the function definition table a Context's enclosing
// scope holds a reference to (§3: "reference to the enclosing function
// table"). Shared across the whole shell so a function defined in one
// script is callable from any later statement, including nested
// function bodies.
type FunctionTable struct {
	mu  sync.RWMutex
	fns map[string]*script.Block
}

// NewFunctionTable creates an empty function table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{fns: map[string]*script.Block{}}
}

// Define registers or replaces a function body.
func (t *FunctionTable) Define(name string, body *script.Block) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fns[name] = body
}

// Lookup finds a function body by name.
func (t *FunctionTable) Lookup(name string) (*script.Block, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.fns[name]
	return b, ok
}

// Delete removes a function (`unset -f`).
func (t *FunctionTable) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.fns, name)
}

// Names lists every defined function, for `type`/completion.
func (t *FunctionTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.fns))
	for name := range t.fns {
		out = append(out, name)
	}
	return out
}

// Package expand implements the expansion engine (E): variable,
// arithmetic, brace, command, and process substitution, applied in that
// fixed order to the same string, backed by three bounded LRU caches.
package expand

import (
	"strings"

	"github.com/phillarmonic/ushell/internal/token"
)

// Engine is the process-wide expansion engine. It is safe for
// concurrent use by multiple commands; the caches are the only shared
// mutable state and are synchronized internally by golang-lru.
type Engine struct {
	caches *caches
}

// New creates an expansion engine with the given cache capacities.
func New(sizes CacheSizes) *Engine {
	return &Engine{caches: newCaches(sizes)}
}

// ResetCaches clears the argument-split, executable-resolution, and
// arithmetic caches in one operation (§4.2.1).
func (e *Engine) ResetCaches() {
	e.caches.Reset()
}

// TokenizeCached splits s into tokens through the argument-split cache
// (§4.2.1): repeated tokenizing of the same text (a loop body re-run
// every iteration, an alias expanded on every invocation) is served
// from the cache instead of re-scanning the string.
func (e *Engine) TokenizeCached(s string) []token.Token {
	if toks, ok := e.caches.argSplit.Get(s); ok {
		return toks
	}
	toks := token.Tokenize(s)
	e.caches.argSplit.Add(s, toks)
	return toks
}

// Expand performs every expansion named in §4.2, in order, on input.
// It short-circuits immediately when input contains none of $, `, {.
func (e *Engine) Expand(input string, ctx *Context) (string, error) {
	if !strings.ContainsAny(input, "$`{") {
		return input, nil
	}

	s, err := expandVariables(input, ctx)
	if err != nil {
		return "", err
	}

	s, err = e.expandArithmetic(s, ctx)
	if err != nil {
		return "", err
	}

	s = expandBraces(s)

	s, err = e.expandCommandSubstitution(s, ctx)
	if err != nil {
		return "", err
	}

	s, err = e.expandProcessSubstitution(s, ctx)
	if err != nil {
		return "", err
	}

	return s, nil
}

// Package shellenv implements the shell's environment map: the single
// mutable, process-wide map that builtins (export, unset, set -a) and
// the expansion engine's ${VAR=default} side effect are allowed to
// write, with export tracking so child processes see only what should
// be visible to them.
package shellenv

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Environment is the shell's variable table. Local variables live only
// in vars; exported variables are additionally mirrored to the OS
// process environment so every spawned child inherits them.
type Environment struct {
	mu        sync.RWMutex
	vars      map[string]string
	exported  map[string]bool
	allExport bool
}

// New creates an empty environment.
func New() *Environment {
	return &Environment{vars: map[string]string{}, exported: map[string]bool{}}
}

// FromOS seeds an environment from the current process environment,
// marking every inherited variable exported.
func FromOS() *Environment {
	e := New()
	for _, kv := range os.Environ() {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			name, val := kv[:idx], kv[idx+1:]
			e.vars[name] = val
			e.exported[name] = true
		}
	}
	return e
}

// Get looks up a variable.
func (e *Environment) Get(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

// Set assigns a local variable. Exported variables are re-mirrored to
// the OS environment automatically; with `set -a` active every
// assignment is exported as it's made, the same as a real shell's
// allexport option.
func (e *Environment) Set(name, value string) {
	e.mu.Lock()
	e.vars[name] = value
	if e.allExport {
		e.exported[name] = true
	}
	exported := e.exported[name]
	e.mu.Unlock()
	if exported {
		_ = os.Setenv(name, value)
	}
}

// SetAllExport toggles `set -a`/`set +a`: while enabled, every Set call
// marks its variable exported instead of requiring a separate `export`.
func (e *Environment) SetAllExport(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.allExport = enabled
}

// Export marks name exported, mirroring its current value (or "" if
// unset) to the OS environment.
func (e *Environment) Export(name string) {
	e.mu.Lock()
	e.exported[name] = true
	v := e.vars[name]
	e.mu.Unlock()
	_ = os.Setenv(name, v)
}

// Unexport stops mirroring name to the OS environment without
// unsetting its shell-local value.
func (e *Environment) Unexport(name string) {
	e.mu.Lock()
	delete(e.exported, name)
	e.mu.Unlock()
	_ = os.Unsetenv(name)
}

// Unset removes name entirely, from both the shell map and (if
// exported) the OS environment.
func (e *Environment) Unset(name string) {
	e.mu.Lock()
	delete(e.vars, name)
	wasExported := e.exported[name]
	delete(e.exported, name)
	e.mu.Unlock()
	if wasExported {
		_ = os.Unsetenv(name)
	}
}

// IsExported reports whether name is marked for mirroring to children.
func (e *Environment) IsExported(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.exported[name]
}

// Keys returns every variable name, sorted, for `env`/`export -p`-style
// listing.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsMap returns the live underlying map by reference — callers
// (notably the expansion engine's ${VAR=default} side effect and the
// script executor's for-loop variable binding) are expected to mutate
// it directly and have that mutation observed here.
func (e *Environment) AsMap() map[string]string {
	return e.vars
}

// OSEnviron renders the exported subset as a "K=V" slice suitable for
// exec.Cmd.Env, the snapshot a spawned child actually receives.
func (e *Environment) OSEnviron() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.exported))
	for name := range e.exported {
		out = append(out, name+"="+e.vars[name])
	}
	return out
}

package exec

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/phillarmonic/ushell/internal/fsutil"
	"github.com/phillarmonic/ushell/internal/ushellerr"
)

// Resolve searches pathEnv (a PATH-style, filepath.ListSeparator
// delimited string) for an executable named name — the single lookup
// both runExternal and the `type`/`which` builtins go through, so the
// two can never disagree about whether a bare name resolves to a
// runnable file. A name containing a path separator (`./foo`,
// `/usr/local/bin/foo`) is checked directly instead of searched.
func Resolve(name, pathEnv string) (string, error) {
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) {
		if isExecutableFile(name) {
			return name, nil
		}
		return "", ushellerr.NewResolutionError(name)
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	return "", ushellerr.NewResolutionError(name)
}

// isExecutableFile reports whether path exists, is a regular file, and
// is executable. Windows carries no POSIX execute bit, so any existing
// regular file there counts — the same simplification
// internal/scriptexec's `test -x` uses on Windows.
func isExecutableFile(path string) bool {
	info, err := fsutil.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// pathFromEnviron pulls PATH out of an OSEnviron()-shaped slice,
// falling back to the process environment if it isn't set there.
func pathFromEnviron(environ []string) string {
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok && name == "PATH" {
			return value
		}
	}
	return os.Getenv("PATH")
}

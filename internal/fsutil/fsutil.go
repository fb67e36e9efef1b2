// Package fsutil wraps the filesystem behind an afero.Fs so the paths
// that touch disk — cd's directory checks, PATH lookups, redirection
// targets — can be exercised against an in-memory filesystem in
// tests without ever touching the real one.
package fsutil

import (
	"os"

	"github.com/spf13/afero"
)

// FS is the filesystem the shell operates against. Production code
// uses the OS filesystem; tests may swap in afero.NewMemMapFs().
var FS afero.Fs = afero.NewOsFs()

// Stat reports file info for path on FS.
func Stat(path string) (os.FileInfo, error) {
	return FS.Stat(path)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := FS.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists at all.
func Exists(path string) bool {
	_, err := FS.Stat(path)
	return err == nil
}

// MkdirAll creates path and any missing parents.
func MkdirAll(path string, perm os.FileMode) error {
	return FS.MkdirAll(path, perm)
}

// ReadFile reads the whole file at path.
func ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(FS, path)
}

// WriteFile writes data to path, creating or truncating it.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(FS, path, data, perm)
}

// OpenFile opens path with the given flags/perm, the mechanism
// redirection targets (`>`, `>>`, `2>`, ...) go through.
func OpenFile(path string, flag int, perm os.FileMode) (afero.File, error) {
	return FS.OpenFile(path, flag, perm)
}

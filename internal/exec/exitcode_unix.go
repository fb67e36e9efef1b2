//go:build !windows

package exec

import (
	"errors"
	osexec "os/exec"
	"syscall"

	"github.com/phillarmonic/ushell/internal/ushellerr"
)

// exitCodeFor translates an os/exec error into the exit-code
// conventions §7 documents: 128+signum for a signal death, the
// process's own exit code otherwise, 126 for a spawn failure that
// never got as far as running.
func exitCodeFor(name string, err error) (int, error) {
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	return 126, ushellerr.NewSpawnError(name, err)
}

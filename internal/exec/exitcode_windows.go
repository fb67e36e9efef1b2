//go:build windows

package exec

import (
	"errors"
	osexec "os/exec"

	"github.com/phillarmonic/ushell/internal/ushellerr"
)

// Windows has no signal-death exit-status encoding; a non-zero
// ExitError always carries the process's own exit code.
func exitCodeFor(name string, err error) (int, error) {
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 126, ushellerr.NewSpawnError(name, err)
}

package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phillarmonic/ushell/internal/exec"
)

// builtinTime wraps a single command line, reporting its wall-clock
// duration on stderr the way the reserved word `time` does in a real
// shell (the real line only, without the user/sys breakdown, which
// needs OS process accounting this shell does not collect).
func builtinTime(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	line := strings.Join(args, " ")
	start := time.Now()
	exit, err := sh.RunLine(line)
	elapsed := time.Since(start)
	fmt.Fprintf(streams.Err, "\nreal\t%s\n", elapsed.Round(time.Millisecond))
	return exit, err
}

// builtinReload re-reads persistent shell state (config, aliases) from
// disk without restarting the process.
func builtinReload(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if err := sh.Reload(); err != nil {
		fmt.Fprintf(streams.Err, "reload: %s\n", err)
		return 1, nil
	}
	fmt.Fprintln(streams.Out, "reloaded")
	return 0, nil
}

// builtinSource implements both `source FILE` and `. FILE`: the named
// script runs against the current shell's live environment and
// function table, so assignments and definitions it makes persist
// after it returns.
func builtinSource(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 0 {
		fmt.Fprintln(streams.Err, "source: filename argument required")
		return 1, nil
	}
	path := args[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(streams.Err, "source: %s: %s\n", args[0], err)
		return 1, nil
	}
	return sh.RunScript(string(data))
}

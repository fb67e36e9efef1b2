package builtin

import (
	"fmt"
	"strconv"

	"github.com/phillarmonic/ushell/internal/exec"
)

func builtinHistory(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	h := sh.History()

	if len(args) > 0 && args[0] == "-c" {
		h.Clear()
		return 0, nil
	}

	entries := h.All()
	if len(args) > 1 && args[0] == "-n" {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(streams.Err, "history: -n requires a number")
			return 1, nil
		}
		entries = h.Last(n)
	}

	start := len(h.All()) - len(entries) + 1
	for i, e := range entries {
		fmt.Fprintf(streams.Out, "%5d  %s\n", start+i, e)
	}
	return 0, nil
}

// Command ushell is an interactive POSIX-flavored command shell.
package main

import (
	"fmt"
	"os"

	"github.com/phillarmonic/ushell/cmd/ushell/app"
)

// version/commit/date are overridden at build time via
// -ldflags "-X main.version=... -X main.commit=... -X main.date=...",
// mirroring the teacher's build-time version injection.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	a := app.NewApp(version, commit, date)
	if err := a.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

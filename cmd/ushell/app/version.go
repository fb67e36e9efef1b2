package app

import (
	"fmt"
	"os"

	"github.com/phillarmonic/figlet/figletlib"
)

// ShowVersion prints version information with the same figlet banner
// style the teacher's version command uses.
func ShowVersion(version, commit, date string) error {
	if err := printFiglet("ushell"); err != nil {
		fmt.Println("ushell")
	}

	fmt.Println("ushell - a POSIX-flavored command shell")
	fmt.Println()
	fmt.Printf("Version %s\n", version)
	if commit != "" && commit != "unknown" {
		fmt.Printf("commit: %s\n", commit)
	}
	if date != "" && date != "unknown" {
		fmt.Printf("built: %s\n", date)
	}
	return nil
}

// PrintBanner prints the interactive-startup figlet banner, the
// non-functional REPL greeting mirroring the teacher's version banner.
func PrintBanner(version string) {
	if err := printFiglet("ushell"); err != nil {
		fmt.Println("ushell")
	}
	fmt.Printf("ushell %s - type 'help' for a list of builtins\n\n", version)
}

func printFiglet(msg string) error {
	loader := figletlib.NewEmbededLoader()
	font, err := loader.GetFontByName("standard")
	if err != nil {
		return err
	}

	startColor, _ := figletlib.ParseColor("#00FF95")
	endColor, _ := figletlib.ParseColor("#00C2FF")
	gradient := figletlib.ColorConfig{
		Mode:       figletlib.ColorModeGradient,
		StartColor: startColor,
		EndColor:   endColor,
	}
	figletlib.PrintColoredMsg(msg, font, 80, font.Settings(), "left", gradient)
	return nil
}

// isTerminal reports whether f is attached to a character device (a
// real terminal, not a pipe or redirected file), the same check a
// script invocation via `ushell < script.sh` needs to skip the banner.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

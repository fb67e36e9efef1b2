package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phillarmonic/ushell/internal/exec"
)

func builtinAlias(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 0 {
		aliases := sh.Aliases()
		names := make([]string, 0, len(aliases))
		for name := range aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(streams.Out, "alias %s='%s'\n", name, aliases[name])
		}
		return 0, nil
	}

	status := 0
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			if v, exists := sh.Aliases()[arg]; exists {
				fmt.Fprintf(streams.Out, "alias %s='%s'\n", arg, v)
			} else {
				fmt.Fprintf(streams.Err, "alias: %s: not found\n", arg)
				status = 1
			}
			continue
		}
		sh.SetAlias(name, strings.Trim(value, "'\""))
	}
	return status, nil
}

func builtinUnalias(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 1 && args[0] == "-a" {
		for name := range sh.Aliases() {
			sh.RemoveAlias(name)
		}
		return 0, nil
	}
	status := 0
	for _, name := range args {
		if _, ok := sh.Aliases()[name]; !ok {
			fmt.Fprintf(streams.Err, "unalias: %s: not found\n", name)
			status = 1
			continue
		}
		sh.RemoveAlias(name)
	}
	return status, nil
}

func builtinExport(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 0 {
		env := sh.Env()
		names := make([]string, 0, len(env))
		for k := range env {
			if sh.IsExported(k) {
				names = append(names, k)
			}
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(streams.Out, "export %s=\"%s\"\n", k, env[k])
		}
		return 0, nil
	}

	for _, arg := range args {
		if name, value, ok := strings.Cut(arg, "="); ok {
			sh.Env()[name] = value
			sh.ExportVar(name)
		} else {
			sh.ExportVar(arg)
		}
	}
	return 0, nil
}

func builtinUnset(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	mode := "var"
	rest := args
	if len(args) > 0 && (args[0] == "-v" || args[0] == "-f") {
		if args[0] == "-f" {
			mode = "func"
		}
		rest = args[1:]
	}

	for _, name := range rest {
		if mode == "func" {
			sh.Functions().Delete(name)
			continue
		}
		sh.UnsetVar(name)
	}
	return 0, nil
}

// builtinSet implements a subset of the `set` builtin's shell options:
// -e (exit on error), -u (error on unset variable), -x (trace before
// execution), -a (auto-export every assignment). Flags may be combined
// (`set -eux`) or given one per argument (`set -e -u`), and a leading
// `+` disables rather than enables.
func builtinSet(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 0 {
		env := sh.Env()
		names := make([]string, 0, len(env))
		for k := range env {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(streams.Out, "%s=%s\n", k, env[k])
		}
		return 0, nil
	}

	for _, arg := range args {
		if len(arg) < 2 || (arg[0] != '-' && arg[0] != '+') {
			continue
		}
		enable := arg[0] == '-'
		for _, flag := range arg[1:] {
			opt, ok := setOptionName(flag)
			if !ok {
				fmt.Fprintf(streams.Err, "set: unknown option -%c\n", flag)
				return 1, nil
			}
			sh.SetOption(opt, enable)
		}
	}
	return 0, nil
}

func setOptionName(flag rune) (string, bool) {
	switch flag {
	case 'e':
		return "errexit", true
	case 'u':
		return "nounset", true
	case 'x':
		return "xtrace", true
	case 'a':
		return "allexport", true
	default:
		return "", false
	}
}

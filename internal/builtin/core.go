package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/phillarmonic/ushell/internal/exec"
	"github.com/phillarmonic/ushell/internal/fsutil"
)

func builtinCd(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	switch target {
	case "":
		home := sh.Env()["HOME"]
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		target = home
	case "-":
		oldpwd := sh.Env()["OLDPWD"]
		if oldpwd == "" {
			fmt.Fprintln(streams.Err, "cd: OLDPWD not set")
			return 1, nil
		}
		target = oldpwd
		fmt.Fprintln(streams.Out, target)
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(cwd, target)
	}
	target = filepath.Clean(target)

	if !fsutil.Exists(target) {
		fmt.Fprintf(streams.Err, "cd: %s: no such file or directory\n", target)
		return 1, nil
	}
	if !fsutil.IsDir(target) {
		fmt.Fprintf(streams.Err, "cd: %s: not a directory\n", target)
		return 1, nil
	}

	old := sh.CWD()
	if err := sh.Chdir(target); err != nil {
		fmt.Fprintf(streams.Err, "cd: %s\n", err)
		return 1, nil
	}
	sh.Env()["OLDPWD"] = old
	return 0, nil
}

func builtinPwd(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	fmt.Fprintln(streams.Out, sh.CWD())
	return 0, nil
}

func builtinEcho(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	newline := true
	if len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	out := strings.Join(args, " ")
	if newline {
		fmt.Fprintln(streams.Out, out)
	} else {
		fmt.Fprint(streams.Out, out)
	}
	return 0, nil
}

func builtinExit(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	code := 0
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			code = n
		}
	}
	os.Exit(code)
	return code, nil
}

func builtinEnv(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	env := sh.Env()
	names := make([]string, 0, len(env))
	for k := range env {
		if sh.IsExported(k) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(streams.Out, "%s=%s\n", k, env[k])
	}
	return 0, nil
}

func builtinType(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	status := 0
	for _, name := range args {
		switch {
		case sh.Functions() != nil && functionExists(sh, name):
			fmt.Fprintf(streams.Out, "%s is a function\n", name)
		case isBuiltinName(name):
			fmt.Fprintf(streams.Out, "%s is a shell builtin\n", name)
		default:
			if _, ok := sh.Aliases()[name]; ok {
				fmt.Fprintf(streams.Out, "%s is aliased to `%s'\n", name, sh.Aliases()[name])
				continue
			}
			path, err := lookPath(sh, name)
			if err != nil {
				fmt.Fprintf(streams.Err, "%s: not found\n", name)
				status = 1
				continue
			}
			fmt.Fprintf(streams.Out, "%s is %s\n", name, path)
		}
	}
	return status, nil
}

func builtinWhich(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	status := 0
	for _, name := range args {
		path, err := lookPath(sh, name)
		if err != nil {
			status = 1
			continue
		}
		fmt.Fprintln(streams.Out, path)
	}
	return status, nil
}

// lookPath resolves name the same way the executor's external-command
// dispatch does, through exec.Resolve, so `type`/`which` can never
// report a name as found that the executor would then refuse to run
// (or vice versa).
func lookPath(sh Shell, name string) (string, error) {
	path, err := exec.Resolve(name, sh.Env()["PATH"])
	if err != nil {
		return "", fmt.Errorf("%s: not found", name)
	}
	return path, nil
}

func functionExists(sh Shell, name string) bool {
	_, ok := sh.Functions().Lookup(name)
	return ok
}

func builtinHelp(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	fmt.Fprintln(streams.Out, "ushell builtins:")
	for _, name := range []string{
		"cd", "pwd", "echo", "exit", "env", "export", "unset", "set",
		"alias", "unalias", "type", "which", "help", "clear", "history",
		"jobs", "fg", "bg", "kill", "time", "reload", "source", ".",
	} {
		fmt.Fprintf(streams.Out, "  %s\n", name)
	}
	return 0, nil
}

func builtinClear(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	fmt.Fprint(streams.Out, "\033[H\033[2J")
	return 0, nil
}

func isBuiltinName(name string) bool {
	switch name {
	case "cd", "pwd", "echo", "exit", "env", "export", "unset", "set",
		"alias", "unalias", "type", "which", "help", "clear", "history",
		"jobs", "fg", "bg", "kill", "time", "reload", "source", ".":
		return true
	}
	return false
}

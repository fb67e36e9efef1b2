package expand

import (
	"bytes"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/phillarmonic/ushell/internal/token"
	"github.com/phillarmonic/ushell/internal/ushellerr"
)

const sandboxMetachars = ";&|<>`$\\"

// expandCommandSubstitution performs step 4 of §4.2: $(...) (nested
// parens balanced) and the flat backtick form, run per ctx's
// SubstitutionMode.
func (e *Engine) expandCommandSubstitution(s string, ctx *Context) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "$("):
			end := findParenClose(s, i+2)
			if end < 0 {
				out.WriteString(s[i:])
				i = len(s)
				continue
			}
			result, err := e.runSubstitution(s[i+2:end], ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(result)
			i = end + 1
		case s[i] == '`':
			end := strings.IndexByte(s[i+1:], '`')
			if end < 0 {
				out.WriteString(s[i:])
				i = len(s)
				continue
			}
			result, err := e.runSubstitution(s[i+1:i+1+end], ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(result)
			i = i + 1 + end + 1
		default:
			out.WriteByte(s[i])
			i++
		}
	}
	return out.String(), nil
}

// findParenClose finds the ')' balancing the '(' implied at start
// (start points just past "$(").
func findParenClose(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (e *Engine) runSubstitution(command string, ctx *Context) (string, error) {
	command = strings.TrimSpace(command)

	var output []byte
	var err error

	switch ctx.SubstitutionMode {
	case ModeFull:
		output, err = e.runFull(command, ctx)
	default:
		output, err = e.runSandboxed(command, ctx)
	}
	if err != nil {
		return "", err
	}

	return strings.TrimRight(string(output), "\n"), nil
}

func (e *Engine) runFull(command string, ctx *Context) ([]byte, error) {
	shell, shellFlag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, shellFlag = "cmd", "/c"
	}
	cmd := exec.Command(shell, shellFlag, command)
	cmd.Dir = ctx.CWD
	cmd.Env = envSlice(ctx.Environment)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, ushellerr.NewExpansionError("command substitution failed: %s: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (e *Engine) runSandboxed(command string, ctx *Context) ([]byte, error) {
	if strings.ContainsAny(command, sandboxMetachars) {
		return nil, ushellerr.NewExpansionError("sandbox: command substitution rejected (shell metacharacter in %q)", command)
	}

	toks := e.TokenizeCached(command)
	if len(toks) == 0 {
		return nil, ushellerr.NewExpansionError("sandbox: empty command substitution")
	}
	var argv []string
	for _, t := range toks {
		argv = append(argv, token.StripQuotes(t))
	}

	allow := ctx.SandboxAllow
	if allow == nil {
		allow = DefaultSandboxAllow()
	}
	if !allow[argv[0]] {
		return nil, ushellerr.NewExpansionError("sandbox: %q is not in the command-substitution allowlist", argv[0])
	}

	path, err := e.resolveExecutable(argv[0], ctx)
	if err != nil {
		return nil, ushellerr.NewExpansionError("sandbox: %s", err)
	}

	// quoted is the human-readable, re-runnable form of the argv
	// actually spawned; the process itself is exec'd directly with no
	// intervening shell, but a failure needs to show the user exactly
	// what ran.
	quoted := shellescape.QuoteCommand(argv)

	cmd := exec.Command(path, argv[1:]...)
	cmd.Dir = ctx.CWD
	cmd.Env = envSlice(ctx.Environment)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, ushellerr.NewExpansionError("sandbox: %s: %s: %s", quoted, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// resolveExecutable resolves name to an absolute path, consulting and
// populating the executable-resolution cache (§4.2.1), invalidated
// whenever the observed PATH changes.
func (e *Engine) resolveExecutable(name string, ctx *Context) (string, error) {
	path := ctx.Environment["PATH"]
	if path == "" {
		path = os.Getenv("PATH")
	}
	e.caches.invalidateExecutableIfPATHChanged(path)

	if v, ok := e.caches.executable.Get(name); ok {
		if v == "" {
			return "", ushellerr.NewResolutionError(name)
		}
		return v, nil
	}

	resolved, err := exec.LookPath(name)
	if err != nil {
		e.caches.executable.Add(name, "")
		return "", ushellerr.NewResolutionError(name)
	}
	e.caches.executable.Add(name, resolved)
	return resolved, nil
}

func envSlice(m map[string]string) []string {
	if len(m) == 0 {
		return os.Environ()
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

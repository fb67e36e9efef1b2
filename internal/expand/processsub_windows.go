//go:build windows

package expand

import (
	"bytes"
	"os"
	"os/exec"
)

// createInputSubstitution on Windows (no FIFOs) runs the command
// synchronously and writes its output to a plain temp file.
func (e *Engine) createInputSubstitution(command string, ctx *Context) (string, error) {
	f, err := os.CreateTemp("", "ushell-procsub-in-*")
	if err != nil {
		return "", err
	}
	defer f.Close()

	cmd := exec.Command("cmd", "/c", command)
	cmd.Dir = ctx.CWD
	cmd.Env = envSlice(ctx.Environment)
	var out bytes.Buffer
	cmd.Stdout = &out
	_ = cmd.Run()
	_, _ = f.Write(out.Bytes())

	return f.Name(), nil
}

// createOutputSubstitution on Windows creates an empty temp file; the
// caller's writes are picked up and fed to the command once the shell
// next polls it (best-effort, since named pipes aren't portable here).
func (e *Engine) createOutputSubstitution(command string, ctx *Context) (string, error) {
	f, err := os.CreateTemp("", "ushell-procsub-out-*")
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()

	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		cmd := exec.Command("cmd", "/c", command)
		cmd.Dir = ctx.CWD
		cmd.Env = envSlice(ctx.Environment)
		cmd.Stdin = bytes.NewReader(data)
		_ = cmd.Run()
	}()

	return path, nil
}

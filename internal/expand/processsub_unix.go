//go:build !windows

package expand

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func fifoPath(prefix string) (string, error) {
	dir, err := os.MkdirTemp("", "ushell-procsub")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, prefix)
	if err := unix.Mkfifo(path, 0600); err != nil {
		return "", fmt.Errorf("mkfifo %s: %w", path, err)
	}
	return path, nil
}

// createInputSubstitution implements `<(cmd)`: a FIFO that, once a
// reader opens it, streams cmd's stdout.
func (e *Engine) createInputSubstitution(command string, ctx *Context) (string, error) {
	path, err := fifoPath("in")
	if err != nil {
		return "", err
	}

	go func() {
		f, err := os.OpenFile(path, os.O_WRONLY, os.ModeNamedPipe)
		if err != nil {
			return
		}
		defer f.Close()

		shell, flag := "/bin/sh", "-c"
		cmd := exec.Command(shell, flag, command)
		cmd.Dir = ctx.CWD
		cmd.Env = envSlice(ctx.Environment)
		cmd.Stdout = f
		_ = cmd.Run()
	}()

	return path, nil
}

// createOutputSubstitution implements `>(cmd)`: a FIFO that, once
// written to, feeds cmd's stdin.
func (e *Engine) createOutputSubstitution(command string, ctx *Context) (string, error) {
	path, err := fifoPath("out")
	if err != nil {
		return "", err
	}

	go func() {
		f, err := os.OpenFile(path, os.O_RDONLY, os.ModeNamedPipe)
		if err != nil {
			return
		}
		defer f.Close()

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(f)

		shell, flag := "/bin/sh", "-c"
		cmd := exec.Command(shell, flag, command)
		cmd.Dir = ctx.CWD
		cmd.Env = envSlice(ctx.Environment)
		cmd.Stdin = bytes.NewReader(buf.Bytes())
		_ = cmd.Run()
	}()

	return path, nil
}

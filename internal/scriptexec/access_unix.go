//go:build !windows

package scriptexec

import "golang.org/x/sys/unix"

func canRead(path string) bool  { return unix.Access(path, unix.R_OK) == nil }
func canWrite(path string) bool { return unix.Access(path, unix.W_OK) == nil }
func canExec(path string) bool  { return unix.Access(path, unix.X_OK) == nil }

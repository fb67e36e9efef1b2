//go:build windows

package scriptexec

import "os"

// Windows has no POSIX permission-bit model; existence is the closest
// approximation a -r/-w/-x test can make without shelling out to
// icacls, so all three collapse to a stat check.
func canRead(path string) bool  { _, err := os.Stat(path); return err == nil }
func canWrite(path string) bool { _, err := os.Stat(path); return err == nil }
func canExec(path string) bool  { _, err := os.Stat(path); return err == nil }

//go:build !windows

package job

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// ResumeBackground sends SIGCONT to a stopped job's process group and
// marks it running again, without bringing it to the foreground.
func (m *Manager) ResumeBackground(id int) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %d not found", id)
	}
	if err := unix.Kill(-j.PGID, syscall.SIGCONT); err != nil {
		return err
	}
	m.mu.Lock()
	j.Status = StatusRunning
	m.mu.Unlock()
	return nil
}

// ResumeForeground sends SIGCONT to a stopped job's process group and
// marks it the foreground job; the caller is responsible for actually
// waiting on it.
func (m *Manager) ResumeForeground(id int) error {
	if err := m.ResumeBackground(id); err != nil {
		return err
	}
	m.SetForeground(id)
	return nil
}

// SignalGroup delivers sig to a job's whole process group, the
// mechanism `kill -s SIG %job` and terminateJob both use.
func (m *Manager) SignalGroup(id int, sig syscall.Signal) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %d not found", id)
	}
	return unix.Kill(-j.PGID, sig)
}

//go:build windows

package job

import (
	"fmt"
	"os"
	"syscall"
)

// Windows has no process groups or SIGCONT/SIGSTOP; a "stopped" job
// there can only ever be resumed logically (the status flips back to
// Running), since the underlying process was never actually suspended.

func (m *Manager) ResumeBackground(id int) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %d not found", id)
	}
	m.mu.Lock()
	j.Status = StatusRunning
	m.mu.Unlock()
	return nil
}

func (m *Manager) ResumeForeground(id int) error {
	if err := m.ResumeBackground(id); err != nil {
		return err
	}
	m.SetForeground(id)
	return nil
}

// SignalGroup on Windows can only terminate the process outright;
// anything short of kill is a no-op.
func (m *Manager) SignalGroup(id int, sig syscall.Signal) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %d not found", id)
	}
	proc, err := os.FindProcess(j.PID)
	if err != nil {
		return err
	}
	if sig == syscall.SIGKILL || sig == syscall.SIGTERM {
		return proc.Kill()
	}
	return nil
}

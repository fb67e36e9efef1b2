package job

import (
	"time"
)

// StartMonitor polls the job table roughly once a second so a
// background job that the executor's own reaper goroutine already
// marked Done gets its completion notice flushed to onDone even if
// nothing else would have looked at the table (e.g. the shell is
// sitting idle at a prompt waiting for input). Callers that don't want
// a ticking goroutine (unit tests, `-c` one-shot invocations) simply
// never call this.
func (m *Manager) StartMonitor(stop <-chan struct{}, onDone func(*Job)) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		announced := map[int]bool{}
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				for _, j := range m.List() {
					if j.Status == StatusDone && !announced[j.ID] {
						announced[j.ID] = true
						if onDone != nil {
							onDone(j)
						}
					}
				}
			}
		}
	}()
}

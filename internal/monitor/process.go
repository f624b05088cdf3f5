package monitor

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessMonitor reports on the current process.
type ProcessMonitor struct {
	mu   sync.Mutex
	proc *process.Process
	err  error
}

// NewProcessMonitor creates a monitor for os.Getpid().
func NewProcessMonitor() *ProcessMonitor {
	p, err := process.NewProcess(int32(os.Getpid()))
	return &ProcessMonitor{proc: p, err: err}
}

func (m *ProcessMonitor) Name() string {
	return "process"
}

func (m *ProcessMonitor) Collect() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	state := &ProcessState{
		PID:        m.proc.Pid,
		Goroutines: runtime.NumGoroutine(),
	}

	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return nil, err
	}
	state.RSSBytes = mem.RSS

	// Best effort; not every platform reports these.
	if threads, err := m.proc.NumThreads(); err == nil {
		state.Threads = threads
	}
	if pct, err := m.proc.CPUPercent(); err == nil {
		state.CPUPercent = pct
	}
	if created, err := m.proc.CreateTime(); err == nil {
		state.UptimeSeconds = int64(time.Since(time.UnixMilli(created)).Seconds())
	}

	return state, nil
}

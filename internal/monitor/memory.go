package monitor

import (
	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryMonitor reports host memory. Training a forest holds the whole
// dataset and every tree in memory, so this is the number to watch when
// n_estimators is raised.
type MemoryMonitor struct {
	virtual func() (*mem.VirtualMemoryStat, error)
	swap    func() (*mem.SwapMemoryStat, error)
}

func NewMemoryMonitor() *MemoryMonitor {
	return &MemoryMonitor{
		virtual: mem.VirtualMemory,
		swap:    mem.SwapMemory,
	}
}

func (m *MemoryMonitor) Name() string {
	return "memory"
}

func (m *MemoryMonitor) Collect() (any, error) {
	v, err := m.virtual()
	if err != nil {
		return nil, err
	}

	state := &MemoryState{
		UsedBytes:      v.Used,
		AvailableBytes: v.Available,
		TotalBytes:     v.Total,
		UsagePercent:   v.UsedPercent,
	}

	// Containers often report no swap at all.
	if s, err := m.swap(); err == nil {
		state.SwapUsedBytes = s.Used
	}

	return state, nil
}

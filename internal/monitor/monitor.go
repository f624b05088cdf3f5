// Package monitor reports resource usage of the running service for the
// status endpoint.
package monitor

import "time"

// Monitor collects one kind of state.
type Monitor interface {
	Name() string
	Collect() (any, error)
}

// ProcessState describes the service process itself.
type ProcessState struct {
	PID           int32   `json:"pid"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	Threads       int32   `json:"threads"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// MemoryState is host memory usage.
type MemoryState struct {
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	TotalBytes     uint64  `json:"total_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
	SwapUsedBytes  uint64  `json:"swap_used_bytes"`
}

// DiskState is usage of the filesystem holding a path. Resolved is the
// directory actually measured.
type DiskState struct {
	Resolved     string  `json:"resolved"`
	UsedBytes    uint64  `json:"used_bytes"`
	FreeBytes    uint64  `json:"free_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// StorageState maps watched paths to their filesystem usage.
type StorageState map[string]DiskState

// Snapshot is the merged output of all monitors.
type Snapshot struct {
	Process   *ProcessState `json:"process,omitempty"`
	Memory    *MemoryState  `json:"memory,omitempty"`
	Storage   StorageState  `json:"storage,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

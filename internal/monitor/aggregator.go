package monitor

import (
	"log/slog"
	"sync"
	"time"
)

// Collector runs its monitors on demand and caches the merged snapshot for
// ttl, so frequent status polls don't rescan the process table.
type Collector struct {
	monitors []Monitor
	ttl      time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last *Snapshot
	now  func() time.Time
}

// NewCollector creates a collector. A zero ttl disables caching.
func NewCollector(monitors []Monitor, ttl time.Duration, logger *slog.Logger) *Collector {
	return &Collector{
		monitors: monitors,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Default returns a collector over the process, host memory, and the given
// storage paths.
func Default(storagePaths []string, logger *slog.Logger) *Collector {
	return NewCollector([]Monitor{
		NewProcessMonitor(),
		NewMemoryMonitor(),
		NewStorageMonitor(storagePaths),
	}, 2*time.Second, logger)
}

// Snapshot returns the current merged state. Failing monitors are logged and
// left out.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.last != nil && c.ttl > 0 && now.Sub(c.last.Timestamp) < c.ttl {
		return *c.last
	}

	snap := Snapshot{Timestamp: now}

	for _, m := range c.monitors {
		data, err := m.Collect()
		if err != nil {
			c.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch v := data.(type) {
		case *ProcessState:
			snap.Process = v
		case *MemoryState:
			snap.Memory = v
		case StorageState:
			snap.Storage = v
		}
	}

	c.last = &snap
	return snap
}

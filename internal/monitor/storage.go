package monitor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/disk"
)

// StorageMonitor reports usage of the filesystems holding paths, such as the
// model artifact directory.
type StorageMonitor struct {
	paths []string
}

func NewStorageMonitor(paths []string) *StorageMonitor {
	if len(paths) == 0 {
		paths = []string{"/"}
	}
	return &StorageMonitor{paths: paths}
}

func (m *StorageMonitor) Name() string {
	return "storage"
}

// Collect measures each path. A path that does not exist yet, like the model
// directory before the first training run, is measured at its nearest
// existing ancestor. Paths that cannot be measured at all are left out.
func (m *StorageMonitor) Collect() (any, error) {
	state := make(StorageState, len(m.paths))

	for _, path := range m.paths {
		resolved, err := existingAncestor(path)
		if err != nil {
			continue
		}

		usage, err := disk.Usage(resolved)
		if err != nil {
			continue
		}

		state[path] = DiskState{
			Resolved:     resolved,
			UsedBytes:    usage.Used,
			FreeBytes:    usage.Free,
			TotalBytes:   usage.Total,
			UsagePercent: usage.UsedPercent,
		}
	}

	return state, nil
}

func existingAncestor(path string) (string, error) {
	p, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		p = parent
	}
}

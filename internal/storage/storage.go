// Package storage persists the trained grade model as a single artifact.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/haskel/gradecast/internal/model"
)

// ErrModelNotFound is returned by Load when no artifact has been stored yet.
var ErrModelNotFound = errors.New("storage: model not found")

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ModelInfo describes the stored artifact.
type ModelInfo struct {
	Backend   string    `json:"backend"`
	Location  string    `json:"location"`
	Exists    bool      `json:"exists"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// MemoryStore keeps the serialized artifact in memory. The model still goes
// through Marshal/Unmarshal so callers observe the same round-trip as with
// durable stores.
type MemoryStore struct {
	mu        sync.RWMutex
	data      []byte
	updatedAt time.Time

	loads  int
	stores int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the stored artifact.
func (s *MemoryStore) Load(ctx context.Context) (model.Regressor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.loads++
	data := s.data
	s.mu.Unlock()

	if data == nil {
		return nil, ErrModelNotFound
	}
	return model.Unmarshal(data)
}

// Store replaces the stored artifact.
func (s *MemoryStore) Store(ctx context.Context, m model.Regressor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := model.Marshal(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = data
	s.updatedAt = time.Now()
	s.stores++
	return nil
}

// Info returns information about the stored artifact.
func (s *MemoryStore) Info(ctx context.Context) (ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ModelInfo{
		Backend:   BackendMemory,
		Location:  "memory",
		Exists:    s.data != nil,
		Size:      int64(len(s.data)),
		UpdatedAt: s.updatedAt,
	}, nil
}

// Counts returns how many times Load and Store were called.
func (s *MemoryStore) Counts() (loads, stores int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads, s.stores
}

package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type recordKey struct {
	studentID int64
	subjectID int64
	date      int64
}

// MemoryStore is an in-process RecordStore and RecordWriter.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]Record)}
}

// Upsert stores r, replacing any record for the same student, subject, and day.
func (s *MemoryStore) Upsert(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("unknown attendance status %q", r.Status)
	}

	r.Date = Day(r.Date)
	key := recordKey{studentID: r.StudentID, subjectID: r.SubjectID, date: r.Date.Unix()}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = r
	return nil
}

// Statuses returns the statuses of matching records ordered by date.
func (s *MemoryStore) Statuses(ctx context.Context, filter RecordFilter) ([]Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []Record
	for _, r := range s.records {
		if filter.Matches(r) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].SubjectID < matched[j].SubjectID
	})

	out := make([]Status, len(matched))
	for i, r := range matched {
		out[i] = r.Status
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

package school

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type gradeKey struct {
	studentID int64
	subjectID int64
}

// MemoryStore implements Registry, GradeBook, and Notifier in memory.
type MemoryStore struct {
	mu sync.RWMutex

	students      map[int64]Student
	subjects      map[int64]Subject
	nextStudentID int64
	nextSubjectID int64

	grades        map[gradeKey]GradeRecord
	performance   map[int64]PerformanceRecord
	notifications []Notification
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students:    make(map[int64]Student),
		subjects:    make(map[int64]Subject),
		grades:      make(map[gradeKey]GradeRecord),
		performance: make(map[int64]PerformanceRecord),
	}
}

func (m *MemoryStore) Student(ctx context.Context, id int64) (Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return Student{}, ErrStudentNotFound
	}
	return s, nil
}

func (m *MemoryStore) Subject(ctx context.Context, id int64) (Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subjects[id]
	if !ok {
		return Subject{}, ErrSubjectNotFound
	}
	return s, nil
}

func (m *MemoryStore) Students(ctx context.Context) ([]Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Subjects(ctx context.Context) ([]Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddStudent registers s, assigning the next ID when s.ID is zero.
func (m *MemoryStore) AddStudent(ctx context.Context, s Student) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == 0 {
		m.nextStudentID++
		s.ID = m.nextStudentID
	} else if s.ID > m.nextStudentID {
		m.nextStudentID = s.ID
	}
	m.students[s.ID] = s
	return s, nil
}

// AddSubject registers s, assigning the next ID when s.ID is zero.
func (m *MemoryStore) AddSubject(ctx context.Context, s Subject) (Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == 0 {
		m.nextSubjectID++
		s.ID = m.nextSubjectID
	} else if s.ID > m.nextSubjectID {
		m.nextSubjectID = s.ID
	}
	m.subjects[s.ID] = s
	return s, nil
}

func (m *MemoryStore) UpsertGrade(ctx context.Context, g GradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now()
	}
	m.grades[gradeKey{g.StudentID, g.SubjectID}] = g
	return nil
}

// Grade returns the grade record for a student and subject.
func (m *MemoryStore) Grade(studentID, subjectID int64) (GradeRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.grades[gradeKey{studentID, subjectID}]
	return g, ok
}

// UpsertPerformance replaces the student's record, keeping its ID.
func (m *MemoryStore) UpsertPerformance(ctx context.Context, p PerformanceRecord) (PerformanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.performance[p.StudentID]; ok {
		p.ID = existing.ID
	} else if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	m.performance[p.StudentID] = p
	return p, nil
}

// RecentPerformance returns up to limit records, most recently updated first.
func (m *MemoryStore) RecentPerformance(ctx context.Context, limit int) ([]PerformanceRecord, error) {
	m.mu.RLock()
	out := make([]PerformanceRecord, 0, len(m.performance))
	for _, p := range m.performance {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].StudentID < out[j].StudentID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Notify(ctx context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, n)
	return nil
}

// Recent returns up to limit notifications for userID, newest first. An empty
// userID matches every user.
func (m *MemoryStore) Recent(ctx context.Context, userID string, limit int) ([]Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if userID != "" && n.UserID != userID {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

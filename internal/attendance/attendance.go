// Package attendance computes windowed attendance percentages and the alerts
// derived from them.
package attendance

import (
	"context"
	"fmt"
	"time"
)

// Status is the recorded attendance status for one class day.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
	StatusExcused Status = "EXCUSED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Attended reports whether s counts toward attendance.
func (s Status) Attended() bool {
	return s == StatusPresent || s == StatusLate
}

// ParseStatus parses a status name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("unknown attendance status %q", s)
	}
	return st, nil
}

// Record is one attendance entry. There is at most one per student, subject,
// and date.
type Record struct {
	StudentID int64     `json:"student_id"`
	SubjectID int64     `json:"subject_id"`
	Date      time.Time `json:"date"`
	Status    Status    `json:"status"`
}

// RecordFilter selects records for one student in an inclusive date range.
// SubjectID 0 matches every subject.
type RecordFilter struct {
	StudentID int64
	SubjectID int64
	From      time.Time
	To        time.Time
}

// Matches reports whether r satisfies the filter.
func (f RecordFilter) Matches(r Record) bool {
	if r.StudentID != f.StudentID {
		return false
	}
	if f.SubjectID != 0 && r.SubjectID != f.SubjectID {
		return false
	}
	d := Day(r.Date)
	return !d.Before(f.From) && !d.After(f.To)
}

// RecordStore returns the statuses of records matching a filter.
type RecordStore interface {
	Statuses(ctx context.Context, filter RecordFilter) ([]Status, error)
}

// RecordWriter inserts or replaces the record for a student, subject, and date.
type RecordWriter interface {
	Upsert(ctx context.Context, r Record) error
}

// Day truncates t to its calendar date, keeping the date t has in its own
// location, and returns midnight UTC of that date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

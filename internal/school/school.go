// Package school holds the student and subject registry, the grade book, and
// the notification sink that surround grade analytics.
package school

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/haskel/gradecast/internal/analytics"
)

var (
	ErrStudentNotFound = errors.New("school: student not found")
	ErrSubjectNotFound = errors.New("school: subject not found")
)

// Student is a registered student.
type Student struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Subject is a taught subject.
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GradeRecord holds the latest scores and final grade of a student in a
// subject. There is one per student and subject.
type GradeRecord struct {
	StudentID            int64     `json:"student_id"`
	SubjectID            int64     `json:"subject_id"`
	AssignmentScore      float64   `json:"assignment_score"`
	ExamScore            float64   `json:"exam_score"`
	AttendancePercentage float64   `json:"attendance_percentage"`
	ParticipationScore   float64   `json:"participation_score"`
	FinalGrade           float64   `json:"final_grade"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// PerformanceRecord is the latest prediction for a student. There is one per
// student.
type PerformanceRecord struct {
	ID              uuid.UUID           `json:"id"`
	StudentID       int64               `json:"student_id"`
	PredictedGrade  float64             `json:"predicted_grade"`
	RiskLevel       analytics.RiskLevel `json:"risk_level"`
	Recommendations string              `json:"recommendations"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Notification is an audit message addressed to an operator.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry resolves students and subjects.
type Registry interface {
	Student(ctx context.Context, id int64) (Student, error)
	Subject(ctx context.Context, id int64) (Subject, error)
	Students(ctx context.Context) ([]Student, error)
	Subjects(ctx context.Context) ([]Subject, error)
	AddStudent(ctx context.Context, s Student) (Student, error)
	AddSubject(ctx context.Context, s Subject) (Subject, error)
}

// GradeBook stores grades and performance records.
type GradeBook interface {
	UpsertGrade(ctx context.Context, g GradeRecord) error
	UpsertPerformance(ctx context.Context, p PerformanceRecord) (PerformanceRecord, error)
	RecentPerformance(ctx context.Context, limit int) ([]PerformanceRecord, error)
}

// Notifier records notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Recent(ctx context.Context, userID string, limit int) ([]Notification, error)
}

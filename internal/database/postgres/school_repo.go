package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/haskel/gradecast/internal/analytics"
	"github.com/haskel/gradecast/internal/school"
)

// SchoolRepository implements school.Registry, school.GradeBook, and
// school.Notifier.
type SchoolRepository struct {
	conn *Connection
}

// NewSchoolRepository creates a school repository.
func NewSchoolRepository(conn *Connection) *SchoolRepository {
	return &SchoolRepository{conn: conn}
}

func (r *SchoolRepository) Student(ctx context.Context, id int64) (school.Student, error) {
	var s school.Student
	err := r.conn.QueryRow(ctx,
		`SELECT id, first_name, last_name FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.FirstName, &s.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return school.Student{}, school.ErrStudentNotFound
	}
	if err != nil {
		return school.Student{}, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

func (r *SchoolRepository) Subject(ctx context.Context, id int64) (school.Subject, error) {
	var s school.Subject
	err := r.conn.QueryRow(ctx,
		`SELECT id, name FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return school.Subject{}, school.ErrSubjectNotFound
	}
	if err != nil {
		return school.Subject{}, fmt.Errorf("failed to get subject: %w", err)
	}
	return s, nil
}

func (r *SchoolRepository) Students(ctx context.Context) ([]school.Student, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, first_name, last_name FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var out []school.Student
	for rows.Next() {
		var s school.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SchoolRepository) Subjects(ctx context.Context) ([]school.Subject, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var out []school.Subject
	for rows.Next() {
		var s school.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SchoolRepository) AddStudent(ctx context.Context, s school.Student) (school.Student, error) {
	err := r.conn.QueryRow(ctx,
		`INSERT INTO students (first_name, last_name) VALUES ($1, $2) RETURNING id`,
		s.FirstName, s.LastName,
	).Scan(&s.ID)
	if err != nil {
		return school.Student{}, fmt.Errorf("failed to add student: %w", err)
	}
	return s, nil
}

func (r *SchoolRepository) AddSubject(ctx context.Context, s school.Subject) (school.Subject, error) {
	err := r.conn.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id`, s.Name,
	).Scan(&s.ID)
	if err != nil {
		return school.Subject{}, fmt.Errorf("failed to add subject: %w", err)
	}
	return s, nil
}

func (r *SchoolRepository) UpsertGrade(ctx context.Context, g school.GradeRecord) error {
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now()
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO student_grades (
			student_id, subject_id, assignment_score, exam_score,
			attendance_percentage, participation_score, final_grade, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id, subject_id) DO UPDATE SET
			assignment_score = EXCLUDED.assignment_score,
			exam_score = EXCLUDED.exam_score,
			attendance_percentage = EXCLUDED.attendance_percentage,
			participation_score = EXCLUDED.participation_score,
			final_grade = EXCLUDED.final_grade,
			updated_at = EXCLUDED.updated_at
	`, g.StudentID, g.SubjectID, g.AssignmentScore, g.ExamScore,
		g.AttendancePercentage, g.ParticipationScore, g.FinalGrade, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert grade: %w", err)
	}
	return nil
}

// UpsertPerformance replaces the student's record. An existing row keeps its ID.
func (r *SchoolRepository) UpsertPerformance(ctx context.Context, p school.PerformanceRecord) (school.PerformanceRecord, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	err := r.conn.QueryRow(ctx, `
		INSERT INTO performance_analytics (
			id, student_id, predicted_grade, risk_level, recommendations, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id) DO UPDATE SET
			predicted_grade = EXCLUDED.predicted_grade,
			risk_level = EXCLUDED.risk_level,
			recommendations = EXCLUDED.recommendations,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`, p.ID, p.StudentID, p.PredictedGrade, string(p.RiskLevel), p.Recommendations, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return school.PerformanceRecord{}, fmt.Errorf("failed to upsert performance: %w", err)
	}
	return p, nil
}

func (r *SchoolRepository) RecentPerformance(ctx context.Context, limit int) ([]school.PerformanceRecord, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, student_id, predicted_grade, risk_level, recommendations, updated_at
		FROM performance_analytics
		ORDER BY updated_at DESC, student_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance: %w", err)
	}
	defer rows.Close()

	var out []school.PerformanceRecord
	for rows.Next() {
		var p school.PerformanceRecord
		var risk string
		if err := rows.Scan(&p.ID, &p.StudentID, &p.PredictedGrade, &risk, &p.Recommendations, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan performance: %w", err)
		}
		p.RiskLevel = analytics.RiskLevel(risk)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SchoolRepository) Notify(ctx context.Context, n school.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO notifications (id, user_id, message, created_at) VALUES ($1, $2, $3, $4)`,
		n.ID, n.UserID, n.Message, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// Recent returns up to limit notifications for userID, newest first. An empty
// userID matches every user and a non-positive limit returns all.
func (r *SchoolRepository) Recent(ctx context.Context, userID string, limit int) ([]school.Notification, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, message, created_at
		FROM notifications
		WHERE ($1::text = '' OR user_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, lim)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []school.Notification
	for rows.Next() {
		var n school.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

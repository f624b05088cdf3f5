package postgres

import (
	"context"
	"fmt"

	"github.com/haskel/gradecast/internal/attendance"
)

// AttendanceRepository stores attendance records.
type AttendanceRepository struct {
	conn *Connection
}

// NewAttendanceRepository creates an attendance repository.
func NewAttendanceRepository(conn *Connection) *AttendanceRepository {
	return &AttendanceRepository{conn: conn}
}

// Statuses returns the statuses of matching records ordered by date.
func (r *AttendanceRepository) Statuses(ctx context.Context, f attendance.RecordFilter) ([]attendance.Status, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT status
		FROM attendance_records
		WHERE student_id = $1
		  AND date BETWEEN $2 AND $3
		  AND ($4::bigint = 0 OR subject_id = $4)
		ORDER BY date, subject_id
	`, f.StudentID, f.From, f.To, f.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []attendance.Status
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		out = append(out, attendance.Status(s))
	}
	return out, rows.Err()
}

// Upsert inserts the record or replaces the status of an existing record for
// the same student, subject, and date.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec attendance.Record) error {
	if !rec.Status.IsValid() {
		return fmt.Errorf("unknown attendance status %q", rec.Status)
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO attendance_records (student_id, subject_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, subject_id, date)
		DO UPDATE SET status = EXCLUDED.status
	`, rec.StudentID, rec.SubjectID, attendance.Day(rec.Date), string(rec.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

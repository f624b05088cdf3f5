package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/haskel/gradecast/internal/attendance"
)

const dateLayout = "2006-01-02"

type AttendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"gt=0"`
	SubjectID int64  `json:"subject_id" validate:"gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"oneof=PRESENT ABSENT LATE EXCUSED"`
}

// handleAttendanceTrend serves GET /v1/students/{id}/attendance?subject=&days=.
func (s *Server) handleAttendanceTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	studentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || studentID < 1 {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid student id"})
		return
	}

	subjectID, err := queryInt(r, "subject", 0)
	if err != nil || subjectID < 0 {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid subject id"})
		return
	}

	days, err := queryInt(r, "days", int64(s.config.Attendance.WindowDays))
	if err != nil || days < 1 {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "days must be a positive integer"})
		return
	}

	registry := s.deps.School.Registry()
	if _, err := registry.Student(ctx, studentID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if subjectID != 0 {
		if _, err := registry.Subject(ctx, subjectID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	res, err := s.deps.Attendance.Trend(ctx, attendance.Query{
		StudentID:  studentID,
		SubjectID:  subjectID,
		WindowDays: int(days),
		Now:        time.Now(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

// handleRecordAttendance upserts one record per student, subject, and date.
func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AttendanceRequest
	if !s.decode(w, r, &req) {
		return
	}

	registry := s.deps.School.Registry()
	if _, err := registry.Student(ctx, req.StudentID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := registry.Subject(ctx, req.SubjectID); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Validated above, so neither can fail.
	date, _ := time.Parse(dateLayout, req.Date)
	status, _ := attendance.ParseStatus(req.Status)

	rec := attendance.Record{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Date:      date,
		Status:    status,
	}
	if err := s.deps.AttendanceWriter.Upsert(ctx, rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, rec)
}

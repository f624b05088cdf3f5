package server

import (
	"net/http"

	"github.com/haskel/gradecast/internal/school"
)

type GradeRequest struct {
	StudentID int64  `json:"student_id" validate:"gt=0"`
	SubjectID int64  `json:"subject_id" validate:"gt=0"`
	UserID    string `json:"user_id"`
	FeaturesRequest
}

type StudentRequest struct {
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"notblank,max=100"`
}

type SubjectRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

func (s *Server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.deps.School.RecordGrade(r.Context(), school.GradeInput{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Features:  req.vector(),
		UserID:    operator(r, req.UserID),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.School.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit < 1 {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		return
	}

	notes, err := s.deps.School.Notifications(r.Context(), operator(r, r.URL.Query().Get("user")), int(limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.deps.School.Registry().Students(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if !s.decode(w, r, &req) {
		return
	}

	st, err := s.deps.School.Registry().AddStudent(r.Context(), school.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.deps.School.Registry().Subjects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if !s.decode(w, r, &req) {
		return
	}

	sub, err := s.deps.School.Registry().AddSubject(r.Context(), school.Subject{Name: req.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sub)
}

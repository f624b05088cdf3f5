package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/haskel/gradecast/internal/analytics"
	"github.com/haskel/gradecast/internal/monitor"
	"github.com/haskel/gradecast/internal/school"
	"github.com/haskel/gradecast/internal/server/middleware"
	"github.com/haskel/gradecast/internal/storage"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ModelStatus is the model lifecycle state plus artifact metadata.
type ModelStatus struct {
	State    string             `json:"state"`
	Artifact *storage.ModelInfo `json:"artifact,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type StatusResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Model   ModelStatus       `json:"model"`
	System  *monitor.Snapshot `json:"system,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "gradecast",
		Version: s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:  "ok",
		Version: s.version,
		Model:   s.modelStatus(r.Context()),
	}

	if s.deps.Monitor != nil {
		snap := s.deps.Monitor.Snapshot()
		resp.System = &snap
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// modelStatus reports the predictor state and artifact info. An unreadable
// store is reported in the body rather than failing the request.
func (s *Server) modelStatus(ctx context.Context) ModelStatus {
	status := ModelStatus{State: s.deps.Predictor.State().String()}

	info, err := s.deps.Models.Info(ctx)
	if err != nil {
		s.logger.Warn("failed to read model info", "error", err)
		status.Error = err.Error()
		return status
	}
	status.Artifact = &info
	return status
}

// queryInt parses an optional integer query parameter. Missing means def.
func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// operator is who notifications for a request go to: the explicit user, the
// authenticated user, or "system".
func operator(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if u := middleware.User(r.Context()); u != "" {
		return u
	}
	return "system"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, school.ErrStudentNotFound):
		status, msg = http.StatusNotFound, "student not found"
	case errors.Is(err, school.ErrSubjectNotFound):
		status, msg = http.StatusNotFound, "subject not found"
	case errors.Is(err, analytics.ErrPersistence):
		msg = "model persistence failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusServiceUnavailable, "request canceled"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", middleware.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}

	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

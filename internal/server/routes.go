package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/predict", s.handlePredict)
	mux.HandleFunc("GET /v1/model", s.handleModelInfo)
	mux.HandleFunc("POST /v1/model/train", s.handleTrain)

	mux.HandleFunc("POST /v1/grades", s.handleRecordGrade)
	mux.HandleFunc("GET /v1/analytics", s.handleDashboard)
	mux.HandleFunc("GET /v1/notifications", s.handleNotifications)

	mux.HandleFunc("GET /v1/students", s.handleListStudents)
	mux.HandleFunc("POST /v1/students", s.handleAddStudent)
	mux.HandleFunc("GET /v1/subjects", s.handleListSubjects)
	mux.HandleFunc("POST /v1/subjects", s.handleAddSubject)

	mux.HandleFunc("GET /v1/students/{id}/attendance", s.handleAttendanceTrend)
	mux.HandleFunc("POST /v1/attendance", s.handleRecordAttendance)

	return mux
}

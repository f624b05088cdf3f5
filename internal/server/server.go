// Package server exposes grade prediction, training, and attendance analysis
// over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/gradecast/internal/analytics"
	"github.com/haskel/gradecast/internal/attendance"
	"github.com/haskel/gradecast/internal/config"
	"github.com/haskel/gradecast/internal/dataset"
	"github.com/haskel/gradecast/internal/monitor"
	"github.com/haskel/gradecast/internal/school"
	"github.com/haskel/gradecast/internal/server/middleware"
	"github.com/haskel/gradecast/internal/storage"
)

// Predictor scores feature vectors and reports its lifecycle state.
type Predictor interface {
	Predict(ctx context.Context, f dataset.FeatureVector) (*analytics.PredictionResult, error)
	State() analytics.State
}

// ModelInfoSource describes the persisted model artifact.
type ModelInfoSource interface {
	Info(ctx context.Context) (storage.ModelInfo, error)
}

// Deps are the components the handlers call into.
type Deps struct {
	Predictor        Predictor
	Models           ModelInfoSource
	School           *school.Service
	Attendance       *attendance.Analyzer
	AttendanceWriter attendance.RecordWriter
	// Monitor is optional; /status omits process stats without it.
	Monitor *monitor.Collector
}

type Server struct {
	httpServer *http.Server
	deps       Deps
	config     *config.Config
	logger     *slog.Logger
	version    string
}

func New(cfg *config.Config, deps Deps, logger *slog.Logger, version string) *Server {
	s := &Server{
		deps:    deps,
		config:  cfg,
		logger:  logger,
		version: version,
	}

	mux := s.setupRoutes()

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}),
		middleware.Auth(middleware.AuthConfig{
			Enabled:  cfg.Auth.Enabled,
			User:     cfg.Auth.User,
			Password: cfg.Auth.Password,
		}, "/health"),
		middleware.MaxBody(0),
	)

	// Cold-start training happens inside a request, so the write timeout
	// leaves room for a full forest fit.
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

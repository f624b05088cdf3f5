package server

import (
	"net/http"

	"github.com/haskel/gradecast/internal/dataset"
)

// FeaturesRequest carries the four scores. All are required; values are not
// range-checked.
type FeaturesRequest struct {
	AssignmentScore      *float64 `json:"assignment_score" validate:"required"`
	ExamScore            *float64 `json:"exam_score" validate:"required"`
	AttendancePercentage *float64 `json:"attendance_percentage" validate:"required"`
	ParticipationScore   *float64 `json:"participation_score" validate:"required"`
}

func (f FeaturesRequest) vector() dataset.FeatureVector {
	return dataset.FeatureVector{
		AssignmentScore:      *f.AssignmentScore,
		ExamScore:            *f.ExamScore,
		AttendancePercentage: *f.AttendancePercentage,
		ParticipationScore:   *f.ParticipationScore,
	}
}

type TrainRequest struct {
	UserID string `json:"user_id"`
}

type TrainResponse struct {
	MSE        float64 `json:"mse"`
	TrainSize  int     `json:"train_size"`
	TestSize   int     `json:"test_size"`
	DurationMS int64   `json:"duration_ms"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req FeaturesRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.deps.Predictor.Predict(r.Context(), req.vector())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.modelStatus(r.Context()))
}

// handleTrain retrains unconditionally. An empty body is allowed.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, &req) {
			return
		}
	}

	res, err := s.deps.School.Retrain(r.Context(), operator(r, req.UserID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, TrainResponse{
		MSE:        res.MSE,
		TrainSize:  res.TrainSize,
		TestSize:   res.TestSize,
		DurationMS: res.Duration.Milliseconds(),
	})
}

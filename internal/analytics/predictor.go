package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/haskel/gradecast/internal/dataset"
	"github.com/haskel/gradecast/internal/model"
	"github.com/haskel/gradecast/internal/storage"
)

// PredictionResult is the scored outcome for one feature vector.
type PredictionResult struct {
	PredictedGrade float64   `json:"predicted_grade"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
}

// Predictor scores feature vectors with the stored model, training it first
// when the store is empty.
type Predictor struct {
	store   ModelStore
	trainer *Trainer
	lock    TrainingLock
	logger  *slog.Logger

	// group collapses concurrent cold starts into one training run.
	group singleflight.Group
	state atomic.Int32
}

// NewPredictor creates a predictor. lock may be nil when a single process
// owns the store.
func NewPredictor(store ModelStore, trainer *Trainer, lock TrainingLock, logger *slog.Logger) *Predictor {
	return &Predictor{
		store:   store,
		trainer: trainer,
		lock:    lock,
		logger:  logger,
	}
}

// State returns the lifecycle state observed by the last call.
func (p *Predictor) State() State {
	return State(p.state.Load())
}

// Predict loads the model, scores f, and classifies the grade. Inputs are not
// range-checked.
func (p *Predictor) Predict(ctx context.Context, f dataset.FeatureVector) (*PredictionResult, error) {
	m, err := p.load(ctx)
	if err != nil {
		predictionErrors.Inc()
		return nil, err
	}

	grade, err := m.Predict(f.Slice())
	if err != nil {
		predictionErrors.Inc()
		return nil, fmt.Errorf("failed to score features: %w", err)
	}

	risk, recommendation := Classify(grade)
	predictions.WithLabelValues(string(risk)).Inc()

	p.logger.Debug("grade predicted",
		"model.name", m.Name(),
		"grade", grade,
		"risk", risk,
	)

	return &PredictionResult{
		PredictedGrade: grade,
		RiskLevel:      risk,
		Recommendation: recommendation,
	}, nil
}

// Warm makes sure a model is stored, training one if needed.
func (p *Predictor) Warm(ctx context.Context) error {
	_, err := p.load(ctx)
	return err
}

func (p *Predictor) load(ctx context.Context) (model.Regressor, error) {
	m, err := p.store.Load(ctx)
	if err == nil {
		p.state.Store(int32(StateReady))
		return m, nil
	}
	if !errors.Is(err, storage.ErrModelNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := p.coldStart(ctx); err != nil {
		return nil, err
	}

	m, err = p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	p.state.Store(int32(StateReady))
	return m, nil
}

// coldStart trains and persists a model. Callers arriving while a run is in
// flight wait for it and share its outcome.
func (p *Predictor) coldStart(ctx context.Context) error {
	_, err, shared := p.group.Do("train", func() (any, error) {
		p.state.Store(int32(StateTraining))

		if p.lock != nil {
			unlock, err := p.lock.Lock(ctx)
			if err != nil {
				p.state.Store(int32(StateUntrained))
				return nil, fmt.Errorf("failed to acquire training lock: %w", err)
			}
			defer unlock()
		}

		// A previous flight or another process may have stored a model since
		// our first load.
		_, err := p.store.Load(ctx)
		if err == nil {
			p.logger.Debug("model already stored, skipping cold start")
			return nil, nil
		}
		if !errors.Is(err, storage.ErrModelNotFound) {
			p.state.Store(int32(StateUntrained))
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		p.logger.Info("no stored model, training on cold start")
		if _, err := p.trainer.run(ctx, TriggerColdStart); err != nil {
			p.state.Store(int32(StateUntrained))
			return nil, err
		}
		return nil, nil
	})

	if shared {
		p.logger.Debug("joined in-flight cold start")
	}
	return err
}

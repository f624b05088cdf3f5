// Package analytics trains the grade regressor, persists it, and turns
// predictions into risk tiers.
package analytics

import (
	"context"
	"errors"

	"github.com/haskel/gradecast/internal/model"
	"github.com/haskel/gradecast/internal/storage"
)

// ErrPersistence wraps any failure to read or write the model artifact.
var ErrPersistence = errors.New("analytics: model persistence failed")

// ModelStore is where the trained model lives between runs. Load must return
// storage.ErrModelNotFound when nothing has been stored.
type ModelStore interface {
	Load(ctx context.Context) (model.Regressor, error)
	Store(ctx context.Context, m model.Regressor) error
	Info(ctx context.Context) (storage.ModelInfo, error)
}

// TrainingLock serializes cold-start training across processes sharing a
// store. Lock blocks until acquired or ctx is done.
type TrainingLock interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// State is the predictor lifecycle state.
type State int32

const (
	StateUntrained State = iota
	StateTraining
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTraining:
		return "training"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

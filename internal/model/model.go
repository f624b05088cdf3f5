package model

import (
	"errors"
	"io"
)

// ModelType represents the type of regression model.
type ModelType string

const (
	ModelTypeRandomForest ModelType = "random_forest"
	ModelTypeLinear       ModelType = "linear"
)

// IsValid checks if the model type is valid.
func (m ModelType) IsValid() bool {
	switch m {
	case ModelTypeRandomForest, ModelTypeLinear:
		return true
	}
	return false
}

// String returns string representation.
func (m ModelType) String() string {
	return string(m)
}

var (
	// ErrNotFitted is returned when predicting with a model that has not been fitted.
	ErrNotFitted = errors.New("model: not fitted")

	// ErrDimensionMismatch is returned when a feature row has the wrong width.
	ErrDimensionMismatch = errors.New("model: feature dimension mismatch")

	// ErrEmptyDataset is returned when fitting on zero rows.
	ErrEmptyDataset = errors.New("model: empty dataset")
)

// Regressor is a supervised model mapping a feature row to a scalar.
type Regressor interface {
	// Name returns the model name.
	Name() string

	// Fit trains the model on rows x with targets y, replacing any previous fit.
	Fit(x [][]float64, y []float64) error

	// Predict scores a single feature row.
	Predict(x []float64) (float64, error)

	// Info returns a summary of the fitted model.
	Info() Info

	// Persistence
	Save(w io.Writer) error
	Load(r io.Reader) error
}

// Info summarises a fitted model.
type Info struct {
	ModelName  string `json:"model_name"`
	Fitted     bool   `json:"fitted"`
	NFeatures  int    `json:"n_features"`
	Estimators int    `json:"estimators,omitempty"`
	Nodes      int    `json:"nodes,omitempty"`
}

// PredictBatch scores every row of x.
func PredictBatch(m Regressor, x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := m.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func validateXY(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 || len(y) == 0 {
		return 0, ErrEmptyDataset
	}
	if len(x) != len(y) {
		return 0, errors.New("model: x and y have different lengths")
	}
	width := len(x[0])
	if width == 0 {
		return 0, ErrDimensionMismatch
	}
	for _, row := range x {
		if len(row) != width {
			return 0, ErrDimensionMismatch
		}
	}
	return width, nil
}

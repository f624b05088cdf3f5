package model

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"sync"
)

// LinearModel is an ordinary least squares regressor with an intercept.
// Prediction: y = Intercept + sum(Coefficients[i] * x[i])
type LinearModel struct {
	mu sync.RWMutex

	intercept    float64
	coefficients []float64
}

type linearState struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// ErrSingular is returned when the normal equations have no unique solution.
var ErrSingular = errors.New("model: singular design matrix")

// NewLinearModel creates a new linear regression model.
func NewLinearModel() *LinearModel {
	return &LinearModel{}
}

// Name returns the model name.
func (m *LinearModel) Name() string {
	return string(ModelTypeLinear)
}

// Coefficients returns a copy of the fitted coefficients and the intercept.
func (m *LinearModel) Coefficients() ([]float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]float64, len(m.coefficients))
	copy(out, m.coefficients)
	return out, m.intercept
}

// Fit solves the normal equations (XᵀX)β = Xᵀy with a leading bias column.
func (m *LinearModel) Fit(x [][]float64, y []float64) error {
	width, err := validateXY(x, y)
	if err != nil {
		return err
	}

	// Augmented matrix [XᵀX | Xᵀy] of size p x (p+1), with p = width+1.
	p := width + 1
	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p+1)
	}

	row := make([]float64, p)
	for r, xr := range x {
		row[0] = 1
		copy(row[1:], xr)
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				a[i][j] += row[i] * row[j]
			}
			a[i][p] += row[i] * y[r]
		}
	}

	beta, err := solve(a)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.intercept = beta[0]
	m.coefficients = beta[1:]
	return nil
}

// solve performs Gaussian elimination with partial pivoting on an augmented matrix.
func solve(a [][]float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c <= n; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}

	beta := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := a[r][n]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * beta[c]
		}
		beta[r] = sum / a[r][r]
	}
	return beta, nil
}

// Predict returns the linear prediction for x.
func (m *LinearModel) Predict(x []float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.coefficients == nil {
		return 0, ErrNotFitted
	}
	if len(x) != len(m.coefficients) {
		return 0, ErrDimensionMismatch
	}

	y := m.intercept
	for i, c := range m.coefficients {
		y += c * x[i]
	}
	return y, nil
}

// Info returns a summary of the model.
func (m *LinearModel) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Info{
		ModelName: m.Name(),
		Fitted:    m.coefficients != nil,
		NFeatures: len(m.coefficients),
	}
}

// Save serializes the model state to a writer.
func (m *LinearModel) Save(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return json.NewEncoder(w).Encode(linearState{
		Intercept:    m.intercept,
		Coefficients: m.coefficients,
	})
}

// Load deserializes the model state from a reader.
func (m *LinearModel) Load(r io.Reader) error {
	var state linearState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.intercept = state.Intercept
	m.coefficients = state.Coefficients
	return nil
}

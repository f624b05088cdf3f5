package model

import "math"

// MeanSquaredError returns the mean of squared residuals. It returns NaN for
// empty or mismatched inputs.
func MeanSquaredError(want, got []float64) float64 {
	if len(want) == 0 || len(want) != len(got) {
		return math.NaN()
	}
	var sum float64
	for i := range want {
		d := want[i] - got[i]
		sum += d * d
	}
	return sum / float64(len(want))
}

// Package dataset generates the synthetic labelled grade dataset used to train
// the grade regression model.
package dataset

import (
	"math/rand/v2"
)

const (
	// DefaultSampleCount is the number of rows produced by Default.
	DefaultSampleCount = 100
	// DefaultSeed is the seed used by Default.
	DefaultSeed int64 = 42

	// NumFeatures is the width of a FeatureVector.
	NumFeatures = 4
)

// FeatureVector holds the four scores a grade is predicted from.
type FeatureVector struct {
	AssignmentScore      float64 `json:"assignment_score"`
	ExamScore            float64 `json:"exam_score"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	ParticipationScore   float64 `json:"participation_score"`
}

// Slice returns the features in model column order.
func (f FeatureVector) Slice() []float64 {
	return []float64{f.AssignmentScore, f.ExamScore, f.AttendancePercentage, f.ParticipationScore}
}

// FromSlice builds a FeatureVector from model column order.
func FromSlice(x []float64) FeatureVector {
	var f FeatureVector
	if len(x) > 0 {
		f.AssignmentScore = x[0]
	}
	if len(x) > 1 {
		f.ExamScore = x[1]
	}
	if len(x) > 2 {
		f.AttendancePercentage = x[2]
	}
	if len(x) > 3 {
		f.ParticipationScore = x[3]
	}
	return f
}

// Example is one labelled training row.
type Example struct {
	Features FeatureVector
	Label    float64
}

// LabelWeights are the fixed weights of the final grade formula. They sum to 1.
type LabelWeights struct {
	Assignment    float64
	Exam          float64
	Attendance    float64
	Participation float64
}

// Sum returns the total of all weights.
func (w LabelWeights) Sum() float64 {
	return w.Assignment + w.Exam + w.Attendance + w.Participation
}

// Weights is the final grade formula.
var Weights = LabelWeights{
	Assignment:    0.3,
	Exam:          0.4,
	Attendance:    0.2,
	Participation: 0.1,
}

// Label computes the final grade for a feature vector.
// The explicit conversions keep each product rounded so the result does not
// depend on whether the target fuses multiply-add.
func Label(f FeatureVector) float64 {
	return float64(Weights.Assignment*f.AssignmentScore) +
		float64(Weights.Exam*f.ExamScore) +
		float64(Weights.Attendance*f.AttendancePercentage) +
		float64(Weights.Participation*f.ParticipationScore)
}

// Distribution describes one normally distributed, clamped feature stream.
type Distribution struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Clamp restricts v to [Min, Max].
func (d Distribution) Clamp(v float64) float64 {
	return min(max(v, d.Min), d.Max)
}

// Feature streams in column order.
var (
	AssignmentDist    = Distribution{Mean: 75, StdDev: 15, Min: 0, Max: 100}
	ExamDist          = Distribution{Mean: 70, StdDev: 20, Min: 0, Max: 100}
	AttendanceDist    = Distribution{Mean: 85, StdDev: 10, Min: 50, Max: 100}
	ParticipationDist = Distribution{Mean: 80, StdDev: 12, Min: 0, Max: 100}
)

// Distributions returns the feature streams in column order.
func Distributions() [NumFeatures]Distribution {
	return [NumFeatures]Distribution{AssignmentDist, ExamDist, AttendanceDist, ParticipationDist}
}

// Generate draws sampleCount labelled rows from a generator seeded with seed.
// Each feature stream is drawn in full before the next one, so the output is a
// pure function of (sampleCount, seed).
func Generate(sampleCount int, seed int64) ([]FeatureVector, []float64) {
	if sampleCount <= 0 {
		return []FeatureVector{}, []float64{}
	}

	rng := NewRand(seed)
	dists := Distributions()

	var columns [NumFeatures][]float64
	for i, d := range dists {
		col := make([]float64, sampleCount)
		for j := range col {
			col[j] = d.Clamp(rng.NormFloat64()*d.StdDev + d.Mean)
		}
		columns[i] = col
	}

	features := make([]FeatureVector, sampleCount)
	labels := make([]float64, sampleCount)
	for j := 0; j < sampleCount; j++ {
		f := FeatureVector{
			AssignmentScore:      columns[0][j],
			ExamScore:            columns[1][j],
			AttendancePercentage: columns[2][j],
			ParticipationScore:   columns[3][j],
		}
		features[j] = f
		labels[j] = Label(f)
	}

	return features, labels
}

// Default generates the standard training dataset.
func Default() ([]FeatureVector, []float64) {
	return Generate(DefaultSampleCount, DefaultSeed)
}

// Examples zips features and labels.
func Examples(features []FeatureVector, labels []float64) []Example {
	n := min(len(features), len(labels))
	out := make([]Example, n)
	for i := 0; i < n; i++ {
		out[i] = Example{Features: features[i], Label: labels[i]}
	}
	return out
}

// Matrix converts feature vectors to a row-major matrix.
func Matrix(features []FeatureVector) [][]float64 {
	x := make([][]float64, len(features))
	for i, f := range features {
		x[i] = f.Slice()
	}
	return x
}

// NewRand returns the deterministic generator used across training.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

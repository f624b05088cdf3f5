package dataset

import "math"

// Default split parameters.
const (
	DefaultTestRatio       = 0.2
	DefaultSplitSeed int64 = 42
)

// Split shuffles the indices 0..n-1 with a generator seeded by seed and
// returns the first ceil(n*testRatio) as the test set and the rest as the
// training set. The same arguments always give the same partition.
func Split(n int, testRatio float64, seed int64) (train, test []int) {
	if n <= 0 {
		return nil, nil
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	nTest = min(max(nTest, 0), n)

	perm := NewRand(seed).Perm(n)
	return perm[nTest:], perm[:nTest]
}

// Select returns the rows of features and labels at idx, in idx order.
func Select(features []FeatureVector, labels []float64, idx []int) ([]FeatureVector, []float64) {
	fs := make([]FeatureVector, len(idx))
	ls := make([]float64, len(idx))
	for i, j := range idx {
		fs[i] = features[j]
		ls[i] = labels[j]
	}
	return fs, ls
}

package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
)

// ForestConfig holds configuration for the random forest model.
type ForestConfig struct {
	NEstimators    int   `json:"n_estimators"`
	MaxDepth       int   `json:"max_depth"`
	MinSamplesLeaf int   `json:"min_samples_leaf"`
	MaxFeatures    int   `json:"max_features"`
	Seed           int64 `json:"seed"`
}

// RandomForest is a bagged ensemble of CART regression trees. Each tree is fit
// on a bootstrap sample and the prediction is the mean over all trees.
type RandomForest struct {
	config ForestConfig
	mu     sync.RWMutex

	nFeatures int
	trees     []*Tree
}

type forestState struct {
	Config    ForestConfig `json:"config"`
	NFeatures int          `json:"n_features"`
	Trees     []*Tree      `json:"trees"`
}

// NewRandomForest creates an unfitted random forest.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.NEstimators < 1 {
		cfg.NEstimators = 100
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	return &RandomForest{config: cfg}
}

// Name returns the model name.
func (m *RandomForest) Name() string {
	return string(ModelTypeRandomForest)
}

// Config returns the forest configuration.
func (m *RandomForest) Config() ForestConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Fit grows NEstimators trees. Per-tree generators are derived from Seed in
// order, so two fits on the same data produce identical forests.
func (m *RandomForest) Fit(x [][]float64, y []float64) error {
	width, err := validateXY(x, y)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seed := uint64(m.config.Seed)
	master := rand.New(rand.NewPCG(seed, seed+1))
	params := treeParams{
		maxDepth:       m.config.MaxDepth,
		minSamplesLeaf: m.config.MinSamplesLeaf,
		maxFeatures:    m.config.MaxFeatures,
	}

	n := len(x)
	trees := make([]*Tree, m.config.NEstimators)
	for t := range trees {
		rng := rand.New(rand.NewPCG(master.Uint64(), master.Uint64()))

		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}

		trees[t] = growTree(x, y, sample, params, rng)
	}

	m.trees = trees
	m.nFeatures = width
	return nil
}

// Predict returns the mean prediction over all trees.
func (m *RandomForest) Predict(x []float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != m.nFeatures {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for _, t := range m.trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(m.trees)), nil
}

// Info returns a summary of the forest.
func (m *RandomForest) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := 0
	for _, t := range m.trees {
		nodes += len(t.Nodes)
	}
	return Info{
		ModelName:  m.Name(),
		Fitted:     len(m.trees) > 0,
		NFeatures:  m.nFeatures,
		Estimators: len(m.trees),
		Nodes:      nodes,
	}
}

// Save serializes the model state to a writer.
func (m *RandomForest) Save(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := forestState{
		Config:    m.config,
		NFeatures: m.nFeatures,
		Trees:     m.trees,
	}

	return json.NewEncoder(w).Encode(state)
}

// Load deserializes the model state from a reader.
func (m *RandomForest) Load(r io.Reader) error {
	var state forestState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	for i, t := range state.Trees {
		if t == nil {
			return fmt.Errorf("model: tree %d is missing", i)
		}
		if err := t.validate(state.NFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = state.Config
	m.nFeatures = state.NFeatures
	m.trees = state.Trees

	return nil
}

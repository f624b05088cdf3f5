package model

import (
	"fmt"
)

// Config holds model configuration.
type Config struct {
	Type ModelType

	// RandomForest params
	NEstimators    int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int
	Seed           int64
}

// DefaultConfig returns default model configuration.
func DefaultConfig() Config {
	return Config{
		Type:           ModelTypeRandomForest,
		NEstimators:    100,
		MaxDepth:       0,
		MinSamplesLeaf: 1,
		MaxFeatures:    0,
		Seed:           42,
	}
}

// Factory creates regression models.
type Factory struct {
	config Config
}

// NewFactory creates a new model factory.
func NewFactory(cfg Config) *Factory {
	return &Factory{config: cfg}
}

// Create creates a model based on configuration.
func (f *Factory) Create() (Regressor, error) {
	return f.CreateByType(f.config.Type)
}

// CreateByType creates a model of the specified type.
func (f *Factory) CreateByType(modelType ModelType) (Regressor, error) {
	switch modelType {
	case ModelTypeRandomForest:
		return NewRandomForest(ForestConfig{
			NEstimators:    f.config.NEstimators,
			MaxDepth:       f.config.MaxDepth,
			MinSamplesLeaf: f.config.MinSamplesLeaf,
			MaxFeatures:    f.config.MaxFeatures,
			Seed:           f.config.Seed,
		}), nil

	case ModelTypeLinear:
		return NewLinearModel(), nil

	default:
		return nil, fmt.Errorf("unknown model type: %s", modelType)
	}
}

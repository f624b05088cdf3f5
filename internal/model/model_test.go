package model

import (
	"testing"
)

func TestModelTypeIsValid(t *testing.T) {
	tests := []struct {
		modelType ModelType
		valid     bool
	}{
		{ModelTypeRandomForest, true},
		{ModelTypeLinear, true},
		{ModelType("gradient_boosting"), false},
		{ModelType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.modelType), func(t *testing.T) {
			if tt.modelType.IsValid() != tt.valid {
				t.Errorf("ModelType(%s).IsValid() = %v, want %v",
					tt.modelType, tt.modelType.IsValid(), tt.valid)
			}
		})
	}
}

func TestModelTypeString(t *testing.T) {
	tests := []struct {
		modelType ModelType
		expected  string
	}{
		{ModelTypeRandomForest, "random_forest"},
		{ModelTypeLinear, "linear"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if tt.modelType.String() != tt.expected {
				t.Errorf("ModelType.String() = %s, want %s",
					tt.modelType.String(), tt.expected)
			}
		})
	}
}

func TestFactory_CreateByType(t *testing.T) {
	f := NewFactory(DefaultConfig())

	tests := []struct {
		modelType ModelType
		name      string
	}{
		{ModelTypeRandomForest, "random_forest"},
		{ModelTypeLinear, "linear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := f.CreateByType(tt.modelType)
			if err != nil {
				t.Fatalf("CreateByType error: %v", err)
			}
			if m.Name() != tt.name {
				t.Errorf("expected name %s, got %s", tt.name, m.Name())
			}
			if m.Info().Fitted {
				t.Error("expected fresh model to be unfitted")
			}
		})
	}
}

func TestFactory_UnknownType(t *testing.T) {
	f := NewFactory(Config{Type: "unknown"})
	if _, err := f.Create(); err == nil {
		t.Error("expected error for unknown model type")
	}
}

func TestFactory_DefaultIsForest(t *testing.T) {
	m, err := NewFactory(DefaultConfig()).Create()
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	rf, ok := m.(*RandomForest)
	if !ok {
		t.Fatalf("expected *RandomForest, got %T", m)
	}
	if rf.Config().NEstimators != 100 {
		t.Errorf("expected 100 estimators, got %d", rf.Config().NEstimators)
	}
	if rf.Config().Seed != 42 {
		t.Errorf("expected seed 42, got %d", rf.Config().Seed)
	}
}

func TestMeanSquaredError(t *testing.T) {
	got := MeanSquaredError([]float64{1, 2, 3}, []float64{1, 4, 0})
	// (0 + 4 + 9) / 3
	if got != 13.0/3.0 {
		t.Errorf("expected %f, got %f", 13.0/3.0, got)
	}
}

func TestMeanSquaredError_Mismatch(t *testing.T) {
	if v := MeanSquaredError(nil, nil); v == v {
		t.Errorf("expected NaN for empty input, got %f", v)
	}
	if v := MeanSquaredError([]float64{1}, []float64{1, 2}); v == v {
		t.Errorf("expected NaN for mismatched input, got %f", v)
	}
}

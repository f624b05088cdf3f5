package model

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	x, y := gradeData(80, 42)

	for _, mt := range []ModelType{ModelTypeRandomForest, ModelTypeLinear} {
		t.Run(string(mt), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.NEstimators = 5
			m, err := NewFactory(cfg).CreateByType(mt)
			if err != nil {
				t.Fatalf("CreateByType error: %v", err)
			}
			if err := m.Fit(x, y); err != nil {
				t.Fatalf("Fit error: %v", err)
			}

			data, err := Marshal(m)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			decoded, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if decoded.Name() != m.Name() {
				t.Errorf("expected %s, got %s", m.Name(), decoded.Name())
			}

			row := []float64{70, 65, 90, 80}
			want, _ := m.Predict(row)
			got, _ := decoded.Predict(row)
			if want != got {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"type":"svm","model":{}}`))
	if err == nil {
		t.Error("expected error for unknown model type")
	}
}

func TestDecode_Unfitted(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, NewLinearModel()); err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if _, err := Decode(&buf); err == nil {
		t.Error("expected error for unfitted model")
	}
}

func TestDecode_Truncated(t *testing.T) {
	x, y := gradeData(40, 1)
	m := NewRandomForest(ForestConfig{NEstimators: 2, Seed: 1})
	_ = m.Fit(x, y)

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	if _, err := Unmarshal(data[:len(data)/2]); err == nil {
		t.Error("expected error for truncated artifact")
	}
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// envelope wraps a serialized model with its type so an artifact can be
// decoded without knowing in advance which regressor produced it.
type envelope struct {
	Type  ModelType       `json:"type"`
	Model json.RawMessage `json:"model"`
}

// Encode writes m to w as a self-describing artifact.
func Encode(w io.Writer, m Regressor) error {
	var body bytes.Buffer
	if err := m.Save(&body); err != nil {
		return fmt.Errorf("failed to serialize %s model: %w", m.Name(), err)
	}

	return json.NewEncoder(w).Encode(envelope{
		Type:  ModelType(m.Name()),
		Model: bytes.TrimSpace(body.Bytes()),
	})
}

// Decode reads an artifact written by Encode.
func Decode(r io.Reader) (Regressor, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode model envelope: %w", err)
	}
	if !env.Type.IsValid() {
		return nil, fmt.Errorf("unknown model type: %q", env.Type)
	}

	m, err := NewFactory(DefaultConfig()).CreateByType(env.Type)
	if err != nil {
		return nil, err
	}
	if err := m.Load(bytes.NewReader(env.Model)); err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", env.Type, err)
	}
	if !m.Info().Fitted {
		return nil, fmt.Errorf("decoded %s model is not fitted", env.Type)
	}

	return m, nil
}

// Marshal returns the artifact bytes for m.
func Marshal(m Regressor) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes artifact bytes.
func Unmarshal(data []byte) (Regressor, error) {
	return Decode(bytes.NewReader(data))
}

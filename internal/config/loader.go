package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// PathEnv names the config file when --config is not given.
const PathEnv = "GRADECAST_CONFIG"

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults after ${VAR} substitution. Unknown
// keys are rejected so a misspelled option does not silently fall back to
// its default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(substituteEnvVars(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or the file named by GRADECAST_CONFIG when path
// is empty, or returns defaults when neither is set. A named file that fails
// to load is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}

	if cfg.Persistence.Backend != "file" {
		t.Errorf("expected default backend file, got %s", cfg.Persistence.Backend)
	}

	if cfg.Persistence.ModelPath != "data/grade_model.json" {
		t.Errorf("unexpected default model path %s", cfg.Persistence.ModelPath)
	}

	if cfg.Training.SampleCount != 100 || cfg.Training.Seed != 42 {
		t.Errorf("expected 100 samples with seed 42, got %d/%d", cfg.Training.SampleCount, cfg.Training.Seed)
	}

	if cfg.Attendance.WindowDays != 30 {
		t.Errorf("expected 30 day window, got %d", cfg.Attendance.WindowDays)
	}

	if cfg.LockTTL() != 2*time.Minute {
		t.Errorf("expected 2m lock ttl, got %s", cfg.LockTTL())
	}

	if cfg.UsesRedis() {
		t.Error("default config should not need redis")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

model:
  type: linear

persistence:
  backend: redis
  redis_key: "school:model"

logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Server.Host)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}

	if cfg.Model.Type != "linear" {
		t.Errorf("expected linear model, got %s", cfg.Model.Type)
	}

	if !cfg.UsesRedis() || cfg.Persistence.RedisKey != "school:model" {
		t.Errorf("expected redis backend with key school:model, got %+v", cfg.Persistence)
	}

	// Unspecified values keep their defaults.
	if cfg.Model.NEstimators != 100 {
		t.Errorf("expected default n_estimators 100, got %d", cfg.Model.NEstimators)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("expected default redis port 6379, got %d", cfg.Redis.Port)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
persistence:
  backend: s3
`)

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, `
training:
  sample_cont: 500
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Training.SampleCount != 100 {
		t.Errorf("expected defaults, got sample count %d", cfg.Training.SampleCount)
	}
}

func TestLoadOrDefault_Env(t *testing.T) {
	path := writeConfig(t, "attendance:\n  window_days: 14\n")
	t.Setenv(PathEnv, path)

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Attendance.WindowDays != 14 {
		t.Errorf("expected window 14 from %s, got %d", PathEnv, cfg.Attendance.WindowDays)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(PathEnv, "")
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}

	if _, err := LoadOrDefault("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for named file that does not exist")
	}
}

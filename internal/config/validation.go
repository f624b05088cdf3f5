package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Model.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("model: %w", err))
	}

	if err := c.Training.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("training: %w", err))
	}

	if err := c.Persistence.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("persistence: %w", err))
	}

	if c.Attendance.WindowDays < 1 {
		errs = append(errs, fmt.Errorf("attendance: window_days must be at least 1, got %d", c.Attendance.WindowDays))
	}

	if c.UsesRedis() {
		if err := c.Redis.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (m *ModelConfig) Validate() error {
	var errs []error

	validTypes := map[string]bool{
		"random_forest": true,
		"linear":        true,
	}
	if !validTypes[m.Type] {
		errs = append(errs, fmt.Errorf("invalid model type: %s (valid: random_forest, linear)", m.Type))
	}
	if m.NEstimators < 1 {
		errs = append(errs, fmt.Errorf("n_estimators must be at least 1"))
	}
	if m.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must be non-negative"))
	}
	if m.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("min_samples_leaf must be at least 1"))
	}

	return errors.Join(errs...)
}

func (t *TrainingConfig) Validate() error {
	var errs []error

	if t.SampleCount < 2 {
		errs = append(errs, fmt.Errorf("sample_count must be at least 2, got %d", t.SampleCount))
	}
	if t.TestRatio <= 0 || t.TestRatio >= 1 {
		errs = append(errs, fmt.Errorf("test_ratio must be between 0 and 1 exclusive, got %g", t.TestRatio))
	}

	return errors.Join(errs...)
}

func (p *PersistenceConfig) Validate() error {
	switch p.Backend {
	case "file":
		if p.ModelPath == "" {
			return fmt.Errorf("model_path cannot be empty for file backend")
		}
	case "redis":
		if p.RedisKey == "" {
			return fmt.Errorf("redis_key cannot be empty for redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid backend: %s (valid: file, redis, memory)", p.Backend)
	}
	return nil
}

func (r *RedisConfig) Validate() error {
	var errs []error

	if r.Host == "" {
		errs = append(errs, fmt.Errorf("host cannot be empty"))
	}
	if r.Port < 1 || r.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", r.Port))
	}
	if r.LockTTLSec < 1 {
		errs = append(errs, fmt.Errorf("lock_ttl_sec must be at least 1"))
	}

	return errors.Join(errs...)
}

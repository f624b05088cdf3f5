package config

import "time"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
	Model       ModelConfig       `yaml:"model"`
	Training    TrainingConfig    `yaml:"training"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Attendance  AttendanceConfig  `yaml:"attendance"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
}

type ServerConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	PIDFile   string          `yaml:"pid_file"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ModelConfig selects the regressor and its hyperparameters.
type ModelConfig struct {
	// Type: random_forest, linear
	Type           string `yaml:"type"`
	NEstimators    int    `yaml:"n_estimators"`
	MaxDepth       int    `yaml:"max_depth"`
	MinSamplesLeaf int    `yaml:"min_samples_leaf"`
	Seed           int64  `yaml:"seed"`
}

// TrainingConfig controls the synthetic dataset and the held-out split.
type TrainingConfig struct {
	SampleCount int     `yaml:"sample_count"`
	Seed        int64   `yaml:"seed"`
	TestRatio   float64 `yaml:"test_ratio"`
	SplitSeed   int64   `yaml:"split_seed"`
}

type PersistenceConfig struct {
	// Backend: file, redis, memory
	Backend   string `yaml:"backend"`
	ModelPath string `yaml:"model_path"`
	RedisKey  string `yaml:"redis_key"`
}

type AttendanceConfig struct {
	WindowDays int `yaml:"window_days"`
}

// DatabaseConfig points at PostgreSQL. An empty URL keeps school and
// attendance data in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	LockTTLSec int    `yaml:"lock_ttl_sec"`
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Redis.LockTTLSec) * time.Second
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Persistence.Backend == "redis"
}

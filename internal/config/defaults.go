package config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			PIDFile: "/var/run/gradecast.pid",
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				Burst:             100,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Model: ModelConfig{
			Type:           "random_forest",
			NEstimators:    100,
			MaxDepth:       0,
			MinSamplesLeaf: 1,
			Seed:           42,
		},
		Training: TrainingConfig{
			SampleCount: 100,
			Seed:        42,
			TestRatio:   0.2,
			SplitSeed:   42,
		},
		Persistence: PersistenceConfig{
			Backend:   "file",
			ModelPath: "data/grade_model.json",
			RedisKey:  "gradecast:model",
		},
		Attendance: AttendanceConfig{
			WindowDays: 30,
		},
		Redis: RedisConfig{
			Host:       "localhost",
			Port:       6379,
			LockTTLSec: 120,
		},
	}
}

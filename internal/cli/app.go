package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/haskel/gradecast/internal/analytics"
	"github.com/haskel/gradecast/internal/attendance"
	"github.com/haskel/gradecast/internal/config"
	"github.com/haskel/gradecast/internal/database/postgres"
	"github.com/haskel/gradecast/internal/logger"
	"github.com/haskel/gradecast/internal/model"
	"github.com/haskel/gradecast/internal/monitor"
	"github.com/haskel/gradecast/internal/school"
	"github.com/haskel/gradecast/internal/server"
	"github.com/haskel/gradecast/internal/storage"
	redisstore "github.com/haskel/gradecast/internal/storage/redis"
)

// app holds the wired components shared by start, train and predict.
type app struct {
	models    analytics.ModelStore
	trainer   *analytics.Trainer
	predictor *analytics.Predictor
	service   *school.Service
	analyzer  *attendance.Analyzer
	records   attendance.RecordWriter
	monitor   *monitor.Collector

	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) serverDeps() server.Deps {
	return server.Deps{
		Predictor:        a.predictor,
		Models:           a.models,
		School:           a.service,
		Attendance:       a.analyzer,
		AttendanceWriter: a.records,
		Monitor:          a.monitor,
	}
}

// trainerConfig maps the model and training sections onto the trainer.
func trainerConfig(cfg *config.Config) analytics.TrainerConfig {
	return analytics.TrainerConfig{
		Model: model.Config{
			Type:           model.ModelType(cfg.Model.Type),
			NEstimators:    cfg.Model.NEstimators,
			MaxDepth:       cfg.Model.MaxDepth,
			MinSamplesLeaf: cfg.Model.MinSamplesLeaf,
			Seed:           cfg.Model.Seed,
		},
		SampleCount: cfg.Training.SampleCount,
		Seed:        cfg.Training.Seed,
		TestRatio:   cfg.Training.TestRatio,
		SplitSeed:   cfg.Training.SplitSeed,
	}
}

func redisConfig(cfg *config.Config) redisstore.Config {
	rc := redisstore.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	return rc
}

// buildApp connects the configured backends. Redis backs the model store and
// the training lock; PostgreSQL, when configured, backs school and attendance
// data, which otherwise live in memory.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var lock analytics.TrainingLock
	var watchPaths []string

	switch cfg.Persistence.Backend {
	case storage.BackendRedis:
		client, err := redisstore.NewClient(ctx, redisConfig(cfg))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Close() })

		store := redisstore.NewModelStore(client, cfg.Persistence.RedisKey)
		a.models = store
		lock = redisstore.NewLocker(client, store.LockKey(), cfg.LockTTL())
	case storage.BackendMemory:
		a.models = storage.NewMemoryStore()
	default:
		store := storage.NewFileStore(cfg.Persistence.ModelPath, logger.Component(log, "storage"))
		a.models = store
		watchPaths = append(watchPaths, filepath.Dir(store.Path()))
	}

	var (
		registry school.Registry
		grades   school.GradeBook
		notifier school.Notifier
		records  interface {
			attendance.RecordStore
			attendance.RecordWriter
		}
	)

	if cfg.Database.URL != "" {
		conn, err := postgres.Connect(ctx, cfg.Database.URL, postgres.DefaultPoolSettings())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)

		if err := postgres.NewMigrator(conn, logger.Component(log, "migrator")).Migrate(ctx); err != nil {
			return nil, err
		}

		repo := postgres.NewSchoolRepository(conn)
		registry, grades, notifier = repo, repo, repo
		records = postgres.NewAttendanceRepository(conn)
	} else {
		log.Warn("no database configured, school and attendance data are kept in memory")
		mem := school.NewMemoryStore()
		registry, grades, notifier = mem, mem, mem
		records = attendance.NewMemoryStore()
	}

	a.trainer = analytics.NewTrainer(trainerConfig(cfg), a.models, logger.Component(log, "trainer"))
	a.predictor = analytics.NewPredictor(a.models, a.trainer, lock, logger.Component(log, "predictor"))
	a.service = school.NewService(registry, grades, notifier, a.predictor, a.trainer, logger.Component(log, "school"))
	a.analyzer = attendance.NewAnalyzer(records, logger.Component(log, "attendance"))
	a.records = records
	a.monitor = monitor.Default(watchPaths, logger.Component(log, "monitor"))

	return a, nil
}

// loadConfig loads the --config file, or defaults when none is given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haskel/gradecast/internal/dataset"
	"github.com/haskel/gradecast/internal/model"
)

// Training triggers, used as metric labels.
const (
	TriggerColdStart = "cold_start"
	TriggerRetrain   = "retrain"
)

// TrainerConfig controls the dataset, the split, and the regressor.
type TrainerConfig struct {
	Model       model.Config
	SampleCount int
	Seed        int64
	TestRatio   float64
	SplitSeed   int64
}

// DefaultTrainerConfig returns the reference training setup: 100 samples with
// seed 42, an 80/20 split with seed 42, and a 100-tree random forest.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Model:       model.DefaultConfig(),
		SampleCount: dataset.DefaultSampleCount,
		Seed:        dataset.DefaultSeed,
		TestRatio:   dataset.DefaultTestRatio,
		SplitSeed:   dataset.DefaultSplitSeed,
	}
}

// TrainingResult describes one fit-and-persist run.
type TrainingResult struct {
	Model     model.Regressor `json:"-"`
	MSE       float64         `json:"mse"`
	TrainSize int             `json:"train_size"`
	TestSize  int             `json:"test_size"`
	Duration  time.Duration   `json:"duration"`
}

// Trainer fits the grade regressor on the synthetic dataset and persists it.
type Trainer struct {
	config  TrainerConfig
	factory *model.Factory
	store   ModelStore
	logger  *slog.Logger
}

// NewTrainer creates a trainer writing to store.
func NewTrainer(cfg TrainerConfig, store ModelStore, logger *slog.Logger) *Trainer {
	if cfg.SampleCount <= 0 {
		cfg.SampleCount = dataset.DefaultSampleCount
	}
	if cfg.TestRatio <= 0 || cfg.TestRatio >= 1 {
		cfg.TestRatio = dataset.DefaultTestRatio
	}
	if cfg.Model.Type == "" {
		cfg.Model.Type = model.ModelTypeRandomForest
	}

	return &Trainer{
		config:  cfg,
		factory: model.NewFactory(cfg.Model),
		store:   store,
		logger:  logger,
	}
}

// Config returns the effective training configuration.
func (t *Trainer) Config() TrainerConfig {
	return t.config
}

// FitAndPersist generates the dataset, fits a fresh regressor on the training
// split, scores it on the test split, and atomically replaces the stored model.
func (t *Trainer) FitAndPersist(ctx context.Context) (*TrainingResult, error) {
	return t.run(ctx, TriggerRetrain)
}

func (t *Trainer) run(ctx context.Context, trigger string) (*TrainingResult, error) {
	start := time.Now()

	result, err := t.fitAndPersist(ctx)
	if err != nil {
		trainingRuns.WithLabelValues(trigger, "error").Inc()
		t.logger.Error("model training failed",
			"trigger", trigger,
			"error", err,
		)
		return nil, err
	}

	result.Duration = time.Since(start)
	trainingRuns.WithLabelValues(trigger, "success").Inc()
	trainingDuration.Observe(result.Duration.Seconds())
	trainingMSE.Set(result.MSE)

	t.logger.Info("model trained",
		"trigger", trigger,
		"model.name", result.Model.Name(),
		"data.train_samples", result.TrainSize,
		"data.test_samples", result.TestSize,
		"perf.mse", result.MSE,
		"perf.duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (t *Trainer) fitAndPersist(ctx context.Context) (*TrainingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features, labels := dataset.Generate(t.config.SampleCount, t.config.Seed)
	trainIdx, testIdx := dataset.Split(len(features), t.config.TestRatio, t.config.SplitSeed)

	trainX, trainY := dataset.Select(features, labels, trainIdx)
	testX, testY := dataset.Select(features, labels, testIdx)

	m, err := t.factory.Create()
	if err != nil {
		return nil, err
	}
	if err := m.Fit(dataset.Matrix(trainX), trainY); err != nil {
		return nil, fmt.Errorf("failed to fit %s model: %w", m.Name(), err)
	}

	preds, err := model.PredictBatch(m, dataset.Matrix(testX))
	if err != nil {
		return nil, fmt.Errorf("failed to score test split: %w", err)
	}
	mse := model.MeanSquaredError(testY, preds)

	if err := t.store.Store(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return &TrainingResult{
		Model:     m,
		MSE:       mse,
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
	}, nil
}

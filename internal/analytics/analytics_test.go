package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haskel/gradecast/internal/dataset"
	"github.com/haskel/gradecast/internal/model"
	"github.com/haskel/gradecast/internal/storage"
)

var errIO = errors.New("io failure")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// smallConfig keeps tests fast while exercising the forest path.
func smallConfig() TrainerConfig {
	cfg := DefaultTrainerConfig()
	cfg.Model.NEstimators = 10
	return cfg
}

// failingStore fails Store and/or Load with errIO.
type failingStore struct {
	*storage.MemoryStore
	failStore bool
	failLoad  bool
}

func (s *failingStore) Store(ctx context.Context, m model.Regressor) error {
	if s.failStore {
		return errIO
	}
	return s.MemoryStore.Store(ctx, m)
}

func (s *failingStore) Load(ctx context.Context) (model.Regressor, error) {
	if s.failLoad {
		return nil, errIO
	}
	return s.MemoryStore.Load(ctx)
}

// countingLock records how many times it was taken.
type countingLock struct {
	mu    sync.Mutex
	calls atomic.Int32
	err   error
}

func (l *countingLock) Lock(ctx context.Context) (func(), error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// identityStore returns a store holding a linear model whose prediction is
// the assignment score.
func identityStore(t *testing.T) *storage.MemoryStore {
	t.Helper()

	m := model.NewLinearModel()
	require.NoError(t, m.Load(strings.NewReader(`{"intercept":0,"coefficients":[1,0,0,0]}`)))

	s := storage.NewMemoryStore()
	require.NoError(t, s.Store(context.Background(), m))
	return s
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		grade float64
		want  RiskLevel
	}{
		{100, RiskLow},
		{80, RiskLow},
		{79.999, RiskMedium},
		{65, RiskMedium},
		{64.999, RiskHigh},
		{0, RiskHigh},
		{-10, RiskHigh},
		{150, RiskLow},
	}

	for _, tt := range tests {
		got, rec := Classify(tt.grade)
		assert.Equal(t, tt.want, got, "grade %v", tt.grade)
		assert.NotEmpty(t, rec)
	}
}

func TestClassify_Recommendations(t *testing.T) {
	_, rec := Classify(90)
	assert.Equal(t, "Excellent performance! Keep up the good work.", rec)
	_, rec = Classify(70)
	assert.Equal(t, "Good performance. Focus on improving weaker areas.", rec)
	_, rec = Classify(50)
	assert.Equal(t, "Needs attention. Consider additional tutoring and study support.", rec)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "untrained", StateUntrained.String())
	assert.Equal(t, "training", StateTraining.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestTrainer_FitAndPersist(t *testing.T) {
	store := storage.NewMemoryStore()
	trainer := NewTrainer(smallConfig(), store, testLogger())

	res, err := trainer.FitAndPersist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 80, res.TrainSize)
	assert.Equal(t, 20, res.TestSize)
	assert.False(t, math.IsNaN(res.MSE))
	assert.GreaterOrEqual(t, res.MSE, 0.0)
	assert.Equal(t, string(model.ModelTypeRandomForest), res.Model.Name())

	_, stores := store.Counts()
	assert.Equal(t, 1, stores)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	x := dataset.FeatureVector{AssignmentScore: 70, ExamScore: 60, AttendancePercentage: 90, ParticipationScore: 75}.Slice()
	want, err := res.Model.Predict(x)
	require.NoError(t, err)
	got, err := loaded.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTrainer_Reproducible(t *testing.T) {
	a, err := NewTrainer(smallConfig(), storage.NewMemoryStore(), testLogger()).FitAndPersist(context.Background())
	require.NoError(t, err)
	b, err := NewTrainer(smallConfig(), storage.NewMemoryStore(), testLogger()).FitAndPersist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.MSE, b.MSE)

	x := []float64{55, 85, 95, 60}
	pa, _ := a.Model.Predict(x)
	pb, _ := b.Model.Predict(x)
	assert.Equal(t, pa, pb)
}

func TestTrainer_LinearRecoversFormula(t *testing.T) {
	cfg := DefaultTrainerConfig()
	cfg.Model.Type = model.ModelTypeLinear

	res, err := NewTrainer(cfg, storage.NewMemoryStore(), testLogger()).FitAndPersist(context.Background())
	require.NoError(t, err)
	assert.Less(t, res.MSE, 1e-9)
}

func TestTrainer_PersistenceFailure(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failStore: true}
	trainer := NewTrainer(smallConfig(), store, testLogger())

	_, err := trainer.FitAndPersist(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, errIO))
}

func TestTrainer_Defaults(t *testing.T) {
	trainer := NewTrainer(TrainerConfig{}, storage.NewMemoryStore(), testLogger())
	cfg := trainer.Config()

	assert.Equal(t, dataset.DefaultSampleCount, cfg.SampleCount)
	assert.Equal(t, dataset.DefaultTestRatio, cfg.TestRatio)
	assert.Equal(t, model.ModelTypeRandomForest, cfg.Model.Type)
}

func TestPredictor_RiskTiersFromStoredModel(t *testing.T) {
	store := identityStore(t)
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), nil, testLogger())

	tests := []struct {
		assignment float64
		want       RiskLevel
	}{
		{80, RiskLow},
		{79.999, RiskMedium},
		{65, RiskMedium},
		{64.999, RiskHigh},
	}

	for _, tt := range tests {
		res, err := p.Predict(context.Background(), dataset.FeatureVector{
			AssignmentScore:      tt.assignment,
			ExamScore:            50,
			AttendancePercentage: 50,
			ParticipationScore:   50,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.assignment, res.PredictedGrade)
		assert.Equal(t, tt.want, res.RiskLevel, "assignment %v", tt.assignment)
	}

	_, stores := store.Counts()
	assert.Equal(t, 1, stores, "existing model must not be retrained")
	assert.Equal(t, StateReady, p.State())
}

func TestPredictor_ColdStartTrainsOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), nil, testLogger())
	assert.Equal(t, StateUntrained, p.State())

	f := dataset.FeatureVector{AssignmentScore: 85, ExamScore: 90, AttendancePercentage: 95, ParticipationScore: 88}

	first, err := p.Predict(context.Background(), f)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, StateReady, p.State())

	_, stores := store.Counts()
	assert.Equal(t, 1, stores)
}

func TestPredictor_ConcurrentColdStart(t *testing.T) {
	store := storage.NewMemoryStore()
	lock := &countingLock{}
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), lock, testLogger())

	f := dataset.FeatureVector{AssignmentScore: 60, ExamScore: 55, AttendancePercentage: 70, ParticipationScore: 65}

	const callers = 16
	results := make([]*PredictionResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Predict(context.Background(), f)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	_, stores := store.Counts()
	assert.Equal(t, 1, stores, "cold start must train exactly once")
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, results[0].PredictedGrade, r.PredictedGrade)
	}
	assert.GreaterOrEqual(t, lock.calls.Load(), int32(1))
}

func TestPredictor_RetrainDuringColdStart(t *testing.T) {
	store := storage.NewMemoryStore()
	trainer := NewTrainer(smallConfig(), store, testLogger())
	p := NewPredictor(store, trainer, nil, testLogger())

	f := dataset.FeatureVector{AssignmentScore: 75, ExamScore: 70, AttendancePercentage: 85, ParticipationScore: 80}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := trainer.FitAndPersist(context.Background())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := p.Predict(context.Background(), f)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every run fits the same data with the same seeds, so any surviving
	// artifact gives the same answer.
	res, err := p.Predict(context.Background(), f)
	require.NoError(t, err)
	ref, err := NewTrainer(smallConfig(), storage.NewMemoryStore(), testLogger()).FitAndPersist(context.Background())
	require.NoError(t, err)
	want, err := ref.Model.Predict(f.Slice())
	require.NoError(t, err)
	assert.Equal(t, want, res.PredictedGrade)
}

func TestPredictor_LoadFailure(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failLoad: true}
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), nil, testLogger())

	res, err := p.Predict(context.Background(), dataset.FeatureVector{})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, errIO))
}

func TestPredictor_CorruptArtifact(t *testing.T) {
	// A corrupt artifact is a load failure, never a cold start.
	corrupt := corruptStore{}
	p := NewPredictor(corrupt, NewTrainer(smallConfig(), corrupt, testLogger()), nil, testLogger())

	_, err := p.Predict(context.Background(), dataset.FeatureVector{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.False(t, errors.Is(err, storage.ErrModelNotFound))
}

type corruptStore struct{}

func (corruptStore) Load(ctx context.Context) (model.Regressor, error) {
	return model.Unmarshal([]byte(`{"type":"random_forest","model":`))
}

func (corruptStore) Store(ctx context.Context, m model.Regressor) error {
	return errIO
}

func (corruptStore) Info(ctx context.Context) (storage.ModelInfo, error) {
	return storage.ModelInfo{}, nil
}

func TestPredictor_ColdStartPersistenceFailure(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failStore: true}
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), nil, testLogger())

	res, err := p.Predict(context.Background(), dataset.FeatureVector{})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.Equal(t, StateUntrained, p.State())
}

func TestPredictor_LockFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	lock := &countingLock{err: context.DeadlineExceeded}
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), lock, testLogger())

	err := p.Warm(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	_, stores := store.Counts()
	assert.Equal(t, 0, stores)
}

func TestPredictor_Warm(t *testing.T) {
	store := storage.NewMemoryStore()
	p := NewPredictor(store, NewTrainer(smallConfig(), store, testLogger()), nil, testLogger())

	require.NoError(t, p.Warm(context.Background()))
	require.NoError(t, p.Warm(context.Background()))

	_, stores := store.Counts()
	assert.Equal(t, 1, stores)
	assert.Equal(t, StateReady, p.State())
}

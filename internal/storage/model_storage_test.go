package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/haskel/gradecast/internal/model"
)

var errDiskFull = errors.New("disk full")

// failingWriter writes half of the payload and then fails.
type failingWriter struct {
	w io.Writer
}

func (f failingWriter) Write(p []byte) (int, error) {
	n, _ := f.w.Write(p[:len(p)/2])
	return n, errDiskFull
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fittedLinear returns a linear model fitted to y = offset + x0 + 2*x1.
func fittedLinear(t *testing.T, offset float64) *model.LinearModel {
	t.Helper()

	x := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 3}}
	y := make([]float64, len(x))
	for i, r := range x {
		y[i] = offset + r[0] + 2*r[1]
	}

	m := model.NewLinearModel()
	if err := m.Fit(x, y); err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	return m
}

func intercept(t *testing.T, m model.Regressor) float64 {
	t.Helper()

	lm, ok := m.(*model.LinearModel)
	if !ok {
		t.Fatalf("expected *model.LinearModel, got %T", m)
	}
	_, b := lm.Coefficients()
	return b
}

func TestFileStore_SaveLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "gradecast_model_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	fs := NewFileStore(filepath.Join(tmpDir, "nested", "grade_model.json"), testLogger())

	if err := fs.Store(ctx, fittedLinear(t, 5)); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	loaded, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	got, err := loaded.Predict([]float64{1, 1})
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if got < 7.999 || got > 8.001 {
		t.Errorf("expected prediction 8, got %f", got)
	}
}

func TestFileStore_LoadNonExistent(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "grade_model.json"), testLogger())

	_, err := fs.Load(context.Background())
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grade_model.json")
	if err := os.WriteFile(path, []byte(`{"type":"random_forest","model":{"trees":[`), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	fs := NewFileStore(path, testLogger())
	_, err := fs.Load(context.Background())
	if err == nil {
		t.Fatal("expected error loading corrupt artifact")
	}
	if errors.Is(err, ErrModelNotFound) {
		t.Error("corrupt artifact must not be reported as missing")
	}
}

func TestFileStore_Info(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grade_model.json")
	fs := NewFileStore(path, testLogger())

	info, err := fs.Info(ctx)
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if info.Exists {
		t.Error("expected model to not exist")
	}
	if info.Backend != BackendFile || info.Location != path {
		t.Errorf("unexpected info: %+v", info)
	}

	if err := fs.Store(ctx, fittedLinear(t, 1)); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	info, err = fs.Info(ctx)
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if !info.Exists {
		t.Error("expected model to exist")
	}
	if info.Size == 0 {
		t.Error("expected non-zero size")
	}
	if info.UpdatedAt.IsZero() {
		t.Error("expected non-zero UpdatedAt")
	}
}

func TestFileStore_AtomicWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "grade_model.json"), testLogger())

	for i := 0; i < 5; i++ {
		if err := fs.Store(ctx, fittedLinear(t, float64(i))); err != nil {
			t.Fatalf("Store iteration %d error: %v", i, err)
		}
	}

	loaded, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if b := intercept(t, loaded); b < 3.999 || b > 4.001 {
		t.Errorf("expected intercept 4, got %f", b)
	}

	assertNoTempFiles(t, dir)
}

func TestFileStore_FailedWriteKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "grade_model.json"), testLogger())

	if err := fs.Store(ctx, fittedLinear(t, 3)); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	fs.wrapWriter = func(w io.Writer) io.Writer { return failingWriter{w: w} }
	err := fs.Store(ctx, fittedLinear(t, 9))
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected injected error, got: %v", err)
	}

	fs.wrapWriter = nil
	loaded, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load error after failed write: %v", err)
	}
	if b := intercept(t, loaded); b < 2.999 || b > 3.001 {
		t.Errorf("expected previous intercept 3, got %f", b)
	}

	assertNoTempFiles(t, dir)
}

func TestFileStore_FailedFirstWriteLeavesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "grade_model.json"), testLogger())
	fs.wrapWriter = func(w io.Writer) io.Writer { return failingWriter{w: w} }

	if err := fs.Store(ctx, fittedLinear(t, 1)); err == nil {
		t.Fatal("expected error")
	}

	fs.wrapWriter = nil
	if _, err := fs.Load(ctx); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
	assertNoTempFiles(t, dir)
}

func TestFileStore_ConcurrentStoreLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "grade_model.json"), testLogger())

	if err := fs.Store(ctx, fittedLinear(t, 0)); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	models := make([]*model.LinearModel, 4)
	for i := range models {
		models[i] = fittedLinear(t, float64(i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(m *model.LinearModel) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := fs.Store(ctx, m); err != nil {
					errs <- err
				}
			}
		}(models[i])
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := fs.Load(ctx); err != nil {
					errs <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent access error: %v", err)
	}
	assertNoTempFiles(t, dir)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := NewFileStore(filepath.Join(t.TempDir(), "grade_model.json"), testLogger())
	if err := fs.Store(ctx, fittedLinear(t, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled on Store, got: %v", err)
	}
	if _, err := fs.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled on Load, got: %v", err)
	}
}

func TestNewFileStore_DefaultPath(t *testing.T) {
	fs := NewFileStore("", testLogger())
	if fs.Path() != DefaultModelPath {
		t.Errorf("expected default path %s, got %s", DefaultModelPath, fs.Path())
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

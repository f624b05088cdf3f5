package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haskel/gradecast/internal/model"
)

// DefaultModelPath is the well-known artifact location.
const DefaultModelPath = "data/grade_model.json"

// FileStore persists the model artifact at a fixed path. Writes go to a unique
// temp file in the same directory and are renamed over the artifact, so a
// reader only ever opens a complete file.
type FileStore struct {
	path   string
	logger *slog.Logger

	// wrapWriter intercepts artifact writes; tests use it to inject faults.
	wrapWriter func(io.Writer) io.Writer
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if path == "" {
		path = DefaultModelPath
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the artifact path.
func (s *FileStore) Path() string {
	return s.path
}

// Store atomically replaces the artifact with m.
func (s *FileStore) Store(ctx context.Context, m model.Regressor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := model.Marshal(m)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := file.Name()

	var w io.Writer = file
	if s.wrapWriter != nil {
		w = s.wrapWriter(file)
	}

	if _, err := w.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write model: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug("saved model to disk", "path", s.path, "bytes", len(data))
	return nil
}

// Load opens and decodes the artifact.
func (s *FileStore) Load(ctx context.Context) (model.Regressor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	m, err := model.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", s.path, err)
	}

	s.logger.Debug("loaded model from disk", "path", s.path, "model", m.Name())
	return m, nil
}

// Info returns information about the saved model.
func (s *FileStore) Info(ctx context.Context) (ModelInfo, error) {
	info := ModelInfo{
		Backend:  BackendFile,
		Location: s.path,
	}

	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, fmt.Errorf("failed to stat model file: %w", err)
	}

	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info, nil
}

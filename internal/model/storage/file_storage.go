package storage

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

// FileStorage keeps the series as a CSV file on the local filesystem.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Path() string {
	return s.path
}

// Load returns an empty series when the file does not exist yet.
func (s *FileStorage) Load(_ context.Context) (*series.Series, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("Data file not found, starting empty", zap.String("path", s.path))
		return series.New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "open data file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("error closing data file", zap.Error(err))
		}
	}()

	res, err := series.ReadCSV(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	logger.Info("Loaded data file", zap.String("path", s.path), zap.Int("rows", res.Len()))
	return res, nil
}

// Save replaces the file atomically: the series is written next to the target and renamed over it.
func (s *FileStorage) Save(_ context.Context, ser *series.Series) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if err = series.WriteCSV(w, ser); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write series")
	}
	if err = w.Flush(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "flush series")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace data file")
	}

	logger.Info("Saved data file", zap.String("path", s.path), zap.Int("rows", ser.Len()))
	return nil
}

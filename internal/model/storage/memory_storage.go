package storage

import (
	"context"
	"sync"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
)

// MemoryStorage keeps the series in process. Nothing survives the run.
type MemoryStorage struct {
	mu     sync.Mutex
	series *series.Series
	saves  int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{series: series.New()}
}

func (s *MemoryStorage) Load(_ context.Context) (*series.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := series.New()
	res.Merge(s.series)
	return res, nil
}

func (s *MemoryStorage) Save(_ context.Context, ser *series.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = series.New()
	s.series.Merge(ser)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

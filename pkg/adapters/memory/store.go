package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stepflow/pkg/domain"
)

// RunStore implements ports.RunStore in memory.
// Safe for concurrent use.
type RunStore struct {
	data map[string]*domain.RunRecord
	mu   sync.RWMutex
}

// NewRunStore creates a new in-memory run registry.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.RunRecord),
	}
}

// Save stores a deep copy of the record.
func (s *RunStore) Save(ctx context.Context, rec *domain.RunRecord) error {
	cp := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = cp
	return nil
}

// Load returns a copy of the record so callers cannot mutate the store.
func (s *RunStore) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}
	return rec.Clone(), nil
}

// Delete removes the record.
func (s *RunStore) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns the stored run IDs, sorted.
func (s *RunStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}

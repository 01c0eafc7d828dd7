package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
)

// GraphStore implements ports.GraphStore in memory.
// Graphs are stored by reference: a graph is safe to run concurrently.
type GraphStore struct {
	graphs map[string]*runtime.Graph
	mu     sync.RWMutex
}

// NewGraphStore creates an empty graph catalogue.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		graphs: make(map[string]*runtime.Graph),
	}
}

// Put stores g under its ID.
func (s *GraphStore) Put(ctx context.Context, g *runtime.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID()] = g
	return nil
}

// Get retrieves a graph by ID.
func (s *GraphStore) Get(ctx context.Context, graphID string) (*runtime.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[graphID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, graphID)
	}
	return g, nil
}

// List returns graph summaries sorted by ID.
func (s *GraphStore) List(ctx context.Context) ([]domain.GraphSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.GraphSummary, 0, len(s.graphs))
	for _, g := range s.graphs {
		out = append(out, g.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

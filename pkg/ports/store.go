package ports

import (
	"context"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
)

// RunStore is the run registry: it keeps the record of every finished run.
type RunStore interface {
	// Save stores or replaces the record under rec.ID.
	Save(ctx context.Context, rec *domain.RunRecord) error

	// Load retrieves a record.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunRecord, error)

	// Delete removes a record. Deleting an unknown run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the stored run IDs.
	List(ctx context.Context) ([]string, error)
}

// GraphStore is the graph catalogue.
type GraphStore interface {
	// Put stores or replaces a graph under its ID.
	Put(ctx context.Context, g *runtime.Graph) error

	// Get retrieves a graph.
	// Returns domain.ErrGraphNotFound if the graph does not exist.
	Get(ctx context.Context, graphID string) (*runtime.Graph, error)

	// List returns a summary of every stored graph, sorted by ID.
	List(ctx context.Context) ([]domain.GraphSummary, error)
}

package runtime

import (
	"log/slog"

	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/pkg/domain"
)

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithLogger sets the structured logger used by Run.
func WithLogger(logger *slog.Logger) GraphOption {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks fired around every step.
func WithLifecycleHooks(hooks domain.LifecycleHooks) GraphOption {
	return func(g *Graph) {
		g.hooks = g.hooks.Merge(hooks)
	}
}

// WithMaxIterations overrides the node execution ceiling (default 100).
// Non-positive values are ignored.
func WithMaxIterations(n int) GraphOption {
	return func(g *Graph) {
		if n > 0 {
			g.maxIterations = n
		}
	}
}

func defaultGraph(id string) *Graph {
	return &Graph{
		id:            id,
		nodes:         make(map[string]*Node),
		edges:         make(map[string]string),
		maxIterations: domain.DefaultMaxIterations,
		logger:        logging.NewNop(),
	}
}

package stepflow

import (
	"log/slog"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
)

// Version is the library version reported by the CLI and the HTTP index.
const Version = "0.3.0"

// Graph is a workflow graph. See runtime.Graph for the full method set.
type Graph = runtime.Graph

// Result is the outcome of Graph.Run.
type Result = runtime.Result

// Transform is the unit of work wrapped by a node.
type Transform = runtime.Transform

// Option configures a Graph created with New.
type Option = runtime.GraphOption

// New creates an empty graph identified by graphID.
func New(graphID string, opts ...Option) *Graph {
	return runtime.NewGraph(graphID, opts...)
}

// WithLogger sets a custom structured logger for the graph.
func WithLogger(logger *slog.Logger) Option {
	return runtime.WithLogger(logger)
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return runtime.WithLifecycleHooks(hooks)
}

// WithMaxIterations overrides the node execution ceiling (default 100).
func WithMaxIterations(n int) Option {
	return runtime.WithMaxIterations(n)
}

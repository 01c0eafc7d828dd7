package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/definition"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/workflows"
	"github.com/google/uuid"
)

// Manager builds, stores and runs graphs.
type Manager struct {
	registry *registry.Registry
	graphs   ports.GraphStore
	runs     ports.RunStore

	hooks         domain.LifecycleHooks
	maxIterations int
	logger        *slog.Logger

	newID func() string
	now   func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithGraphStore replaces the in-memory graph catalogue.
func WithGraphStore(store ports.GraphStore) Option {
	return func(m *Manager) {
		m.graphs = store
	}
}

// WithRunStore replaces the in-memory run registry.
func WithRunStore(store ports.RunStore) Option {
	return func(m *Manager) {
		m.runs = store
	}
}

// WithLogger configures a logger for the Manager and the graphs it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLifecycleHooks adds hooks to every graph built by the Manager.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithTraceSink streams node and run events of every graph built by the
// Manager to sink. Sink errors are logged and ignored.
func WithTraceSink(sink ports.TraceSink) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(domain.LifecycleHooks{
			OnNodeLeave: func(ctx context.Context, ev *domain.NodeEvent) {
				if err := sink.PublishNode(ctx, ev); err != nil {
					m.logger.Warn("trace sink failed", "run_id", ev.RunID, "node", ev.Node, "error", err)
				}
			},
			OnRunFinish: func(ctx context.Context, ev *domain.RunEvent) {
				if err := sink.PublishRun(ctx, ev); err != nil {
					m.logger.Warn("trace sink failed", "run_id", ev.RunID, "error", err)
				}
			},
		})
	}
}

// WithMaxIterations sets the iteration ceiling of graphs built by the Manager.
// A definition's own max_iterations takes precedence.
func WithMaxIterations(n int) Option {
	return func(m *Manager) {
		m.maxIterations = n
	}
}

// NewManager creates a Manager resolving steps from reg.
func NewManager(reg *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		graphs:   memory.NewGraphStore(),
		runs:     memory.NewRunStore(),
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the step registry.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

func (m *Manager) graphOptions() []runtime.GraphOption {
	opts := []runtime.GraphOption{
		runtime.WithLogger(m.logger),
		runtime.WithLifecycleHooks(m.hooks),
	}
	if m.maxIterations > 0 {
		opts = append(opts, runtime.WithMaxIterations(m.maxIterations))
	}
	return opts
}

// CreateGraph builds a graph from def and adds it to the catalogue.
// A definition without an ID gets a fresh one.
func (m *Manager) CreateGraph(ctx context.Context, def *definition.Definition) (*runtime.Graph, error) {
	if def != nil && def.ID == "" {
		cp := *def
		cp.ID = m.newID()
		def = &cp
	}

	g, err := definition.Build(def, m.registry, m.graphOptions()...)
	if err != nil {
		return nil, err
	}
	if err := m.graphs.Put(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to store graph: %w", err)
	}

	m.logger.Info("graph created", "graph_id", g.ID(), "nodes", len(g.Nodes()))
	return g, nil
}

// CreateExampleGraph registers the code review workflow under its fixed ID.
func (m *Manager) CreateExampleGraph(ctx context.Context) (*runtime.Graph, error) {
	g, err := workflows.CodeReview(m.registry, m.graphOptions()...)
	if err != nil {
		return nil, err
	}
	if err := m.graphs.Put(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to store graph: %w", err)
	}

	m.logger.Info("example graph created", "graph_id", g.ID())
	return g, nil
}

// AddGraph stores a graph built elsewhere.
func (m *Manager) AddGraph(ctx context.Context, g *runtime.Graph) error {
	return m.graphs.Put(ctx, g)
}

// Graph returns a graph from the catalogue.
func (m *Manager) Graph(ctx context.Context, graphID string) (*runtime.Graph, error) {
	return m.graphs.Get(ctx, graphID)
}

// Graphs lists the catalogue.
func (m *Manager) Graphs(ctx context.Context) ([]domain.GraphSummary, error) {
	return m.graphs.List(ctx)
}

// Run executes a stored graph and records the run.
//
// Node failures still produce a stored record, with status failed and the
// partial trace; the record is returned together with the error.
func (m *Manager) Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunRecord, error) {
	g, err := m.graphs.Get(ctx, graphID)
	if err != nil {
		return nil, err
	}

	runID := m.newID()
	logger := m.logger.With("graph_id", graphID, "run_id", runID)
	rec := &domain.RunRecord{
		ID:        runID,
		GraphID:   graphID,
		CreatedAt: m.now().UTC(),
	}

	res, runErr := g.Run(runtime.ContextWithRunID(ctx, runID), initial)
	rec.FinishedAt = m.now().UTC()

	switch {
	case res != nil:
		rec.Status = res.Status
		rec.State = res.State
		rec.Trace = res.Trace
	case runErr != nil:
		rec.Status = domain.RunFailed
		rec.State = initial.Clone()
		rec.Trace = domain.Trace{}
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := m.runs.Save(ctx, rec); err != nil {
		return nil, errors.Join(runErr, fmt.Errorf("failed to record run: %w", err))
	}

	if runErr != nil {
		logger.Warn("run failed", "error", runErr)
		return rec, runErr
	}
	logger.Info("run finished", "status", rec.Status, "steps", len(rec.Trace))
	return rec, nil
}

// GetRun returns a recorded run.
func (m *Manager) GetRun(ctx context.Context, runID string) (*domain.RunRecord, error) {
	return m.runs.Load(ctx, runID)
}

// Runs lists recorded runs, oldest first.
func (m *Manager) Runs(ctx context.Context) ([]domain.RunSummary, error) {
	ids, err := m.runs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	out := make([]domain.RunSummary, 0, len(ids))
	for _, id := range ids {
		rec, err := m.runs.Load(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Summary())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

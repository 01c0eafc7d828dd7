package main

import (
	"context"
	"fmt"

	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/adapters/redis"
	"github.com/aretw0/stepflow/pkg/definition"
	"github.com/aretw0/stepflow/pkg/persistence/middleware"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/session"
	"github.com/aretw0/stepflow/pkg/tools"
)

// newManager builds a session manager with the built-in steps and the
// configured iteration ceiling. A Redis address adds live trace streaming
// and redaction patterns add key redaction of recorded runs.
// The returned cleanup must be called when done.
func (a *app) newManager(ctx context.Context, extra ...session.Option) (*session.Manager, func(), error) {
	reg := registry.NewRegistry()
	tools.RegisterDefaults(reg)

	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithMaxIterations(a.cfg.Engine.MaxIterations),
	}

	cleanup := func() {}
	if a.cfg.Redis.Addr != "" {
		pub := redis.New(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB,
			redis.WithPrefix(a.cfg.Redis.Prefix),
			redis.WithTTL(a.cfg.Redis.TTL),
			redis.WithLogger(a.logger),
		)
		if err := pub.Ping(ctx); err != nil {
			_ = pub.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
		}
		a.logger.Info("streaming traces to redis", "addr", a.cfg.Redis.Addr, "prefix", a.cfg.Redis.Prefix)
		opts = append(opts, session.WithTraceSink(pub))
		cleanup = func() {
			if err := pub.Close(); err != nil {
				a.logger.Warn("failed to close redis client", "error", err)
			}
		}
	}

	if len(a.cfg.Redact) > 0 {
		redact, err := middleware.NewPIIMiddleware(a.cfg.Redact)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, session.WithRunStore(middleware.Chain(memory.NewRunStore(), redact)))
	}

	m := session.NewManager(reg, append(opts, extra...)...)

	for _, path := range a.cfg.Graphs {
		if _, err := a.loadGraph(ctx, m, path); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return m, cleanup, nil
}

// loadGraph reads a definition file into m and returns the graph ID.
func (a *app) loadGraph(ctx context.Context, m *session.Manager, path string) (string, error) {
	def, err := definition.Load(path)
	if err != nil {
		return "", err
	}
	g, err := m.CreateGraph(ctx, def)
	if err != nil {
		return "", fmt.Errorf("failed to build %s: %w", path, err)
	}
	a.logger.Debug("graph loaded", "path", path, "graph_id", g.ID())
	return g.ID(), nil
}

// resolveGraph returns the graph selected by an --example flag or a
// definition file argument.
func (a *app) resolveGraph(ctx context.Context, m *session.Manager, example bool, args []string) (string, error) {
	switch {
	case example:
		g, err := m.CreateExampleGraph(ctx)
		if err != nil {
			return "", err
		}
		return g.ID(), nil
	case len(args) == 1:
		return a.loadGraph(ctx, m, args[0])
	default:
		return "", fmt.Errorf("either a definition file or --example is required")
	}
}

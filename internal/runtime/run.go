package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/google/uuid"
)

// Result is the outcome of a run.
type Result struct {
	State      domain.State
	Trace      domain.Trace
	Status     domain.RunStatus
	Statuses   StatusTable
	Visits     map[string]int
	Iterations int
}

// Run executes the graph from its entry node, one node at a time.
//
// The initial state is deep-copied; the caller's map is never modified.
// When the iteration ceiling stops the run, the result status is
// domain.RunIncomplete and no error is returned.
//
// Lifecycle events carry the run ID attached with ContextWithRunID, or a
// fresh one when the context has none.
//
// On a node failure Run returns both the partial result (with the failing
// entry marked failed) and a *domain.NodeError.
func (g *Graph) Run(ctx context.Context, initial domain.State) (*Result, error) {
	snap := g.snapshot()
	if snap.entry == "" {
		return nil, fmt.Errorf("graph %s: %w", g.id, domain.ErrNoEntryNode)
	}

	res := &Result{
		State:    initial.Clone(),
		Trace:    domain.Trace{},
		Status:   domain.RunCompleted,
		Statuses: make(StatusTable, len(snap.nodes)),
		Visits:   make(map[string]int),
	}
	for name := range snap.nodes {
		res.Statuses[name] = domain.NodeStatusPending
	}

	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = ContextWithRunID(ctx, runID)
	}
	started := time.Now()
	g.fireRunStart(ctx, runID)

	err := g.drive(ctx, snap, res, runID)
	if err != nil {
		res.Status = domain.RunFailed
	}

	g.fireRunFinish(ctx, runID, res, time.Since(started), err)
	return res, err
}

func (g *Graph) drive(ctx context.Context, snap *snapshot, res *Result, runID string) error {
	current := snap.entry

	for current != "" {
		if res.Iterations >= g.maxIterations {
			res.Status = domain.RunIncomplete
			g.logger.Warn("iteration ceiling reached, run incomplete",
				"max_iterations", g.maxIterations,
				"pending_node", current,
			)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted before %q: %w", current, err)
		}

		node := snap.nodes[current]

		res.Iterations++
		res.Visits[current]++
		res.Trace = append(res.Trace, domain.TraceEntry{
			Node:      current,
			Status:    domain.TraceRunning,
			Iteration: res.Iterations,
			Visit:     res.Visits[current],
		})
		entry := &res.Trace[len(res.Trace)-1]

		g.fireNodeEnter(ctx, runID, entry)
		stepStarted := time.Now()

		updated, err := node.Execute(ctx, res.State, res.Statuses)
		if err != nil {
			entry.Status = domain.TraceFailed
			entry.Error = err.Error()
			g.logger.Error("node failed", "node", current, "iteration", entry.Iteration, "error", err)
			g.fireNodeLeave(ctx, runID, entry, time.Since(stepStarted))
			return &domain.NodeError{Node: current, Iteration: entry.Iteration, Err: err}
		}

		res.State = updated
		entry.Status = domain.TraceCompleted
		entry.StateSnapshot = updated.Clone()

		d, err := snap.route(current, res.State)
		entry.Route = d.route
		entry.Next = d.next
		if err != nil {
			entry.Error = err.Error()
			g.logger.Error("routing failed", "node", current, "iteration", entry.Iteration, "error", err)
			g.fireNodeLeave(ctx, runID, entry, time.Since(stepStarted))
			return fmt.Errorf("after %q: %w", current, err)
		}

		g.logger.Debug("node completed",
			"node", current,
			"iteration", entry.Iteration,
			"visit", entry.Visit,
			"route", d.route,
			"next", d.next,
		)
		g.fireNodeLeave(ctx, runID, entry, time.Since(stepStarted))

		current = d.next
	}

	return nil
}

func (g *Graph) base(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		GraphID:   g.id,
		RunID:     runID,
	}
}

func (g *Graph) fireRunStart(ctx context.Context, runID string) {
	if g.hooks.OnRunStart == nil {
		return
	}
	g.hooks.OnRunStart(ctx, &domain.RunEvent{EventBase: g.base(domain.EventRunStart, runID)})
}

func (g *Graph) fireRunFinish(ctx context.Context, runID string, res *Result, d time.Duration, err error) {
	if g.hooks.OnRunFinish == nil {
		return
	}
	ev := &domain.RunEvent{
		EventBase:  g.base(domain.EventRunFinish, runID),
		Status:     res.Status,
		Iterations: res.Iterations,
		Duration:   d,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	g.hooks.OnRunFinish(ctx, ev)
}

func (g *Graph) fireNodeEnter(ctx context.Context, runID string, entry *domain.TraceEntry) {
	if g.hooks.OnNodeEnter == nil {
		return
	}
	g.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: g.base(domain.EventNodeEnter, runID),
		Node:      entry.Node,
		Iteration: entry.Iteration,
	})
}

func (g *Graph) fireNodeLeave(ctx context.Context, runID string, entry *domain.TraceEntry, d time.Duration) {
	if g.hooks.OnNodeLeave == nil {
		return
	}
	cp := *entry
	g.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: g.base(domain.EventNodeLeave, runID),
		Node:      entry.Node,
		Iteration: entry.Iteration,
		Entry:     &cp,
		Duration:  d,
	})
}

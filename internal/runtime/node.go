package runtime

import (
	"context"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Transform is the unit of work wrapped by a Node.
// It may mutate and return the state it receives, or build a new one;
// the returned value is authoritative.
type Transform func(ctx context.Context, state domain.State) (domain.State, error)

// Node is a named unit of work within a Graph.
type Node struct {
	Name      string
	Transform Transform
}

// StatusTable tracks node statuses for a single run.
// Each run owns its table, so Nodes can be shared by concurrent runs.
type StatusTable map[string]domain.NodeStatus

// Execute runs the transform and records the outcome in statuses.
// A failure is returned unchanged after the node is marked failed.
func (n *Node) Execute(ctx context.Context, state domain.State, statuses StatusTable) (domain.State, error) {
	statuses[n.Name] = domain.NodeStatusRunning

	updated, err := n.Transform(ctx, state)
	if err != nil {
		statuses[n.Name] = domain.NodeStatusFailed
		return nil, err
	}

	statuses[n.Name] = domain.NodeStatusCompleted
	if updated == nil {
		updated = domain.NewState()
	}
	return updated, nil
}

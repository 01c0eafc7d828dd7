package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(ctx context.Context, s domain.State) (domain.State, error) {
	return s, nil
}

func TestGraph_AddNode_FirstBecomesEntry(t *testing.T) {
	g := runtime.NewGraph("g")
	assert.Equal(t, "", g.Entry())

	g.AddNode("a", passthrough)
	g.AddNode("b", passthrough)

	assert.Equal(t, "a", g.Entry())
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestGraph_AddNode_Overwrites(t *testing.T) {
	g := runtime.NewGraph("g")
	g.AddNode("a", passthrough)
	g.AddNode("a", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["replaced"] = true
		return s, nil
	})

	assert.Equal(t, []string{"a"}, g.Nodes())

	res, err := g.Run(context.Background(), domain.State{})
	require.NoError(t, err)
	assert.Equal(t, true, res.State["replaced"])
}

func TestGraph_AddEdge(t *testing.T) {
	g := runtime.NewGraph("g")
	g.AddNode("a", passthrough)
	g.AddNode("b", passthrough)
	g.AddNode("c", passthrough)

	t.Run("Missing Source", func(t *testing.T) {
		err := g.AddEdge("ghost", "a")
		assert.ErrorIs(t, err, domain.ErrMissingNode)
	})

	t.Run("Missing Destination", func(t *testing.T) {
		err := g.AddEdge("a", "ghost")
		assert.ErrorIs(t, err, domain.ErrMissingNode)
		_, ok := g.NextNode("a")
		assert.False(t, ok, "failed edge must not be recorded")
	})

	t.Run("Conditional Marker Destination", func(t *testing.T) {
		require.NoError(t, g.AddEdge("c", "if_route"))
		next, ok := g.NextNode("c")
		assert.True(t, ok)
		assert.Equal(t, "if_route", next)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "c"))
		next, ok := g.NextNode("a")
		assert.True(t, ok)
		assert.Equal(t, "c", next)
	})

	t.Run("No Successor", func(t *testing.T) {
		next, ok := g.NextNode("b")
		assert.False(t, ok)
		assert.Equal(t, "", next)
	})
}

func TestGraph_SetEntry(t *testing.T) {
	g := runtime.NewGraph("g")
	g.AddNode("a", passthrough)
	g.AddNode("b", passthrough)

	require.NoError(t, g.SetEntry("b"))
	assert.Equal(t, "b", g.Entry())

	err := g.SetEntry("ghost")
	assert.ErrorIs(t, err, domain.ErrMissingNode)
	assert.Equal(t, "b", g.Entry())
}

func TestGraph_SummaryAndEdges(t *testing.T) {
	g := runtime.NewGraph("review")
	g.AddNode("b", passthrough)
	g.AddNode("a", passthrough)
	require.NoError(t, g.AddEdge("b", "a"))
	require.NoError(t, g.AddEdge("a", "if_done"))

	assert.Equal(t, domain.GraphSummary{ID: "review", NodeCount: 2, EntryNode: "b"}, g.Summary())
	assert.Equal(t, []runtime.Edge{{From: "a", To: "if_done"}, {From: "b", To: "a"}}, g.Edges())
	assert.True(t, runtime.IsConditionalMarker("if_done"))
	assert.False(t, runtime.IsConditionalMarker("done"))
}

func TestNode_Execute_Statuses(t *testing.T) {
	statuses := runtime.StatusTable{}

	ok := &runtime.Node{Name: "ok", Transform: passthrough}
	_, err := ok.Execute(context.Background(), domain.State{}, statuses)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeStatusCompleted, statuses["ok"])

	bad := &runtime.Node{Name: "bad", Transform: func(ctx context.Context, s domain.State) (domain.State, error) {
		assert.Equal(t, domain.NodeStatusRunning, statuses["bad"])
		return nil, assert.AnError
	}}
	_, err = bad.Execute(context.Background(), domain.State{}, statuses)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, domain.NodeStatusFailed, statuses["bad"])
}

func TestNode_Execute_NilStateBecomesEmpty(t *testing.T) {
	n := &runtime.Node{Name: "nil", Transform: func(ctx context.Context, s domain.State) (domain.State, error) {
		return nil, nil
	}}
	out, err := n.Execute(context.Background(), domain.State{"x": 1}, runtime.StatusTable{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

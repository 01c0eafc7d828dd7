package validator

import (
	"context"
	"testing"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, s domain.State) (domain.State, error) {
	return s, nil
}

func build(t *testing.T, nodes []string, edges [][2]string) *runtime.Graph {
	t.Helper()
	g := runtime.NewGraph("test")
	for _, n := range nodes {
		g.AddNode(n, noop)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestValidateGraph(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		g := build(t, []string{"start", "a", "b"}, [][2]string{{"start", "a"}, {"a", "b"}})
		report, err := ValidateGraph(g)
		require.NoError(t, err)
		assert.True(t, report.Empty())
		assert.Empty(t, report.Warnings())
	})

	t.Run("unreachable", func(t *testing.T) {
		g := build(t, []string{"start", "a", "orphan"}, [][2]string{{"start", "a"}})
		report, err := ValidateGraph(g)
		require.NoError(t, err)
		assert.Equal(t, []string{"orphan"}, report.Unreachable)
		assert.Len(t, report.Warnings(), 1)
	})

	t.Run("marker reaches everything", func(t *testing.T) {
		g := build(t, []string{"classify", "approve", "reject"}, [][2]string{{"classify", "if_approved"}})
		report, err := ValidateGraph(g)
		require.NoError(t, err)
		assert.True(t, report.Empty())
		assert.Equal(t, []string{"if_approved"}, report.Markers)
	})

	t.Run("static cycle", func(t *testing.T) {
		g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
		report, err := ValidateGraph(g)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "a"}, report.Cycle)
		assert.False(t, report.Empty())
		assert.Contains(t, report.Warnings()[0], "a -> b -> a")
	})

	t.Run("no entry", func(t *testing.T) {
		_, err := ValidateGraph(runtime.NewGraph("empty"))
		assert.ErrorIs(t, err, domain.ErrNoEntryNode)
	})
}

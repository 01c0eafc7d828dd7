package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newRecord := func(id string) *domain.RunRecord {
		return &domain.RunRecord{
			ID:      id,
			GraphID: "contract-graph",
			Status:  domain.RunCompleted,
			State:   domain.State{"foo": "bar", "nested": map[string]any{"n": "1"}},
			Trace: domain.Trace{
				{Node: "a", Status: domain.TraceCompleted, Iteration: 1, Visit: 1, StateSnapshot: domain.State{"foo": "bar"}},
			},
			CreatedAt:  time.Now().UTC(),
			FinishedAt: time.Now().UTC(),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		rec := newRecord(runID)
		require.NoError(t, store.Save(ctx, rec), "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, runID, loaded.ID)
		assert.Equal(t, "contract-graph", loaded.GraphID)
		assert.Equal(t, domain.RunCompleted, loaded.Status)
		assert.Equal(t, "bar", loaded.State["foo"])
		require.Len(t, loaded.Trace, 1)
		assert.Equal(t, "a", loaded.Trace[0].Node)
	})

	t.Run("Load Is Isolated From Caller", func(t *testing.T) {
		rec := newRecord(runID)
		require.NoError(t, store.Save(ctx, rec))
		rec.State["foo"] = "mutated"

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "bar", loaded.State["foo"])

		loaded.State["foo"] = "mutated again"
		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "bar", again.State["foo"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newRecord(runID)))
		require.NoError(t, store.Delete(ctx, runID), "Delete should not return error")

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, newRecord(id1)))
		require.NoError(t, store.Save(ctx, newRecord(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

// GraphStoreContract runs a suite of tests to verify that a GraphStore
// implementation adheres to the defined interface contract.
func GraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	noop := func(ctx context.Context, s domain.State) (domain.State, error) { return s, nil }

	t.Run("Put and Get", func(t *testing.T) {
		g := runtime.NewGraph("contract-b")
		g.AddNode("only", noop)
		require.NoError(t, store.Put(ctx, g))

		got, err := store.Get(ctx, "contract-b")
		require.NoError(t, err)
		assert.Equal(t, "contract-b", got.ID())
		assert.Equal(t, []string{"only"}, got.Nodes())
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Put Replaces", func(t *testing.T) {
		g := runtime.NewGraph("contract-b")
		g.AddNode("x", noop)
		g.AddNode("y", noop)
		require.NoError(t, store.Put(ctx, g))

		got, err := store.Get(ctx, "contract-b")
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, got.Nodes())
	})

	t.Run("List Sorted", func(t *testing.T) {
		g := runtime.NewGraph("contract-a")
		g.AddNode("first", noop)
		require.NoError(t, store.Put(ctx, g))

		summaries, err := store.List(ctx)
		require.NoError(t, err)

		var ids []string
		for _, s := range summaries {
			ids = append(ids, s.ID)
		}
		assert.IsIncreasing(t, ids)
		assert.Contains(t, summaries, domain.GraphSummary{ID: "contract-a", NodeCount: 1, EntryNode: "first"})
		assert.Contains(t, summaries, domain.GraphSummary{ID: "contract-b", NodeCount: 2, EntryNode: "x"})
	})
}

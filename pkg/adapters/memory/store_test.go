package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, memory.NewRunStore())
}

func TestGraphStore_Contract(t *testing.T) {
	ports.GraphStoreContract(t, memory.NewGraphStore())
}

func TestRunStore_TraceSnapshotsAreCopied(t *testing.T) {
	store := memory.NewRunStore()
	ctx := context.Background()

	rec := &domain.RunRecord{
		ID:    "r1",
		Trace: domain.Trace{{Node: "a", StateSnapshot: domain.State{"k": "v"}}},
	}
	require.NoError(t, store.Save(ctx, rec))
	rec.Trace[0].StateSnapshot["k"] = "changed"

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "v", loaded.Trace[0].StateSnapshot["k"])
}

func TestRunStore_NotFoundMentionsID(t *testing.T) {
	_, err := memory.NewRunStore().Load(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	assert.ErrorContains(t, err, "abc")
}

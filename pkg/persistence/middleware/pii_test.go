package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/persistence/middleware"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewRunStore()
	mw, err := middleware.NewPIIMiddleware([]string{"password", "^ssn"})
	require.NoError(t, err)
	store := mw(underlying)

	ctx := context.Background()
	rec := &domain.RunRecord{
		ID:      "run-1",
		GraphID: "g",
		Status:  domain.RunCompleted,
		State: domain.State{
			"username":      "jdoe",
			"user_password": "secret123",
			"details": map[string]any{
				"address":    "123 St",
				"ssn_number": "999-99-9999",
			},
		},
		Trace: domain.Trace{{
			Node:          "login",
			Status:        domain.TraceCompleted,
			Iteration:     1,
			Visit:         1,
			StateSnapshot: domain.State{"user_password": "secret123"},
		}},
	}

	require.NoError(t, store.Save(ctx, rec))
	assert.Equal(t, "secret123", rec.State["user_password"], "caller's record must not change")

	stored, err := underlying.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", stored.State["username"])
	assert.Equal(t, middleware.Mask, stored.State["user_password"])
	assert.Equal(t, middleware.Mask, stored.State["details"].(map[string]any)["ssn_number"])
	assert.Equal(t, "123 St", stored.State["details"].(map[string]any)["address"])
	assert.Equal(t, middleware.Mask, stored.Trace[0].StateSnapshot["user_password"])
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.ErrorContains(t, err, "invalid redact pattern")
}

func TestPIIMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewPIIMiddleware([]string{"secret"})
	require.NoError(t, err)
	ports.RunStoreContract(t, middleware.Chain(memory.NewRunStore(), mw))
}

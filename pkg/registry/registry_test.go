package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("mark", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["marked"] = true
		return s, nil
	})

	step, err := reg.Get("mark")
	require.NoError(t, err)

	out, err := step(context.Background(), domain.State{})
	require.NoError(t, err)
	assert.Equal(t, true, out["marked"])
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := registry.NewRegistry()

	_, err := reg.Get("ghost")
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
	assert.Contains(t, err.Error(), "ghost")

	_, err = reg.Execute(context.Background(), "ghost", domain.State{})
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
}

func TestRegistry_Overwrite(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("v", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["v"] = 1
		return s, nil
	})
	reg.Register("v", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["v"] = 2
		return s, nil
	})

	out, err := reg.Execute(context.Background(), "v", domain.State{})
	require.NoError(t, err)
	assert.Equal(t, 2, out["v"])
	assert.Equal(t, []string{"v"}, reg.List())
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := registry.NewRegistry()
	noop := func(ctx context.Context, s domain.State) (domain.State, error) { return s, nil }
	reg.Register("zeta", noop)
	reg.Register("alpha", noop)
	reg.Register("mid", noop)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.List())
}

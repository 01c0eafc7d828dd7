package testutils

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/tools"
)

// ErrExplode is returned by the "explode" step.
var ErrExplode = errors.New("kaboom")

// GhostNode is the loop target requested by the "loop_to_ghost" step. No
// graph built in tests defines it.
const GhostNode = "ghost"

// NewRegistry returns a registry holding the built-in analysis steps plus
// "explode", which always fails with ErrExplode, and "loop_to_ghost", which
// asks to loop to GhostNode.
func NewRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry()
	tools.RegisterDefaults(reg)
	reg.Register("explode", func(ctx context.Context, s domain.State) (domain.State, error) {
		return nil, ErrExplode
	})
	reg.Register("loop_to_ghost", func(ctx context.Context, s domain.State) (domain.State, error) {
		s[domain.KeyLoopContinue] = true
		s[domain.KeyLoopNode] = GhostNode
		return s, nil
	})
	return reg
}

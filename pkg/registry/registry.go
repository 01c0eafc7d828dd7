package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Step defines the signature for a named step implementation.
// It has the same shape as a node transform, so a Step can be added to a graph directly.
type Step func(ctx context.Context, state domain.State) (domain.State, error)

// Registry maps step names to implementations.
// Graph definitions refer to steps by name; only registered steps can be used.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// Register adds a step to the registry.
// If a step with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[name] = fn
}

// Get looks up a step by name.
func (r *Registry) Get(name string) (Step, error) {
	r.mu.RLock()
	fn, ok := r.steps[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStepNotFound, name)
	}
	return fn, nil
}

// Execute looks up a step by name and runs it against state.
func (r *Registry) Execute(ctx context.Context, name string, state domain.State) (domain.State, error) {
	fn, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, state)
}

// List returns the registered step names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/registry"
)

// Builder manages the graph construction.
type Builder struct {
	id       string
	nodes    map[string]*NodeBuilder
	order    []string
	entry    string
	registry *registry.Registry
	opts     []runtime.GraphOption
}

// New creates a new graph builder.
func New(id string, opts ...runtime.GraphOption) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*NodeBuilder),
		opts:  opts,
	}
}

// WithRegistry sets the registry used to resolve NodeBuilder.Use.
func (b *Builder) WithRegistry(reg *registry.Registry) *Builder {
	b.registry = reg
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(name string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		name:    name,
		builder: b,
	}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Build compiles the graph. Nodes are added in declaration order, so the
// first declared node is the entry unless NodeBuilder.Entry says otherwise.
func (b *Builder) Build() (*runtime.Graph, error) {
	g := runtime.NewGraph(b.id, b.opts...)

	var errs []error
	for _, name := range b.order {
		nb := b.nodes[name]
		fn, err := nb.resolve()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.AddNode(name, fn)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build graph %s: %w", b.id, errors.Join(errs...))
	}

	for _, name := range b.order {
		nb := b.nodes[name]
		if nb.next == "" {
			continue
		}
		if err := g.AddEdge(name, nb.next); err != nil {
			errs = append(errs, err)
		}
	}
	if b.entry != "" {
		if err := g.SetEntry(b.entry); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build graph %s: %w", b.id, errors.Join(errs...))
	}

	return g, nil
}

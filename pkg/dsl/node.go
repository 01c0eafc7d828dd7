package dsl

import (
	"fmt"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	name    string
	fn      runtime.Transform
	step    string
	next    string
	builder *Builder
}

// Do sets the transform executed by the node.
func (n *NodeBuilder) Do(fn runtime.Transform) *NodeBuilder {
	n.fn = fn
	n.step = ""
	return n
}

// Use binds the node to a step registered in the builder's registry.
// The lookup happens at Build time.
func (n *NodeBuilder) Use(step string) *NodeBuilder {
	n.step = step
	n.fn = nil
	return n
}

// Go sets the static successor of the node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.next = target
	return n
}

// Branch routes through a conditional marker: after this node runs, the
// "route_to" state key decides the successor. The "if_" prefix is added when
// missing.
func (n *NodeBuilder) Branch(marker string) *NodeBuilder {
	if !runtime.IsConditionalMarker(marker) {
		marker = domain.ConditionalPrefix + marker
	}
	n.next = marker
	return n
}

// Entry marks the node as the entry point of the graph.
func (n *NodeBuilder) Entry() *NodeBuilder {
	n.builder.entry = n.name
	return n
}

// Terminal marks the node as a terminal node (end of the flow).
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.next = ""
	return n
}

func (n *NodeBuilder) resolve() (runtime.Transform, error) {
	if n.fn != nil {
		return n.fn, nil
	}
	if n.step == "" {
		return nil, fmt.Errorf("node %q has no step", n.name)
	}
	if n.builder.registry == nil {
		return nil, fmt.Errorf("node %q uses step %q but no registry was set", n.name, n.step)
	}
	step, err := n.builder.registry.Get(n.step)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.name, err)
	}
	return runtime.Transform(step), nil
}

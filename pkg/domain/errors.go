package domain

import (
	"errors"
	"fmt"
)

// ErrNoEntryNode is returned by Run when the graph has no entry node.
var ErrNoEntryNode = errors.New("no entry node defined")

// ErrMissingNode is returned when an operation references a node that is not part of the graph.
var ErrMissingNode = errors.New("node does not exist")

// ErrUnknownLoopTarget is returned by Run when a step asks to loop to a
// node that is not part of the graph.
var ErrUnknownLoopTarget = errors.New("unknown loop target")

// ErrStepNotFound is returned by the step registry for unregistered names.
var ErrStepNotFound = errors.New("step not found in registry")

// ErrNodeFailed matches every *NodeError via errors.Is.
var ErrNodeFailed = errors.New("node execution failed")

// ErrGraphNotFound is returned when a graph ID cannot be found in the catalogue.
var ErrGraphNotFound = errors.New("graph not found")

// ErrRunNotFound is returned when a run ID cannot be found in the run registry.
var ErrRunNotFound = errors.New("run not found")

// NodeError reports a transform failure together with where it happened.
type NodeError struct {
	Node      string
	Iteration int
	Err       error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed at iteration %d: %v", e.Node, e.Iteration, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNodeFailed) match any NodeError.
func (e *NodeError) Is(target error) bool {
	return target == ErrNodeFailed
}

package domain

// Reserved state keys. They are read and consumed by the engine itself.
const (
	// KeyRouteTo names the node a conditional marker should route to.
	// It is removed from state when a marker is resolved.
	KeyRouteTo = "route_to"

	// KeyLoopContinue, when set to true, asks the engine to jump back to the
	// loop target after the current step. The engine resets it to false.
	KeyLoopContinue = "loop_continue"

	// KeyLoopNode names the loop target. Defaults to the entry node when
	// absent; an empty or nil value ends the run.
	KeyLoopNode = "loop_node"
)

// ConditionalPrefix marks an edge target as a conditional routing marker
// rather than a real node.
const ConditionalPrefix = "if_"

// DefaultMaxIterations is the hard ceiling on node executions per run.
const DefaultMaxIterations = 100

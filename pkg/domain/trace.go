package domain

// TraceStatus is the status of a single trace entry.
type TraceStatus string

const (
	TraceRunning   TraceStatus = "running"
	TraceCompleted TraceStatus = "completed"
	TraceFailed    TraceStatus = "failed"
)

// Route names the routing rule that selected the next node.
type Route string

const (
	RouteEdge        Route = "edge"
	RouteConditional Route = "conditional"
	RouteLoop        Route = "loop"
	RouteEnd         Route = "end"
)

// TraceEntry records one node execution attempt.
// Once appended it is only updated in place by the step that created it.
type TraceEntry struct {
	Node      string      `json:"node"`
	Status    TraceStatus `json:"status"`
	Iteration int         `json:"iteration"`

	// Visit is the 1-based number of times this node has executed in the run.
	Visit int `json:"visit"`

	Route Route  `json:"route,omitempty"`
	Next  string `json:"next,omitempty"`

	StateSnapshot State  `json:"state_snapshot,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Trace is the ordered execution log of a run.
type Trace []TraceEntry

// Nodes returns the node names in execution order.
func (t Trace) Nodes() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Node
	}
	return names
}

// Last returns the most recent entry, if any.
func (t Trace) Last() (TraceEntry, bool) {
	if len(t) == 0 {
		return TraceEntry{}, false
	}
	return t[len(t)-1], true
}

// Clone returns a copy of the trace with its own state snapshots.
func (t Trace) Clone() Trace {
	if t == nil {
		return nil
	}
	cp := make(Trace, len(t))
	for i, e := range t {
		cp[i] = e
		if e.StateSnapshot != nil {
			cp[i].StateSnapshot = e.StateSnapshot.Clone()
		}
	}
	return cp
}

package domain

import "time"

// RunStatus is the terminal status of a run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	// RunIncomplete means the iteration ceiling stopped the run.
	RunIncomplete RunStatus = "incomplete"
	RunFailed     RunStatus = "failed"
)

// RunRecord is what the run registry keeps about a finished run.
type RunRecord struct {
	ID         string    `json:"run_id"`
	GraphID    string    `json:"graph_id"`
	Status     RunStatus `json:"status"`
	State      State     `json:"state"`
	Trace      Trace     `json:"execution_log"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// GraphSummary describes a registered graph.
type GraphSummary struct {
	ID        string `json:"graph_id"`
	NodeCount int    `json:"node_count"`
	EntryNode string `json:"entry_node"`
}

// Clone returns a copy of the record that shares no maps with r.
func (r *RunRecord) Clone() *RunRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.State = r.State.Clone()
	cp.Trace = r.Trace.Clone()
	return &cp
}

// RunSummary is the listing view of a run.
type RunSummary struct {
	ID        string    `json:"run_id"`
	GraphID   string    `json:"graph_id"`
	Status    RunStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the listing view of r.
func (r *RunRecord) Summary() RunSummary {
	return RunSummary{
		ID:        r.ID,
		GraphID:   r.GraphID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

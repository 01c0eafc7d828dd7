package ports

import (
	"context"

	"github.com/aretw0/stepflow/pkg/domain"
)

// TraceSink receives trace progress while a run is executing, for live
// monitoring. Sinks are best effort: a failing sink never fails the run.
type TraceSink interface {
	PublishNode(ctx context.Context, ev *domain.NodeEvent) error
	PublishRun(ctx context.Context, ev *domain.RunEvent) error
}

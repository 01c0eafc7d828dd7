// Package workflows contains prebuilt example graphs.
package workflows

import (
	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/dsl"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/tools"
)

// CodeReviewID is the graph id of the code review workflow.
const CodeReviewID = "code_review_workflow"

// CodeReview builds the code review workflow:
//
//	extract_functions -> check_complexity -> detect_issues ->
//	suggest_improvements -> calculate_quality -> check_threshold
//
// check_threshold loops back to suggest_improvements while the quality score
// is below the threshold, for at most max_rounds review rounds (default
// tools.DefaultMaxRounds). Unlike a plain threshold loop, the run does not
// spin until the iteration ceiling: once max_rounds is reached it ends with
// status completed even if the score is still below the threshold.
// The steps are resolved from reg; tools.RegisterDefaults provides them.
func CodeReview(reg *registry.Registry, opts ...runtime.GraphOption) (*runtime.Graph, error) {
	return CodeReviewWithID(CodeReviewID, reg, opts...)
}

// CodeReviewWithID is CodeReview with a caller-chosen graph id.
func CodeReviewWithID(id string, reg *registry.Registry, opts ...runtime.GraphOption) (*runtime.Graph, error) {
	b := dsl.New(id, opts...).WithRegistry(reg)

	b.Add("extract_functions").Use("extract_functions").Go("check_complexity")
	b.Add("check_complexity").Use("check_complexity").Go("detect_issues")
	b.Add("detect_issues").Use("detect_smells").Go(tools.DefaultLoopNode)
	b.Add(tools.DefaultLoopNode).Use("suggest_improvements").Go("calculate_quality")
	b.Add("calculate_quality").Use("calculate_quality_score").Go("check_threshold")
	b.Add("check_threshold").Use("check_threshold").Terminal()

	return b.Build()
}

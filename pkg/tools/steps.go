package tools

import (
	"context"
	"encoding/json"
	"math"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
)

// State keys read and written by the code review steps.
const (
	KeyCode            = "code"
	KeyExtracted       = "extracted"
	KeyFunctionCount   = "function_count"
	KeyComplexityScore = "complexity_score"
	KeyIssues          = "issues"
	KeyIssueCount      = "issue_count"
	KeySuggestions     = "suggestions"
	KeyQualityScore    = "quality_score"
	KeyThreshold       = "threshold"
	KeyQualityMet      = "quality_met"
	KeyReviewRounds    = "review_rounds"
	KeyMaxRounds       = "max_rounds"
)

// Defaults for CheckThreshold.
const (
	DefaultThreshold = 70
	DefaultMaxRounds = 3
	DefaultLoopNode  = "suggest_improvements"
)

// ExtractFunctions records how many functions the code defines.
func ExtractFunctions(ctx context.Context, s domain.State) (domain.State, error) {
	s[KeyFunctionCount] = CountFunctions(codeOf(s))
	s[KeyExtracted] = true
	return s, nil
}

// CheckComplexityStep stores the complexity score of the code.
func CheckComplexityStep(ctx context.Context, s domain.State) (domain.State, error) {
	s[KeyComplexityScore] = CheckComplexity(codeOf(s))
	return s, nil
}

// DetectSmellsStep stores the detected issues and their count.
func DetectSmellsStep(ctx context.Context, s domain.State) (domain.State, error) {
	report := DetectSmells(codeOf(s))
	s[KeyIssues] = report.Issues
	s[KeyIssueCount] = report.IssueCount
	return s, nil
}

// SuggestImprovements turns the detected issues into suggestions.
func SuggestImprovements(ctx context.Context, s domain.State) (domain.State, error) {
	s[KeySuggestions] = Suggest(stringsOf(s[KeyIssues]))
	return s, nil
}

// CalculateQualityStep stores the quality score derived from issues and complexity.
func CalculateQualityStep(ctx context.Context, s domain.State) (domain.State, error) {
	issues, _ := asInt(s[KeyIssueCount])
	complexity, _ := asInt(s[KeyComplexityScore])
	s[KeyQualityScore] = CalculateQualityScore(issues, complexity)
	return s, nil
}

// ThresholdConfig configures CheckThreshold.
type ThresholdConfig struct {
	// Threshold is used when the state carries no "threshold".
	Threshold int
	// MaxRounds is used when the state carries no "max_rounds".
	MaxRounds int
	// LoopNode is the node revisited while the score is below threshold.
	LoopNode string
}

// DefaultThresholdConfig returns the threshold settings of the code review workflow.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		Threshold: DefaultThreshold,
		MaxRounds: DefaultMaxRounds,
		LoopNode:  DefaultLoopNode,
	}
}

// CheckThreshold returns a step that compares the quality score against a
// threshold. Below the threshold it sets the loop flag towards cfg.LoopNode,
// until the review has gone through max_rounds rounds.
func CheckThreshold(cfg ThresholdConfig) registry.Step {
	return func(ctx context.Context, s domain.State) (domain.State, error) {
		score, _ := asInt(s[KeyQualityScore])

		threshold, ok := asInt(s[KeyThreshold])
		if !ok {
			threshold = cfg.Threshold
		}
		maxRounds, ok := asInt(s[KeyMaxRounds])
		if !ok {
			maxRounds = cfg.MaxRounds
		}

		rounds, _ := asInt(s[KeyReviewRounds])
		rounds++
		s[KeyReviewRounds] = rounds

		if score >= threshold {
			s[KeyQualityMet] = true
			s[domain.KeyLoopContinue] = false
			return s, nil
		}

		s[KeyQualityMet] = false
		if rounds >= maxRounds {
			s[domain.KeyLoopContinue] = false
			return s, nil
		}
		s[domain.KeyLoopContinue] = true
		s[domain.KeyLoopNode] = cfg.LoopNode
		return s, nil
	}
}

// RegisterDefaults registers the code review steps under their canonical names.
// Node-style aliases (detect_issues, calculate_quality) are registered too.
func RegisterDefaults(reg *registry.Registry) {
	reg.Register("extract_functions", ExtractFunctions)
	reg.Register("check_complexity", CheckComplexityStep)
	reg.Register("detect_smells", DetectSmellsStep)
	reg.Register("detect_issues", DetectSmellsStep)
	reg.Register("suggest_improvements", SuggestImprovements)
	reg.Register("calculate_quality_score", CalculateQualityStep)
	reg.Register("calculate_quality", CalculateQualityStep)
	reg.Register("check_threshold", CheckThreshold(DefaultThresholdConfig()))
}

func codeOf(s domain.State) string {
	code, _ := s[KeyCode].(string)
	return code
}

func stringsOf(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// asInt accepts the numeric shapes a state can carry after JSON or YAML decoding.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

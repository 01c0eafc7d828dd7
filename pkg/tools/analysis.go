package tools

import "strings"

// Smell thresholds.
const (
	MaxCodeLength   = 1000
	MaxConditionals = 10
)

// Complexity weights per keyword occurrence.
var complexityWeights = []struct {
	keyword string
	weight  int
}{
	{"if", 2},
	{"for", 3},
	{"while", 4},
	{"def", 1},
}

// Issue messages produced by DetectSmells.
const (
	IssueTooLong         = "Code too long"
	IssueTooManyBranches = "Too many conditionals"
	IssueTodo            = "Contains TODO/FIXME"
)

// SmellReport is the result of DetectSmells.
type SmellReport struct {
	Issues     []string `json:"issues"`
	IssueCount int      `json:"issue_count"`
}

// DetectSmells runs a few textual heuristics over code.
// Keyword counts are plain substring counts.
func DetectSmells(code string) SmellReport {
	issues := []string{}
	if len(code) > MaxCodeLength {
		issues = append(issues, IssueTooLong)
	}
	if strings.Count(code, "if") > MaxConditionals {
		issues = append(issues, IssueTooManyBranches)
	}
	if strings.Contains(code, "TODO") || strings.Contains(code, "FIXME") {
		issues = append(issues, IssueTodo)
	}
	return SmellReport{Issues: issues, IssueCount: len(issues)}
}

// CheckComplexity returns a weighted keyword count for code.
func CheckComplexity(code string) int {
	score := 0
	for _, w := range complexityWeights {
		score += strings.Count(code, w.keyword) * w.weight
	}
	return score
}

// CalculateQualityScore scores code from 0 to 100, lower meaning worse.
func CalculateQualityScore(issueCount, complexity int) int {
	return max(0, 100-issueCount*10-complexity*2)
}

// CountFunctions counts "def " occurrences in code.
func CountFunctions(code string) int {
	return strings.Count(code, "def ")
}

// Suggest maps detected issues to improvement hints.
func Suggest(issues []string) []string {
	suggestions := []string{}
	for _, issue := range issues {
		lower := strings.ToLower(issue)
		switch {
		case strings.Contains(lower, "too long"):
			suggestions = append(suggestions, "Consider breaking into smaller functions")
		case strings.Contains(lower, "conditionals"):
			suggestions = append(suggestions, "Consider using switch/case or polymorphism")
		case strings.Contains(issue, "TODO"):
			suggestions = append(suggestions, "Remove TODO comments before production")
		}
	}
	return suggestions
}

package tools_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stepflow/pkg/tools"
	"github.com/stretchr/testify/assert"
)

func TestDetectSmells(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{"Clean", "def f():\n    return 1\n", []string{}},
		{"Too Long", strings.Repeat("x", 1001), []string{tools.IssueTooLong}},
		{"Exactly Max Length", strings.Repeat("x", 1000), []string{}},
		{"Too Many Conditionals", strings.Repeat("if ", 11), []string{tools.IssueTooManyBranches}},
		{"Ten Conditionals", strings.Repeat("if ", 10), []string{}},
		{"Todo", "# TODO: fix", []string{tools.IssueTodo}},
		{"Fixme", "# FIXME", []string{tools.IssueTodo}},
		{
			"Everything",
			strings.Repeat("if x: pass # TODO\n", 60),
			[]string{tools.IssueTooLong, tools.IssueTooManyBranches, tools.IssueTodo},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tools.DetectSmells(tt.code)
			assert.Equal(t, tt.want, got.Issues)
			assert.Equal(t, len(tt.want), got.IssueCount)
		})
	}
}

func TestCheckComplexity(t *testing.T) {
	assert.Equal(t, 0, tools.CheckComplexity(""))
	assert.Equal(t, 2, tools.CheckComplexity("if"))
	assert.Equal(t, 3, tools.CheckComplexity("for"))
	assert.Equal(t, 4, tools.CheckComplexity("while"))
	assert.Equal(t, 1, tools.CheckComplexity("def"))
	// def=1, if=2, for=3
	assert.Equal(t, 6, tools.CheckComplexity("def f(): for x in y: if x: pass"))
}

func TestCalculateQualityScore(t *testing.T) {
	assert.Equal(t, 100, tools.CalculateQualityScore(0, 0))
	assert.Equal(t, 76, tools.CalculateQualityScore(1, 7))
	assert.Equal(t, 0, tools.CalculateQualityScore(5, 40), "score is clamped at zero")
}

func TestSuggest(t *testing.T) {
	got := tools.Suggest([]string{tools.IssueTooLong, tools.IssueTooManyBranches, tools.IssueTodo, "unknown"})
	assert.Equal(t, []string{
		"Consider breaking into smaller functions",
		"Consider using switch/case or polymorphism",
		"Remove TODO comments before production",
	}, got)

	assert.Empty(t, tools.Suggest(nil))
}

func TestCountFunctions(t *testing.T) {
	assert.Equal(t, 2, tools.CountFunctions("def a():\n    pass\ndef b():\n    pass\n"))
	assert.Equal(t, 0, tools.CountFunctions("undefined"))
}

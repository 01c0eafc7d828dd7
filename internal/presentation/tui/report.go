package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Report renders a run record as markdown.
func Report(rec *domain.RunRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Run %s\n\n", orDash(rec.ID))
	fmt.Fprintf(&sb, "- **Graph:** %s\n", rec.GraphID)
	fmt.Fprintf(&sb, "- **Status:** %s\n", rec.Status)
	fmt.Fprintf(&sb, "- **Steps:** %d\n", len(rec.Trace))
	if rec.Error != "" {
		fmt.Fprintf(&sb, "- **Error:** %s\n", rec.Error)
	}

	sb.WriteString("\n## Trace\n\n")
	sb.WriteString("| # | Node | Visit | Status | Route | Next |\n")
	sb.WriteString("|---|------|-------|--------|-------|------|\n")
	for _, e := range rec.Trace {
		fmt.Fprintf(&sb, "| %d | %s | %d | %s | %s | %s |\n",
			e.Iteration, cell(e.Node), e.Visit, e.Status, orDash(string(e.Route)), orDash(cell(e.Next)))
	}

	sb.WriteString("\n## Final State\n\n")
	if len(rec.State) == 0 {
		sb.WriteString("_empty_\n")
		return sb.String()
	}
	sb.WriteString("| Key | Value |\n")
	sb.WriteString("|-----|-------|\n")
	keys := make([]string, 0, len(rec.State))
	for k := range rec.State {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "| %s | %s |\n", cell(k), cell(formatValue(rec.State[k])))
	}

	return sb.String()
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

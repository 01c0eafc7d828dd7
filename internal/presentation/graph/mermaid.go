package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
)

// Overlay carries the trace of a run to visualize on top of the graph.
type Overlay struct {
	Trace domain.Trace
}

// GenerateMermaid produces a Mermaid flowchart for g.
// It applies semantic styling:
// - Entry: ((Circle))
// - Conditional marker: {Diamond}
// - Default: [Rectangle]
// With an overlay, the routes actually taken through markers and loops are
// drawn as dotted edges and visited, current and failed nodes are styled.
func GenerateMermaid(g *runtime.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := g.Entry()
	for _, name := range g.Nodes() {
		opener, closer := "[", "]"
		if name == entry {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer)
	}

	markers := make(map[string]bool)
	for _, e := range g.Edges() {
		if runtime.IsConditionalMarker(e.To) && !markers[e.To] {
			markers[e.To] = true
			fmt.Fprintf(&sb, "    %s{\"%s\"}\n", sanitizeMermaidID(e.To), e.To)
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(e.From), sanitizeMermaidID(e.To))
	}

	if overlay != nil {
		writeOverlay(&sb, g, overlay)
	}

	return sb.String()
}

func writeOverlay(sb *strings.Builder, g *runtime.Graph, overlay *Overlay) {
	seen := make(map[string]bool)
	for _, e := range overlay.Trace {
		if e.Next == "" {
			continue
		}
		var line string
		switch e.Route {
		case domain.RouteLoop:
			line = fmt.Sprintf("    %s -. \"loop\" .-> %s\n", sanitizeMermaidID(e.Node), sanitizeMermaidID(e.Next))
		case domain.RouteConditional:
			marker, _ := g.NextNode(e.Node)
			line = fmt.Sprintf("    %s -. \"route_to\" .-> %s\n", sanitizeMermaidID(marker), sanitizeMermaidID(e.Next))
		default:
			continue
		}
		if !seen[line] {
			seen[line] = true
			sb.WriteString(line)
		}
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

	visited := make(map[string]bool)
	for _, e := range overlay.Trace {
		id := sanitizeMermaidID(e.Node)
		if id != "" && !visited[id] {
			visited[id] = true
			fmt.Fprintf(sb, "    class %s visited;\n", id)
		}
	}

	last, ok := overlay.Trace.Last()
	if !ok {
		return
	}
	class := "current"
	if last.Status == domain.TraceFailed {
		class = "failed"
	}
	fmt.Fprintf(sb, "    class %s %s;\n", sanitizeMermaidID(last.Node), class)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// Package validator inspects a graph's static structure before it runs.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
)

// Report lists structural findings. None of them prevents a run: nodes
// outside the static path may still be reached through route_to or
// loop_node, and a static cycle may be left through the loop flag.
type Report struct {
	// Unreachable lists nodes not reachable from the entry through static
	// edges or conditional markers.
	Unreachable []string
	// Cycle is the static path that repeats from the entry, ending with the
	// first revisited node. A run following it only stops at the ceiling.
	Cycle []string
	// Markers lists the conditional markers on the static path from the entry.
	Markers []string
}

// Empty reports whether there are no findings.
func (r Report) Empty() bool {
	return len(r.Unreachable) == 0 && len(r.Cycle) == 0
}

// Warnings renders the findings as human readable lines.
func (r Report) Warnings() []string {
	var out []string
	for _, n := range r.Unreachable {
		out = append(out, fmt.Sprintf("node %q is not reachable from the entry through static edges", n))
	}
	if len(r.Cycle) > 0 {
		out = append(out, fmt.Sprintf("static cycle %s only ends at the iteration ceiling", strings.Join(r.Cycle, " -> ")))
	}
	return out
}

// ValidateGraph crawls g from its entry node.
//
// A conditional marker can route to any node, so reaching one makes every
// node reachable.
func ValidateGraph(g *runtime.Graph) (Report, error) {
	var report Report

	entry := g.Entry()
	if entry == "" {
		return report, domain.ErrNoEntryNode
	}

	// Each node has at most one successor, so the static path is a chain.
	visited := make(map[string]bool)
	var path []string
	current := entry
	for {
		if visited[current] {
			report.Cycle = append(path, current)
			break
		}
		visited[current] = true
		path = append(path, current)

		next, ok := g.NextNode(current)
		if !ok {
			break
		}
		if runtime.IsConditionalMarker(next) {
			report.Markers = append(report.Markers, next)
			return report, nil
		}
		current = next
	}

	for _, n := range g.Nodes() {
		if !visited[n] {
			report.Unreachable = append(report.Unreachable, n)
		}
	}
	return report, nil
}

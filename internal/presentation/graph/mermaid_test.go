package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, s domain.State) (domain.State, error) { return s, nil }

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		build    func(t *testing.T) *runtime.Graph
		contains []string
	}{
		{
			name: "Entry Node Shape",
			build: func(t *testing.T) *runtime.Graph {
				g := runtime.NewGraph("g")
				g.AddNode("first", noop)
				g.AddNode("second", noop)
				return g
			},
			contains: []string{
				"first((\"first\"))",
				"second[\"second\"]",
			},
		},
		{
			name: "Edges",
			build: func(t *testing.T) *runtime.Graph {
				g := runtime.NewGraph("g")
				g.AddNode("a", noop)
				g.AddNode("b", noop)
				require.NoError(t, g.AddEdge("a", "b"))
				return g
			},
			contains: []string{"a --> b"},
		},
		{
			name: "Conditional Marker",
			build: func(t *testing.T) *runtime.Graph {
				g := runtime.NewGraph("g")
				g.AddNode("a", noop)
				require.NoError(t, g.AddEdge("a", "if_done"))
				return g
			},
			contains: []string{
				"if_done{\"if_done\"}",
				"a --> if_done",
			},
		},
		{
			name: "ID Sanitization",
			build: func(t *testing.T) *runtime.Graph {
				g := runtime.NewGraph("g")
				g.AddNode("path/to/file.md", noop)
				g.AddNode("hyphen-ated", noop)
				return g
			},
			contains: []string{
				"path_to_file_md((\"path/to/file.md\"))",
				"hyphen_ated[\"hyphen-ated\"]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.build(t), nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := runtime.NewGraph("g")
	g.AddNode("a", func(ctx context.Context, s domain.State) (domain.State, error) {
		if s["again"] == nil {
			s["again"] = true
			s[domain.KeyLoopContinue] = true
		}
		s[domain.KeyRouteTo] = "c"
		return s, nil
	})
	g.AddNode("b", noop)
	g.AddNode("c", noop)
	require.NoError(t, g.AddEdge("a", "if_pick"))

	res, err := g.Run(context.Background(), domain.State{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "a", "c"}, res.Trace.Nodes())

	got := graph.GenerateMermaid(g, &graph.Overlay{Trace: res.Trace})

	assert.Contains(t, got, "a -. \"loop\" .-> a")
	assert.Contains(t, got, "if_pick -. \"route_to\" .-> c")
	assert.Equal(t, 1, strings.Count(got, "class a visited;"))
	assert.Contains(t, got, "class c visited;")
	assert.NotContains(t, got, "class b visited;")
	assert.Contains(t, got, "class c current;")
}

func TestGenerateMermaid_OverlayFailed(t *testing.T) {
	g := runtime.NewGraph("g")
	g.AddNode("a", func(ctx context.Context, s domain.State) (domain.State, error) {
		return nil, assert.AnError
	})

	res, err := g.Run(context.Background(), domain.State{})
	require.Error(t, err)

	got := graph.GenerateMermaid(g, &graph.Overlay{Trace: res.Trace})
	assert.Contains(t, got, "classDef failed")
	assert.Contains(t, got, "class a failed;")
	assert.NotContains(t, got, "class a current;")
}

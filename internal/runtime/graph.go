package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Graph owns a set of nodes, a single-successor edge map and an entry point.
// Structural methods are safe for concurrent use; Run works on a snapshot.
type Graph struct {
	mu sync.RWMutex

	id    string
	nodes map[string]*Node
	order []string // insertion order, for presentation
	edges map[string]string
	entry string

	maxIterations int
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
}

// NewGraph creates an empty graph.
func NewGraph(id string, opts ...GraphOption) *Graph {
	g := defaultGraph(id)
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("graph_id", id)
	return g
}

// ID returns the graph identifier.
func (g *Graph) ID() string {
	return g.id
}

// AddNode inserts a node under name, replacing any node with the same name.
// The first node ever added becomes the entry node.
func (g *Graph) AddNode(name string, transform Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}
	g.nodes[name] = &Node{Name: name, Transform: transform}
	if g.entry == "" {
		g.entry = name
	}
}

// AddEdge records from -> to, replacing any previous successor of from.
// Both endpoints must exist, except that to may be a conditional marker.
func (g *Graph) AddEdge(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("edge %s -> %s: %w: %q", from, to, domain.ErrMissingNode, from)
	}
	if _, ok := g.nodes[to]; !ok && !IsConditionalMarker(to) {
		return fmt.Errorf("edge %s -> %s: %w: %q", from, to, domain.ErrMissingNode, to)
	}
	g.edges[from] = to
	return nil
}

// NextNode returns the static successor of from.
func (g *Graph) NextNode(from string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	to, ok := g.edges[from]
	return to, ok
}

// SetEntry overrides the entry node.
func (g *Graph) SetEntry(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[name]; !ok {
		return fmt.Errorf("entry: %w: %q", domain.ErrMissingNode, name)
	}
	g.entry = name
	return nil
}

// Entry returns the entry node name, or "" when unset.
func (g *Graph) Entry() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.entry
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[name]
	return ok
}

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.order...)
}

// Edge is a static from -> to connection.
type Edge struct {
	From string
	To   string
}

// Edges returns the static edges sorted by source.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]Edge, 0, len(g.edges))
	for from, to := range g.edges {
		edges = append(edges, Edge{From: from, To: to})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].From < edges[j].From })
	return edges
}

// Summary describes the graph for listings.
func (g *Graph) Summary() domain.GraphSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return domain.GraphSummary{
		ID:        g.id,
		NodeCount: len(g.nodes),
		EntryNode: g.entry,
	}
}

// IsConditionalMarker reports whether name is a routing marker rather than a node.
func IsConditionalMarker(name string) bool {
	return strings.HasPrefix(name, domain.ConditionalPrefix)
}

// snapshot is an immutable view of the graph structure used by a single run.
type snapshot struct {
	nodes map[string]*Node
	edges map[string]string
	entry string
}

func (g *Graph) snapshot() *snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &snapshot{
		nodes: make(map[string]*Node, len(g.nodes)),
		edges: make(map[string]string, len(g.edges)),
		entry: g.entry,
	}
	for k, v := range g.nodes {
		s.nodes[k] = v
	}
	for k, v := range g.edges {
		s.edges[k] = v
	}
	return s
}

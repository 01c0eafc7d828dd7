package runtime

import (
	"fmt"

	"github.com/aretw0/stepflow/pkg/domain"
)

// decision is the outcome of routing one step.
type decision struct {
	next  string
	route domain.Route
}

// routeRule inspects the step that just completed and, when it applies,
// proposes the next node.
type routeRule struct {
	route domain.Route
	apply func(s *snapshot, current string, state domain.State) (string, bool, error)
}

// routingTable lists the rules in ascending priority: loop > conditional > edge.
// Every rule is evaluated on every step (a conditional marker consumes its
// routing key even when the loop flag wins) and the last applicable rule decides.
var routingTable = []routeRule{
	{route: domain.RouteEdge, apply: staticEdge},
	{route: domain.RouteConditional, apply: conditionalMarker},
	{route: domain.RouteLoop, apply: loopOverride},
}

func (s *snapshot) route(current string, state domain.State) (decision, error) {
	d := decision{route: domain.RouteEnd}
	for _, rule := range routingTable {
		next, ok, err := rule.apply(s, current, state)
		if err != nil {
			return decision{route: rule.route}, err
		}
		if ok {
			d = decision{next: next, route: rule.route}
		}
	}
	return d, nil
}

func staticEdge(s *snapshot, current string, _ domain.State) (string, bool, error) {
	to, ok := s.edges[current]
	if !ok || IsConditionalMarker(to) {
		return "", false, nil
	}
	return to, true, nil
}

func conditionalMarker(s *snapshot, current string, state domain.State) (string, bool, error) {
	to, ok := s.edges[current]
	if !ok || !IsConditionalMarker(to) {
		return "", false, nil
	}
	// The marker itself is never a destination: an unresolved marker ends the run.
	return s.resolve(to, state), true, nil
}

// loopOverride jumps to loop_node, or to the entry node when the key is
// absent. An explicit empty or nil loop_node ends the run.
func loopOverride(s *snapshot, _ string, state domain.State) (string, bool, error) {
	if !state.Bool(domain.KeyLoopContinue) {
		return "", false, nil
	}
	state[domain.KeyLoopContinue] = false

	v, present := state[domain.KeyLoopNode]
	if !present {
		return s.entry, true, nil
	}
	switch target := v.(type) {
	case nil:
		return "", true, nil
	case string:
		if target == "" {
			return "", true, nil
		}
		if _, ok := s.nodes[target]; !ok {
			return "", false, fmt.Errorf("%w: %q", domain.ErrUnknownLoopTarget, target)
		}
		return target, true, nil
	default:
		return "", false, fmt.Errorf("%w: %v is a %T, not a node name", domain.ErrUnknownLoopTarget, v, v)
	}
}

// resolve consumes the routing override key and returns it if it names a node.
func (s *snapshot) resolve(_ string, state domain.State) string {
	v, ok := state.Pop(domain.KeyRouteTo)
	if !ok {
		return ""
	}
	name, ok := v.(string)
	if !ok {
		return ""
	}
	if _, exists := s.nodes[name]; !exists {
		return ""
	}
	return name
}

// Resolve evaluates a conditional marker against state.
// The routing override key is always removed from state; its value is
// returned only if it names a node of the graph, otherwise "" is returned.
func (g *Graph) Resolve(marker string, state domain.State) string {
	return g.snapshot().resolve(marker, state)
}

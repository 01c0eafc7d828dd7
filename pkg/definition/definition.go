// Package definition decodes declarative graph definitions and builds
// runtime graphs from them.
//
// A definition only names steps; the implementations come from a registry
// populated by the host program.
package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition wraps every error caused by the content of a definition.
var ErrInvalidDefinition = errors.New("invalid graph definition")

// NodeDef binds a node name to a registered step.
type NodeDef struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Func string `json:"func" yaml:"func" mapstructure:"func"`
}

// EdgeDef is a static from -> to connection. To may be a conditional marker.
type EdgeDef struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// Definition describes a graph.
type Definition struct {
	ID            string    `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	EntryNode     string    `json:"entry_node,omitempty" yaml:"entry_node,omitempty" mapstructure:"entry_node"`
	MaxIterations int       `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty" mapstructure:"max_iterations"`
	Nodes         []NodeDef `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Edges         []EdgeDef `json:"edges" yaml:"edges" mapstructure:"edges"`
}

// Load reads a definition file. Files ending in .json are decoded as JSON,
// anything else as YAML.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph definition: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var def Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidDefinition, filepath.Base(path), err)
		}
		return &def, nil
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML definition.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// FromMap decodes a definition from a generic map, such as a decoded JSON
// request body or an MCP tool argument.
func FromMap(m map[string]any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// Build creates a graph from def, resolving every node's func in reg.
// A definition without an id gets a random one.
func Build(def *Definition, reg *registry.Registry, opts ...runtime.GraphOption) (*runtime.Graph, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: empty definition", ErrInvalidDefinition)
	}
	if len(def.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidDefinition)
	}

	id := def.ID
	if id == "" {
		id = uuid.NewString()
	}
	if def.MaxIterations > 0 {
		opts = append(opts, runtime.WithMaxIterations(def.MaxIterations))
	}
	g := runtime.NewGraph(id, opts...)

	for i, n := range def.Nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("%w: node %d has no name", ErrInvalidDefinition, i)
		}
		step, err := reg.Get(n.Func)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", ErrInvalidDefinition, n.Name, err)
		}
		g.AddNode(n.Name, runtime.Transform(step))
	}

	for _, e := range def.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
		}
	}

	if def.EntryNode != "" {
		if err := g.SetEntry(def.EntryNode); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
		}
	}

	return g, nil
}

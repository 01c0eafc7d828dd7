/*
Package stepflow is a small workflow engine for step pipelines that share a
single mutable state.

A workflow is a graph of named nodes. Each node wraps a Transform that receives
the state and returns the updated state. Nodes are linked by single-successor
edges, and two reserved state keys let a node steer the run at runtime.

# Routing

After every node the engine decides what runs next, in ascending priority:

  - the static edge of the node, if any;
  - a conditional marker: an edge whose target starts with "if_" is not a node
    but a request to read (and remove) the "route_to" key from the state;
  - the loop flag: when "loop_continue" is true the engine jumps to
    "loop_node" and resets the flag. Without "loop_node" it jumps to the
    entry node; an empty or nil "loop_node" ends the run, and a name that is
    not a node fails it with domain.ErrUnknownLoopTarget.

A run stops when no successor is found, when a node fails, or after 100 node
executions, in which case the result is marked incomplete.

# Usage

	g := stepflow.New("greeter")
	g.AddNode("hello", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["greeting"] = "hello " + s["name"].(string)
		return s, nil
	})

	res, err := g.Run(ctx, domain.State{"name": "gopher"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.State["greeting"], res.Trace.Nodes())

The caller's initial state is copied before the run and never modified.
Every execution is recorded in Result.Trace together with a snapshot of the
state it produced.
*/
package stepflow

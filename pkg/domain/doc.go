/*
Package domain contains the core domain models of the stepflow engine.

It defines the shared vocabulary used by the runtime, the orchestrating layer
and every adapter. The package is kept pure and free of I/O so that any
transport or store can depend on it.

# Key Entities

  - State: the open key/value record passed from node to node.
  - NodeStatus: the outcome of the most recent execution attempt of a node.
  - TraceEntry / Trace: the ordered, per-step audit log produced by a run.
  - RunStatus / RunRecord: how a finished run is reported and registered.
  - LifecycleHooks: observability callbacks fired around every step.
*/
package domain

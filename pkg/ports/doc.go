/*
Package ports defines the driven ports (interfaces) of the workflow service.

These interfaces decouple run orchestration from concrete storage and
streaming backends.

# Key Interfaces

  - GraphStore: the catalogue of runnable graphs.
  - RunStore: the registry of finished runs, keyed by run ID.
  - TraceSink: live streaming of trace entries while a run executes.

RunStoreContract and GraphStoreContract are reusable test suites for adapters.
*/
package ports

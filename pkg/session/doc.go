/*
Package session orchestrates graphs and runs for the outer surfaces (HTTP, MCP, CLI).

A Manager owns the graph catalogue and the run registry. It builds graphs from
declarative definitions against a step registry, executes them with a fresh
run ID and records every run, failed ones included, with its trace.
*/
package session

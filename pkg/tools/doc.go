// Package tools provides the code analysis helpers used by the code review
// workflow, and their adapters as registry steps.
package tools

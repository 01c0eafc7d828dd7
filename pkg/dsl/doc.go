/*
Package dsl provides a fluent builder for constructing workflow graphs in Go code.

Nodes are declared in order; the first one is the entry node unless another
is marked with Entry. Each node either wraps a function (Do) or refers to a
step registered in a registry (Use).

Example usage:

	reg := registry.NewRegistry()
	tools.RegisterDefaults(reg)

	b := dsl.New("review").WithRegistry(reg)
	b.Add("complexity").Use("check_complexity").Go("smells")
	b.Add("smells").Use("detect_smells").Branch("severity")
	b.Add("report").Do(report)

	g, err := b.Build()
*/
package dsl

package main

import (
	"fmt"

	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	var example bool

	cmd := &cobra.Command{
		Use:   "graph [definition-file]",
		Short: "Export the workflow graph visualization",
		Long:  `Builds the workflow and outputs a Mermaid diagram (graph TD) of its nodes, edges and routing markers.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// Rendering never runs steps, so trace streaming is not needed.
			a.cfg.Redis.Addr = ""
			m, cleanup, err := a.newManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			graphID, err := a.resolveGraph(ctx, m, example, args)
			if err != nil {
				return err
			}
			g, err := m.Graph(ctx, graphID)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&example, "example", false, "Render the built-in code review workflow")
	return cmd
}

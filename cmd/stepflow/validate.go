package main

import (
	"fmt"

	"github.com/aretw0/stepflow/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		example bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "validate [definition-file]",
		Short: "Check the graph for consistency",
		Long: `Builds the workflow, then crawls its static edges from the entry node and
reports unreachable nodes and cycles that only end at the iteration ceiling.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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

			report, err := validator.ValidateGraph(g)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, w := range report.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if strict && !report.Empty() {
				return fmt.Errorf("validation failed: %d warning(s)", len(report.Warnings()))
			}
			fmt.Fprintf(out, "Graph %s is valid.\n", graphID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&example, "example", false, "Validate the built-in code review workflow")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stepflow/internal/presentation/tui"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		example   bool
		stateJSON string
		asJSON    bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "run [definition-file]",
		Short: "Run a workflow to completion",
		Long: `Runs a workflow from a definition file (YAML or JSON) or the built-in
code review example, then prints the final state and execution log.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisAddr != "" {
				a.cfg.Redis.Addr = redisAddr
			}

			initial := domain.NewState()
			if stateJSON != "" {
				if err := json.Unmarshal([]byte(stateJSON), &initial); err != nil {
					return fmt.Errorf("invalid --state: %w", err)
				}
			}

			ctx := cmd.Context()
			m, cleanup, err := a.newManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			graphID, err := a.resolveGraph(ctx, m, example, args)
			if err != nil {
				return err
			}

			rec, runErr := m.Run(ctx, graphID, initial)
			if rec == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rec); err != nil {
					return err
				}
				return runErr
			}

			render := tui.PlainRenderer
			if f, ok := out.(*os.File); ok {
				render = tui.RendererFor(f)
			}
			report, err := render(tui.Report(rec))
			if err != nil {
				return err
			}
			fmt.Fprint(out, report)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&example, "example", false, "Run the built-in code review workflow")
	cmd.Flags().StringVar(&stateJSON, "state", "", "Initial state as a JSON object")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run record as JSON")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for live trace streaming")
	return cmd
}

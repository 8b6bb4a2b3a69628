package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidscope/internal/config"
	"vidscope/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools the analysis pipeline needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.Check(cfg)
			if remote {
				statuses = append(statuses, checkLLMProvider(cmd.Context(), cfg))
			}
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						missing++
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, state, detail, status.Description})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"TOOL", "STATE", "PATH", "PURPOSE"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also ping the configured LLM provider")
	return cmd
}

// checkLLMProvider sends a tiny completion through the configured provider to
// verify the API key and model work end to end.
func checkLLMProvider(ctx context.Context, cfg *config.Config) deps.Status {
	status := deps.Status{
		Name:        "LLM",
		Command:     cfg.GetLLM().Model,
		Description: "Generates content and comment insights",
	}

	completer, closeCompleter, err := newCompleter(ctx, cfg)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	defer func() { _ = closeCompleter() }()

	checker, ok := completer.(interface{ HealthCheck(context.Context) error })
	if !ok {
		status.Detail = "health check not supported by provider"
		return status
	}
	if err := checker.HealthCheck(ctx); err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Available = true
	return status
}

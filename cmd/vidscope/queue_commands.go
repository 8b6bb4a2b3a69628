package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscope/internal/config"
	"vidscope/internal/jobs"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the analysis job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueCancelCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analysis jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFilters(statusFilters)
			if err != nil {
				return err
			}

			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				listed, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return fmt.Errorf("list jobs: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(listed) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(listed))
				for _, job := range listed {
					rows = append(rows, []string{
						job.ID,
						job.VideoRef,
						string(job.AnalysisType),
						string(job.Status),
						job.CurrentStep,
						fmt.Sprintf("%.0f%%", job.Progress),
						job.UpdatedAt.Local().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "VIDEO", "TYPE", "STATUS", "STEP", "PROGRESS", "UPDATED"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Filter by status (pending, processing, completed, failed, cancelled)")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	var showResult bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show details for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				job, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("fetch job: %w", err)
				}
				if job == nil {
					return fmt.Errorf("job %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job:       %s\n", job.ID)
				fmt.Fprintf(out, "Video:     %s\n", job.VideoRef)
				fmt.Fprintf(out, "Type:      %s\n", job.AnalysisType)
				fmt.Fprintf(out, "Status:    %s\n", job.Status)
				fmt.Fprintf(out, "Progress:  %.0f%%\n", job.Progress)
				if job.CurrentStep != "" {
					fmt.Fprintf(out, "Step:      %s\n", job.CurrentStep)
				}
				if job.ProgressMessage != "" {
					fmt.Fprintf(out, "Message:   %s\n", job.ProgressMessage)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
				}
				fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Local().Format(time.RFC3339))
				if job.CompletedAt != nil {
					fmt.Fprintf(out, "Completed: %s\n", job.CompletedAt.Local().Format(time.RFC3339))
				}

				if showResult {
					if job.ResultJSON == "" {
						fmt.Fprintln(out, "No report available yet")
						return nil
					}
					pretty, err := indentJSON(job.ResultJSON)
					if err != nil {
						return fmt.Errorf("format report: %w", err)
					}
					fmt.Fprintln(out, pretty)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showResult, "report", false, "Print the full analysis report JSON")
	return cmd
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a pending or processing job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				cancelled, err := store.Cancel(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("cancel job: %w", err)
				}
				if !cancelled {
					return fmt.Errorf("job %s is not pending or processing", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", args[0])
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Reset failed jobs back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				retried, err := store.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return fmt.Errorf("retry jobs: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d job(s)\n", retried)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed jobs (all jobs with --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				var (
					removed int64
					err     error
				)
				if clearAll {
					removed, err = store.Clear(cmd.Context())
				} else {
					removed, err = store.ClearCompleted(cmd.Context())
				}
				if err != nil {
					return fmt.Errorf("clear jobs: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every job regardless of status")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show aggregate queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return fmt.Errorf("queue health: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:      %d\n", health.Total)
				fmt.Fprintf(out, "Pending:    %d\n", health.Pending)
				fmt.Fprintf(out, "Processing: %d\n", health.Processing)
				fmt.Fprintf(out, "Completed:  %d\n", health.Completed)
				fmt.Fprintf(out, "Failed:     %d\n", health.Failed)
				fmt.Fprintf(out, "Cancelled:  %d\n", health.Cancelled)
				return nil
			})
		},
	}
}

func parseStatusFilters(filters []string) ([]jobs.Status, error) {
	statuses := make([]jobs.Status, 0, len(filters))
	for _, filter := range filters {
		status, ok := jobs.ParseStatus(filter)
		if !ok {
			return nil, fmt.Errorf("unknown status %q (expected one of %s)", filter, statusNames())
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func statusNames() string {
	all := jobs.AllStatuses()
	names := make([]string, len(all))
	for i, status := range all {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}

func indentJSON(raw string) (string, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return "", err
	}
	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

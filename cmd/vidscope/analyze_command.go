package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidscope/internal/config"
	"vidscope/internal/jobs"
	"vidscope/internal/services/youtube"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var analysisType string

	cmd := &cobra.Command{
		Use:   "analyze <video-url-or-id>",
		Short: "Queue a video for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoRef := strings.TrimSpace(args[0])
			if _, err := youtube.ExtractVideoID(videoRef); err != nil {
				return fmt.Errorf("invalid video reference %q: %w", videoRef, err)
			}

			return ctx.withStore(func(cfg *config.Config, store *jobs.Store) error {
				depth, err := resolveAnalysisType(cfg, analysisType)
				if err != nil {
					return err
				}

				job, err := store.NewJob(cmd.Context(), videoRef, depth)
				if err != nil {
					return fmt.Errorf("queue job: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued %s analysis job %s for %s\n", job.AnalysisType, job.ID, job.VideoRef)
				fmt.Fprintln(out, "Run `vidscope daemon run` (or `vidscoped`) to process the queue.")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&analysisType, "type", "t", "", "Analysis depth (basic|detailed|comprehensive)")
	return cmd
}

func resolveAnalysisType(cfg *config.Config, flagValue string) (jobs.AnalysisType, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = cfg.Analysis.DefaultType
	}
	if value == "" {
		return jobs.AnalysisDetailed, nil
	}
	depth, ok := jobs.ParseAnalysisType(value)
	if !ok {
		return "", fmt.Errorf("unknown analysis type %q (expected basic, detailed, or comprehensive)", value)
	}
	return depth, nil
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vidscope/internal/config"
	"vidscope/internal/daemon"
	"vidscope/internal/deps"
	"vidscope/internal/jobs"
	"vidscope/internal/logging"
	"vidscope/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run and inspect the background worker",
	}

	daemonCmd.AddCommand(newDaemonRunCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))

	return daemonCmd
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the analysis worker in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd, ctx)
		},
	}
}

func runDaemonProcess(cmd *cobra.Command, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireYouTubeKey(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	for _, status := range deps.Check(cfg) {
		if !status.Available && !status.Optional {
			logger.Warn("external tool unavailable",
				logging.String("tool", status.Name),
				logging.String("detail", status.Detail))
		}
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	defer store.Close()

	orchestrator, closeCompleter, err := buildOrchestrator(signalCtx, cfg, store, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer closeCompleter()

	manager := workflow.NewManager(cfg, store, orchestrator, logger)
	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("vidscope daemon shutting down")
	return nil
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue state from the daemon's perspective",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *jobs.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("job stats: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job database: %s\n", store.Path())
				processing, err := store.List(cmd.Context(), jobs.StatusProcessing)
				if err != nil {
					return fmt.Errorf("list processing jobs: %w", err)
				}
				fmt.Fprintf(out, "Worker busy:  %s\n", yesNo(len(processing) > 0))
				for _, status := range jobs.AllStatuses() {
					fmt.Fprintf(out, "%-11s %d\n", string(status)+":", stats[status])
				}
				return nil
			})
		},
	}
}

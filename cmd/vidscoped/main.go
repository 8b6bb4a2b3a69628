// Command vidscoped runs the vidscope analysis worker as a standalone daemon.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"vidscope/internal/config"
	"vidscope/internal/daemon"
	"vidscope/internal/deps"
	"vidscope/internal/jobs"
	"vidscope/internal/logging"
	"vidscope/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.RequireYouTubeKey(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
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
		log.Fatalf("open job store: %v", err)
	}
	defer store.Close()

	orchestrator, closeCompleter, err := buildPipeline(ctx, cfg, store, logger)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}
	defer closeCompleter()

	manager := workflow.NewManager(cfg, store, orchestrator, logger)
	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("vidscoped shutting down")
}

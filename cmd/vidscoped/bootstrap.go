package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vidscope/internal/analysis"
	"vidscope/internal/config"
	"vidscope/internal/jobs"
	"vidscope/internal/notifications"
	"vidscope/internal/services/gemini"
	"vidscope/internal/services/llm"
	"vidscope/internal/services/whisper"
	"vidscope/internal/services/youtube"
)

// buildPipeline wires the analysis orchestrator from configuration.
func buildPipeline(ctx context.Context, cfg *config.Config, store *jobs.Store, logger *slog.Logger) (*analysis.Orchestrator, func() error, error) {
	ytClient, err := youtube.NewClient(youtube.Config{
		APIKey:         cfg.YouTube.APIKey,
		BaseURL:        cfg.YouTube.BaseURL,
		CommentLimit:   cfg.YouTube.CommentLimit,
		RequestTimeout: time.Duration(cfg.YouTube.RequestTimeout) * time.Second,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	completer, closeCompleter, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	orchestrator := analysis.NewOrchestrator(
		store,
		notifications.NewServiceWithLogger(cfg, logger),
		ytClient,
		youtube.NewDownloader(cfg.DownloaderBinary()),
		whisper.NewService(whisper.Config{
			Binary:   cfg.WhisperBinary(),
			Model:    cfg.Transcription.Model,
			Language: cfg.Transcription.Language,
		}),
		analysis.NewContentAnalyzer(completer, logger),
		analysis.NewCommentAnalyzer(completer, logger),
		analysis.Settings{
			WorkDir:     cfg.Paths.WorkDir,
			Language:    cfg.Transcription.Language,
			MaxComments: cfg.Analysis.MaxComments,
		},
		logger,
	)
	return orchestrator, closeCompleter, nil
}

func newCompleter(ctx context.Context, cfg *config.Config) (analysis.Completer, func() error, error) {
	llmCfg := cfg.GetLLM()
	if strings.EqualFold(llmCfg.Provider, "gemini") {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey(),
			Model:  cfg.Gemini.Model,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}

	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	return client, func() error { return nil }, nil
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidscope/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "yt-test-key")
	t.Setenv("OPENROUTER_API_KEY", "or-test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "vidscope", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.YouTube.APIKey != "yt-test-key" {
		t.Fatalf("expected YouTube key from env, got %q", cfg.YouTube.APIKey)
	}
	if cfg.LLM.APIKey != "or-test-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.YouTube.BaseURL != config.Default().YouTube.BaseURL {
		t.Fatalf("unexpected YouTube base url: %q", cfg.YouTube.BaseURL)
	}
	if cfg.YouTube.CommentLimit != 1000 {
		t.Fatalf("unexpected comment limit: %d", cfg.YouTube.CommentLimit)
	}
	if cfg.Analysis.DefaultType != "detailed" {
		t.Fatalf("unexpected default analysis type: %q", cfg.Analysis.DefaultType)
	}
	if cfg.LLM.Provider != "openrouter" {
		t.Fatalf("unexpected llm provider: %q", cfg.LLM.Provider)
	}
	if cfg.Workflow.HeartbeatInterval != config.Default().Workflow.HeartbeatInterval {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vidscope.toml")

	type payload struct {
		YouTube struct {
			APIKey       string `toml:"api_key"`
			CommentLimit int    `toml:"comment_limit"`
		} `toml:"youtube"`
		LLM struct {
			Provider string `toml:"provider"`
			Model    string `toml:"model"`
		} `toml:"llm"`
		Gemini struct {
			APIKey string `toml:"api_key"`
		} `toml:"gemini"`
		Workflow struct {
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.YouTube.APIKey = "abc123"
	custom.YouTube.CommentLimit = 250
	custom.LLM.Provider = "gemini"
	custom.LLM.Model = "custom-model"
	custom.Gemini.APIKey = "gm-key"
	custom.Workflow.HeartbeatInterval = 30
	custom.Workflow.HeartbeatTimeout = 180

	encoded, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.YouTube.APIKey != "abc123" {
		t.Fatalf("unexpected YouTube key: %q", cfg.YouTube.APIKey)
	}
	if cfg.YouTube.CommentLimit != 250 {
		t.Fatalf("unexpected comment limit: %d", cfg.YouTube.CommentLimit)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Fatalf("unexpected provider: %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "custom-model" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
	if cfg.Workflow.HeartbeatInterval != 30 {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
}

func TestValidateRejectsInvertedHeartbeat(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.HeartbeatInterval = 60
	cfg.Workflow.HeartbeatTimeout = 30
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for heartbeat timeout <= interval")
	}
}

func TestValidateRejectsUnknownAnalysisType(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.DefaultType = "exhaustive"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown analysis type")
	}
}

func TestRequireYouTubeKey(t *testing.T) {
	cfg := config.Default()
	cfg.YouTube.APIKey = ""
	if err := cfg.RequireYouTubeKey(); err == nil {
		t.Fatal("expected error when YouTube key is missing")
	}
	cfg.YouTube.APIKey = "k"
	if err := cfg.RequireYouTubeKey(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

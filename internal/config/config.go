package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// YouTube contains configuration for the YouTube Data API and audio downloads.
type YouTube struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url" validate:"omitempty,url"`
	CommentLimit     int    `toml:"comment_limit" validate:"gte=0,lte=1000"`
	RequestTimeout   int    `toml:"request_timeout" validate:"gte=0"`
	DownloaderBinary string `toml:"downloader_binary"`
}

// Transcription contains configuration for the whisper CLI adapter.
type Transcription struct {
	Binary         string `toml:"binary"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
}

// LLM contains shared LLM connection settings used by the analyzers.
type LLM struct {
	Provider       string `toml:"provider" validate:"omitempty,oneof=openrouter gemini"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
}

// Gemini contains settings for the Gemini provider. Falls back to [llm]
// for the API key when unset.
type Gemini struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Analysis contains defaults applied to submitted jobs.
type Analysis struct {
	DefaultType string `toml:"default_type" validate:"omitempty,oneof=basic detailed comprehensive"`
	MaxComments int    `toml:"max_comments" validate:"gte=0,lte=1000"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout" validate:"gte=0"`
	LogEvents      bool   `toml:"log_events"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval" validate:"gte=0"`
	ErrorRetryInterval int `toml:"error_retry_interval" validate:"gte=0"`
	HeartbeatInterval  int `toml:"heartbeat_interval" validate:"gte=0"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout" validate:"gte=0"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"omitempty,oneof=console json"`
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config encapsulates all configuration values for vidscope.
//
// Configuration sections by subsystem:
//   - Paths: data, work, and log directories
//   - YouTube: Data API key, comment limits, and downloader binary
//   - Transcription: whisper CLI binary and model
//   - LLM: shared LLM connection settings for the analyzers
//   - Gemini: Gemini provider overrides
//   - Analysis: per-job defaults (depth, comment cap)
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and heartbeats
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Gemini        Gemini        `toml:"gemini"`
	Analysis      Analysis      `toml:"analysis"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidscope/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and API keys overridden from the environment.
func Load(path string) (*Config, string, bool, error) {
	// .env files are optional; missing files are not an error.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnv overlays secrets from the environment so keys can stay out of the
// config file.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("VIDSCOPE_YOUTUBE_API_KEY")); v != "" {
		c.YouTube.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSCOPE_LLM_API_KEY")); v != "" {
		c.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSCOPE_GEMINI_API_KEY")); v != "" {
		c.Gemini.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSCOPE_NTFY_TOPIC")); v != "" {
		c.Notifications.NtfyTopic = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/vidscope/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidscope.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DownloaderBinary returns the audio downloader executable name.
func (c *Config) DownloaderBinary() string {
	if bin := strings.TrimSpace(c.YouTube.DownloaderBinary); bin != "" {
		return bin
	}
	return "yt-dlp"
}

// WhisperBinary returns the transcription executable name.
func (c *Config) WhisperBinary() string {
	if bin := strings.TrimSpace(c.Transcription.Binary); bin != "" {
		return bin
	}
	return "whisper"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains common LLM settings used across features.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the shared LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       strings.TrimSpace(c.LLM.Provider),
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// GeminiAPIKey returns the Gemini API key, falling back to [llm] settings.
func (c *Config) GeminiAPIKey() string {
	if key := strings.TrimSpace(c.Gemini.APIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.LLM.APIKey)
}

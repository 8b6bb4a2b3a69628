package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config field %s failed %q validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLLM()
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "gemini":
		if c.GeminiAPIKey() == "" {
			return errors.New("gemini.api_key must be set when llm.provider is gemini (or set GEMINI_API_KEY)")
		}
	default:
		if strings.TrimSpace(c.LLM.BaseURL) == "" {
			return errors.New("llm.base_url must be set")
		}
	}
	return nil
}

// RequireYouTubeKey reports a descriptive error when the Data API key is missing.
// Daemon startup calls this; config load itself tolerates the absence so
// read-only CLI commands keep working.
func (c *Config) RequireYouTubeKey() error {
	if strings.TrimSpace(c.YouTube.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/vidscope/config.toml"
	}
	return fmt.Errorf("youtube.api_key is required. Set VIDSCOPE_YOUTUBE_API_KEY env var or edit %s (create with 'vidscope config init')", defaultPath)
}

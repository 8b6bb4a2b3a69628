package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	langpkg "vidscope/internal/language"
	"vidscope/internal/services"
)

// DefaultCommand is the whisper CLI binary.
const DefaultCommand = "whisper"

// DefaultModel is used when no model is configured.
const DefaultModel = "base"

// Config captures the transcription settings.
type Config struct {
	Binary   string
	Model    string
	Language string
}

// Service transcribes audio files through the whisper CLI.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultCommand
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Segment is a transcribed span of audio.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"avg_logprob"`
}

// Transcript is the processed transcription result.
type Transcript struct {
	Language           string
	LanguageConfidence float64
	Segments           []Segment
	FullText           string
	Duration           float64
	WordCount          int
}

// Transcribe runs the whisper CLI over an audio file and loads the result.
// outputDir receives the CLI's JSON output; it defaults to the audio file's
// directory.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string) (*Transcript, error) {
	if audioPath == "" {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", "audio path required", nil)
	}
	if info, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", fmt.Sprintf("audio file missing: %s", audioPath), err)
	} else if info.Size() == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", fmt.Sprintf("audio file empty: %s", audioPath), nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "transcribe", "ensure output dir", err)
	}

	args := s.buildArgs(audioPath, outputDir)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", audioPath, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	transcript, err := LoadTranscript(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "load transcript", jsonPath, err)
	}
	return transcript, nil
}

func (s *Service) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--task", "transcribe",
		"--fp16", "False",
		"--verbose", "False",
	}
	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type whisperPayload struct {
	Text               string    `json:"text"`
	Language           string    `json:"language"`
	LanguageConfidence float64   `json:"language_confidence"`
	Segments           []Segment `json:"segments"`
}

// LoadTranscript loads and post-processes a whisper CLI JSON file. The full
// text is the joined segment texts, the duration is the last segment's end,
// and the word count is over the joined text.
func LoadTranscript(jsonPath string) (*Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisper json: %w", err)
	}

	segments := make([]Segment, 0, len(payload.Segments))
	var parts []string
	var duration float64
	for _, seg := range payload.Segments {
		seg.Text = strings.TrimSpace(seg.Text)
		segments = append(segments, seg)
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
		duration = math.Max(duration, seg.End)
	}

	language := payload.Language
	if language == "" {
		language = "unknown"
	}
	fullText := strings.Join(parts, " ")
	return &Transcript{
		Language:           language,
		LanguageConfidence: payload.LanguageConfidence,
		Segments:           segments,
		FullText:           fullText,
		Duration:           duration,
		WordCount:          len(strings.Fields(fullText)),
	}, nil
}

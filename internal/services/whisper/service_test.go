package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscope/internal/services"
)

const sampleJSON = `{
	"text": " Hello world. This is a test.",
	"language": "en",
	"segments": [
		{"start": 0.0, "end": 2.5, "text": " Hello world.", "avg_logprob": -0.2},
		{"start": 2.5, "end": 5.0, "text": " This is a test.", "avg_logprob": -0.3}
	]
}`

func TestTranscribeRunsCLIAndLoadsResult(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "video.wav")
	if err := os.WriteFile(audioPath, []byte("riff"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	service := NewService(Config{Model: "base", Language: "en"})
	var gotName string
	var gotArgs []string
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(filepath.Join(dir, "video.json"), []byte(sampleJSON), 0o644)
	})

	transcript, err := service.Transcribe(context.Background(), audioPath, dir)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotName != DefaultCommand {
		t.Fatalf("expected %s binary, got %q", DefaultCommand, gotName)
	}
	if gotArgs[0] != audioPath {
		t.Fatalf("expected audio path as first arg, got %q", gotArgs[0])
	}
	if transcript.Language != "en" {
		t.Fatalf("expected language en, got %q", transcript.Language)
	}
	if transcript.FullText != "Hello world. This is a test." {
		t.Fatalf("unexpected full text %q", transcript.FullText)
	}
	if transcript.Duration != 5.0 {
		t.Fatalf("expected duration 5.0, got %f", transcript.Duration)
	}
	if transcript.WordCount != 6 {
		t.Fatalf("expected 6 words, got %d", transcript.WordCount)
	}
	if len(transcript.Segments) != 2 || transcript.Segments[0].Text != "Hello world." {
		t.Fatalf("unexpected segments: %+v", transcript.Segments)
	}
}

func TestTranscribeRejectsMissingAudio(t *testing.T) {
	service := NewService(Config{})
	_, err := service.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeRejectsEmptyAudio(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(audioPath, nil, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	service := NewService(Config{})
	_, err := service.Transcribe(context.Background(), audioPath, dir)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeWrapsCLIFailure(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "video.wav")
	if err := os.WriteFile(audioPath, []byte("riff"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	service := NewService(Config{})
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("model download failed")
	})
	_, err := service.Transcribe(context.Background(), audioPath, dir)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestLoadTranscriptEmptySegments(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "silent.json")
	if err := os.WriteFile(jsonPath, []byte(`{"text": "", "segments": []}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	transcript, err := LoadTranscript(jsonPath)
	if err != nil {
		t.Fatalf("LoadTranscript: %v", err)
	}
	if transcript.Language != "unknown" {
		t.Fatalf("expected unknown language, got %q", transcript.Language)
	}
	if transcript.Duration != 0 || transcript.WordCount != 0 {
		t.Fatalf("expected zeroed transcript, got %+v", transcript)
	}
}

package youtube

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscope/internal/services"
)

func TestDownloadAudioUsesRunnerAndFindsOutput(t *testing.T) {
	dir := t.TempDir()
	downloader := NewDownloader("")

	var gotName string
	var gotArgs []string
	downloader.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		// Simulate yt-dlp writing the extracted WAV.
		return os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.wav"), []byte("riff"), 0o644)
	})

	path, err := downloader.DownloadAudio(context.Background(), "dQw4w9WgXcQ", dir)
	if err != nil {
		t.Fatalf("DownloadAudio: %v", err)
	}
	if path != filepath.Join(dir, "dQw4w9WgXcQ.wav") {
		t.Fatalf("unexpected audio path %q", path)
	}
	if gotName != DownloaderCommand {
		t.Fatalf("expected %s binary, got %q", DownloaderCommand, gotName)
	}
	if gotArgs[len(gotArgs)-1] != "https://youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("expected video url as last arg, got %q", gotArgs[len(gotArgs)-1])
	}
}

func TestDownloadAudioClassifiesUnavailable(t *testing.T) {
	downloader := NewDownloader("yt-dlp")
	downloader.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("ERROR: Private video. Sign in if you've been granted access")
	})

	_, err := downloader.DownloadAudio(context.Background(), "hidden12345", t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found classification, got %v", err)
	}
}

func TestDownloadAudioMissingOutput(t *testing.T) {
	downloader := NewDownloader("yt-dlp")
	downloader.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	_, err := downloader.DownloadAudio(context.Background(), "dQw4w9WgXcQ", t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

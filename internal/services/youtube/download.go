package youtube

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"vidscope/internal/services"
)

// DownloaderCommand is the default downloader binary.
const DownloaderCommand = "yt-dlp"

// Downloader fetches the best audio stream for a video as a WAV file.
type Downloader struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewDownloader creates an audio downloader using the given binary.
func NewDownloader(binary string) *Downloader {
	if binary == "" {
		binary = DownloaderCommand
	}
	return &Downloader{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (d *Downloader) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	d.commandRunner = runner
}

// DownloadAudio downloads the audio track for videoID into destDir and
// returns the path of the resulting file.
func (d *Downloader) DownloadAudio(ctx context.Context, videoID, destDir string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", services.Wrap(services.ErrValidation, "extraction", "download audio", "video id required", nil)
	}
	if destDir == "" {
		return "", services.Wrap(services.ErrValidation, "extraction", "download audio", "destination directory required", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "extraction", "download audio", "ensure destination", err)
	}

	outputTemplate := filepath.Join(destDir, "%(id)s.%(ext)s")
	args := buildDownloadArgs(videoID, outputTemplate)
	if err := d.run(ctx, d.binary, args...); err != nil {
		return "", classifyDownloadError(videoID, err)
	}

	for _, ext := range []string{"wav", "mp3", "m4a", "webm", "opus"} {
		candidate := filepath.Join(destDir, videoID+"."+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "extraction", "download audio", fmt.Sprintf("no audio file produced for %s", videoID), nil)
}

func buildDownloadArgs(videoID, outputTemplate string) []string {
	return []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "wav",
		"--audio-quality", "192K",
		"--no-warnings",
		"--quiet",
		"--output", outputTemplate,
		"https://youtube.com/watch?v=" + videoID,
	}
}

func (d *Downloader) run(ctx context.Context, name string, args ...string) error {
	if d.commandRunner != nil {
		return d.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func classifyDownloadError(videoID string, err error) error {
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "private video"), strings.Contains(message, "video unavailable"):
		return services.Wrap(services.ErrNotFound, "extraction", "download audio", fmt.Sprintf("video %s unavailable or private", videoID), err)
	case strings.Contains(message, "age-restricted"):
		return services.Wrap(services.ErrExternalTool, "extraction", "download audio", fmt.Sprintf("video %s is age restricted", videoID), err)
	case strings.Contains(message, "network"), strings.Contains(message, "connection"):
		return &services.RateLimitError{RetryAfter: 60 * time.Second, Err: err}
	default:
		return services.Wrap(services.ErrExternalTool, "extraction", "download audio", videoID, err)
	}
}

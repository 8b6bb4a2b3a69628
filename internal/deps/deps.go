// Package deps reports on the external tools vidscope shells out to during
// an analysis run.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"vidscope/internal/config"
)

// Requirement defines an external tool vidscope relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a tool.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the tools an analysis run executes directly.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Downloader",
			Command:     cfg.DownloaderBinary(),
			Description: "Fetches video audio from YouTube",
		},
		{
			Name:        "Whisper",
			Command:     cfg.WhisperBinary(),
			Description: "Transcribes the downloaded audio",
		},
	}
}

// Check evaluates every external tool the pipeline needs, including the
// FFmpeg sidecar the downloader uses for audio extraction.
func Check(cfg *config.Config) []Status {
	results := CheckBinaries(Requirements(cfg))
	return append(results, CheckFFmpegForDownloader(cfg.DownloaderBinary()))
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

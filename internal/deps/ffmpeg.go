package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForDownloader reports the FFmpeg binary the downloader will use
// to extract audio.
//
// yt-dlp prefers an ffmpeg that sits next to its own executable and falls
// back to resolving "ffmpeg" from PATH. This helper mirrors that lookup so
// status output matches what an extraction run actually executes.
func CheckFFmpegForDownloader(downloaderCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by the downloader for audio extraction",
	}

	downloaderBinary := strings.TrimSpace(downloaderCommand)
	if downloaderBinary != "" {
		if resolved, err := exec.LookPath(downloaderBinary); err == nil {
			if candidate, ok := ffmpegSidecarCandidate(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func ffmpegSidecarCandidate(downloaderPath string) (string, bool) {
	if downloaderPath == "" {
		return "", false
	}
	dir := filepath.Dir(downloaderPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

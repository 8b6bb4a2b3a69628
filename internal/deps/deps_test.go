package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"vidscope/internal/config"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)

	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unconfigured", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available tool: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}

	if results[2].Available {
		t.Fatal("expected unconfigured command to be unavailable")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unconfigured command: %s", results[2].Detail)
	}
}

func TestCheckFFmpegSidecarNextToDownloader(t *testing.T) {
	tmp := t.TempDir()
	downloaderPath := filepath.Join(tmp, executableName("yt-dlp"))
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	writeStub(t, downloaderPath)
	writeStub(t, ffmpegPath)

	status := CheckFFmpegForDownloader(downloaderPath)
	if !status.Available {
		t.Fatalf("expected ffmpeg sidecar to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected sidecar path %s, got %s", ffmpegPath, status.Command)
	}
}

func TestCheckReportsAllTools(t *testing.T) {
	binDir := t.TempDir()
	downloaderPath := filepath.Join(binDir, executableName("yt-dlp"))
	writeStub(t, downloaderPath)

	cfg := config.Default()
	cfg.YouTube.DownloaderBinary = downloaderPath
	cfg.Transcription.Binary = "clearly-not-present-binary"

	results := Check(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(results))
	}
	if results[0].Name != "Downloader" || !results[0].Available {
		t.Fatalf("expected downloader to be available, got %#v", results[0])
	}
	if results[1].Name != "Whisper" || results[1].Available {
		t.Fatalf("expected whisper to be unavailable, got %#v", results[1])
	}
	if results[2].Name != "FFmpeg" {
		t.Fatalf("expected ffmpeg status last, got %#v", results[2])
	}
}

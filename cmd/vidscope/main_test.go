package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
work_dir = %q
log_dir = %q
`, filepath.Join(base, "data"), filepath.Join(base, "work"), filepath.Join(base, "logs"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandShowsHelp(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := runCommand(t, "-c", cfgPath)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	if !strings.Contains(output, "analyze") || !strings.Contains(output, "queue") {
		t.Fatalf("help output missing subcommands:\n%s", output)
	}
}

func TestAnalyzeRejectsInvalidReference(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := runCommand(t, "-c", cfgPath, "analyze", "not a video")
	if err == nil {
		t.Fatal("expected error for invalid video reference")
	}
}

func TestAnalyzeQueuesJob(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := runCommand(t, "-c", cfgPath, "analyze", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(output, "Queued detailed analysis job") {
		t.Fatalf("unexpected analyze output:\n%s", output)
	}

	listOutput, err := runCommand(t, "-c", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(listOutput, "dQw4w9WgXcQ") || !strings.Contains(listOutput, "pending") {
		t.Fatalf("queued job missing from list:\n%s", listOutput)
	}
}

func TestAnalyzeRejectsUnknownType(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := runCommand(t, "-c", cfgPath, "analyze", "-t", "exhaustive", "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error for unknown analysis type")
	}
	if !strings.Contains(err.Error(), "basic") {
		t.Fatalf("error should list valid types, got: %v", err)
	}
}

func TestQueueListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := runCommand(t, "-c", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(output, "Queue is empty") {
		t.Fatalf("expected empty queue message, got:\n%s", output)
	}
}

func TestQueueHealthCountsJobs(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "-c", cfgPath, "analyze", "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	output, err := runCommand(t, "-c", cfgPath, "queue", "health")
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	if !strings.Contains(output, "Pending") {
		t.Fatalf("unexpected health output:\n%s", output)
	}
}

func TestDepsReportsMissingTools(t *testing.T) {
	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
work_dir = %q
log_dir = %q

[youtube]
downloader_binary = "definitely-missing-downloader"

[transcription]
binary = "definitely-missing-whisper"
`, filepath.Join(base, "data"), filepath.Join(base, "work"), filepath.Join(base, "logs"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output, err := runCommand(t, "-c", cfgPath, "deps")
	if err == nil {
		t.Fatal("expected error when required tools are missing")
	}
	if !strings.Contains(err.Error(), "required tool(s) missing") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Downloader") || !strings.Contains(output, "Whisper") {
		t.Fatalf("deps table missing tool rows:\n%s", output)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "sub", "config.toml")

	output, err := runCommand(t, "config", "init", "-p", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, "Wrote sample configuration") {
		t.Fatalf("unexpected init output:\n%s", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "-p", target); err == nil {
		t.Fatal("expected error when config already exists without --overwrite")
	}
}

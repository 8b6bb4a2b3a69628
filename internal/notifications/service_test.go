package notifications_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidscope/internal/notifications"
	"vidscope/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyAnalysisCompleted(context.Background(), "Example", 0.8); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNewServiceWithLoggerSelectsLogBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	cfg.Notifications.LogEvents = true

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	svc := notifications.NewServiceWithLogger(cfg, logger)
	if err := svc.NotifyAnalysisStarted(context.Background(), "How To Go"); err != nil {
		t.Fatalf("log notifier returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "How To Go") {
		t.Fatalf("expected log output to mention the video, got %q", buf.String())
	}

	cfg.Notifications.LogEvents = false
	svc = notifications.NewServiceWithLogger(cfg, logger)
	buf.Reset()
	if err := svc.NotifyAnalysisStarted(context.Background(), "How To Go"); err != nil {
		t.Fatalf("noop notifier returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output from noop notifier, got %q", buf.String())
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	tests := []struct {
		name           string
		send           func() error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "started",
			send: func() error {
				return svc.NotifyAnalysisStarted(context.Background(), "How To Go")
			},
			expectTitle:   "Vidscope - Analysis Started",
			expectMessage: "Started analyzing: How To Go",
			expectTags:    "vidscope,analysis,started",
		},
		{
			name: "progress",
			send: func() error {
				return svc.NotifyProgress(context.Background(), "How To Go", "TRANSCRIPTION", 55)
			},
			expectTitle:    "Vidscope - Progress",
			expectMessage:  "How To Go: TRANSCRIPTION (55%)",
			expectTags:     "vidscope,analysis,progress",
			expectPriority: "low",
		},
		{
			name: "completed",
			send: func() error {
				return svc.NotifyAnalysisCompleted(context.Background(), "How To Go", 0.82)
			},
			expectTitle:    "Vidscope - Analysis Complete",
			expectMessage:  "Analysis complete: How To Go (score 0.82)",
			expectTags:     "vidscope,analysis,completed",
			expectPriority: "high",
		},
		{
			name: "failed",
			send: func() error {
				return svc.NotifyAnalysisFailed(context.Background(), "How To Go", "TRANSCRIPTION failed", []notifications.StepResult{
					{Step: "EXTRACTION", Success: true, Duration: 1.23},
					{Step: "TRANSCRIPTION", Success: false, Error: "whisper crashed"},
				})
			},
			expectTitle:    "Vidscope - Analysis Failed",
			expectMessage:  "Analysis failed: How To Go\nTRANSCRIPTION failed\nEXTRACTION: ok (1.2s)\nTRANSCRIPTION: failed: whisper crashed",
			expectTags:     "vidscope,analysis,failed",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.send(); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for rejected notification")
	}
}

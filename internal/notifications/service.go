package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vidscope/internal/config"
	"vidscope/internal/logging"
)

const userAgent = "Vidscope/0.1.0"

// StepResult summarizes the outcome of one pipeline step. Failure
// notifications carry the results gathered up to the failing step so the
// recipient can see how far the run got.
type StepResult struct {
	Step     string
	Success  bool
	Error    string
	Duration float64 // seconds
}

// Service defines the notification surface exposed to the analysis pipeline.
// Implementations are fire-and-forget; callers log but otherwise ignore
// returned errors so a notification outage never affects a job.
type Service interface {
	NotifyAnalysisStarted(ctx context.Context, videoTitle string) error
	NotifyProgress(ctx context.Context, videoTitle, step string, percent float64) error
	NotifyAnalysisCompleted(ctx context.Context, videoTitle string, overallScore float64) error
	NotifyAnalysisFailed(ctx context.Context, videoTitle, reason string, steps []StepResult) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	return newNtfyService(cfg, topic)
}

// NewServiceWithLogger is NewService with a log-backed fallback: when no
// ntfy topic is configured and notifications.log_events is enabled,
// pipeline events go to the logger instead of being dropped.
func NewServiceWithLogger(cfg *config.Config, logger *slog.Logger) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		if cfg.Notifications.LogEvents && logger != nil {
			return &logService{logger: logger}
		}
		return noopService{}
	}

	return newNtfyService(cfg, topic)
}

func newNtfyService(cfg *config.Config, topic string) Service {
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyAnalysisStarted(ctx context.Context, videoTitle string) error {
	videoTitle = strings.TrimSpace(videoTitle)
	data := payload{
		title:   "Vidscope - Analysis Started",
		message: fmt.Sprintf("Started analyzing: %s", videoTitle),
		tags:    []string{"vidscope", "analysis", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProgress(ctx context.Context, videoTitle, step string, percent float64) error {
	videoTitle = strings.TrimSpace(videoTitle)
	step = strings.TrimSpace(step)
	data := payload{
		title:    "Vidscope - Progress",
		message:  fmt.Sprintf("%s: %s (%.0f%%)", videoTitle, step, percent),
		tags:     []string{"vidscope", "analysis", "progress"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnalysisCompleted(ctx context.Context, videoTitle string, overallScore float64) error {
	videoTitle = strings.TrimSpace(videoTitle)
	data := payload{
		title:    "Vidscope - Analysis Complete",
		message:  fmt.Sprintf("Analysis complete: %s (score %.2f)", videoTitle, overallScore),
		tags:     []string{"vidscope", "analysis", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnalysisFailed(ctx context.Context, videoTitle, reason string, steps []StepResult) error {
	videoTitle = strings.TrimSpace(videoTitle)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	message := fmt.Sprintf("Analysis failed: %s\n%s", videoTitle, reason)
	if summary := formatStepSummary(steps); summary != "" {
		message += "\n" + summary
	}
	data := payload{
		title:    "Vidscope - Analysis Failed",
		message:  message,
		tags:     []string{"vidscope", "analysis", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func formatStepSummary(steps []StepResult) string {
	if len(steps) == 0 {
		return ""
	}
	lines := make([]string, 0, len(steps))
	for _, step := range steps {
		if step.Success {
			lines = append(lines, fmt.Sprintf("%s: ok (%.1fs)", step.Step, step.Duration))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: failed: %s", step.Step, step.Error))
	}
	return strings.Join(lines, "\n")
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Vidscope - Test",
		message:  "Notification system test",
		tags:     []string{"vidscope", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type logService struct {
	logger *slog.Logger
}

func (l *logService) NotifyAnalysisStarted(_ context.Context, videoTitle string) error {
	l.logger.Info("analysis started", logging.String("video", videoTitle))
	return nil
}

func (l *logService) NotifyProgress(_ context.Context, videoTitle, step string, percent float64) error {
	l.logger.Info("analysis progress",
		logging.String("video", videoTitle),
		logging.String(logging.FieldStep, step),
		logging.Float64("percent", percent))
	return nil
}

func (l *logService) NotifyAnalysisCompleted(_ context.Context, videoTitle string, overallScore float64) error {
	l.logger.Info("analysis completed",
		logging.String("video", videoTitle),
		logging.Float64("overall_score", overallScore))
	return nil
}

func (l *logService) NotifyAnalysisFailed(_ context.Context, videoTitle, reason string, steps []StepResult) error {
	l.logger.Warn("analysis failed",
		logging.String("video", videoTitle),
		logging.String("reason", reason),
		logging.Any("steps", steps))
	return nil
}

func (l *logService) TestNotification(context.Context) error {
	l.logger.Info("notification system test")
	return nil
}

type noopService struct{}

func (noopService) NotifyAnalysisStarted(context.Context, string) error            { return nil }
func (noopService) NotifyProgress(context.Context, string, string, float64) error  { return nil }
func (noopService) NotifyAnalysisCompleted(context.Context, string, float64) error { return nil }
func (noopService) NotifyAnalysisFailed(context.Context, string, string, []StepResult) error {
	return nil
}
func (noopService) TestNotification(context.Context) error                         { return nil }

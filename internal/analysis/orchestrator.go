package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"vidscope/internal/jobs"
	"vidscope/internal/logging"
	"vidscope/internal/notifications"
	"vidscope/internal/services"
	"vidscope/internal/services/whisper"
	"vidscope/internal/services/youtube"
)

// MetadataClient fetches video metadata and comments.
type MetadataClient interface {
	GetVideoInfo(ctx context.Context, videoID string) (*youtube.VideoInfo, error)
	GetComments(ctx context.Context, videoID, channelID string) ([]youtube.Comment, error)
}

// AudioDownloader fetches the audio track for a video.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, videoID, destDir string) (string, error)
}

// Transcriber converts an audio file to a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (*whisper.Transcript, error)
}

// Settings carries run configuration that applies to every job. WorkDir
// holds per-job scratch space (downloaded audio, transcription output);
// Language and MaxComments are echoed into report metadata.
type Settings struct {
	WorkDir     string
	Language    string
	MaxComments int
}

// Orchestrator drives the analysis pipeline for one job at a time.
type Orchestrator struct {
	store           *jobs.Store
	notifier        notifications.Service
	metadata        MetadataClient
	downloader      AudioDownloader
	transcriber     Transcriber
	contentAnalyzer *ContentAnalyzer
	commentAnalyzer *CommentAnalyzer
	settings        Settings
	logger          *slog.Logger
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(
	store *jobs.Store,
	notifier notifications.Service,
	metadata MetadataClient,
	downloader AudioDownloader,
	transcriber Transcriber,
	contentAnalyzer *ContentAnalyzer,
	commentAnalyzer *CommentAnalyzer,
	settings Settings,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:           store,
		notifier:        notifier,
		metadata:        metadata,
		downloader:      downloader,
		transcriber:     transcriber,
		contentAnalyzer: contentAnalyzer,
		commentAnalyzer: commentAnalyzer,
		settings:        settings,
		logger:          logger.With(logging.String(logging.FieldComponent, "orchestrator")),
	}
}

// extractionData carries the extraction step outputs downstream.
type extractionData struct {
	videoID   string
	video     *youtube.VideoInfo
	audioPath string
	comments  []youtube.Comment
}

// Run executes the full pipeline for a claimed job. Content or comment
// analysis failures degrade the report; extraction, transcription, and
// finalization failures fail the job and notify exactly once.
func (o *Orchestrator) Run(ctx context.Context, job *jobs.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	logger := o.logger.With(logging.String(logging.FieldJobID, job.ID))
	opts := DefaultOptions()
	opts.Language = o.settings.Language
	opts.MaxComments = o.settings.MaxComments
	if job.AnalysisType != "" {
		opts.AnalysisType = job.AnalysisType
	}
	start := time.Now()
	var stepResults []notifications.StepResult

	logger.InfoContext(ctx, "analysis started", logging.String("video_ref", job.VideoRef))
	o.notify(ctx, func() error {
		return o.notifier.NotifyAnalysisStarted(ctx, job.VideoRef)
	})

	stepStart := time.Now()
	extraction, err := o.runExtraction(ctx, job)
	stepResults = append(stepResults, stepOutcome(StepExtraction, time.Since(stepStart), err))
	if err != nil {
		return o.fail(ctx, job, StepExtraction, job.VideoRef, err, stepResults)
	}
	defer o.cleanup(ctx, extraction.audioPath)

	stepStart = time.Now()
	transcript, err := o.runTranscription(ctx, job, extraction)
	stepResults = append(stepResults, stepOutcome(StepTranscription, time.Since(stepStart), err))
	if err != nil {
		return o.fail(ctx, job, StepTranscription, extraction.video.Title, err, stepResults)
	}

	contentInsights, commentInsights, degraded, analysisResults := o.runParallelAnalysis(ctx, job, extraction, transcript)
	stepResults = append(stepResults, analysisResults...)

	stepStart = time.Now()
	report, err := o.runFinalization(ctx, job, extraction, transcript, contentInsights, commentInsights, opts, degraded)
	stepResults = append(stepResults, stepOutcome(StepFinalization, time.Since(stepStart), err))
	if err != nil {
		return o.fail(ctx, job, StepFinalization, extraction.video.Title, err, stepResults)
	}

	o.notify(ctx, func() error {
		return o.notifier.NotifyAnalysisCompleted(ctx, extraction.video.Title, report.Summary.OverallScore)
	})
	logger.InfoContext(ctx, "analysis completed",
		logging.Duration("elapsed", time.Since(start)),
		logging.Float64("overall_score", report.Summary.OverallScore))
	return nil
}

func (o *Orchestrator) runExtraction(ctx context.Context, job *jobs.Job) (*extractionData, error) {
	ctx = services.WithStep(ctx, string(StepExtraction))
	o.publishProgress(ctx, job, StepExtraction, 5, "initializing extraction")

	videoID, err := youtube.ExtractVideoID(job.VideoRef)
	if err != nil {
		return nil, err
	}

	o.publishProgress(ctx, job, StepExtraction, 10, "fetching video metadata")
	video, err := o.metadata.GetVideoInfo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	o.publishProgress(ctx, job, StepExtraction, 15, "downloading audio")
	jobDir := filepath.Join(o.settings.WorkDir, job.ID)
	audioPath, err := o.downloader.DownloadAudio(ctx, videoID, jobDir)
	if err != nil {
		return nil, err
	}

	o.publishProgress(ctx, job, StepExtraction, 20, "fetching comments")
	comments, err := o.metadata.GetComments(ctx, videoID, video.ChannelID)
	if err != nil {
		return nil, err
	}

	o.publishProgress(ctx, job, StepExtraction, 25, "extraction complete")
	return &extractionData{
		videoID:   videoID,
		video:     video,
		audioPath: audioPath,
		comments:  comments,
	}, nil
}

func (o *Orchestrator) runTranscription(ctx context.Context, job *jobs.Job, extraction *extractionData) (*whisper.Transcript, error) {
	ctx = services.WithStep(ctx, string(StepTranscription))
	o.publishProgress(ctx, job, StepTranscription, 30, "transcribing audio")

	transcript, err := o.transcriber.Transcribe(ctx, extraction.audioPath, filepath.Dir(extraction.audioPath))
	if err != nil {
		return nil, err
	}

	o.publishProgress(ctx, job, StepTranscription, 55, "transcription complete")
	return transcript, nil
}

// runParallelAnalysis runs content and comment analysis concurrently. Both
// branches always join; a branch error yields a nil insight and the step name
// in the degraded list instead of aborting the pipeline.
func (o *Orchestrator) runParallelAnalysis(ctx context.Context, job *jobs.Job, extraction *extractionData, transcript *whisper.Transcript) (*ContentInsights, *CommentInsights, []string, []notifications.StepResult) {
	o.publishProgress(ctx, job, StepContentAnalysis, 60, "analyzing content and comments")

	var (
		contentInsights *ContentInsights
		commentInsights *CommentInsights
		contentErr      error
		commentErr      error
		contentElapsed  time.Duration
		commentElapsed  time.Duration
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		stepStart := time.Now()
		contentInsights, contentErr = o.contentAnalyzer.Analyze(groupCtx, transcript, extraction.video)
		contentElapsed = time.Since(stepStart)
		return nil
	})
	group.Go(func() error {
		stepStart := time.Now()
		commentInsights, commentErr = o.commentAnalyzer.Analyze(groupCtx, extraction.comments, extraction.video)
		commentElapsed = time.Since(stepStart)
		return nil
	})
	_ = group.Wait()

	var degraded []string
	if contentErr != nil {
		degraded = append(degraded, string(StepContentAnalysis))
		o.logger.WarnContext(ctx, "content analysis degraded",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(contentErr))
	}
	if commentErr != nil {
		degraded = append(degraded, string(StepCommentAnalysis))
		o.logger.WarnContext(ctx, "comment analysis degraded",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(commentErr))
	}

	o.publishProgress(ctx, job, StepCommentAnalysis, 85, "content and comment analysis complete")
	results := []notifications.StepResult{
		stepOutcome(StepContentAnalysis, contentElapsed, contentErr),
		stepOutcome(StepCommentAnalysis, commentElapsed, commentErr),
	}
	return contentInsights, commentInsights, degraded, results
}

func (o *Orchestrator) runFinalization(ctx context.Context, job *jobs.Job, extraction *extractionData, transcript *whisper.Transcript, contentInsights *ContentInsights, commentInsights *CommentInsights, opts Options, degraded []string) (*Report, error) {
	ctx = services.WithStep(ctx, string(StepFinalization))
	o.publishProgress(ctx, job, StepFinalization, 90, "generating report")

	report := BuildReport(extraction.video, len(extraction.comments), transcript, contentInsights, commentInsights, opts, degraded)
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(StepFinalization), "encode report", "", err)
	}
	if err := o.store.SetCompleted(ctx, job.ID, string(payload)); err != nil {
		return nil, services.Wrap(services.ErrTransient, string(StepFinalization), "persist report", "", err)
	}

	o.publishProgress(ctx, job, StepFinalization, 100, "analysis complete")
	return report, nil
}

// stepOutcome converts one step run into the summary carried by failure
// notifications.
func stepOutcome(step Step, elapsed time.Duration, err error) notifications.StepResult {
	result := notifications.StepResult{
		Step:     string(step),
		Success:  err == nil,
		Duration: elapsed.Seconds(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// fail marks the job failed with the step name and notifies failure once,
// attaching the step results gathered before the failure.
func (o *Orchestrator) fail(ctx context.Context, job *jobs.Job, step Step, videoTitle string, err error, stepResults []notifications.StepResult) error {
	message := fmt.Sprintf("%s failed: %v", step, err)
	if storeErr := o.store.SetFailed(ctx, job.ID, message); storeErr != nil {
		o.logger.ErrorContext(ctx, "persist failure state",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(storeErr))
	}
	o.notify(ctx, func() error {
		return o.notifier.NotifyAnalysisFailed(ctx, videoTitle, message, stepResults)
	})
	o.logger.ErrorContext(ctx, "analysis failed",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldStep, string(step)),
		logging.Error(err))
	return err
}

// publishProgress writes a progress tick and mirrors it to the notifier.
// Store-level monotonic guards make late or duplicate ticks harmless.
func (o *Orchestrator) publishProgress(ctx context.Context, job *jobs.Job, step Step, percent float64, message string) {
	if err := o.store.UpdateProgress(ctx, job.ID, string(step), message, percent); err != nil {
		o.logger.WarnContext(ctx, "persist progress",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
	o.notify(ctx, func() error {
		return o.notifier.NotifyProgress(ctx, job.VideoRef, string(step), percent)
	})
}

// notify delivers a notification, logging but swallowing delivery errors.
func (o *Orchestrator) notify(ctx context.Context, send func() error) {
	if o.notifier == nil {
		return
	}
	if err := send(); err != nil {
		o.logger.WarnContext(ctx, "notification delivery failed", logging.Error(err))
	}
}

func (o *Orchestrator) cleanup(ctx context.Context, audioPath string) {
	if audioPath == "" {
		return
	}
	if err := os.RemoveAll(filepath.Dir(audioPath)); err != nil {
		o.logger.WarnContext(ctx, "cleanup job workspace",
			logging.String("path", audioPath),
			logging.Error(err))
	}
}

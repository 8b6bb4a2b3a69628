package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vidscope/internal/config"
	"vidscope/internal/jobs"
	"vidscope/internal/logging"
	"vidscope/internal/notifications"
)

// Runner executes the analysis pipeline for one claimed job.
type Runner interface {
	Run(ctx context.Context, job *jobs.Job) error
}

// Manager polls the job queue and drives claimed jobs through the runner.
type Manager struct {
	cfg           *config.Config
	store         *jobs.Store
	logger        *slog.Logger
	notifier      notifications.Service
	runner        Runner
	pollInterval  time.Duration
	errorInterval time.Duration

	heartbeat *HeartbeatMonitor

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *jobs.Job
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPollInterval overrides the queue poll interval, mainly for tests.
func WithPollInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		m.pollInterval = interval
	}
}

// WithErrorRetryInterval overrides the backoff after queue fetch errors.
func WithErrorRetryInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		m.errorInterval = interval
	}
}

// NewManager constructs a workflow manager with the configured notifier.
func NewManager(cfg *config.Config, store *jobs.Store, runner Runner, logger *slog.Logger, opts ...ManagerOption) *Manager {
	return NewManagerWithNotifier(cfg, store, runner, logger, notifications.NewServiceWithLogger(cfg, logger), opts...)
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier
// (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *jobs.Store, runner Runner, logger *slog.Logger, notifier notifications.Service, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:           cfg,
		store:         store,
		logger:        logger.With(logging.String(logging.FieldComponent, "workflow-manager")),
		notifier:      notifier,
		runner:        runner,
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	if m.errorInterval <= 0 {
		m.errorInterval = m.pollInterval
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"vidscope/internal/jobs"
	"vidscope/internal/logging"
)

// Start begins background queue processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight job to
// settle.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.Reclaim(ctx, m.logger); err != nil {
			m.logger.Warn("reclaim stale processing failed; stuck jobs may remain",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check job database access"))
		}

		job, err := m.store.NextPending(ctx)
		if err != nil {
			m.handleFetchError(ctx, err)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}

		claimed, err := m.store.Claim(ctx, job.ID)
		if err != nil {
			m.handleFetchError(ctx, err)
			continue
		}
		if !claimed {
			continue
		}

		m.processJob(ctx, job)
	}
}

func (m *Manager) processJob(ctx context.Context, job *jobs.Job) {
	logger := m.logger.With(logging.String(logging.FieldJobID, job.ID))

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	var heartbeatWG sync.WaitGroup
	if m.heartbeat.interval > 0 {
		heartbeatWG.Add(1)
		go m.heartbeat.StartLoop(heartbeatCtx, &heartbeatWG, job.ID)
	}

	err := m.runner.Run(ctx, job)
	stopHeartbeat()
	heartbeatWG.Wait()
	m.setLastJob(job)

	if err == nil {
		return
	}
	m.setLastError(err)
	if errors.Is(err, context.Canceled) {
		// The run context is gone; record the interruption with a fresh one.
		if failErr := m.store.SetFailed(context.Background(), job.ID, jobs.DaemonStopReason); failErr != nil {
			logger.Error("failed to record interrupted job", logging.Error(failErr))
		}
		m.notifyInterrupted(job)
		logger.Info("job interrupted by shutdown")
	}
}

// notifyInterrupted reports a job that was cut off by shutdown. Uses a fresh
// context; the run context is already canceled.
func (m *Manager) notifyInterrupted(job *jobs.Job) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyAnalysisFailed(context.Background(), job.VideoRef, jobs.DaemonStopReason, nil); err != nil {
		m.logger.Warn("notification delivery failed", logging.Error(err))
	}
}

func (m *Manager) handleFetchError(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.setLastError(err)
	m.logger.Error("failed to fetch next job",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check job database access"))
	select {
	case <-ctx.Done():
	case <-time.After(m.errorInterval):
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

package daemon_test

import (
	"context"
	"testing"
	"time"

	"vidscope/internal/daemon"
	"vidscope/internal/jobs"
	"vidscope/internal/testsupport"
	"vidscope/internal/workflow"
)

type idleRunner struct{}

func (idleRunner) Run(ctx context.Context, _ *jobs.Job) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestDaemon(t *testing.T) (*daemon.Daemon, *jobs.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, idleRunner{}, nil,
		workflow.WithPollInterval(10*time.Millisecond))
	d, err := daemon.New(cfg, store, nil, manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath == "" {
		t.Fatal("expected lock file path")
	}

	d.Stop()
	if d.Status(context.Background()).Running {
		t.Fatal("expected daemon to report stopped")
	}
}

func TestDaemonStartTwiceFails(t *testing.T) {
	d, _ := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestDaemonJobMaintenance(t *testing.T) {
	d, store := newTestDaemon(t)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "dQw4w9WgXcQ")
	if err := store.SetFailed(ctx, job.ID, "EXTRACTION failed: boom"); err != nil {
		t.Fatalf("SetFailed: %v", err)
	}

	listed, err := d.ListJobs(ctx, []jobs.Status{jobs.StatusFailed})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one failed job, got %d", len(listed))
	}

	retried, err := d.RetryFailed(ctx, []string{job.ID})
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected one retried job, got %d", retried)
	}

	health, err := d.JobHealth(ctx)
	if err != nil {
		t.Fatalf("JobHealth: %v", err)
	}
	if health.Pending != 1 || health.Total != 1 {
		t.Fatalf("unexpected health summary: %+v", health)
	}

	cleared, err := d.ClearJobs(ctx)
	if err != nil {
		t.Fatalf("ClearJobs: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected one cleared job, got %d", cleared)
	}
}

func TestDaemonTestNotificationWithoutTopic(t *testing.T) {
	d, _ := newTestDaemon(t)

	ok, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if ok {
		t.Fatal("expected notification to be skipped without a topic")
	}
	if message != "ntfy topic not configured" {
		t.Fatalf("unexpected message: %q", message)
	}
}

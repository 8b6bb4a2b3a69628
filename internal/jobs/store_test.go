package jobs_test

import (
	"context"
	"testing"

	"vidscope/internal/jobs"
	"vidscope/internal/testsupport"
)

func TestNewJobDefaults(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	job, err := store.NewJob(context.Background(), "dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated job id")
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("expected pending status, got %s", job.Status)
	}
	if job.AnalysisType != jobs.AnalysisDetailed {
		t.Fatalf("expected detailed analysis default, got %s", job.AnalysisType)
	}
	if job.Progress != 0 {
		t.Fatalf("expected zero progress, got %f", job.Progress)
	}
}

func TestNewJobRejectsEmptyRef(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.NewJob(context.Background(), "   ", jobs.AnalysisBasic); err == nil {
		t.Fatal("expected error for empty video reference")
	}
}

func TestClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	job := testsupport.NewJob(t, store, "abc123")

	claimed, err := store.Claim(ctx, job.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	again, err := store.Claim(ctx, job.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if again {
		t.Fatal("expected second claim to fail")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != jobs.StatusProcessing {
		t.Fatalf("expected processing, got %s", fetched.Status)
	}
	if fetched.LastHeartbeat == nil {
		t.Fatal("expected heartbeat to be set on claim")
	}
}

func TestUpdateProgressIsMonotonicAndBounded(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	job := testsupport.NewJob(t, store, "abc123")

	if err := store.UpdateProgress(ctx, job.ID, "TRANSCRIPTION", "transcribing", 55); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	// A late extraction tick must not rewind progress.
	if err := store.UpdateProgress(ctx, job.ID, "EXTRACTION", "stale tick", 25); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Progress != 55 {
		t.Fatalf("expected progress 55 after stale tick, got %f", fetched.Progress)
	}

	if err := store.UpdateProgress(ctx, job.ID, "FINALIZATION", "done", 150); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	fetched, err = store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Progress != 100 {
		t.Fatalf("expected progress clamped to 100, got %f", fetched.Progress)
	}
}

func TestSetCompletedWritesResultOnce(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	job := testsupport.NewJob(t, store, "abc123")

	if _, err := store.Claim(ctx, job.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := store.SetCompleted(ctx, job.ID, `{"summary":{}}`); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s", fetched.Status)
	}
	if fetched.ResultJSON != `{"summary":{}}` {
		t.Fatalf("unexpected result payload: %q", fetched.ResultJSON)
	}
	if fetched.CompletedAt == nil {
		t.Fatal("expected completed_at timestamp")
	}
	if fetched.Progress != 100 {
		t.Fatalf("expected progress 100, got %f", fetched.Progress)
	}

	// A second completion attempt must not overwrite the stored report.
	if err := store.SetCompleted(ctx, job.ID, `{"summary":{"overwritten":true}}`); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	fetched, err = store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.ResultJSON != `{"summary":{}}` {
		t.Fatalf("result overwritten after terminal state: %q", fetched.ResultJSON)
	}
}

func TestCancelRespectsTerminalStates(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	pending := testsupport.NewJob(t, store, "pending-video")
	cancelled, err := store.Cancel(ctx, pending.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !cancelled {
		t.Fatal("expected pending job to cancel")
	}

	done := testsupport.NewJob(t, store, "done-video")
	if _, err := store.Claim(ctx, done.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := store.SetCompleted(ctx, done.ID, `{}`); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	cancelled, err = store.Cancel(ctx, done.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled {
		t.Fatal("expected completed job to refuse cancellation")
	}
}

func TestRetryFailed(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	job := testsupport.NewJob(t, store, "abc123")
	if _, err := store.Claim(ctx, job.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := store.SetFailed(ctx, job.ID, "EXTRACTION failed: boom"); err != nil {
		t.Fatalf("SetFailed: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retried job, got %d", count)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != jobs.StatusPending {
		t.Fatalf("expected pending after retry, got %s", fetched.Status)
	}
	if fetched.ErrorMessage != "" {
		t.Fatalf("expected cleared error message, got %q", fetched.ErrorMessage)
	}
	if fetched.Progress != 0 {
		t.Fatalf("expected reset progress, got %f", fetched.Progress)
	}
}

func TestNextPendingOrder(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	first := testsupport.NewJob(t, store, "first")
	testsupport.NewJob(t, store, "second")

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest job first, got %+v", next)
	}
}

func TestHealthCounts(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	testsupport.NewJob(t, store, "a")
	failed := testsupport.NewJob(t, store, "b")
	if _, err := store.Claim(ctx, failed.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := store.SetFailed(ctx, failed.ID, "boom"); err != nil {
		t.Fatalf("SetFailed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %+v", health)
	}
}

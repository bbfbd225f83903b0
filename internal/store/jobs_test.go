package store_test

import (
	"context"
	"testing"

	"storyloom/internal/store"
	"storyloom/internal/testsupport"
)

func createEpisodeForJobs(t *testing.T, st *store.Store) *store.Episode {
	t.Helper()
	episode, err := st.CreateEpisode(context.Background(), seededParams(t, st))
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	return episode
}

func TestCreateJobStartsQueued(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()
	episode := createEpisodeForJobs(t, st)

	job, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if job.Status != store.StatusQueued {
		t.Fatalf("expected queued status, got %q", job.Status)
	}
	if job.ProgressPct != 0 {
		t.Fatalf("expected progress 0, got %d", job.ProgressPct)
	}
	if job.Step != "queued" {
		t.Fatalf("expected step queued, got %q", job.Step)
	}
	if job.Type != store.JobKindEpisodeGeneration {
		t.Fatalf("unexpected job type %q", job.Type)
	}
	if job.EpisodeID != episode.ID {
		t.Fatalf("job bound to episode %d, want %d", job.EpisodeID, episode.ID)
	}
}

func TestUpdateJobStateTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()
	episode := createEpisodeForJobs(t, st)

	job, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	updated, err := st.UpdateJobState(ctx, job.ID, store.StatusRunning, 25, "validating input", "")
	if err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated job")
	}
	if updated.Status != store.StatusRunning || updated.ProgressPct != 25 || updated.Step != "validating input" {
		t.Fatalf("unexpected state after update: %+v", updated)
	}
	if updated.ErrorMessage != "" {
		t.Fatalf("expected empty error message, got %q", updated.ErrorMessage)
	}

	failed, err := st.UpdateJobState(ctx, job.ID, store.StatusFailed, 60, "failed", "context assembly broke")
	if err != nil {
		t.Fatalf("UpdateJobState to failed failed: %v", err)
	}
	if failed.Status != store.StatusFailed || failed.ErrorMessage != "context assembly broke" {
		t.Fatalf("unexpected failed state: %+v", failed)
	}
}

func TestUpdateJobStateClampsProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()
	episode := createEpisodeForJobs(t, st)

	job, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	high, err := st.UpdateJobState(ctx, job.ID, store.StatusRunning, 250, "step", "")
	if err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}
	if high.ProgressPct != 100 {
		t.Fatalf("expected progress clamped to 100, got %d", high.ProgressPct)
	}

	low, err := st.UpdateJobState(ctx, job.ID, store.StatusRunning, -5, "step", "")
	if err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}
	if low.ProgressPct != 0 {
		t.Fatalf("expected progress clamped to 0, got %d", low.ProgressPct)
	}
}

func TestUpdateJobStateMissingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	job, err := st.UpdateJobState(context.Background(), 42, store.StatusRunning, 10, "step", "")
	if err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %+v", job)
	}
}

func TestJobsByEpisodeOrdersOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()
	episode := createEpisodeForJobs(t, st)

	first, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	second, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	jobs, err := st.JobsByEpisode(ctx, episode.ID)
	if err != nil {
		t.Fatalf("JobsByEpisode failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Fatalf("jobs out of order: %d then %d", jobs[0].ID, jobs[1].ID)
	}
}

func TestResetStuckJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()
	episode := createEpisodeForJobs(t, st)

	queued, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	running, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if _, err := st.UpdateJobState(ctx, running.ID, store.StatusRunning, 25, "validating input", ""); err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}
	completed, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if _, err := st.UpdateJobState(ctx, completed.ID, store.StatusCompleted, 100, "completed", ""); err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}

	reset, err := st.ResetStuckJobs(ctx)
	if err != nil {
		t.Fatalf("ResetStuckJobs failed: %v", err)
	}
	if reset != 2 {
		t.Fatalf("expected 2 reset jobs, got %d", reset)
	}

	for _, id := range []int64{queued.ID, running.ID} {
		job, err := st.GetJob(ctx, id)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if job.Status != store.StatusFailed {
			t.Fatalf("job %d should be failed, got %q", id, job.Status)
		}
		if job.ErrorMessage != store.InterruptedJobMessage {
			t.Fatalf("job %d has message %q", id, job.ErrorMessage)
		}
	}

	untouched, err := st.GetJob(ctx, completed.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if untouched.Status != store.StatusCompleted {
		t.Fatalf("completed job should be untouched, got %q", untouched.Status)
	}
}

func TestJobStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()
	episode := createEpisodeForJobs(t, st)

	if _, err := st.CreateJob(ctx, episode.ID); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	job, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if _, err := st.UpdateJobState(ctx, job.ID, store.StatusCompleted, 100, "completed", ""); err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}

	stats, err := st.JobStats(ctx)
	if err != nil {
		t.Fatalf("JobStats failed: %v", err)
	}
	if stats[store.StatusQueued] != 1 || stats[store.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := store.ParseStatus(" Running "); !ok || status != store.StatusRunning {
		t.Fatalf("expected running, got %q ok=%v", status, ok)
	}
	if _, ok := store.ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
	if !store.StatusFailed.IsTerminal() || store.StatusRunning.IsTerminal() {
		t.Fatal("terminal classification wrong")
	}
}

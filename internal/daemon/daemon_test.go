package daemon_test

import (
	"context"
	"testing"

	"storyloom/internal/daemon"
	"storyloom/internal/jobs"
	"storyloom/internal/store"
	"storyloom/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	runner := jobs.NewRunner(cfg, st, nil)

	d, err := daemon.New(cfg, st, runner, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	if d.APIAddr() == "" {
		t.Fatal("expected bound api address")
	}

	status := d.Status(context.Background())
	if !status.Running || !status.RunnerRunning {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.LockFilePath == "" || status.DatabasePath == "" {
		t.Fatalf("status missing paths: %+v", status)
	}

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)

	first, err := daemon.New(cfg, st, jobs.NewRunner(cfg, st, nil), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, st, jobs.NewRunner(cfg, st, nil), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail the lock")
	}
}

func TestDaemonResetsInterruptedJobsOnStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	ctx := context.Background()

	themes, err := st.ListThemes(ctx)
	if err != nil {
		t.Fatalf("ListThemes failed: %v", err)
	}
	characters, err := st.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	series, err := st.DefaultSeries(ctx)
	if err != nil {
		t.Fatalf("DefaultSeries failed: %v", err)
	}
	episode, err := st.CreateEpisode(ctx, store.EpisodeParams{
		SeriesID:          series.ID,
		Title:             "Generated Episode",
		UserPrompt:        "interrupted job fixture",
		ThemeID:           themes[0].ID,
		CharacterIDs:      []int64{characters[0].ID},
		TargetDurationSec: 15,
	})
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	stale, err := st.CreateJob(ctx, episode.ID)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	d, err := daemon.New(cfg, st, jobs.NewRunner(cfg, st, nil), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	job, err := st.GetJob(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Status != store.StatusFailed {
		t.Fatalf("stale job should be failed after start, got %q", job.Status)
	}
	if job.ErrorMessage != store.InterruptedJobMessage {
		t.Fatalf("unexpected message %q", job.ErrorMessage)
	}
}

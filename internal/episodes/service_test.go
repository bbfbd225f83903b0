package episodes_test

import (
	"context"
	"errors"
	"testing"

	"storyloom/internal/episodes"
	"storyloom/internal/services"
	"storyloom/internal/store"
	"storyloom/internal/testsupport"
)

type stubEnqueuer struct {
	ids []int64
	err error
}

func (s *stubEnqueuer) Enqueue(jobID int64) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, jobID)
	return nil
}

type fixture struct {
	service  *episodes.Service
	store    *store.Store
	enqueuer *stubEnqueuer
	themeID  int64
	charIDs  []int64
	seriesID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.SeededStore(t, cfg)
	enqueuer := &stubEnqueuer{}
	service := episodes.NewService(st, cfg, enqueuer, nil)

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

	charIDs := make([]int64, 0, len(characters))
	for _, c := range characters {
		charIDs = append(charIDs, c.ID)
	}

	return &fixture{
		service:  service,
		store:    st,
		enqueuer: enqueuer,
		themeID:  themes[0].ID,
		charIDs:  charIDs[:2],
		seriesID: series.ID,
	}
}

func (f *fixture) request() episodes.SubmitRequest {
	return episodes.SubmitRequest{
		UserPrompt:   "A story about a lighthouse keeper.",
		ThemeID:      f.themeID,
		CharacterIDs: append([]int64(nil), f.charIDs...),
	}
}

func TestSubmitCreatesEpisodeAndJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Submit(ctx, f.request())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Episode.Title != "Generated Episode" {
		t.Fatalf("expected default title, got %q", result.Episode.Title)
	}
	if result.Episode.TargetDurationSec != 15 {
		t.Fatalf("expected default duration, got %d", result.Episode.TargetDurationSec)
	}
	if result.Episode.SeriesID != f.seriesID {
		t.Fatalf("expected fallback to default series %d, got %d", f.seriesID, result.Episode.SeriesID)
	}
	if result.Episode.EpisodeNumber != 1 {
		t.Fatalf("expected first episode number, got %d", result.Episode.EpisodeNumber)
	}
	if result.Job.Status != store.StatusQueued || result.Job.ProgressPct != 0 || result.Job.Step != "queued" {
		t.Fatalf("unexpected initial job state: %+v", result.Job)
	}
	if len(f.enqueuer.ids) != 1 || f.enqueuer.ids[0] != result.Job.ID {
		t.Fatalf("expected job %d enqueued, got %v", result.Job.ID, f.enqueuer.ids)
	}

	participants, err := f.store.EpisodeParticipants(ctx, result.Episode.ID)
	if err != nil {
		t.Fatalf("EpisodeParticipants failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}
}

func TestSubmitHonorsExplicitFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	duration := 30
	req := f.request()
	req.Title = "The Storm"
	req.TargetDurationSec = &duration
	req.SeriesID = &f.seriesID

	result, err := f.service.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Episode.Title != "The Storm" {
		t.Fatalf("expected explicit title, got %q", result.Episode.Title)
	}
	if result.Episode.TargetDurationSec != 30 {
		t.Fatalf("expected explicit duration, got %d", result.Episode.TargetDurationSec)
	}
}

func TestSubmitRejectsEmptyPrompt(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.UserPrompt = "   "
	_, err := f.service.Submit(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitAllowsEmptyCharacterSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request()
	req.CharacterIDs = nil
	result, err := f.service.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit without characters failed: %v", err)
	}

	participants, err := f.store.EpisodeParticipants(ctx, result.Episode.ID)
	if err != nil {
		t.Fatalf("EpisodeParticipants failed: %v", err)
	}
	if len(participants) != 0 {
		t.Fatalf("expected no participants, got %d", len(participants))
	}
}

func TestSubmitAcceptsInactiveCharacter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.store.SetCharacterActive(ctx, f.charIDs[0], false); err != nil {
		t.Fatalf("SetCharacterActive failed: %v", err)
	}

	result, err := f.service.Submit(ctx, f.request())
	if err != nil {
		t.Fatalf("Submit with inactive character failed: %v", err)
	}

	participants, err := f.store.EpisodeParticipants(ctx, result.Episode.ID)
	if err != nil {
		t.Fatalf("EpisodeParticipants failed: %v", err)
	}
	if len(participants) != len(f.charIDs) {
		t.Fatalf("expected %d participants, got %d", len(f.charIDs), len(participants))
	}
}

func TestSubmitRejectsDurationOutOfBounds(t *testing.T) {
	f := newFixture(t)

	for _, duration := range []int{4, 121} {
		d := duration
		req := f.request()
		req.TargetDurationSec = &d
		_, err := f.service.Submit(context.Background(), req)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("duration %d: expected validation error, got %v", duration, err)
		}
	}
}

func TestSubmitRejectsUnknownTheme(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.ThemeID = 9999
	_, err := f.service.Submit(context.Background(), req)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitRejectsMissingCharacter(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.CharacterIDs = append(req.CharacterIDs, 9999)
	_, err := f.service.Submit(context.Background(), req)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitRejectsDuplicateCharacters(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.CharacterIDs = []int64{f.charIDs[0], f.charIDs[0]}
	_, err := f.service.Submit(context.Background(), req)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for duplicated characters, got %v", err)
	}
}

func TestSubmitRejectsUnknownSeries(t *testing.T) {
	f := newFixture(t)

	missing := int64(9999)
	req := f.request()
	req.SeriesID = &missing
	_, err := f.service.Submit(context.Background(), req)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitRejectsUnknownContinuation(t *testing.T) {
	f := newFixture(t)

	missing := int64(9999)
	req := f.request()
	req.ContinuationFromEpisodeID = &missing
	_, err := f.service.Submit(context.Background(), req)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitAllowsContinuationFromExistingEpisode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.request())
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	req := f.request()
	req.ContinuationFromEpisodeID = &first.Episode.ID
	second, err := f.service.Submit(ctx, req)
	if err != nil {
		t.Fatalf("continuation Submit failed: %v", err)
	}
	if second.Episode.ContinuationFromEpisodeID == nil || *second.Episode.ContinuationFromEpisodeID != first.Episode.ID {
		t.Fatalf("continuation link not recorded: %+v", second.Episode)
	}
	if second.Episode.EpisodeNumber != 2 {
		t.Fatalf("expected episode number 2, got %d", second.Episode.EpisodeNumber)
	}
}

func TestSubmitMarksJobFailedWhenSchedulingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.enqueuer.err = errors.New("runner stopped")

	_, err := f.service.Submit(ctx, f.request())
	if !errors.Is(err, services.ErrTaskFailure) {
		t.Fatalf("expected task failure, got %v", err)
	}

	episodesList, err := f.store.ListRecentEpisodes(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentEpisodes failed: %v", err)
	}
	if len(episodesList) != 1 {
		t.Fatalf("expected episode to remain, got %d", len(episodesList))
	}
	jobs, err := f.store.JobsByEpisode(ctx, episodesList[0].ID)
	if err != nil {
		t.Fatalf("JobsByEpisode failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != store.StatusFailed {
		t.Fatalf("expected failed job, got %+v", jobs)
	}
}

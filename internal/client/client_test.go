package client_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"storyloom/internal/api"
	"storyloom/internal/client"
	"storyloom/internal/daemon"
	"storyloom/internal/jobs"
	"storyloom/internal/testsupport"
)

func startDaemon(t *testing.T) (*client.Client, int64, []int64) {
	t.Helper()
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
	t.Cleanup(d.Stop)

	ctx := context.Background()
	themes, err := st.ListThemes(ctx)
	if err != nil {
		t.Fatalf("ListThemes failed: %v", err)
	}
	characters, err := st.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}

	return client.New(d.APIAddr()), themes[0].ID, []int64{characters[0].ID, characters[1].ID}
}

func TestClientSubmitAndPoll(t *testing.T) {
	c, themeID, charIDs := startDaemon(t)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	created, err := c.Submit(ctx, api.SubmitEpisodeRequest{
		UserPrompt:   "A story about a lighthouse keeper.",
		ThemeID:      themeID,
		CharacterIDs: charIDs,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if created.Job.ID == 0 {
		t.Fatal("expected job identifier")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		snapshot, err := c.Job(ctx, created.Job.ID)
		if err != nil {
			t.Fatalf("Job failed: %v", err)
		}
		if snapshot.Status == "completed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed: %+v", snapshot)
		}
		time.Sleep(10 * time.Millisecond)
	}

	episode, err := c.Episode(ctx, created.Episode.ID)
	if err != nil {
		t.Fatalf("Episode failed: %v", err)
	}
	if episode.ID != created.Episode.ID {
		t.Fatalf("unexpected episode %+v", episode)
	}

	if _, err := c.Episode(ctx, 9999); err == nil {
		t.Fatal("expected missing episode error")
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	c, _, charIDs := startDaemon(t)
	ctx := context.Background()

	_, err := c.Submit(ctx, api.SubmitEpisodeRequest{
		UserPrompt:   "prompt",
		ThemeID:      9999,
		CharacterIDs: charIDs,
	})
	if err == nil {
		t.Fatal("expected submit error")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected 404 in message, got %q", err)
	}

	if _, err := c.Job(ctx, 9999); err == nil {
		t.Fatal("expected missing job error")
	}
}

func TestClientCatalogReads(t *testing.T) {
	c, _, _ := startDaemon(t)
	ctx := context.Background()

	themes, err := c.Themes(ctx)
	if err != nil {
		t.Fatalf("Themes failed: %v", err)
	}
	if len(themes) != 10 {
		t.Fatalf("expected 10 themes, got %d", len(themes))
	}

	characters, err := c.Characters(ctx)
	if err != nil {
		t.Fatalf("Characters failed: %v", err)
	}
	if len(characters) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(characters))
	}

	series, err := c.Series(ctx)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}

	episodes, err := c.Episodes(ctx, 5)
	if err != nil {
		t.Fatalf("Episodes failed: %v", err)
	}
	if len(episodes) != 0 {
		t.Fatalf("expected no episodes yet, got %d", len(episodes))
	}
}

func TestClientUnreachableDaemon(t *testing.T) {
	c := client.New("127.0.0.1:1")
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}

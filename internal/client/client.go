package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyloom/internal/api"
)

// Client talks to a running storyloom daemon over its HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client for the given bind address or base URL.
func New(address string) *Client {
	base := strings.TrimSpace(address)
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Health reports whether the daemon answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	var body map[string]string
	return c.get(ctx, "/health", &body)
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var status api.DaemonStatus
	if err := c.get(ctx, "/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Submit sends an episode submission and returns the created records.
func (c *Client) Submit(ctx context.Context, req api.SubmitEpisodeRequest) (*api.SubmitEpisodeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/episodes", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var created api.SubmitEpisodeResponse
	if err := c.do(httpReq, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Job fetches one job snapshot.
func (c *Client) Job(ctx context.Context, id int64) (*api.JobSnapshot, error) {
	var snapshot api.JobSnapshot
	if err := c.get(ctx, fmt.Sprintf("/api/jobs/%d", id), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Themes lists the selectable themes.
func (c *Client) Themes(ctx context.Context) ([]api.ThemeSummary, error) {
	var resp api.ThemeListResponse
	if err := c.get(ctx, "/api/themes", &resp); err != nil {
		return nil, err
	}
	return resp.Themes, nil
}

// Characters lists the selectable characters.
func (c *Client) Characters(ctx context.Context) ([]api.CharacterSummary, error) {
	var resp api.CharacterListResponse
	if err := c.get(ctx, "/api/characters", &resp); err != nil {
		return nil, err
	}
	return resp.Characters, nil
}

// Series lists all story series.
func (c *Client) Series(ctx context.Context) ([]api.SeriesSummary, error) {
	var resp api.SeriesListResponse
	if err := c.get(ctx, "/api/series", &resp); err != nil {
		return nil, err
	}
	return resp.Series, nil
}

// Episodes lists the most recently created episodes.
func (c *Client) Episodes(ctx context.Context, limit int) ([]api.EpisodeSummary, error) {
	path := "/api/episodes"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var resp api.EpisodeListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Episodes, nil
}

// Episode fetches one episode by identifier.
func (c *Client) Episode(ctx context.Context, id int64) (*api.EpisodeSummary, error) {
	var episode api.EpisodeSummary
	if err := c.get(ctx, fmt.Sprintf("/api/episodes/%d", id), &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s (status %d)", apiErrorMessage(body), resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	message := strings.TrimSpace(string(body))
	if message == "" {
		return "request failed"
	}
	return message
}

package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobSnapshot describes job lifecycle state in a transport-friendly format.
// ErrorMessage is only populated on failed jobs.
type JobSnapshot struct {
	ID           int64  `json:"id"`
	EpisodeID    int64  `json:"episodeId"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	ProgressPct  int    `json:"progressPct"`
	Step         string `json:"step"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// EpisodeSummary describes an episode record for API consumers.
type EpisodeSummary struct {
	ID                        int64  `json:"id"`
	SeriesID                  int64  `json:"seriesId"`
	EpisodeNumber             int    `json:"episodeNumber"`
	Title                     string `json:"title"`
	UserPrompt                string `json:"userPrompt"`
	ThemeID                   int64  `json:"themeId"`
	ContinuationFromEpisodeID *int64 `json:"continuationFromEpisodeId,omitempty"`
	TargetDurationSec         int    `json:"targetDurationSec"`
	Status                    string `json:"status"`
	CreatedAt                 string `json:"createdAt,omitempty"`
}

// ThemeSummary describes a selectable theme.
type ThemeSummary struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// CharacterSummary describes a selectable character.
type CharacterSummary struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	SpeechStyle string          `json:"speechStyle,omitempty"`
	Description string          `json:"description,omitempty"`
	Traits      json.RawMessage `json:"traits,omitempty"`
}

// SeriesSummary describes a story series.
type SeriesSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// SubmitEpisodeRequest is the JSON body accepted by the submission endpoint.
// Optional fields stay nil when omitted.
type SubmitEpisodeRequest struct {
	UserPrompt                string  `json:"userPrompt"`
	Title                     string  `json:"title,omitempty"`
	ThemeID                   int64   `json:"themeId"`
	SeriesID                  *int64  `json:"seriesId,omitempty"`
	ContinuationFromEpisodeID *int64  `json:"continuationFromEpisodeId,omitempty"`
	CharacterIDs              []int64 `json:"characterIds"`
	TargetDurationSec         *int    `json:"targetDurationSec,omitempty"`
}

// SubmitEpisodeResponse reports the records a submission produced.
type SubmitEpisodeResponse struct {
	Episode EpisodeSummary `json:"episode"`
	Job     JobSnapshot    `json:"job"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	DatabasePath  string         `json:"databasePath"`
	LockFilePath  string         `json:"lockFilePath"`
	RunnerRunning bool           `json:"runnerRunning"`
	JobStats      map[string]int `json:"jobStats"`
	EpisodeCount  int            `json:"episodeCount"`
	JobCount      int            `json:"jobCount"`
}

// ThemeListResponse wraps a collection of themes.
type ThemeListResponse struct {
	Themes []ThemeSummary `json:"themes"`
}

// CharacterListResponse wraps a collection of characters.
type CharacterListResponse struct {
	Characters []CharacterSummary `json:"characters"`
}

// SeriesListResponse wraps a collection of series.
type SeriesListResponse struct {
	Series []SeriesSummary `json:"series"`
}

// EpisodeListResponse wraps a collection of episodes.
type EpisodeListResponse struct {
	Episodes []EpisodeSummary `json:"episodes"`
}

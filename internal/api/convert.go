package api

import (
	"encoding/json"
	"time"

	"storyloom/internal/store"
)

// FromJob converts a job record to its API representation.
func FromJob(job *store.Job) JobSnapshot {
	if job == nil {
		return JobSnapshot{}
	}
	dto := JobSnapshot{
		ID:          job.ID,
		EpisodeID:   job.EpisodeID,
		Type:        job.Type,
		Status:      string(job.Status),
		ProgressPct: job.ProgressPct,
		Step:        job.Step,
	}
	if job.Status == store.StatusFailed {
		dto.ErrorMessage = job.ErrorMessage
	}
	dto.CreatedAt = formatTimestamp(job.CreatedAt)
	dto.UpdatedAt = formatTimestamp(job.UpdatedAt)
	return dto
}

// FromJobs converts a slice of job records into API DTOs.
func FromJobs(jobs []*store.Job) []JobSnapshot {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]JobSnapshot, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromEpisode converts an episode record to its API representation.
func FromEpisode(episode *store.Episode) EpisodeSummary {
	if episode == nil {
		return EpisodeSummary{}
	}
	return EpisodeSummary{
		ID:                        episode.ID,
		SeriesID:                  episode.SeriesID,
		EpisodeNumber:             episode.EpisodeNumber,
		Title:                     episode.Title,
		UserPrompt:                episode.UserPrompt,
		ThemeID:                   episode.ThemeID,
		ContinuationFromEpisodeID: episode.ContinuationFromEpisodeID,
		TargetDurationSec:         episode.TargetDurationSec,
		Status:                    episode.Status,
		CreatedAt:                 formatTimestamp(episode.CreatedAt),
	}
}

// FromEpisodes converts a slice of episode records into API DTOs.
func FromEpisodes(episodes []*store.Episode) []EpisodeSummary {
	if len(episodes) == 0 {
		return nil
	}
	out := make([]EpisodeSummary, 0, len(episodes))
	for _, episode := range episodes {
		out = append(out, FromEpisode(episode))
	}
	return out
}

// FromTheme converts a theme record to its API representation.
func FromTheme(theme *store.Theme) ThemeSummary {
	if theme == nil {
		return ThemeSummary{}
	}
	return ThemeSummary{
		ID:          theme.ID,
		Key:         theme.Key,
		Label:       theme.Label,
		Description: theme.Description,
	}
}

// FromCharacter converts a character record to its API representation.
func FromCharacter(character *store.Character) CharacterSummary {
	if character == nil {
		return CharacterSummary{}
	}
	dto := CharacterSummary{
		ID:          character.ID,
		Name:        character.Name,
		SpeechStyle: character.SpeechStyle,
		Description: character.Description,
	}
	if raw := character.TraitsJSON; raw != "" {
		dto.Traits = json.RawMessage(raw)
	}
	return dto
}

// FromSeries converts a series record to its API representation.
func FromSeries(series *store.Series) SeriesSummary {
	if series == nil {
		return SeriesSummary{}
	}
	return SeriesSummary{
		ID:          series.ID,
		Title:       series.Title,
		Description: series.Description,
		Language:    series.Language,
		CreatedAt:   formatTimestamp(series.CreatedAt),
	}
}

// MergeJobStats normalizes job counts so every known status appears, even
// with a zero count.
func MergeJobStats(stats map[store.Status]int) map[string]int {
	merged := make(map[string]int, len(store.AllStatuses()))
	for _, status := range store.AllStatuses() {
		merged[string(status)] = 0
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

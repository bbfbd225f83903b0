package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storyloom/internal/services"
)

const episodeColumns = "id, series_id, episode_number, title, user_prompt, theme_id, " +
	"continuation_from_episode_id, summary, script_text, target_duration_sec, status, created_at"

// EpisodeParams carries the validated inputs for episode creation.
type EpisodeParams struct {
	SeriesID                  int64
	Title                     string
	UserPrompt                string
	ThemeID                   int64
	ContinuationFromEpisodeID *int64
	CharacterIDs              []int64
	TargetDurationSec         int
}

// CreateEpisode inserts an episode and its participant links as one atomic
// transaction. The episode number is computed inside the transaction as one
// more than the current maximum for the series; the UNIQUE constraint on
// (series_id, episode_number) backstops concurrent submissions, and a
// violation surfaces as services.ErrConflict so the caller can retry.
func (s *Store) CreateEpisode(ctx context.Context, params EpisodeParams) (*Episode, error) {
	ctx = ensureContext(ctx)

	var episodeID int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin episode tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var number int
		row := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(episode_number), 0) + 1 FROM episodes WHERE series_id = ?`,
			params.SeriesID,
		)
		if err := row.Scan(&number); err != nil {
			return fmt.Errorf("next episode number: %w", err)
		}

		now := formatTime(time.Now())
		res, err := tx.ExecContext(ctx,
			`INSERT INTO episodes (
                series_id, episode_number, title, user_prompt, theme_id,
                continuation_from_episode_id, target_duration_sec, status, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			params.SeriesID,
			number,
			params.Title,
			params.UserPrompt,
			params.ThemeID,
			nullableID(params.ContinuationFromEpisodeID),
			params.TargetDurationSec,
			EpisodeStatusDraft,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		for _, characterID := range params.CharacterIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO episode_characters (episode_id, character_id, role) VALUES (?, ?, ?)`,
				id, characterID, DefaultParticipantRole,
			); err != nil {
				return fmt.Errorf("insert participant %d: %w", characterID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit episode: %w", err)
		}
		episodeID = id
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrConflict, "store", "create episode",
				"concurrent submission raced on the episode number; retry the request", err)
		}
		return nil, err
	}

	return s.GetEpisode(ctx, episodeID)
}

// GetEpisode fetches one episode by identifier.
func (s *Store) GetEpisode(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// ListRecentEpisodes returns the most recently created episodes.
func (s *Store) ListRecentEpisodes(ctx context.Context, limit int) ([]*Episode, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+episodeColumns+` FROM episodes ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent episodes: %w", err)
	}
	defer rows.Close()

	var out []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, episode)
	}
	return out, rows.Err()
}

// EpisodeParticipants returns the character links for one episode.
func (s *Store) EpisodeParticipants(ctx context.Context, episodeID int64) ([]*Participant, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT episode_id, character_id, role FROM episode_characters WHERE episode_id = ? ORDER BY character_id`,
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("episode participants: %w", err)
	}
	defer rows.Close()

	var out []*Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.EpisodeID, &p.CharacterID, &p.Role); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// CountEpisodes returns the total number of episode rows. Used by tests and
// the daemon status endpoint.
func (s *Store) CountEpisodes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM episodes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	return count, nil
}

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		episode      Episode
		continuation sql.NullInt64
		summary      sql.NullString
		scriptText   sql.NullString
		createdRaw   string
	)
	if err := scanner.Scan(
		&episode.ID,
		&episode.SeriesID,
		&episode.EpisodeNumber,
		&episode.Title,
		&episode.UserPrompt,
		&episode.ThemeID,
		&continuation,
		&summary,
		&scriptText,
		&episode.TargetDurationSec,
		&episode.Status,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if continuation.Valid {
		value := continuation.Int64
		episode.ContinuationFromEpisodeID = &value
	}
	episode.Summary = summary.String
	episode.ScriptText = scriptText.String
	if created, err := parseTimeString(createdRaw); err == nil {
		episode.CreatedAt = created
	}
	return &episode, nil
}

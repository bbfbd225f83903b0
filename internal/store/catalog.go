package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const themeColumns = "id, key, label, description, active, created_at"

const seriesColumns = "id, title, description, language, created_at"

const characterColumns = "id, name, speech_style, traits_json, description, active, created_at"

// GetTheme fetches one theme by identifier.
func (s *Store) GetTheme(ctx context.Context, id int64) (*Theme, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+themeColumns+` FROM themes WHERE id = ?`, id)
	theme, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return theme, nil
}

// ListThemes returns active themes ordered by label.
func (s *Store) ListThemes(ctx context.Context) ([]*Theme, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+themeColumns+` FROM themes WHERE active = 1 ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []*Theme
	for rows.Next() {
		theme, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}
	return themes, rows.Err()
}

// GetSeries fetches one series by identifier.
func (s *Store) GetSeries(ctx context.Context, id int64) (*Series, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+seriesColumns+` FROM story_series WHERE id = ?`, id)
	series, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	return series, nil
}

// ListSeries returns all series ordered by creation date descending.
func (s *Store) ListSeries(ctx context.Context) ([]*Series, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+seriesColumns+` FROM story_series ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var out []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, series)
	}
	return out, rows.Err()
}

// DefaultSeries returns the earliest-created series as the submission fallback.
func (s *Store) DefaultSeries(ctx context.Context) (*Series, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+seriesColumns+` FROM story_series ORDER BY id LIMIT 1`)
	series, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("default series: %w", err)
	}
	return series, nil
}

// ListCharacters returns active characters ordered by name.
func (s *Store) ListCharacters(ctx context.Context) ([]*Character, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+characterColumns+` FROM characters WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []*Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, character)
	}
	return out, rows.Err()
}

// SetCharacterActive flips a character's availability in the selection
// listing. Submissions and existing participations are unaffected.
func (s *Store) SetCharacterActive(ctx context.Context, id int64, active bool) error {
	value := 0
	if active {
		value = 1
	}
	res, err := s.execWithRetry(ctx, `UPDATE characters SET active = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("set character active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set character active: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("character %d not found", id)
	}
	return nil
}

// CharactersByIDs returns all characters matching the given identifiers in
// one batch lookup. Missing identifiers simply do not appear in the result.
func (s *Store) CharactersByIDs(ctx context.Context, ids []int64) ([]*Character, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+characterColumns+` FROM characters WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("characters by ids: %w", err)
	}
	defer rows.Close()

	var out []*Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, character)
	}
	return out, rows.Err()
}

func scanTheme(scanner interface{ Scan(dest ...any) error }) (*Theme, error) {
	var (
		theme      Theme
		active     int
		createdRaw string
	)
	if err := scanner.Scan(&theme.ID, &theme.Key, &theme.Label, &theme.Description, &active, &createdRaw); err != nil {
		return nil, err
	}
	theme.Active = active != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		theme.CreatedAt = created
	}
	return &theme, nil
}

func scanSeries(scanner interface{ Scan(dest ...any) error }) (*Series, error) {
	var (
		series     Series
		createdRaw string
	)
	if err := scanner.Scan(&series.ID, &series.Title, &series.Description, &series.Language, &createdRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		series.CreatedAt = created
	}
	return &series, nil
}

func scanCharacter(scanner interface{ Scan(dest ...any) error }) (*Character, error) {
	var (
		character  Character
		active     int
		createdRaw string
	)
	if err := scanner.Scan(
		&character.ID,
		&character.Name,
		&character.SpeechStyle,
		&character.TraitsJSON,
		&character.Description,
		&active,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	character.Active = active != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		character.CreatedAt = created
	}
	return &character, nil
}

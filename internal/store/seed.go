package store

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Seeded reference data. The catalog contract requires seeding to be
// idempotent: running Seed any number of times yields the same row set.

var seedThemes = []struct {
	Key         string
	Label       string
	Description string
}{
	{"envy", "Envy", "A story about jealousy, comparison, and desire."},
	{"betrayal", "Betrayal", "A story about trust being broken and its consequences."},
	{"love", "Love", "A story about connection, devotion, and emotional growth."},
	{"power", "Power", "A story about influence, responsibility, and control."},
	{"guilt", "Guilt", "A story about remorse and the search for redemption."},
	{"hope", "Hope", "A story about endurance and optimism against odds."},
	{"courage", "Courage", "A story about fear confronted by brave choices."},
	{"loss", "Loss", "A story about grief and adaptation."},
	{"revenge", "Revenge", "A story about retaliation and moral cost."},
	{"forgiveness", "Forgiveness", "A story about healing and letting go."},
}

var seedCharacters = []struct {
	Name        string
	SpeechStyle string
	Description string
	TraitsJSON  string
}{
	{
		Name:        "Elara Quinn",
		SpeechStyle: "Calm and reflective",
		Description: "A strategic navigator who speaks with precise analogies.",
		TraitsJSON:  `{"temperament":"measured","role":"navigator"}`,
	},
	{
		Name:        "Jax Mercer",
		SpeechStyle: "Bold and fast-paced",
		Description: "A risk-taker who turns tension into momentum.",
		TraitsJSON:  `{"temperament":"impulsive","role":"scout"}`,
	},
	{
		Name:        "Nora Vale",
		SpeechStyle: "Warm and empathetic",
		Description: "A mediator who reframes conflict and protects group trust.",
		TraitsJSON:  `{"temperament":"empathetic","role":"mediator"}`,
	},
}

const (
	seedSeriesTitle       = "Default Series"
	seedSeriesDescription = "Initial series for new submissions"
	seedSeriesLanguage    = "en"
)

// SeedResult reports how many rows each seed step inserted.
type SeedResult struct {
	ThemesAdded     int
	CharactersAdded int
	SeriesAdded     int
}

// Seed inserts the fixed reference catalog, skipping rows that already
// exist. Series language tags must be valid BCP 47.
func (s *Store) Seed(ctx context.Context) (SeedResult, error) {
	ctx = ensureContext(ctx)
	var result SeedResult

	now := formatTime(time.Now())

	for _, theme := range seedThemes {
		res, err := s.execWithRetry(ctx,
			`INSERT OR IGNORE INTO themes (key, label, description, active, created_at) VALUES (?, ?, ?, 1, ?)`,
			theme.Key, theme.Label, theme.Description, now,
		)
		if err != nil {
			return result, fmt.Errorf("seed theme %q: %w", theme.Key, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("seed theme %q: %w", theme.Key, err)
		}
		result.ThemesAdded += int(affected)
	}

	existingNames, err := s.characterNames(ctx)
	if err != nil {
		return result, err
	}
	for _, character := range seedCharacters {
		if _, ok := existingNames[character.Name]; ok {
			continue
		}
		if _, err := s.execWithRetry(ctx,
			`INSERT INTO characters (name, speech_style, traits_json, description, active, created_at) VALUES (?, ?, ?, ?, 1, ?)`,
			character.Name, character.SpeechStyle, character.TraitsJSON, character.Description, now,
		); err != nil {
			return result, fmt.Errorf("seed character %q: %w", character.Name, err)
		}
		result.CharactersAdded++
	}

	added, err := s.seedDefaultSeries(ctx, now)
	if err != nil {
		return result, err
	}
	result.SeriesAdded = added

	return result, nil
}

func (s *Store) seedDefaultSeries(ctx context.Context, now string) (int, error) {
	if _, err := language.Parse(seedSeriesLanguage); err != nil {
		return 0, fmt.Errorf("seed series language %q: %w", seedSeriesLanguage, err)
	}

	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM story_series WHERE title = ?`, seedSeriesTitle)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("check default series: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	if _, err := s.execWithRetry(ctx,
		`INSERT INTO story_series (title, description, language, created_at) VALUES (?, ?, ?, ?)`,
		seedSeriesTitle, seedSeriesDescription, seedSeriesLanguage, now,
	); err != nil {
		return 0, fmt.Errorf("seed default series: %w", err)
	}
	return 1, nil
}

func (s *Store) characterNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM characters`)
	if err != nil {
		return nil, fmt.Errorf("list character names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

// CreateSeries inserts a new series row. The language tag must be valid
// BCP 47; it is normalized to its canonical form before insertion.
func (s *Store) CreateSeries(ctx context.Context, title, description, lang string) (*Series, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("series language %q: %w", lang, err)
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO story_series (title, description, language, created_at) VALUES (?, ?, ?, ?)`,
		title, description, tag.String(), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert series: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSeries(ctx, id)
}

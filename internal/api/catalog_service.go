package api

import (
	"context"

	"storyloom/internal/store"
)

// CatalogReader abstracts catalog persistence interactions needed for API
// queries.
type CatalogReader interface {
	ListThemes(ctx context.Context) ([]*store.Theme, error)
	ListCharacters(ctx context.Context) ([]*store.Character, error)
	ListSeries(ctx context.Context) ([]*store.Series, error)
	ListRecentEpisodes(ctx context.Context, limit int) ([]*store.Episode, error)
	GetEpisode(ctx context.Context, id int64) (*store.Episode, error)
	CountEpisodes(ctx context.Context) (int, error)
}

// CatalogService exposes read-only catalog listings returning API DTOs.
type CatalogService struct {
	store CatalogReader
}

// NewCatalogService constructs a CatalogService around the provided reader.
func NewCatalogService(store CatalogReader) *CatalogService {
	if store == nil {
		return nil
	}
	return &CatalogService{store: store}
}

// Themes lists active themes.
func (s *CatalogService) Themes(ctx context.Context) ([]ThemeSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	themes, err := s.store.ListThemes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ThemeSummary, 0, len(themes))
	for _, theme := range themes {
		out = append(out, FromTheme(theme))
	}
	return out, nil
}

// Characters lists active characters.
func (s *CatalogService) Characters(ctx context.Context) ([]CharacterSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	characters, err := s.store.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CharacterSummary, 0, len(characters))
	for _, character := range characters {
		out = append(out, FromCharacter(character))
	}
	return out, nil
}

// Series lists all series, newest first.
func (s *CatalogService) Series(ctx context.Context) ([]SeriesSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	series, err := s.store.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SeriesSummary, 0, len(series))
	for _, item := range series {
		out = append(out, FromSeries(item))
	}
	return out, nil
}

// RecentEpisodes lists the most recently created episodes.
func (s *CatalogService) RecentEpisodes(ctx context.Context, limit int) ([]EpisodeSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	episodes, err := s.store.ListRecentEpisodes(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromEpisodes(episodes), nil
}

// Episode fetches one episode, or nil when the identifier is unknown.
func (s *CatalogService) Episode(ctx context.Context, id int64) (*EpisodeSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	episode, err := s.store.GetEpisode(ctx, id)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, nil
	}
	summary := FromEpisode(episode)
	return &summary, nil
}

// EpisodeCount returns the total number of episodes.
func (s *CatalogService) EpisodeCount(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.CountEpisodes(ctx)
}

package episodes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"storyloom/internal/config"
	"storyloom/internal/logging"
	"storyloom/internal/services"
	"storyloom/internal/store"
)

// Enqueuer hands a freshly created job to the background runner.
type Enqueuer interface {
	Enqueue(jobID int64) error
}

// SubmitRequest carries the raw inputs of one episode submission. Optional
// fields stay nil when the caller omitted them.
type SubmitRequest struct {
	UserPrompt                string  `validate:"required"`
	Title                     string  `validate:"-"`
	ThemeID                   int64   `validate:"required,gt=0"`
	SeriesID                  *int64  `validate:"omitempty,gt=0"`
	ContinuationFromEpisodeID *int64  `validate:"omitempty,gt=0"`
	CharacterIDs              []int64 `validate:"omitempty,dive,gt=0"`
	TargetDurationSec         *int    `validate:"-"`
}

// SubmitResult reports the records a successful submission produced.
type SubmitResult struct {
	Episode *store.Episode
	Job     *store.Job
}

// Service validates submissions, creates the episode transactionally, and
// schedules the generation job.
type Service struct {
	store    *store.Store
	cfg      *config.Config
	enqueuer Enqueuer
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService builds the submission service. The enqueuer may be nil in tests
// that only exercise validation.
func NewService(st *store.Store, cfg *config.Config, enqueuer Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:    st,
		cfg:      cfg,
		enqueuer: enqueuer,
		logger:   logging.NewComponentLogger(logger, "episodes"),
		validate: validator.New(),
	}
}

// Submit runs the full submission pipeline: shape validation, referential
// checks against the catalog, transactional episode creation, then job
// creation and handoff to the runner. Errors are tagged with the sentinel
// that determines the API status code.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	req.UserPrompt = strings.TrimSpace(req.UserPrompt)
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = s.cfg.Episodes.DefaultTitle
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, services.Wrap(services.ErrValidation, "episodes", "submit",
			"request failed shape validation", err)
	}

	duration := s.cfg.Episodes.DefaultDurationSec
	if req.TargetDurationSec != nil {
		duration = *req.TargetDurationSec
	}
	if duration < s.cfg.Episodes.MinDurationSec || duration > s.cfg.Episodes.MaxDurationSec {
		return nil, services.Wrap(services.ErrValidation, "episodes", "submit",
			fmt.Sprintf("target duration %d outside allowed range %d..%d seconds",
				duration, s.cfg.Episodes.MinDurationSec, s.cfg.Episodes.MaxDurationSec), nil)
	}

	theme, err := s.store.GetTheme(ctx, req.ThemeID)
	if err != nil {
		return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "load theme", err)
	}
	if theme == nil || !theme.Active {
		return nil, services.Wrap(services.ErrNotFound, "episodes", "submit",
			fmt.Sprintf("theme %d does not exist or is inactive", req.ThemeID), nil)
	}

	if req.ContinuationFromEpisodeID != nil {
		prior, err := s.store.GetEpisode(ctx, *req.ContinuationFromEpisodeID)
		if err != nil {
			return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "load continuation episode", err)
		}
		if prior == nil {
			return nil, services.Wrap(services.ErrNotFound, "episodes", "submit",
				fmt.Sprintf("continuation episode %d does not exist", *req.ContinuationFromEpisodeID), nil)
		}
	}

	characters, err := s.store.CharactersByIDs(ctx, req.CharacterIDs)
	if err != nil {
		return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "load characters", err)
	}
	// Duplicated identifiers collapse in the batch lookup, so a count mismatch
	// covers both missing and repeated characters. An empty set is valid and
	// produces an episode without participants. Inactive characters stay
	// usable; the active flag only hides them from the selection listing.
	if len(characters) != len(req.CharacterIDs) {
		return nil, services.Wrap(services.ErrNotFound, "episodes", "submit",
			"one or more requested characters do not exist", nil)
	}

	series, err := s.resolveSeries(ctx, req.SeriesID)
	if err != nil {
		return nil, err
	}

	episode, err := s.store.CreateEpisode(ctx, store.EpisodeParams{
		SeriesID:                  series.ID,
		Title:                     req.Title,
		UserPrompt:                req.UserPrompt,
		ThemeID:                   req.ThemeID,
		ContinuationFromEpisodeID: req.ContinuationFromEpisodeID,
		CharacterIDs:              req.CharacterIDs,
		TargetDurationSec:         duration,
	})
	if err != nil {
		return nil, err
	}

	job, err := s.store.CreateJob(ctx, episode.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "create job", err)
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.Enqueue(job.ID); err != nil {
			if _, updateErr := s.store.UpdateJobState(ctx, job.ID, store.StatusFailed, 0, "failed",
				"could not schedule job: "+err.Error()); updateErr != nil {
				s.logger.Warn("failed to mark unscheduled job",
					logging.Int64(logging.FieldJobID, job.ID), logging.Error(updateErr))
			}
			return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "schedule job", err)
		}
	}

	s.logger.Info("submission accepted",
		logging.Int64(logging.FieldEpisodeID, episode.ID),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.Int64(logging.FieldSeriesID, series.ID),
		logging.Int("episode_number", episode.EpisodeNumber))

	return &SubmitResult{Episode: episode, Job: job}, nil
}

// resolveSeries applies the series fallback rule: an explicit identifier must
// exist, otherwise the earliest-created series takes the episode. An empty
// catalog cannot accept submissions at all.
func (s *Service) resolveSeries(ctx context.Context, seriesID *int64) (*store.Series, error) {
	if seriesID != nil {
		series, err := s.store.GetSeries(ctx, *seriesID)
		if err != nil {
			return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "load series", err)
		}
		if series == nil {
			return nil, services.Wrap(services.ErrNotFound, "episodes", "submit",
				fmt.Sprintf("series %d does not exist", *seriesID), nil)
		}
		return series, nil
	}

	series, err := s.store.DefaultSeries(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTaskFailure, "episodes", "submit", "load default series", err)
	}
	if series == nil {
		return nil, services.Wrap(services.ErrInvalidState, "episodes", "submit",
			"no series exist; seed the catalog before submitting", nil)
	}
	return series, nil
}

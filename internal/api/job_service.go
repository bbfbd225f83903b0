package api

import (
	"context"

	"storyloom/internal/store"
)

// JobReader abstracts job persistence interactions needed for API queries.
type JobReader interface {
	GetJob(ctx context.Context, id int64) (*store.Job, error)
	JobsByEpisode(ctx context.Context, episodeID int64) ([]*store.Job, error)
	JobStats(ctx context.Context) (map[store.Status]int, error)
}

// JobService exposes read-only job operations returning API DTOs.
type JobService struct {
	store JobReader
}

// NewJobService constructs a JobService around the provided reader.
func NewJobService(store JobReader) *JobService {
	if store == nil {
		return nil
	}
	return &JobService{store: store}
}

// Describe fetches a single job. Missing jobs return nil, nil.
func (s *JobService) Describe(ctx context.Context, id int64) (*JobSnapshot, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetJob(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	dto := FromJob(job)
	return &dto, nil
}

// ByEpisode lists all jobs for an episode, oldest first.
func (s *JobService) ByEpisode(ctx context.Context, episodeID int64) ([]JobSnapshot, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.JobsByEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Stats returns job summary counts keyed by status string.
func (s *JobService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.JobStats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeJobStats(stats), nil
}

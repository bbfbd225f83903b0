package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const jobColumns = "id, episode_id, type, status, progress_pct, step, error_message, created_at, updated_at"

// InterruptedJobMessage is recorded when a daemon restart finds jobs that
// never reached a terminal state.
const InterruptedJobMessage = "interrupted by daemon restart"

// CreateJob inserts a job in the queued state for an episode.
func (s *Store) CreateJob(ctx context.Context, episodeID int64) (*Job, error) {
	now := formatTime(time.Now())
	res, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (episode_id, type, status, progress_pct, step, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		episodeID,
		JobKindEpisodeGeneration,
		StatusQueued,
		0,
		"queued",
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetJob(ctx, id)
}

// GetJob fetches a job by identifier. Absent jobs return nil, nil.
func (s *Store) GetJob(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// UpdateJobState overwrites the state fields of a job and refreshes its
// updated timestamp. A missing job yields nil, nil rather than an error;
// the runner treats that as ordinary control flow. Progress values are
// clamped to [0, 100] defensively.
func (s *Store) UpdateJobState(ctx context.Context, id int64, status Status, progressPct int, step, errorMessage string) (*Job, error) {
	if progressPct < 0 {
		progressPct = 0
	}
	if progressPct > 100 {
		progressPct = 100
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, progress_pct = ?, step = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		progressPct,
		step,
		nullableString(errorMessage),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update job state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetJob(ctx, id)
}

// JobsByEpisode returns all jobs attached to an episode, oldest first.
func (s *Store) JobsByEpisode(ctx context.Context, episodeID int64) ([]*Job, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE episode_id = ? ORDER BY id`,
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("jobs by episode: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// JobStats returns a count of jobs grouped by status.
func (s *Store) JobStats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// ResetStuckJobs fails jobs a previous daemon process left in a non-terminal
// state. Jobs never resume after a restart, so recording the interruption is
// the only honest terminal transition.
func (s *Store) ResetStuckJobs(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs
         SET status = ?, step = 'failed', error_message = ?, updated_at = ?
         WHERE status IN (?, ?)`,
		StatusFailed,
		InterruptedJobMessage,
		formatTime(time.Now()),
		StatusQueued,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// CountJobs returns the total number of job rows.
func (s *Store) CountJobs(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM jobs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job          Job
		statusStr    string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.EpisodeID,
		&job.Type,
		&statusStr,
		&job.ProgressPct,
		&job.Step,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	job.Status = Status(statusStr)
	job.ErrorMessage = errorMessage.String
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return &job, nil
}

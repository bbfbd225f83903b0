package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storyloom/internal/config"
	"storyloom/internal/logging"
	"storyloom/internal/store"
)

// ShutdownJobMessage is recorded on jobs interrupted by runner shutdown.
const ShutdownJobMessage = "interrupted by daemon shutdown"

type runStep struct {
	status   store.Status
	progress int
	name     string
}

// The fixed generation pipeline. Each transition is preceded by the
// configured step delay that stands in for real work.
var runSteps = []runStep{
	{store.StatusRunning, 25, "validating input"},
	{store.StatusRunning, 60, "assembling context"},
	{store.StatusRunning, 90, "preparing output"},
	{store.StatusCompleted, 100, "completed"},
}

// Runner executes generation jobs in the background. Submissions hand off
// job identifiers through a bounded channel; each job advances through the
// fixed step table until it reaches a terminal state.
type Runner struct {
	store     *store.Store
	logger    *slog.Logger
	stepDelay time.Duration
	capacity  int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	queue   chan int64
}

// NewRunner constructs a runner from configuration.
func NewRunner(cfg *config.Config, st *store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	capacity := cfg.Jobs.QueueCapacity
	if capacity <= 0 {
		capacity = 1
	}
	return &Runner{
		store:     st,
		logger:    logging.NewComponentLogger(logger, "jobs"),
		stepDelay: time.Duration(cfg.Jobs.StepDelayMS) * time.Millisecond,
		capacity:  capacity,
	}
}

// Start begins background processing.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("job runner already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.queue = make(chan int64, r.capacity)

	r.wg.Add(1)
	go r.dispatch(runCtx, r.queue)

	return nil
}

// Stop terminates background processing and waits for in-flight jobs to
// record their terminal state.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}

// Running reports whether the runner accepts work.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Enqueue schedules a job for background execution. It never blocks: a
// stopped runner or a full queue returns an error so the caller can record
// the scheduling failure on the job.
func (r *Runner) Enqueue(jobID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return errors.New("job runner is not running")
	}
	select {
	case r.queue <- jobID:
		return nil
	default:
		return fmt.Errorf("job queue is full (capacity %d)", r.capacity)
	}
}

func (r *Runner) dispatch(ctx context.Context, queue <-chan int64) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-queue:
			r.wg.Add(1)
			go func(id int64) {
				defer r.wg.Done()
				r.runJob(ctx, id)
			}(jobID)
		}
	}
}

// runJob advances one job through the step table. Terminal writes use a
// fresh context so an interrupted job still records its failure after the
// run context is cancelled.
func (r *Runner) runJob(ctx context.Context, jobID int64) {
	logger := r.logger.With(logging.Int64(logging.FieldJobID, jobID))
	logger.Info("job started")

	for _, step := range runSteps {
		select {
		case <-time.After(r.stepDelay):
		case <-ctx.Done():
			r.failJob(jobID, ShutdownJobMessage)
			logger.Info("job interrupted by shutdown")
			return
		}

		job, err := r.store.UpdateJobState(ctx, jobID, step.status, step.progress, step.name, "")
		if err != nil {
			r.failJob(jobID, "step "+step.name+" failed: "+err.Error())
			logger.Error("job step failed",
				logging.String(logging.FieldStep, step.name),
				logging.Error(err))
			return
		}
		if job == nil {
			logger.Warn("job disappeared mid-run",
				logging.String(logging.FieldStep, step.name))
			return
		}
		logger.Info("job advanced",
			logging.String(logging.FieldStatus, string(step.status)),
			logging.String(logging.FieldStep, step.name),
			logging.Int("progress_pct", step.progress))
	}
}

func (r *Runner) failJob(jobID int64, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Preserve whatever progress the job had reached.
	progress := 0
	if job, err := r.store.GetJob(ctx, jobID); err == nil && job != nil {
		progress = job.ProgressPct
	}
	if _, err := r.store.UpdateJobState(ctx, jobID, store.StatusFailed, progress, "failed", message); err != nil {
		r.logger.Error("could not record job failure",
			logging.Int64(logging.FieldJobID, jobID),
			logging.Error(err))
	}
}

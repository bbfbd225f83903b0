package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"storyloom/internal/config"
	"storyloom/internal/episodes"
	"storyloom/internal/jobs"
	"storyloom/internal/logging"
	"storyloom/internal/store"
)

// Daemon coordinates the background services and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	runner  *jobs.Runner
	submit  *episodes.Service
	api     *apiServer
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	DatabasePath  string
	LockFilePath  string
	RunnerRunning bool
	JobStats      map[store.Status]int
	EpisodeCount  int
	JobCount      int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, runner *jobs.Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || runner == nil {
		return nil, errors.New("daemon requires config, store, and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "storyloomd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		runner:   runner,
		submit:   episodes.NewService(st, cfg, runner, logger),
		logPath:  filepath.Join(cfg.Paths.LogDir, "storyloom.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, sweeps jobs a previous process left
// unfinished, and launches the runner and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another storyloom daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if reset, err := d.store.ResetStuckJobs(runCtx); err != nil {
		d.logger.Warn("could not reset interrupted jobs", logging.Error(err))
	} else if reset > 0 {
		d.logger.Info("reset interrupted jobs", logging.Int64("count", reset))
	}

	if err := d.runner.Start(runCtx); err != nil {
		d.releaseLock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start runner: %w", err)
	}

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.runner.Stop()
			d.releaseLock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("storyloom daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	d.runner.Stop()
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("storyloom daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound API listen address, or empty before Start.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status collects daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		DatabasePath:  d.store.Path(),
		LockFilePath:  d.lockPath,
		RunnerRunning: d.runner.Running(),
	}
	if stats, err := d.store.JobStats(ctx); err == nil {
		status.JobStats = stats
	} else {
		d.logger.Warn("could not collect job stats", logging.Error(err))
	}
	if count, err := d.store.CountEpisodes(ctx); err == nil {
		status.EpisodeCount = count
	}
	if count, err := d.store.CountJobs(ctx); err == nil {
		status.JobCount = count
	}
	return status
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}

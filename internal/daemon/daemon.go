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

	"lessonforge/internal/config"
	"lessonforge/internal/logging"
	"lessonforge/internal/pipeline"
	"lessonforge/internal/project"
)

// Daemon coordinates the background pipeline and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *project.Store
	orch   *pipeline.Orchestrator

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	ProjectDBPath string
	LockFilePath  string
	ProjectStats  map[project.Status]int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *project.Store, orch *pipeline.Orchestrator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || orch == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, orchestrator, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "lessonforged.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		orch:     orch,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, repairs orphaned in-flight projects, and
// starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lessonforge daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	reset, err := d.store.ResetStuckGenerating(d.ctx)
	if err != nil {
		d.releaseLock()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return fmt.Errorf("reset stuck projects: %w", err)
	}
	if reset > 0 {
		d.logger.Warn("marked stuck projects failed after restart", logging.Int("count", reset))
	}

	if err := d.api.start(d.ctx); err != nil {
		d.releaseLock()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("lessonforge daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.releaseLock()
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("lessonforge daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listen address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		ProjectDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.ProjectStats = stats
	} else {
		d.logger.Warn("project stats unavailable", logging.Error(err))
	}
	return status
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}

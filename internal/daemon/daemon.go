// Package daemon wraps the orchestrator with process-level concerns: the
// single-instance lock, journal lifecycle, and notifier construction.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"isccd/internal/config"
	"isccd/internal/journal"
	"isccd/internal/logging"
	"isccd/internal/notifications"
	"isccd/internal/omero"
	"isccd/internal/orchestrator"
)

// ErrAlreadyRunning reports that another instance holds the state lock.
var ErrAlreadyRunning = errors.New("another isccd instance is already running")

// Daemon owns the service lifecycle around a single orchestrator run.
type Daemon struct {
	cfg    *config.Config
	client omero.Client
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock
}

// New constructs a daemon. The state lock lives in the configured state
// directory so two instances sharing it exclude each other.
func New(cfg *config.Config, client omero.Client, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || client == nil || logger == nil {
		return nil, errors.New("daemon requires config, client, and logger")
	}

	lockPath := filepath.Join(cfg.Service.StateDir, "isccd.lock")
	return &Daemon{
		cfg:      cfg,
		client:   client,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Run executes the service loop until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	return d.run(ctx, false)
}

// RunOnce executes a single poll-process cycle and exits.
func (d *Daemon) RunOnce(ctx context.Context) error {
	return d.run(ctx, true)
}

func (d *Daemon) run(ctx context.Context, once bool) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release instance lock", logging.Args(logging.Error(err))...)
		}
	}()

	store, err := journal.Open(d.cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			d.logger.Warn("failed to close journal", logging.Args(logging.Error(err))...)
		}
	}()

	orch := orchestrator.New(d.cfg, d.client, store, notifications.NewService(d.cfg), d.logger)
	if once {
		return orch.RunOnce(ctx)
	}
	return orch.Run(ctx)
}

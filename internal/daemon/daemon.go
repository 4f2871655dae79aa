// Package daemon coordinates the arbitration engine's runtime: the
// single-instance lock, the wired-audio jack monitor, and lifecycle
// bracketing for the long-running services.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"btroute/internal/arbiter"
	"btroute/internal/config"
	"btroute/internal/logging"
	"btroute/internal/recency"
)

// Daemon enforces single-instance execution and owns the background
// services' lifecycle.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	mgr    *arbiter.Manager
	store  *recency.Store
	jack   *jackMonitor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	LockFilePath  string
	RecencyDBPath string
	WiredMonitor  bool
	Engine        arbiter.Snapshot
}

// New constructs a daemon with initialized dependencies. The recency store
// may be nil when the deployment runs without a connectivity database.
func New(cfg *config.Config, store *recency.Store, logger *slog.Logger, mgr *arbiter.Manager) (*Daemon, error) {
	if cfg == nil || logger == nil || mgr == nil {
		return nil, errors.New("daemon requires config, logger, and arbitration manager")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "btrouted.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		mgr:      mgr,
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	if cfg.WiredJack.Enabled {
		d.jack = newJackMonitor(logger, mgr.WiredAudioDeviceConnected)
	}
	return d, nil
}

// Start acquires the daemon lock and launches the engine and monitors.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another btroute daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.mgr.Start(); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start arbitration engine: %w", err)
	}
	if d.jack != nil {
		// Jack monitoring is best effort; the wired trigger stays reachable
		// over IPC if netlink is unavailable.
		if err := d.jack.Start(d.ctx); err != nil {
			d.logger.Warn("wired jack monitor unavailable", logging.Error(err))
		}
	}

	d.running.Store(true)
	d.logger.Info("btroute daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.jack != nil {
		d.jack.Stop()
	}
	d.mgr.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("btroute daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Manager exposes the arbitration engine for the IPC layer.
func (d *Daemon) Manager() *arbiter.Manager {
	return d.mgr
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	s := Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		WiredMonitor: d.jack.Running(),
		Engine:       d.mgr.Snapshot(),
	}
	if d.store != nil {
		s.RecencyDBPath = d.store.Path()
	}
	return s
}

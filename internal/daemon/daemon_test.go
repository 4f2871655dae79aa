package daemon_test

import (
	"context"
	"testing"

	"btroute/internal/arbiter"
	"btroute/internal/config"
	"btroute/internal/daemon"
	"btroute/internal/event"
	"btroute/internal/logging"
	"btroute/internal/profiles"
	"btroute/internal/testsupport"
)

func newManager(t *testing.T, cfg *config.Config) (*arbiter.Manager, *event.Bus) {
	t.Helper()
	bus := event.NewBus(cfg.Arbiter.QueueSize)
	mgr, err := arbiter.New(arbiter.Options{
		Config: cfg,
		Bus:    bus,
		Services: profiles.Services{
			ClassicMedia: &testsupport.FakeMediaService{},
			ClassicCall:  &testsupport.FakeCallService{},
		},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr, bus
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.WiredJack.Enabled = false
	mgr, bus := newManager(t, cfg)
	defer bus.Shutdown()

	d, err := daemon.New(cfg, nil, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon not running after Start")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("status reports not running")
	}
	if status.LockFilePath == "" {
		t.Fatal("status missing lock path")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if d.Running() {
		t.Fatal("daemon still running after Close")
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.WiredJack.Enabled = false
	mgr, bus := newManager(t, cfg)
	defer bus.Shutdown()

	first, err := daemon.New(cfg, nil, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = first.Close() }()

	mgr2, bus2 := newManager(t, cfg)
	defer bus2.Shutdown()
	second, err := daemon.New(cfg, nil, logging.NewNop(), mgr2)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be refused")
	}
}

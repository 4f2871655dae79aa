package ipc_test

import (
	"context"
	"testing"

	"btroute/internal/arbiter"
	"btroute/internal/daemon"
	"btroute/internal/device"
	"btroute/internal/event"
	"btroute/internal/ipc"
	"btroute/internal/logging"
	"btroute/internal/profiles"
	"btroute/internal/testsupport"
)

func TestServerRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.WiredJack.Enabled = false
	bus := event.NewBus(cfg.Arbiter.QueueSize)
	defer bus.Shutdown()

	media := &testsupport.FakeMediaService{}
	mgr, err := arbiter.New(arbiter.Options{
		Config: cfg,
		Bus:    bus,
		Services: profiles.Services{
			ClassicMedia: media,
			ClassicCall:  &testsupport.FakeCallService{},
		},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	d, err := daemon.New(cfg, nil, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	defer func() { _ = d.Close() }()

	srv, err := ipc.NewServer(context.Background(), cfg.Paths.SocketPath, d, logging.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.Serve()
	defer srv.Close()

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = client.Close() }()

	addr := device.MustParseMAC("AA:BB:CC:DD:EE:FF")
	topic, _ := event.TopicForProfile(device.ProfileClassicMedia)
	bus.Publish(topic, event.Signal{
		Kind:     event.SignalConnectionState,
		Profile:  device.ProfileClassicMedia,
		Addr:     addr,
		NewState: event.StateConnected,
	})
	mgr.Sync()

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running {
		t.Fatal("status reports not running")
	}
	if got := status.Active[device.RoleClassicMedia.String()]; got != addr.String() {
		t.Fatalf("status active media = %q, want %q", got, addr)
	}

	devices, err := client.Devices()
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if got := devices.Active[device.RoleClassicMedia.String()]; got != addr.String() {
		t.Fatalf("devices active media = %q, want %q", got, addr)
	}

	wired, err := client.Wired()
	if err != nil {
		t.Fatalf("wired: %v", err)
	}
	if !wired.Triggered {
		t.Fatal("wired trigger not acknowledged")
	}
	mgr.Sync()
	if got := mgr.ActiveDevice(device.RoleClassicMedia); !got.IsNil() {
		t.Fatalf("media still active after wired trigger: %v", got)
	}

	stopped, err := client.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !stopped.Stopped {
		t.Fatal("stop not acknowledged")
	}
	if d.Running() {
		t.Fatal("daemon still running after IPC stop")
	}
}

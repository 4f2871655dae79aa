package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"btroute/internal/logging"
)

// jackMonitor listens for udev netlink events and fires the wired-audio
// trigger when a headphone or headset jack appears. This removes the need
// for udev rules that shell out to the CLI.
type jackMonitor struct {
	logger  *slog.Logger
	trigger func()

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newJackMonitor(logger *slog.Logger, trigger func()) *jackMonitor {
	return &jackMonitor{
		logger:  logging.NewComponentLogger(logger, "jack-monitor"),
		trigger: trigger,
	}
}

// Start begins listening for udev netlink events.
func (m *jackMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return fmt.Errorf("connect netlink socket: %w", err)
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("wired jack monitor started",
		logging.String(logging.FieldEventType, "jack_monitor_started"))
	return nil
}

// Stop shuts down the monitor.
func (m *jackMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("wired jack monitor stopped",
		logging.String(logging.FieldEventType, "jack_monitor_stopped"))
}

// Running reports whether the monitor is active.
func (m *jackMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *jackMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, jackMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "wired jack detection may be affected"))
		}
	}
}

// jackMatcher matches headphone and headset jack input devices appearing.
func jackMatcher() netlink.Matcher {
	action := "add|change"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "input",
			"NAME":      ".*(Headphone|Headset).*",
		},
	})
	return rules
}

func (m *jackMonitor) handleEvent(uevent netlink.UEvent) {
	m.logger.Info("wired audio jack detected",
		logging.String(logging.FieldEventType, "wired_jack_detected"),
		logging.String("kobj", uevent.KObj),
		logging.String("action", string(uevent.Action)))
	m.trigger()
}

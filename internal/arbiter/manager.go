package arbiter

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"btroute/internal/audiomode"
	"btroute/internal/config"
	"btroute/internal/device"
	"btroute/internal/event"
	"btroute/internal/logging"
	"btroute/internal/profiles"
)

// RecencyStore is the connectivity database the engine records into and the
// resolver queries for tie-breaks. May be nil, which disables both.
type RecencyStore interface {
	RecencyQuerier
	RecordConnected(ctx context.Context, addr device.MacAddress) error
	RecordDisconnected(ctx context.Context, addr device.MacAddress) error
}

// Options configures a Manager.
type Options struct {
	Config   *config.Config
	Bus      *event.Bus
	Logger   *slog.Logger
	Services profiles.Services
	Recency  RecencyStore
}

// Snapshot is a point-in-time copy of the arbitration state for external
// readers.
type Snapshot struct {
	Mode   audiomode.Mode
	Active [device.NumRoles]device.MacAddress
	Marked []device.MacAddress
}

// Manager runs the arbitration engine: one worker consuming the event bus in
// publication order, feeding the resolver and dispatcher.
type Manager struct {
	cfg     *config.Config
	bus     *event.Bus
	log     *slog.Logger
	res     *resolver
	disp    *dispatcher
	recency RecencyStore

	topics []event.Topic
	ch     chan event.Signal

	mu   sync.RWMutex
	snap Snapshot

	syncMu  sync.Mutex
	syncAck chan struct{}
	done    chan struct{}

	wg      sync.WaitGroup
	started atomic.Bool
}

// New builds a Manager. The services present in opts.Services decide which
// profile topics the engine subscribes to; a group without a collaborator is
// absent from the priority model for the run.
func New(opts Options) (*Manager, error) {
	if opts.Config == nil {
		return nil, errors.New("arbiter: config required")
	}
	if opts.Bus == nil {
		return nil, errors.New("arbiter: event bus required")
	}
	svc := opts.Services
	if svc.ClassicMedia == nil && svc.ClassicCall == nil && svc.HearingAid == nil && svc.LEAudio == nil {
		return nil, errors.New("arbiter: no profile collaborators enabled")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	m := &Manager{
		cfg:     opts.Config,
		bus:     opts.Bus,
		log:     logging.NewComponentLogger(logger, "arbiter"),
		res:     newResolver(svc, opts.Recency, logger),
		disp:    newDispatcher(svc, opts.Config.Arbiter.DedupeCommands, logger),
		recency: opts.Recency,
		syncAck: make(chan struct{}),
		done:    make(chan struct{}),
	}

	if svc.ClassicMedia != nil {
		m.topics = append(m.topics, event.TopicClassicMedia)
	}
	if svc.ClassicCall != nil {
		m.topics = append(m.topics, event.TopicClassicCall)
	}
	if svc.HearingAid != nil {
		m.topics = append(m.topics, event.TopicHearingAid)
	}
	if svc.LEAudio != nil {
		m.topics = append(m.topics, event.TopicLEAudio, event.TopicLEHearingAid)
	}
	m.topics = append(m.topics, event.TopicAudioMode, event.TopicWiredAudio, event.TopicSync)
	return m, nil
}

// Start subscribes to the inbound topics and launches the worker.
func (m *Manager) Start() error {
	select {
	case <-m.done:
		return errors.New("arbiter: manager is stopped")
	default:
	}
	if !m.started.CompareAndSwap(false, true) {
		return errors.New("arbiter: already started")
	}
	m.ch = m.bus.Subscribe(m.topics...)
	m.publishSnapshot()

	m.wg.Add(1)
	go m.run()

	m.log.Info("arbitration engine started",
		logging.Int("topics", len(m.topics)),
		logging.Bool("dedupe", m.cfg.Arbiter.DedupeCommands))
	return nil
}

// Stop releases any pending Sync, unsubscribes from the bus, and waits for
// the worker to drain. A stopped manager cannot be restarted.
func (m *Manager) Stop() {
	if !m.started.CompareAndSwap(true, false) {
		return
	}
	close(m.done)
	m.bus.Unsubscribe(m.ch, m.topics...)
	m.wg.Wait()
	m.log.Info("arbitration engine stopped")
}

func (m *Manager) run() {
	defer m.wg.Done()
	for sig := range m.ch {
		if sig.Kind == event.SignalSync {
			// The waiter may have been released by Stop already; never block
			// the drain on an unclaimed sentinel.
			select {
			case m.syncAck <- struct{}{}:
			case <-m.done:
			}
			continue
		}
		ev, reason, ok := classify(sig)
		if !ok {
			if reason != "" {
				m.log.Warn("dropping malformed signal",
					logging.String(logging.FieldEventType, sig.Kind.String()),
					logging.String("reason", reason))
			}
			continue
		}

		m.record(ev)
		cmds := m.res.resolve(ev)
		m.disp.dispatch(ev.ID, cmds)
		m.publishSnapshot()

		m.log.Debug("event resolved",
			logging.String(logging.FieldEventID, ev.ID.String()),
			logging.String(logging.FieldEventType, ev.Kind.String()),
			logging.String(logging.FieldDevice, ev.Addr.String()),
			logging.String(logging.FieldGroup, ev.Group.String()),
			logging.Int("commands", len(cmds)))
	}
}

// record maintains the connectivity database as devices come and go.
func (m *Manager) record(ev event.Event) {
	if m.recency == nil || ev.Addr.IsNil() {
		return
	}
	var err error
	switch ev.Kind {
	case event.KindConnected:
		err = m.recency.RecordConnected(context.Background(), ev.Addr)
	case event.KindDisconnected:
		err = m.recency.RecordDisconnected(context.Background(), ev.Addr)
	default:
		return
	}
	if err != nil {
		m.log.Warn("recency record failed",
			logging.Error(err),
			logging.String(logging.FieldDevice, ev.Addr.String()),
			logging.String(logging.FieldImpact, "fallback tie-break may pick an older device"))
	}
}

func (m *Manager) publishSnapshot() {
	snap := Snapshot{
		Mode:   m.res.mode,
		Active: m.res.active,
	}
	for addr := range m.res.marks {
		snap.Marked = append(snap.Marked, addr)
	}
	sort.Slice(snap.Marked, func(i, j int) bool {
		return snap.Marked[i].String() < snap.Marked[j].String()
	})

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
}

// Snapshot returns a copy of the current arbitration state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := m.snap
	snap.Marked = append([]device.MacAddress(nil), m.snap.Marked...)
	return snap
}

// ActiveDevice returns the device holding the role, or nil.
func (m *Manager) ActiveDevice(role device.Role) device.MacAddress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(role) >= device.NumRoles {
		return device.MacAddress{}
	}
	return m.snap.Active[role]
}

// WiredAudioDeviceConnected yields all Bluetooth routing to wired audio. The
// trigger rides the ordered queue like any other signal.
func (m *Manager) WiredAudioDeviceConnected() {
	m.bus.Publish(event.TopicWiredAudio, event.Signal{Kind: event.SignalWiredAudio})
}

// Sync blocks until every signal published before the call has been
// processed. Intended for tests and the IPC status path.
func (m *Manager) Sync() {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	if !m.started.Load() {
		return
	}
	m.bus.Publish(event.TopicSync, event.Signal{Kind: event.SignalSync})
	select {
	case <-m.syncAck:
	case <-m.done:
	}
}

package profiles

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"btroute/internal/config"
	"btroute/internal/device"
	"btroute/internal/event"
	"btroute/internal/logging"
)

const (
	bluezName          = "org.bluez"
	deviceIface        = "org.bluez.Device1"
	mediaControlIface  = "org.bluez.MediaControl1"
	objectManagerIface = "org.freedesktop.DBus.ObjectManager"
	propertiesIface    = "org.freedesktop.DBus.Properties"
)

// Well-known service UUIDs that identify which profile a remote device
// carries. LE hearing aid capability is advertised through the Hearing
// Access Service and surfaces as availability rather than a connection.
var profileUUIDs = map[string]device.Profile{
	"0000110b-0000-1000-8000-00805f9b34fb": device.ProfileClassicMedia, // A2DP sink
	"0000111e-0000-1000-8000-00805f9b34fb": device.ProfileClassicCall,  // HFP hands-free
	"0000fdf0-0000-1000-8000-00805f9b34fb": device.ProfileHearingAid,   // ASHA
	"0000184e-0000-1000-8000-00805f9b34fb": device.ProfileLEAudio,      // ASCS
	"00001854-0000-1000-8000-00805f9b34fb": device.ProfileLEHearingAid, // HAS
}

type bluezDevice struct {
	addr  device.MacAddress
	uuids device.Membership
	// connected holds the profile bits currently reported up the bus, so
	// state flaps translate into exactly one signal per edge.
	connected device.Membership
}

// BlueZ bridges the org.bluez service to the event bus and implements the
// collaborator interfaces on top of D-Bus device objects.
type BlueZ struct {
	conn    *dbus.Conn
	bus     *event.Bus
	log     *slog.Logger
	adapter string

	mu      sync.Mutex
	devices map[dbus.ObjectPath]*bluezDevice
	// recent orders connected addresses per profile, most recent first.
	// FallbackDevice walks it.
	recent map[device.Profile][]device.MacAddress

	sigCh chan *dbus.Signal
	done  chan struct{}
}

// Connect attaches to the system bus, snapshots the managed objects under
// the configured adapter, and starts mirroring BlueZ state onto the event
// bus.
func Connect(cfg *config.Config, bus *event.Bus, logger *slog.Logger) (*BlueZ, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	b := &BlueZ{
		conn:    conn,
		bus:     bus,
		log:     logging.NewComponentLogger(logger, "bluez"),
		adapter: cfg.BlueZ.Adapter,
		devices: make(map[dbus.ObjectPath]*bluezDevice),
		recent:  make(map[device.Profile][]device.MacAddress),
		sigCh:   make(chan *dbus.Signal, 64),
		done:    make(chan struct{}),
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchSender(bluezName),
		dbus.WithMatchInterface(objectManagerIface),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("match object manager signals: %w", err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchSender(bluezName),
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("match property signals: %w", err)
	}

	if err := b.snapshot(); err != nil {
		conn.Close()
		return nil, err
	}

	conn.Signal(b.sigCh)
	go b.run()

	b.log.Info("bluez bridge started",
		logging.String("adapter", b.adapter),
		logging.Int("devices", len(b.devices)))
	return b, nil
}

// Services returns the collaborator set for the groups the configuration
// enables. Disabled groups come back nil.
func (b *BlueZ) Services(cfg *config.Config) Services {
	var svc Services
	if cfg.Profiles.ClassicMedia {
		svc.ClassicMedia = mediaAdapter{b}
	}
	if cfg.Profiles.ClassicCall {
		svc.ClassicCall = callAdapter{b}
	}
	if cfg.Profiles.HearingAid {
		svc.HearingAid = hearingAidAdapter{b}
	}
	if cfg.Profiles.LEAudio {
		svc.LEAudio = leAudioAdapter{b}
	}
	return svc
}

// Close stops the signal pump and releases the bus connection.
func (b *BlueZ) Close() error {
	close(b.done)
	b.conn.RemoveSignal(b.sigCh)
	return b.conn.Close()
}

func (b *BlueZ) snapshot() error {
	var managed map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	obj := b.conn.Object(bluezName, "/")
	if err := obj.Call(objectManagerIface+".GetManagedObjects", 0).Store(&managed); err != nil {
		return fmt.Errorf("get managed objects: %w", err)
	}
	for path, ifaces := range managed {
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		b.upsertDevice(path, props)
	}
	return nil
}

func (b *BlueZ) run() {
	for {
		select {
		case <-b.done:
			return
		case sig, ok := <-b.sigCh:
			if !ok {
				return
			}
			b.handleSignal(sig)
		}
	}
}

func (b *BlueZ) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case objectManagerIface + ".InterfacesAdded":
		if len(sig.Body) < 2 {
			return
		}
		path, _ := sig.Body[0].(dbus.ObjectPath)
		ifaces, _ := sig.Body[1].(map[string]map[string]dbus.Variant)
		if props, ok := ifaces[deviceIface]; ok {
			b.upsertDevice(path, props)
		}
	case objectManagerIface + ".InterfacesRemoved":
		if len(sig.Body) < 1 {
			return
		}
		path, _ := sig.Body[0].(dbus.ObjectPath)
		b.removeDevice(path)
	case propertiesIface + ".PropertiesChanged":
		if len(sig.Body) < 2 {
			return
		}
		iface, _ := sig.Body[0].(string)
		if iface != deviceIface {
			return
		}
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		b.applyProperties(sig.Path, changed)
	}
}

func (b *BlueZ) upsertDevice(path dbus.ObjectPath, props map[string]dbus.Variant) {
	raw, ok := props["Address"]
	if !ok {
		return
	}
	str, _ := raw.Value().(string)
	addr, err := device.ParseMAC(str)
	if err != nil {
		b.log.Warn("skipping device with unparsable address",
			logging.String("path", string(path)),
			logging.Error(err))
		return
	}

	b.mu.Lock()
	dev, ok := b.devices[path]
	if !ok {
		dev = &bluezDevice{addr: addr}
		b.devices[path] = dev
	}
	b.mu.Unlock()

	b.applyProperties(path, props)
}

func (b *BlueZ) removeDevice(path dbus.ObjectPath) {
	b.mu.Lock()
	dev, ok := b.devices[path]
	if ok {
		delete(b.devices, path)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	b.markDisconnected(dev, dev.connected)
}

func (b *BlueZ) applyProperties(path dbus.ObjectPath, props map[string]dbus.Variant) {
	b.mu.Lock()
	dev, ok := b.devices[path]
	if !ok {
		b.mu.Unlock()
		return
	}

	if raw, ok := props["UUIDs"]; ok {
		uuids, _ := raw.Value().([]string)
		dev.uuids = 0
		for _, u := range uuids {
			if p, ok := profileUUIDs[u]; ok {
				dev.uuids = dev.uuids.With(p)
			}
		}
	}

	var up, down device.Membership
	if raw, ok := props["Connected"]; ok {
		connected, _ := raw.Value().(bool)
		if connected {
			up = dev.uuids &^ dev.connected
			dev.connected = dev.uuids
		} else {
			down = dev.connected
			dev.connected = 0
		}
	}
	b.mu.Unlock()

	if up != 0 {
		b.markConnected(dev, up)
	}
	if down != 0 {
		b.markDisconnected(dev, down)
	}
}

func (b *BlueZ) markConnected(dev *bluezDevice, bits device.Membership) {
	for _, p := range orderedProfiles {
		if !bits.Has(p) {
			continue
		}
		b.mu.Lock()
		b.recent[p] = moveToFront(b.recent[p], dev.addr)
		b.mu.Unlock()

		topic, _ := event.TopicForProfile(p)
		kind := event.SignalConnectionState
		if p == device.ProfileLEHearingAid {
			kind = event.SignalAvailable
		}
		b.bus.Publish(topic, event.Signal{
			Kind:      kind,
			Profile:   p,
			Addr:      dev.addr,
			PrevState: event.StateDisconnected,
			NewState:  event.StateConnected,
		})
	}
}

func (b *BlueZ) markDisconnected(dev *bluezDevice, bits device.Membership) {
	for _, p := range orderedProfiles {
		if !bits.Has(p) {
			continue
		}
		b.mu.Lock()
		b.recent[p] = remove(b.recent[p], dev.addr)
		b.mu.Unlock()

		topic, _ := event.TopicForProfile(p)
		kind := event.SignalConnectionState
		if p == device.ProfileLEHearingAid {
			kind = event.SignalAvailable
		}
		b.bus.Publish(topic, event.Signal{
			Kind:      kind,
			Profile:   p,
			Addr:      dev.addr,
			PrevState: event.StateConnected,
			NewState:  event.StateDisconnected,
		})
	}
}

var orderedProfiles = [...]device.Profile{
	device.ProfileClassicMedia,
	device.ProfileClassicCall,
	device.ProfileHearingAid,
	device.ProfileLEAudio,
	device.ProfileLEHearingAid,
}

func moveToFront(list []device.MacAddress, addr device.MacAddress) []device.MacAddress {
	list = remove(list, addr)
	return append([]device.MacAddress{addr}, list...)
}

func remove(list []device.MacAddress, addr device.MacAddress) []device.MacAddress {
	out := list[:0]
	for _, a := range list {
		if a != addr {
			out = append(out, a)
		}
	}
	return out
}

// pathFor resolves the object path of a connected device by address.
func (b *BlueZ) pathFor(addr device.MacAddress) (dbus.ObjectPath, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for path, dev := range b.devices {
		if dev.addr == addr {
			return path, true
		}
	}
	return "", false
}

// setActive routes the profile's audio to addr by selecting the device's
// transport, then acknowledges the switch back over the event bus the way
// the stack would. A nil addr is a clear; BlueZ has no deactivate call, so
// the routing follows whichever transport is selected next and only the
// acknowledgement is emitted.
func (b *BlueZ) setActive(p device.Profile, addr device.MacAddress) bool {
	if !addr.IsNil() {
		path, ok := b.pathFor(addr)
		if !ok {
			b.log.Warn("cannot activate unknown device",
				logging.String(logging.FieldDevice, addr.String()),
				logging.String("profile", p.String()))
			return false
		}
		if err := b.selectTransport(p, path); err != nil {
			b.log.Error("transport selection failed",
				logging.String(logging.FieldDevice, addr.String()),
				logging.String("profile", p.String()),
				logging.Error(err))
			return false
		}
	}

	topic, _ := event.TopicForProfile(p)
	b.bus.Publish(topic, event.Signal{
		Kind:    event.SignalActiveDevice,
		Profile: p,
		Addr:    addr,
	})
	return true
}

func (b *BlueZ) selectTransport(p device.Profile, path dbus.ObjectPath) error {
	obj := b.conn.Object(bluezName, path)
	switch p {
	case device.ProfileClassicMedia:
		return obj.Call(mediaControlIface+".Play", 0).Err
	case device.ProfileClassicCall, device.ProfileHearingAid, device.ProfileLEAudio:
		uuid := uuidFor(p)
		if uuid == "" {
			return errors.New("no service uuid for profile")
		}
		return obj.Call(deviceIface+".ConnectProfile", 0, uuid).Err
	default:
		return fmt.Errorf("profile %s cannot carry audio", p)
	}
}

func uuidFor(p device.Profile) string {
	for u, mapped := range profileUUIDs {
		if mapped == p {
			return u
		}
	}
	return ""
}

// fallbackFor returns the most recently connected device still up on the
// profile, or nil.
func (b *BlueZ) fallbackFor(p device.Profile) device.MacAddress {
	b.mu.Lock()
	defer b.mu.Unlock()
	if list := b.recent[p]; len(list) > 0 {
		return list[0]
	}
	return device.MacAddress{}
}

type mediaAdapter struct{ b *BlueZ }

func (a mediaAdapter) SetActive(addr device.MacAddress, _ bool) bool {
	return a.b.setActive(device.ProfileClassicMedia, addr)
}

func (a mediaAdapter) FallbackDevice() device.MacAddress {
	return a.b.fallbackFor(device.ProfileClassicMedia)
}

type callAdapter struct{ b *BlueZ }

func (a callAdapter) SetActive(addr device.MacAddress) bool {
	return a.b.setActive(device.ProfileClassicCall, addr)
}

func (a callAdapter) FallbackDevice() device.MacAddress {
	return a.b.fallbackFor(device.ProfileClassicCall)
}

type hearingAidAdapter struct{ b *BlueZ }

func (a hearingAidAdapter) SetActive(addr device.MacAddress, _ bool) bool {
	return a.b.setActive(device.ProfileHearingAid, addr)
}

type leAudioAdapter struct{ b *BlueZ }

func (a leAudioAdapter) SetActive(addr device.MacAddress, _ bool) bool {
	return a.b.setActive(device.ProfileLEAudio, addr)
}

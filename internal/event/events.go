package event

import (
	"github.com/google/uuid"

	"btroute/internal/audiomode"
	"btroute/internal/device"
)

// ConnState is a profile connection state as reported by a collaborator.
// Only transitions into and out of StateConnected matter to arbitration.
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

var connStateNames = map[ConnState]string{
	StateDisconnected:  "disconnected",
	StateConnecting:    "connecting",
	StateConnected:     "connected",
	StateDisconnecting: "disconnecting",
}

func (s ConnState) String() string {
	if name, ok := connStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// SignalKind discriminates the raw inbound signal payloads.
type SignalKind uint8

const (
	SignalConnectionState SignalKind = iota
	SignalActiveDevice
	SignalAvailable
	SignalAudioMode
	SignalWiredAudio
	// SignalSync is a queue-flush sentinel. It rides the same subscription
	// channel as real signals, so its arrival proves every signal published
	// before it has been consumed. Sync on the engine publishes one and
	// waits for the worker's acknowledgement.
	SignalSync
)

var signalKindNames = map[SignalKind]string{
	SignalConnectionState: "connection-state",
	SignalActiveDevice:    "active-device",
	SignalAvailable:       "available",
	SignalAudioMode:       "audio-mode",
	SignalWiredAudio:      "wired-audio",
	SignalSync:            "sync",
}

func (k SignalKind) String() string {
	if name, ok := signalKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Signal is a raw inbound notification before classification. Fields beyond
// Kind are populated per kind: connection-state signals carry Profile, Addr,
// and the state pair; active-device signals carry Profile and Addr (Addr may
// be nil, meaning the collaborator cleared its active device); availability
// signals carry Addr; audio-mode signals carry Mode; wired-audio signals
// carry nothing.
type Signal struct {
	Kind      SignalKind
	Profile   device.Profile
	Addr      device.MacAddress
	PrevState ConnState
	NewState  ConnState
	Mode      audiomode.Mode
}

// Kind classifies a normalized arbitration event.
type Kind uint8

const (
	KindConnected Kind = iota
	KindDisconnected
	KindActiveChanged
	KindAvailable
	KindUnavailable
	KindAudioModeChanged
	KindWiredAudioConnected
)

var kindNames = map[Kind]string{
	KindConnected:           "connected",
	KindDisconnected:        "disconnected",
	KindActiveChanged:       "active-changed",
	KindAvailable:           "available",
	KindUnavailable:         "unavailable",
	KindAudioModeChanged:    "audio-mode-changed",
	KindWiredAudioConnected: "wired-audio-connected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a classified, normalized arbitration event as consumed by the
// priority resolver. ID tags the event for log correlation.
type Event struct {
	ID      uuid.UUID
	Kind    Kind
	Profile device.Profile
	Group   device.Group
	Addr    device.MacAddress
	Mode    audiomode.Mode
}

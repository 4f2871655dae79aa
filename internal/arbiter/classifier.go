package arbiter

import (
	"github.com/google/uuid"

	"btroute/internal/device"
	"btroute/internal/event"
)

// classify normalizes a raw bus signal into a typed arbitration event. The
// boolean is false for signals the resolver never sees: intermediate
// connection states, and malformed payloads, which come back with a reason
// for the drop log.
func classify(sig event.Signal) (event.Event, string, bool) {
	ev := event.Event{
		ID:      uuid.New(),
		Profile: sig.Profile,
		Group:   sig.Profile.Group(),
		Addr:    sig.Addr,
		Mode:    sig.Mode,
	}

	switch sig.Kind {
	case event.SignalConnectionState:
		if sig.Addr.IsNil() {
			return event.Event{}, "connection state without device", false
		}
		if ev.Group == device.GroupUnknown {
			return event.Event{}, "connection state for unknown profile", false
		}
		switch sig.NewState {
		case event.StateConnected:
			ev.Kind = event.KindConnected
		case event.StateDisconnected:
			if sig.PrevState == event.StateDisconnected {
				return event.Event{}, "", false
			}
			ev.Kind = event.KindDisconnected
		default:
			// Connecting and Disconnecting never reach the resolver.
			return event.Event{}, "", false
		}
		// LE hearing aid capability is an availability channel, not a
		// connection the engine routes.
		if sig.Profile == device.ProfileLEHearingAid {
			if ev.Kind == event.KindConnected {
				ev.Kind = event.KindAvailable
			} else {
				ev.Kind = event.KindUnavailable
			}
		}
		return ev, "", true

	case event.SignalActiveDevice:
		if ev.Group == device.GroupUnknown {
			return event.Event{}, "active device for unknown profile", false
		}
		if sig.Profile == device.ProfileLEHearingAid {
			return event.Event{}, "active device on availability channel", false
		}
		ev.Kind = event.KindActiveChanged
		return ev, "", true

	case event.SignalAvailable:
		if sig.Addr.IsNil() {
			return event.Event{}, "availability without device", false
		}
		if sig.NewState == event.StateDisconnected {
			ev.Kind = event.KindUnavailable
		} else {
			ev.Kind = event.KindAvailable
		}
		ev.Profile = device.ProfileLEHearingAid
		ev.Group = device.GroupLEAudio
		return ev, "", true

	case event.SignalAudioMode:
		ev.Kind = event.KindAudioModeChanged
		ev.Profile = device.ProfileUnknown
		ev.Group = device.GroupUnknown
		return ev, "", true

	case event.SignalWiredAudio:
		ev.Kind = event.KindWiredAudioConnected
		ev.Profile = device.ProfileUnknown
		ev.Group = device.GroupUnknown
		return ev, "", true

	default:
		return event.Event{}, "unrecognized signal kind", false
	}
}

package arbiter

import (
	"testing"

	"btroute/internal/device"
	"btroute/internal/event"
)

func TestClassifyDropsIntermediateStates(t *testing.T) {
	addr := device.MustParseMAC("00:11:22:33:44:55")
	for _, state := range []event.ConnState{event.StateConnecting, event.StateDisconnecting} {
		_, _, ok := classify(event.Signal{
			Kind:     event.SignalConnectionState,
			Profile:  device.ProfileClassicMedia,
			Addr:     addr,
			NewState: state,
		})
		if ok {
			t.Fatalf("transition to %v should be dropped", state)
		}
	}
}

func TestClassifyRejectsMissingDevice(t *testing.T) {
	_, reason, ok := classify(event.Signal{
		Kind:     event.SignalConnectionState,
		Profile:  device.ProfileClassicMedia,
		NewState: event.StateConnected,
	})
	if ok {
		t.Fatal("connection state without device should be rejected")
	}
	if reason == "" {
		t.Fatal("rejection should carry a reason for the drop log")
	}
}

func TestClassifyMapsHearingAidCapabilityToAvailability(t *testing.T) {
	addr := device.MustParseMAC("00:11:22:33:44:55")
	ev, _, ok := classify(event.Signal{
		Kind:     event.SignalConnectionState,
		Profile:  device.ProfileLEHearingAid,
		Addr:     addr,
		NewState: event.StateConnected,
	})
	if !ok {
		t.Fatal("capability connection should classify")
	}
	if ev.Kind != event.KindAvailable {
		t.Fatalf("kind = %v, want available", ev.Kind)
	}

	ev, _, ok = classify(event.Signal{
		Kind:      event.SignalConnectionState,
		Profile:   device.ProfileLEHearingAid,
		Addr:      addr,
		PrevState: event.StateConnected,
		NewState:  event.StateDisconnected,
	})
	if !ok || ev.Kind != event.KindUnavailable {
		t.Fatalf("capability disconnect: kind = %v ok = %v, want unavailable", ev.Kind, ok)
	}
}

func TestClassifyActiveDeviceAllowsClear(t *testing.T) {
	ev, _, ok := classify(event.Signal{
		Kind:    event.SignalActiveDevice,
		Profile: device.ProfileLEAudio,
	})
	if !ok {
		t.Fatal("active device clear should classify")
	}
	if ev.Kind != event.KindActiveChanged || !ev.Addr.IsNil() {
		t.Fatalf("got kind %v addr %v, want active-changed with nil device", ev.Kind, ev.Addr)
	}
}

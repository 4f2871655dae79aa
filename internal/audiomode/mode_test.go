package audiomode_test

import (
	"testing"

	"btroute/internal/audiomode"
)

func TestAssignClaimsAdvertisedDuties(t *testing.T) {
	cases := []struct {
		name string
		caps audiomode.Capabilities
		mode audiomode.Mode
		want audiomode.Assignment
	}{
		{"media only normal", audiomode.Capabilities{Media: true}, audiomode.ModeNormal, audiomode.Assignment{Media: true}},
		{"media only in call", audiomode.Capabilities{Media: true}, audiomode.ModeInCall, audiomode.Assignment{Media: true}},
		{"call only normal", audiomode.Capabilities{Call: true}, audiomode.ModeNormal, audiomode.Assignment{Call: true}},
		{"unified normal", audiomode.Capabilities{Media: true, Call: true}, audiomode.ModeNormal, audiomode.Assignment{Media: true, Call: true}},
		{"unified in call", audiomode.Capabilities{Media: true, Call: true}, audiomode.ModeInCall, audiomode.Assignment{Media: true, Call: true}},
		{"none", audiomode.Capabilities{}, audiomode.ModeNormal, audiomode.Assignment{}},
	}
	for _, tc := range cases {
		if got := audiomode.Assign(tc.caps, tc.mode); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestRedistributeInCallPrefersClassicCall(t *testing.T) {
	r := audiomode.Redistribute(audiomode.ModeInCall, true, true, true)
	if !r.ActivateClassicCall || !r.ClearLEAudio {
		t.Fatalf("expected classic call takeover, got %+v", r)
	}
	if r.ActivateClassicMedia || r.ActivateLEAudio {
		t.Fatalf("unexpected activations: %+v", r)
	}
}

func TestRedistributeInCallFallsBackToLE(t *testing.T) {
	r := audiomode.Redistribute(audiomode.ModeInCall, true, false, true)
	if !r.ActivateLEAudio {
		t.Fatalf("expected LE to keep the call, got %+v", r)
	}
	if r.ClearLEAudio {
		t.Fatalf("LE must not be cleared when it leads: %+v", r)
	}
}

func TestRedistributeNormalPrefersClassicMedia(t *testing.T) {
	r := audiomode.Redistribute(audiomode.ModeNormal, true, true, true)
	if !r.ActivateClassicMedia || !r.ClearLEAudio {
		t.Fatalf("expected classic media takeover, got %+v", r)
	}
}

func TestRedistributeNoCandidates(t *testing.T) {
	if r := audiomode.Redistribute(audiomode.ModeNormal, false, false, false); r != (audiomode.Redistribution{}) {
		t.Fatalf("expected no moves, got %+v", r)
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := audiomode.ParseMode("in-call"); !ok || m != audiomode.ModeInCall {
		t.Fatal("expected in-call to parse")
	}
	if m, ok := audiomode.ParseMode("normal"); !ok || m != audiomode.ModeNormal {
		t.Fatal("expected normal to parse")
	}
	if _, ok := audiomode.ParseMode("busy"); ok {
		t.Fatal("expected unknown mode to fail")
	}
}

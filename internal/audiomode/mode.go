// Package audiomode holds the mode-gated role assignment logic. It is the
// only place audio-mode decisions live; the resolver consults it for every
// event kind that needs a media/call split. Everything here is pure.
package audiomode

// Mode is the system audio mode. It is updated only by the external
// mode-changed signal and never inferred locally.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeInCall
)

func (m Mode) String() string {
	if m == ModeInCall {
		return "in-call"
	}
	return "normal"
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "normal":
		return ModeNormal, true
	case "in-call":
		return ModeInCall, true
	default:
		return ModeNormal, false
	}
}

// CallLeads reports whether the call role takes precedence in the mode.
func (m Mode) CallLeads() bool { return m == ModeInCall }

// Capabilities describes the audio duties a candidate device advertises.
type Capabilities struct {
	Media bool
	Call  bool
}

// Assignment is the role set a candidate should occupy if activated.
type Assignment struct {
	Media bool
	Call  bool
}

// Assign returns the roles a Tier-1 candidate should occupy when activated.
// A unified device claims both duties regardless of mode; single-duty devices
// claim their own duty. Mode steers cross-group contention (see Redistribute),
// not the duties a device is capable of serving.
func Assign(caps Capabilities, mode Mode) Assignment {
	_ = mode
	return Assignment{Media: caps.Media, Call: caps.Call}
}

// Redistribution describes the role moves required when the audio mode
// changes while a Tier-1 arrangement is active. The flags are commands for
// the resolver: activations carry suppressNoise=false downstream, clears
// suppressNoise=true, because the duty is handed over in the same instant.
type Redistribution struct {
	ActivateClassicMedia bool
	ActivateClassicCall  bool
	ActivateLEAudio      bool
	ClearLEAudio         bool
}

// Redistribute resolves which Tier-1 group should lead after a mode switch.
// The classicMedia/classicCall/leAudio arguments report whether each side has
// a usable connected candidate. In call mode the classic call group outranks
// a unified LE device; in normal mode the classic media group does. The LE
// group keeps (or takes) the duty only when the classic side has no
// candidate.
func Redistribute(mode Mode, classicMedia, classicCall, leAudio bool) Redistribution {
	var r Redistribution
	if mode.CallLeads() {
		switch {
		case classicCall:
			r.ActivateClassicCall = true
			r.ClearLEAudio = leAudio
		case leAudio:
			r.ActivateLEAudio = true
		}
		return r
	}
	switch {
	case classicMedia:
		r.ActivateClassicMedia = true
		r.ClearLEAudio = leAudio
	case leAudio:
		r.ActivateLEAudio = true
	}
	return r
}

package arbiter

import "btroute/internal/device"

// Target names the collaborator a command is addressed to.
type Target uint8

const (
	TargetClassicMedia Target = iota
	TargetClassicCall
	TargetHearingAid
	TargetLEAudio

	numTargets = int(TargetLEAudio) + 1
)

var targetNames = [numTargets]string{
	TargetClassicMedia: "classic-media",
	TargetClassicCall:  "classic-call",
	TargetHearingAid:   "hearing-aid",
	TargetLEAudio:      "le-audio",
}

func (t Target) String() string {
	if int(t) < numTargets {
		return targetNames[t]
	}
	return "unknown"
}

// Command is one resolved role reassignment. A nil Addr clears the target's
// active device. SuppressNoise is true when the audio duty is handed to
// another active device in the same instant, so the collaborator should not
// raise an "audio path lost" notification; the classic call collaborator
// takes no such flag and ignores it.
type Command struct {
	Target        Target
	Addr          device.MacAddress
	SuppressNoise bool
}

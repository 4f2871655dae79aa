package profiles

import "btroute/internal/device"

// MediaService is the classic media (A2DP-class) collaborator. A nil address
// clears the active device. SetActive reports whether the collaborator
// accepted the command; the engine treats a rejection as a failed switch and
// keeps its previous designation.
type MediaService interface {
	SetActive(addr device.MacAddress, suppressNoise bool) bool

	// FallbackDevice returns the collaborator's preferred replacement when
	// its active device drops, or nil when it has none.
	FallbackDevice() device.MacAddress
}

// CallService is the classic call (HFP-class) collaborator.
type CallService interface {
	SetActive(addr device.MacAddress) bool
	FallbackDevice() device.MacAddress
}

// HearingAidService is the classic hearing aid collaborator.
type HearingAidService interface {
	SetActive(addr device.MacAddress, suppressNoise bool) bool
}

// LEAudioService is the LE audio collaborator. It carries both the media and
// call duties with a single active device.
type LEAudioService interface {
	SetActive(addr device.MacAddress, suppressNoise bool) bool
}

// Services aggregates the collaborators for the enabled profile groups. A nil
// field means the group is disabled; the engine skips commands targeting it.
type Services struct {
	ClassicMedia MediaService
	ClassicCall  CallService
	HearingAid   HearingAidService
	LEAudio      LEAudioService
}

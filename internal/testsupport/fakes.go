package testsupport

import (
	"sync"

	"btroute/internal/device"
)

// SetActiveCall records one collaborator invocation. SuppressNoise is always
// false for the classic call collaborator, which takes no flag.
type SetActiveCall struct {
	Addr          device.MacAddress
	SuppressNoise bool
}

// recorder is the shared core of the fake collaborators.
type recorder struct {
	mu       sync.Mutex
	calls    []SetActiveCall
	fallback device.MacAddress
	reject   bool
}

func (r *recorder) record(call SetActiveCall) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return !r.reject
}

// Calls returns a copy of every recorded invocation, oldest first.
func (r *recorder) Calls() []SetActiveCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SetActiveCall(nil), r.calls...)
}

// LastCall returns the most recent invocation.
func (r *recorder) LastCall() (SetActiveCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return SetActiveCall{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset clears the recorded invocations.
func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// SetFallback sets the device FallbackDevice will return.
func (r *recorder) SetFallback(addr device.MacAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = addr
}

// SetReject makes subsequent SetActive calls report failure.
func (r *recorder) SetReject(reject bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reject = reject
}

// FallbackDevice returns the configured fallback, or nil.
func (r *recorder) FallbackDevice() device.MacAddress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallback
}

// FakeMediaService is a recording classic media collaborator.
type FakeMediaService struct{ recorder }

func (f *FakeMediaService) SetActive(addr device.MacAddress, suppressNoise bool) bool {
	return f.record(SetActiveCall{Addr: addr, SuppressNoise: suppressNoise})
}

// FakeCallService is a recording classic call collaborator.
type FakeCallService struct{ recorder }

func (f *FakeCallService) SetActive(addr device.MacAddress) bool {
	return f.record(SetActiveCall{Addr: addr})
}

// FakeHearingAidService is a recording hearing aid collaborator.
type FakeHearingAidService struct{ recorder }

func (f *FakeHearingAidService) SetActive(addr device.MacAddress, suppressNoise bool) bool {
	return f.record(SetActiveCall{Addr: addr, SuppressNoise: suppressNoise})
}

// FakeLEAudioService is a recording LE audio collaborator.
type FakeLEAudioService struct{ recorder }

func (f *FakeLEAudioService) SetActive(addr device.MacAddress, suppressNoise bool) bool {
	return f.record(SetActiveCall{Addr: addr, SuppressNoise: suppressNoise})
}

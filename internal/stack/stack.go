// Package stack tracks per-profile connection order. Each stack is an
// ordered set of device addresses, oldest first; a device appears at most
// once. Pushing an already-present device moves it to the tail, which is how
// explicit re-activation refreshes recency.
package stack

import "btroute/internal/device"

// Stack is an ordered set of connected device addresses.
// Not safe for concurrent use; the arbitration worker is the sole owner.
type Stack struct {
	devs []device.MacAddress
}

// Push appends the address, or moves it to the tail if already present.
func (s *Stack) Push(addr device.MacAddress) {
	if addr.IsNil() {
		return
	}
	s.Remove(addr)
	s.devs = append(s.devs, addr)
}

// Remove deletes the address and reports whether it was present.
func (s *Stack) Remove(addr device.MacAddress) bool {
	for i, d := range s.devs {
		if d == addr {
			s.devs = append(s.devs[:i], s.devs[i+1:]...)
			return true
		}
	}
	return false
}

// Tail returns the most recently pushed address.
func (s *Stack) Tail() (device.MacAddress, bool) {
	if len(s.devs) == 0 {
		return device.MacAddress{}, false
	}
	return s.devs[len(s.devs)-1], true
}

// Contains reports whether the address is present.
func (s *Stack) Contains(addr device.MacAddress) bool {
	for _, d := range s.devs {
		if d == addr {
			return true
		}
	}
	return false
}

// Devices returns a copy of the stack contents, oldest first.
func (s *Stack) Devices() []device.MacAddress {
	if len(s.devs) == 0 {
		return nil
	}
	out := make([]device.MacAddress, len(s.devs))
	copy(out, s.devs)
	return out
}

// Len returns the number of tracked devices.
func (s *Stack) Len() int { return len(s.devs) }

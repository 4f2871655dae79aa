package stack_test

import (
	"testing"

	"btroute/internal/device"
	"btroute/internal/stack"
)

var (
	devA = device.MustParseMAC("00:00:00:00:00:0A")
	devB = device.MustParseMAC("00:00:00:00:00:0B")
	devC = device.MustParseMAC("00:00:00:00:00:0C")
)

func TestPushAppends(t *testing.T) {
	var s stack.Stack
	s.Push(devA)
	s.Push(devB)
	if s.Len() != 2 {
		t.Fatalf("expected 2 devices, got %d", s.Len())
	}
	tail, ok := s.Tail()
	if !ok || tail != devB {
		t.Fatalf("unexpected tail: %v", tail)
	}
}

func TestPushMovesExistingToTail(t *testing.T) {
	var s stack.Stack
	s.Push(devA)
	s.Push(devB)
	s.Push(devC)
	s.Push(devA)
	if s.Len() != 3 {
		t.Fatalf("expected no duplicate, got %d devices", s.Len())
	}
	tail, _ := s.Tail()
	if tail != devA {
		t.Fatalf("expected devA at tail, got %v", tail)
	}
	devs := s.Devices()
	if devs[0] != devB || devs[1] != devC || devs[2] != devA {
		t.Fatalf("unexpected order: %v", devs)
	}
}

func TestPushIgnoresNilAddress(t *testing.T) {
	var s stack.Stack
	s.Push(device.MacAddress{})
	if s.Len() != 0 {
		t.Fatal("nil address should not be tracked")
	}
}

func TestRemove(t *testing.T) {
	var s stack.Stack
	s.Push(devA)
	s.Push(devB)
	if !s.Remove(devA) {
		t.Fatal("expected removal of devA")
	}
	if s.Remove(devA) {
		t.Fatal("second removal should report absent")
	}
	if s.Contains(devA) {
		t.Fatal("devA should be gone")
	}
	tail, ok := s.Tail()
	if !ok || tail != devB {
		t.Fatalf("unexpected tail after removal: %v", tail)
	}
}

func TestTailEmpty(t *testing.T) {
	var s stack.Stack
	if _, ok := s.Tail(); ok {
		t.Fatal("empty stack should have no tail")
	}
}

func TestDevicesReturnsCopy(t *testing.T) {
	var s stack.Stack
	s.Push(devA)
	devs := s.Devices()
	devs[0] = devB
	if got, _ := s.Tail(); got != devA {
		t.Fatal("mutating the returned slice must not affect the stack")
	}
}

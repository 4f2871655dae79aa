package profiles

import (
	"testing"

	"btroute/internal/device"
)

var (
	addrA = device.MustParseMAC("00:00:00:00:00:01")
	addrB = device.MustParseMAC("00:00:00:00:00:02")
)

func TestMoveToFrontOrdersMostRecentFirst(t *testing.T) {
	list := moveToFront(nil, addrA)
	list = moveToFront(list, addrB)
	if list[0] != addrB || list[1] != addrA {
		t.Fatalf("order = %v, want [B A]", list)
	}

	list = moveToFront(list, addrA)
	if list[0] != addrA || len(list) != 2 {
		t.Fatalf("re-adding should move to front without duplicating: %v", list)
	}
}

func TestRemoveDropsAddress(t *testing.T) {
	list := moveToFront(moveToFront(nil, addrA), addrB)
	list = remove(list, addrB)
	if len(list) != 1 || list[0] != addrA {
		t.Fatalf("after remove: %v, want [A]", list)
	}
	if got := remove(list, addrB); len(got) != 1 {
		t.Fatalf("removing absent address changed list: %v", got)
	}
}

func TestProfileUUIDsCoverEveryProfile(t *testing.T) {
	seen := make(map[device.Profile]bool)
	for _, p := range profileUUIDs {
		seen[p] = true
	}
	for _, p := range orderedProfiles {
		if !seen[p] {
			t.Fatalf("no service UUID mapped for profile %v", p)
		}
	}
}

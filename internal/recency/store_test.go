package recency_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"btroute/internal/device"
	"btroute/internal/recency"
)

var (
	devA = device.MustParseMAC("00:00:00:00:00:0A")
	devB = device.MustParseMAC("00:00:00:00:00:0B")
	devC = device.MustParseMAC("00:00:00:00:00:0C")
)

func openStore(t *testing.T) *recency.Store {
	t.Helper()
	store, err := recency.OpenPath(filepath.Join(t.TempDir(), "recency.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMostRecentlyConnectedOrdersByRecency(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, addr := range []device.MacAddress{devA, devB, devC} {
		if err := store.RecordConnected(ctx, addr); err != nil {
			t.Fatalf("record connected: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	got, ok, err := store.MostRecentlyConnected(ctx, []device.MacAddress{devA, devB, devC})
	if err != nil || !ok {
		t.Fatalf("query failed: ok=%v err=%v", ok, err)
	}
	if got != devC {
		t.Fatalf("expected devC, got %v", got)
	}
}

func TestMostRecentlyConnectedHonorsCandidateFilter(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.RecordConnected(ctx, devA); err != nil {
		t.Fatalf("record: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := store.RecordConnected(ctx, devB); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok, err := store.MostRecentlyConnected(ctx, []device.MacAddress{devA})
	if err != nil || !ok {
		t.Fatalf("query failed: ok=%v err=%v", ok, err)
	}
	if got != devA {
		t.Fatalf("expected devA only, got %v", got)
	}
}

func TestMostRecentlyConnectedUnknownCandidates(t *testing.T) {
	store := openStore(t)

	_, ok, err := store.MostRecentlyConnected(context.Background(), []device.MacAddress{devA})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if ok {
		t.Fatal("expected no result for unseen candidates")
	}
}

func TestMostRecentlyConnectedEmptyCandidates(t *testing.T) {
	store := openStore(t)

	_, ok, err := store.MostRecentlyConnected(context.Background(), nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if ok {
		t.Fatal("expected no result for empty candidate list")
	}
}

func TestReconnectRefreshesRecency(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.RecordConnected(ctx, devA); err != nil {
		t.Fatalf("record: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := store.RecordConnected(ctx, devB); err != nil {
		t.Fatalf("record: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if err := store.RecordDisconnected(ctx, devA); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := store.RecordConnected(ctx, devA); err != nil {
		t.Fatalf("reconnect: %v", err)
	}

	got, ok, err := store.MostRecentlyConnected(ctx, []device.MacAddress{devA, devB})
	if err != nil || !ok {
		t.Fatalf("query failed: ok=%v err=%v", ok, err)
	}
	if got != devA {
		t.Fatalf("expected reconnected devA to lead, got %v", got)
	}
}

func TestRecordRequiresAddress(t *testing.T) {
	store := openStore(t)
	if err := store.RecordConnected(context.Background(), device.MacAddress{}); err == nil {
		t.Fatal("expected error for nil address")
	}
	if err := store.RecordDisconnected(context.Background(), device.MacAddress{}); err == nil {
		t.Fatal("expected error for nil address")
	}
}

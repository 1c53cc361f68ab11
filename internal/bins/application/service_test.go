package application

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	bins "smartwaste-cloud/internal/bins/domain"
	telemetry "smartwaste-cloud/internal/telemetry/domain"
)

type captureBroadcaster struct {
	payloads [][]byte
}

func (c *captureBroadcaster) Broadcast(payload []byte) {
	c.payloads = append(c.payloads, append([]byte(nil), payload...))
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestUpdater(t *testing.T, broadcaster Broadcaster, clock Clock) (*UpdaterService, *bins.Registry) {
	t.Helper()
	records, err := LoadProvisioning("")
	if err != nil {
		t.Fatalf("load provisioning: %v", err)
	}
	registry, err := bins.NewRegistry(records)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	service, err := NewUpdaterService(registry, broadcaster, clock, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new updater: %v", err)
	}
	return service, registry
}

type snapshotEntry struct {
	Bin       string  `json:"bin"`
	Level     float64 `json:"level"`
	LastEmpty *string `json:"lastEmpty"`
}

func lastPayload(t *testing.T, broadcaster *captureBroadcaster) []snapshotEntry {
	t.Helper()
	if len(broadcaster.payloads) == 0 {
		t.Fatal("no broadcast captured")
	}
	var entries []snapshotEntry
	if err := json.Unmarshal(broadcaster.payloads[len(broadcaster.payloads)-1], &entries); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	return entries
}

func TestApplyLevelThenEmptyCycle(t *testing.T) {
	broadcaster := &captureBroadcaster{}
	clock := fixedClock{now: time.Date(2026, 8, 31, 8, 0, 0, 0, time.Local)}
	service, _ := newTestUpdater(t, broadcaster, clock)

	service.Apply(telemetry.Update{"bin1": 45})
	entries := lastPayload(t, broadcaster)
	if entries[0].Level != 45 || entries[0].LastEmpty != nil {
		t.Fatalf("after first update: level=%v lastEmpty=%v", entries[0].Level, entries[0].LastEmpty)
	}

	service.Apply(telemetry.Update{"bin1": 5})
	entries = lastPayload(t, broadcaster)
	if entries[0].Level != 5 {
		t.Fatalf("expected level 5, got %v", entries[0].Level)
	}
	if entries[0].LastEmpty == nil {
		t.Fatal("expected lastEmpty to be stamped below threshold")
	}
	stamped := *entries[0].LastEmpty

	// Repeating the low reading must not move the timestamp.
	service.Apply(telemetry.Update{"bin1": 5})
	entries = lastPayload(t, broadcaster)
	if entries[0].LastEmpty == nil || *entries[0].LastEmpty != stamped {
		t.Fatalf("lastEmpty changed on repeated low reading: %v", entries[0].LastEmpty)
	}
}

func TestApplyTouchesOnlyUpdatedBins(t *testing.T) {
	broadcaster := &captureBroadcaster{}
	service, registry := newTestUpdater(t, broadcaster, fixedClock{now: time.Now()})

	service.Apply(telemetry.Update{"bin2": 50})

	entries := lastPayload(t, broadcaster)
	if entries[0].Bin != "BIN 1" || entries[0].Level != 0 {
		t.Fatalf("bin1 touched: %+v", entries[0])
	}
	if entries[1].Bin != "BIN 2" || entries[1].Level != 50 {
		t.Fatalf("bin2 not updated: %+v", entries[1])
	}

	record, err := registry.Get("bin1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Level != 0 || record.LastEmpty != "" {
		t.Fatalf("bin1 state changed: %+v", record)
	}
}

func TestApplyBroadcastsOnEmptyUpdate(t *testing.T) {
	broadcaster := &captureBroadcaster{}
	service, _ := newTestUpdater(t, broadcaster, fixedClock{now: time.Now()})

	service.Apply(telemetry.Update{})

	if len(broadcaster.payloads) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(broadcaster.payloads))
	}
	entries := lastPayload(t, broadcaster)
	if len(entries) != 2 {
		t.Fatalf("expected full snapshot, got %d entries", len(entries))
	}
}

func TestApplySerializesSnapshotOnce(t *testing.T) {
	broadcaster := &captureBroadcaster{}
	service, registry := newTestUpdater(t, broadcaster, fixedClock{now: time.Now()})

	service.Apply(telemetry.Update{"bin1": 45, "bin2": 50})

	want, err := json.Marshal(registry.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(broadcaster.payloads[0], want) {
		t.Fatalf("broadcast bytes differ from snapshot:\n got %s\nwant %s", broadcaster.payloads[0], want)
	}
}

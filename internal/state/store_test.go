package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/comfyq/internal/comfyui"
)

func queueOf(running, pending int) comfyui.QueueSnapshot {
	snap := comfyui.QueueSnapshot{Running: running, Pending: pending, Total: running + pending}
	for i := 0; i < running; i++ {
		snap.QueueRunning = append(snap.QueueRunning, comfyui.JobRecord(`[1,"r"]`))
	}
	for i := 0; i < pending; i++ {
		snap.QueuePending = append(snap.QueuePending, comfyui.JobRecord(`[2,"p"]`))
	}
	return snap
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(Update{
		Queue:   queueOf(1, 2),
		Stats:   comfyui.SystemStats{"system": "x"},
		History: comfyui.HistoryPage(`{"a":{}}`),
	})

	snap := s.Snapshot()
	if !snap.HasQueue || snap.Queue.Total != 3 {
		t.Fatalf("snapshot queue = %#v, want total=3 HasQueue=true", snap.Queue)
	}
	if snap.Stats["system"] != "x" {
		t.Fatalf("snapshot stats = %#v", snap.Stats)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Queue.QueuePending[0][1] = '9'
	snap.Stats["system"] = "mutated"
	snap.History[2] = 'z'
	snap2 := s.Snapshot()
	if string(snap2.Queue.QueuePending[0]) != `[2,"p"]` {
		t.Fatalf("Snapshot should clone queue records; got %s", snap2.Queue.QueuePending[0])
	}
	if snap2.Stats["system"] != "x" {
		t.Fatalf("Snapshot should clone stats; got %v", snap2.Stats["system"])
	}
	if string(snap2.History) != `{"a":{}}` {
		t.Fatalf("Snapshot should clone history; got %s", snap2.History)
	}
}

func TestStore_NestedStatsAreNotShared(t *testing.T) {
	var s Store
	polled := comfyui.SystemStats{
		"system":  map[string]any{"os": "posix"},
		"devices": []any{map[string]any{"name": "cuda:0", "vram_free": 100.0}},
	}
	s.Update(Update{Queue: queueOf(0, 0), Stats: polled})

	// The poller's value and earlier snapshots must not reach the store.
	polled["system"].(map[string]any)["os"] = "changed-after-update"
	snap := s.Snapshot()
	snap.Stats["system"].(map[string]any)["os"] = "changed-in-snapshot"
	snap.Stats["devices"].([]any)[0].(map[string]any)["vram_free"] = 0.0

	again := s.Snapshot()
	if again.Stats.OS() != "posix" {
		t.Fatalf("stored os = %q, want posix", again.Stats.OS())
	}
	if d := again.Stats.Devices(); len(d) != 1 || d[0].VRAMFree != 100 {
		t.Fatalf("stored devices = %#v, want vram_free 100", d)
	}
}

func TestStore_UpdateKeepsStatsAndHistoryWhenNil(t *testing.T) {
	var s Store
	s.Update(Update{Queue: queueOf(0, 1), Stats: comfyui.SystemStats{"k": 1.0}, History: comfyui.HistoryPage(`{}`)})
	s.Update(Update{Queue: queueOf(1, 0)})

	snap := s.Snapshot()
	if snap.Queue.Running != 1 || snap.Queue.Pending != 0 {
		t.Fatalf("queue = %#v, want latest", snap.Queue)
	}
	if !reflect.DeepEqual(snap.Stats, comfyui.SystemStats{"k": 1.0}) || string(snap.History) != `{}` {
		t.Fatalf("stats/history replaced by nil update: %#v %s", snap.Stats, snap.History)
	}
}

func TestStore_FailKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(Update{Queue: queueOf(1, 0)})
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Fail(origErr)

	snap := s.Snapshot()
	if snap.HasQueue != prev.HasQueue || snap.Queue.Total != prev.Queue.Total {
		t.Fatalf("queue changed on error: got %#v want %#v", snap.Queue, prev.Queue)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	s.Fail(nil)
	if got := s.Snapshot().ConsecutiveFailures; got != 1 {
		t.Fatalf("Fail(nil) changed failures to %d", got)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store = %d failures offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Fail(errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure = %d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Fail(errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures = %d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Success resets counter
	s.Update(Update{Queue: queueOf(0, 0)})
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

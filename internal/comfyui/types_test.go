package comfyui

import (
	"encoding/json"
	"testing"
)

func TestJobRecordHelpers(t *testing.T) {
	rec := JobRecord(`[7, "abc-123", {"1": {}}, {}, ["9"]]`)
	if n, ok := rec.Number(); !ok || n != 7 {
		t.Fatalf("Number = %v,%v want 7,true", n, ok)
	}
	if got := rec.PromptID(); got != "abc-123" {
		t.Fatalf("PromptID = %q, want abc-123", got)
	}

	for _, raw := range []string{`1`, `{"a": 1}`, `[]`, `["x"]`, ``} {
		rec := JobRecord(raw)
		if got := rec.PromptID(); got != "" {
			t.Fatalf("PromptID(%s) = %q, want empty", raw, got)
		}
	}
	if _, ok := JobRecord(`["x"]`).Number(); ok {
		t.Fatalf("Number on non-numeric first field should fail")
	}
}

func TestJobRecordRoundTripsVerbatim(t *testing.T) {
	in := []byte(`{"queue_running":[[1,"a"]],"queue_pending":[{"odd":true}]}`)
	var payload struct {
		QueueRunning []JobRecord `json:"queue_running"`
		QueuePending []JobRecord `json:"queue_pending"`
	}
	if err := json.Unmarshal(in, &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	snap := newQueueSnapshot(payload.QueueRunning, payload.QueuePending)
	out, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"running":1,"pending":1,"total":2,"queue_running":[[1,"a"]],"queue_pending":[{"odd":true}]}`
	if string(out) != want {
		t.Fatalf("Marshal = %s, want %s", out, want)
	}
}

func TestQueueSnapshotClone(t *testing.T) {
	snap := newQueueSnapshot([]JobRecord{JobRecord(`[1,"a"]`)}, nil)
	dup := snap.Clone()
	dup.QueueRunning[0][1] = 'X'
	if string(snap.QueueRunning[0]) != `[1,"a"]` {
		t.Fatalf("Clone aliases record bytes: %s", snap.QueueRunning[0])
	}
}

func TestSystemStatsHelpers(t *testing.T) {
	var stats SystemStats
	if err := json.Unmarshal([]byte(`{
  "system": {"os": "posix", "comfyui_version": "0.3.10"},
  "devices": [
    {"name": "cuda:0 NVIDIA", "type": "cuda", "vram_total": 1000, "vram_free": 250},
    "garbage"
  ]
}`), &stats); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if stats.OS() != "posix" || stats.Version() != "0.3.10" {
		t.Fatalf("OS/Version = %q/%q", stats.OS(), stats.Version())
	}
	devices := stats.Devices()
	if len(devices) != 1 {
		t.Fatalf("Devices len = %d, want 1", len(devices))
	}
	if devices[0].Name != "cuda:0 NVIDIA" || devices[0].VRAMUsed() != 750 {
		t.Fatalf("device = %#v, want used=750", devices[0])
	}

	var empty SystemStats
	if empty.OS() != "" || len(empty.Devices()) != 0 {
		t.Fatalf("empty stats helpers should return zero values")
	}
}

func TestSystemStatsCloneIsDeep(t *testing.T) {
	stats := SystemStats{
		"system":  map[string]any{"os": "posix", "argv": []any{"main.py"}},
		"devices": []any{map[string]any{"name": "cuda:0", "vram_free": 250.0}},
	}
	dup := stats.Clone()
	dup["system"].(map[string]any)["os"] = "nt"
	dup["system"].(map[string]any)["argv"].([]any)[0] = "other.py"
	dup["devices"].([]any)[0].(map[string]any)["vram_free"] = 0.0

	if stats.OS() != "posix" {
		t.Fatalf("Clone aliases system map: os = %q", stats.OS())
	}
	if argv := stats["system"].(map[string]any)["argv"].([]any); argv[0] != "main.py" {
		t.Fatalf("Clone aliases nested array: %v", argv)
	}
	if d := stats.Devices(); d[0].VRAMFree != 250 {
		t.Fatalf("Clone aliases device map: %#v", d[0])
	}
	if SystemStats(nil).Clone() != nil {
		t.Fatalf("Clone of nil stats should stay nil")
	}
}

func TestHistoryPageHelpers(t *testing.T) {
	page := HistoryPage(`{
  "p1": {"prompt": [1, "p1", {}], "outputs": {"9": {}}, "status": {"status_str": "success", "completed": true}},
  "p2": {"prompt": [2, "p2", {}], "outputs": {}, "status": {"status_str": "error", "completed": false}}
}`)
	if page.Len() != 2 {
		t.Fatalf("Len = %d, want 2", page.Len())
	}
	entries := page.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries len = %d, want 2", len(entries))
	}
	if entries[0].PromptID != "p2" || entries[0].Status != "error" || entries[0].Completed {
		t.Fatalf("entries[0] = %#v, want newest p2 error", entries[0])
	}
	if entries[1].PromptID != "p1" || entries[1].Outputs != 1 || !entries[1].Completed {
		t.Fatalf("entries[1] = %#v, want p1 with 1 output", entries[1])
	}

	if got := HistoryPage(`[1,2,3]`).Len(); got != 3 {
		t.Fatalf("array Len = %d, want 3", got)
	}
	if got := HistoryPage(`[1,2,3]`).Entries(); len(got) != 0 {
		t.Fatalf("array Entries = %#v, want none", got)
	}
	if got := HistoryPage(nil).Len(); got != 0 {
		t.Fatalf("nil Len = %d, want 0", got)
	}
}

func TestInterruptResultMarshalsPayload(t *testing.T) {
	out, err := json.Marshal(decodeInterrupt(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"status":"interrupted"}` {
		t.Fatalf("Marshal = %s", out)
	}
}

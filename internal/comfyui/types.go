package comfyui

import (
	"bytes"
	"encoding/json"
	"sort"
)

// StatusConnected is the only status ServerInfo reports.
const StatusConnected = "connected"

// StatusInterrupted is the fallback status for an interrupt whose response
// body is not a JSON object.
const StatusInterrupted = "interrupted"

// QueueSnapshot summarises /queue. Total is always Running + Pending.
type QueueSnapshot struct {
	Running      int         `json:"running"`
	Pending      int         `json:"pending"`
	Total        int         `json:"total"`
	QueueRunning []JobRecord `json:"queue_running"`
	QueuePending []JobRecord `json:"queue_pending"`
}

func newQueueSnapshot(running, pending []JobRecord) QueueSnapshot {
	if running == nil {
		running = []JobRecord{}
	}
	if pending == nil {
		pending = []JobRecord{}
	}
	return QueueSnapshot{
		Running:      len(running),
		Pending:      len(pending),
		Total:        len(running) + len(pending),
		QueueRunning: running,
		QueuePending: pending,
	}
}

// Clone returns a copy whose record slices do not alias q.
func (q QueueSnapshot) Clone() QueueSnapshot {
	dup := q
	dup.QueueRunning = cloneRecords(q.QueueRunning)
	dup.QueuePending = cloneRecords(q.QueuePending)
	return dup
}

func cloneRecords(records []JobRecord) []JobRecord {
	if records == nil {
		return nil
	}
	dup := make([]JobRecord, len(records))
	for i, r := range records {
		dup[i] = append(JobRecord(nil), r...)
	}
	return dup
}

// JobRecord is one queue entry, kept as the raw JSON the server sent.
type JobRecord json.RawMessage

// MarshalJSON writes the record back verbatim.
func (r JobRecord) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON keeps a copy of the raw bytes.
func (r *JobRecord) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// Number returns the queue position of a [number, prompt_id, ...] entry.
func (r JobRecord) Number() (float64, bool) {
	fields := r.tuple()
	if len(fields) < 1 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(fields[0], &n); err != nil {
		return 0, false
	}
	return n, true
}

// PromptID returns the prompt id of a [number, prompt_id, ...] entry.
func (r JobRecord) PromptID() string {
	fields := r.tuple()
	if len(fields) < 2 {
		return ""
	}
	var id string
	if err := json.Unmarshal(fields[1], &id); err != nil {
		return ""
	}
	return id
}

func (r JobRecord) tuple() []json.RawMessage {
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var fields []json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil
	}
	return fields
}

// SystemStats is the /system_stats body, passed through unmodified.
type SystemStats map[string]any

// Clone returns a deep copy of s. Nested objects and arrays are copied so
// the result shares no mutable state with s.
func (s SystemStats) Clone() SystemStats {
	if s == nil {
		return nil
	}
	return SystemStats(cloneJSONObject(s))
}

func cloneJSONObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneJSONValue(v)
	}
	return out
}

func cloneJSONValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneJSONObject(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneJSONValue(item)
		}
		return out
	default:
		return v
	}
}

// Device is the display subset of one entry of system_stats.devices.
type Device struct {
	Name      string
	Type      string
	VRAMTotal float64
	VRAMFree  float64
}

// VRAMUsed returns the used VRAM in bytes.
func (d Device) VRAMUsed() float64 {
	if d.VRAMTotal <= d.VRAMFree {
		return 0
	}
	return d.VRAMTotal - d.VRAMFree
}

// OS returns system.os when present.
func (s SystemStats) OS() string {
	system, _ := s["system"].(map[string]any)
	os, _ := system["os"].(string)
	return os
}

// Version returns system.comfyui_version when present.
func (s SystemStats) Version() string {
	system, _ := s["system"].(map[string]any)
	v, _ := system["comfyui_version"].(string)
	return v
}

// Devices lists the devices reported by the server.
func (s SystemStats) Devices() []Device {
	raw, _ := s["devices"].([]any)
	devices := make([]Device, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		d := Device{}
		d.Name, _ = m["name"].(string)
		d.Type, _ = m["type"].(string)
		d.VRAMTotal, _ = m["vram_total"].(float64)
		d.VRAMFree, _ = m["vram_free"].(float64)
		devices = append(devices, d)
	}
	return devices
}

// ServerInfo is the result of a successful connectivity probe.
type ServerInfo struct {
	ServerAddress string `json:"server_address"`
	Status        string `json:"status"`
	URL           string `json:"url"`
}

// InterruptResult is the decoded response body or, when the body is empty
// or not valid JSON, the {"status": "interrupted"} fallback. Any valid JSON
// value counts as decoded, null included.
type InterruptResult struct {
	Payload any
	Decoded bool
}

// MarshalJSON writes only the payload.
func (r InterruptResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload)
}

func decodeInterrupt(body []byte) InterruptResult {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return InterruptResult{
			Payload: map[string]any{"status": StatusInterrupted},
			Decoded: false,
		}
	}
	return InterruptResult{Payload: payload, Decoded: true}
}

// HistoryPage is the /history body, passed through unmodified.
type HistoryPage json.RawMessage

// MarshalJSON writes the page back verbatim.
func (h HistoryPage) MarshalJSON() ([]byte, error) {
	if len(h) == 0 {
		return []byte("null"), nil
	}
	return h, nil
}

// Len counts the entries of an object or array body.
func (h HistoryPage) Len() int {
	trimmed := bytes.TrimSpace(h)
	if len(trimmed) == 0 {
		return 0
	}
	switch trimmed[0] {
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return 0
		}
		return len(m)
	case '[':
		var a []json.RawMessage
		if err := json.Unmarshal(trimmed, &a); err != nil {
			return 0
		}
		return len(a)
	}
	return 0
}

// HistoryEntry summarises one prompt in the history object.
type HistoryEntry struct {
	PromptID  string
	Number    float64
	Status    string
	Completed bool
	Outputs   int
}

// Entries parses the ComfyUI {prompt_id: {...}} shape, newest queue
// number first. Bodies of any other shape yield no entries.
func (h HistoryPage) Entries() []HistoryEntry {
	var raw map[string]struct {
		Prompt  JobRecord                  `json:"prompt"`
		Outputs map[string]json.RawMessage `json:"outputs"`
		Status  struct {
			StatusStr string `json:"status_str"`
			Completed bool   `json:"completed"`
		} `json:"status"`
	}
	if err := json.Unmarshal(h, &raw); err != nil {
		return nil
	}
	entries := make([]HistoryEntry, 0, len(raw))
	for id, item := range raw {
		n, _ := item.Prompt.Number()
		entries = append(entries, HistoryEntry{
			PromptID:  id,
			Number:    n,
			Status:    item.Status.StatusStr,
			Completed: item.Status.Completed,
			Outputs:   len(item.Outputs),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Number != entries[j].Number {
			return entries[i].Number > entries[j].Number
		}
		return entries[i].PromptID < entries[j].PromptID
	})
	return entries
}

package main

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/comfyq/internal/storage"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COMFYUI_URL", "")
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestQueueCommandPrintsJSON(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queue" {
			t.Errorf("path = %q, want /queue", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"queue_running":[[1,"a",{}]],"queue_pending":[[2,"b",{}],[3,"c",{}]]}`))
	}))
	defer srv.Close()

	code, out, errOut := runCLI(t, "--url", srv.URL, "queue")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	var got struct {
		Running int `json:"running"`
		Pending int `json:"pending"`
		Total   int `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if got.Running != 1 || got.Pending != 2 || got.Total != 3 {
		t.Fatalf("counts = %+v, want 1/2/3", got)
	}
	if !strings.Contains(out, "\n  \"running\"") {
		t.Fatalf("output not indented:\n%s", out)
	}
}

func TestHistoryCommandMaxItems(t *testing.T) {
	setupEnv(t)
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	for _, args := range [][]string{
		{"--url", srv.URL, "history", "--max-items", "5"},
		{"--url", srv.URL, "history", "--max-items", "0"},
		{"--url", srv.URL, "history"},
	} {
		if code, _, errOut := runCLI(t, args...); code != 0 {
			t.Fatalf("%v: exit = %d, stderr = %q", args, code, errOut)
		}
	}
	want := []string{"max_items=5", "", "max_items=100"}
	if strings.Join(queries, "|") != strings.Join(want, "|") {
		t.Fatalf("queries = %q, want %q", queries, want)
	}
}

func TestInterruptCommandFallback(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
	}))
	defer srv.Close()

	code, out, errOut := runCLI(t, "--url", srv.URL, "interrupt")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if strings.TrimSpace(out) != "{\n  \"status\": \"interrupted\"\n}" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestUnreachableServerExitsNonZero(t *testing.T) {
	setupEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	for _, command := range []string{"queue", "stats", "info", "interrupt", "history"} {
		code, out, errOut := runCLI(t, "--url", "http://"+addr, command)
		if code != 1 {
			t.Fatalf("%s: exit = %d, want 1", command, code)
		}
		if out != "" {
			t.Fatalf("%s: stdout = %q, want empty", command, out)
		}
		if !strings.HasPrefix(errOut, "comfyq: ") || strings.Count(errOut, "\n") != 1 {
			t.Fatalf("%s: stderr = %q, want one comfyq line", command, errOut)
		}
	}
}

func TestInfoCommandFailsOnServerError(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	code, _, errOut := runCLI(t, "--url", srv.URL, "info")
	if code != 1 || !strings.Contains(errOut, "HTTP 503") {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestTrendRequiresRecordDB(t *testing.T) {
	setupEnv(t)
	code, _, errOut := runCLI(t, "trend")
	if code != 1 || !strings.Contains(errOut, "record_db") {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestTrendPrintsSamples(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "samples.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := store.Save(storage.Sample{Timestamp: base.Add(time.Duration(i) * time.Second), Running: 1, Pending: i}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	_ = store.Close()

	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("record_db = \""+dbPath+"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	code, out, errOut := runCLI(t, "--config", cfgPath, "trend", "--count", "2")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	var samples []storage.Sample
	if err := json.Unmarshal([]byte(out), &samples); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if len(samples) != 2 || samples[0].Pending != 1 || samples[1].Pending != 2 {
		t.Fatalf("samples = %+v, want the last two oldest first", samples)
	}
}

func TestTrendSinceUsesTimeWindow(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "samples.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	now := time.Now()
	for i, age := range []time.Duration{3 * time.Hour, 30 * time.Minute, 10 * time.Minute} {
		if err := store.Save(storage.Sample{Timestamp: now.Add(-age), Pending: i}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	_ = store.Close()

	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("record_db = \""+dbPath+"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	code, out, errOut := runCLI(t, "--config", cfgPath, "trend", "--since", "1h", "--count", "1")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	var samples []storage.Sample
	if err := json.Unmarshal([]byte(out), &samples); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if len(samples) != 2 || samples[0].Pending != 1 || samples[1].Pending != 2 {
		t.Fatalf("samples = %+v, want the two samples inside the last hour", samples)
	}
}

func TestUnknownCommandExitsTwo(t *testing.T) {
	setupEnv(t)
	if code, _, _ := runCLI(t, "bogus"); code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
}

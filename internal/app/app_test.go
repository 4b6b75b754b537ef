package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/comfyq/internal/config"
	"github.com/five82/comfyq/internal/storage"
)

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvComfyUIURL, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`comfyui_url = "http://file:1"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path, "", false)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ComfyUIURL != "http://file:1" || cfg.LogLevel != "info" {
		t.Fatalf("cfg = %#v, want file url and info level", cfg)
	}

	cfg, err = LoadConfig(path, "http://flag:2", true)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ComfyUIURL != "http://flag:2" || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %#v, want flag url and debug level", cfg)
	}
	if got := NewClient(cfg, nil).Address(); got != "flag:2" {
		t.Fatalf("client address = %q, want flag:2", got)
	}
}

func TestOpenSamples_SelectsBackend(t *testing.T) {
	mem, err := OpenSamples(config.Config{})
	if err != nil {
		t.Fatalf("OpenSamples(memory) returned error: %v", err)
	}
	defer mem.Close()
	if err := mem.Save(storage.Sample{Running: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(t.TempDir(), "queue.db")
	db, err := OpenSamples(config.Config{RecordDB: path})
	if err != nil {
		t.Fatalf("OpenSamples(sqlite) returned error: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("record db not created: %v", err)
	}
}

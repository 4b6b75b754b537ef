package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config captures comfyq's settings.
type Config struct {
	ComfyUIURL   string
	PollSeconds  int
	HistoryItems int
	LogLevel     string
	LogFormat    string
	LogFile      string
	RecordDB     string
	RecordTTL    time.Duration
}

const (
	defaultConfigPath   = "~/.config/comfyq/config.toml"
	defaultComfyUIURL   = "http://127.0.0.1:8188"
	defaultPollSeconds  = 2
	defaultHistoryItems = 100
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
	defaultLogFile      = "~/.local/state/comfyq/comfyq.log"
	defaultRecordTTL    = 24 * time.Hour

	// EnvComfyUIURL overrides comfyui_url when set.
	EnvComfyUIURL = "COMFYUI_URL"
)

// fileConfig is the on-disk shape. Pointers distinguish "absent" from zero
// for the numeric keys.
type fileConfig struct {
	ComfyUIURL   string `toml:"comfyui_url" yaml:"comfyui_url"`
	PollSeconds  *int   `toml:"poll_seconds" yaml:"poll_seconds"`
	HistoryItems *int   `toml:"history_items" yaml:"history_items"`
	LogLevel     string `toml:"log_level" yaml:"log_level"`
	LogFormat    string `toml:"log_format" yaml:"log_format"`
	LogFile      string `toml:"log_file" yaml:"log_file"`
	RecordDB     string `toml:"record_db" yaml:"record_db"`
	RecordTTL    string `toml:"record_ttl" yaml:"record_ttl"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ComfyUIURL:   defaultComfyUIURL,
		PollSeconds:  defaultPollSeconds,
		HistoryItems: defaultHistoryItems,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		LogFile:      mustExpand(defaultLogFile),
		RecordTTL:    defaultRecordTTL,
	}
}

// Load locates and parses the comfyq config, falling back to defaults when
// missing. COMFYUI_URL, when set, wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if raw != nil {
		if err := cfg.apply(*raw); err != nil {
			return Config{}, err
		}
	}

	if env := strings.TrimSpace(os.Getenv(EnvComfyUIURL)); env != "" {
		cfg.ComfyUIURL = env
	}
	return cfg, nil
}

func readFile(path string) (*fileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &raw, nil
}

func (c *Config) apply(raw fileConfig) error {
	if v := strings.TrimSpace(raw.ComfyUIURL); v != "" {
		c.ComfyUIURL = v
	}
	if raw.PollSeconds != nil && *raw.PollSeconds > 0 {
		c.PollSeconds = *raw.PollSeconds
	}
	// Any explicit value is passed to the server; zero omits max_items.
	if raw.HistoryItems != nil {
		c.HistoryItems = *raw.HistoryItems
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		c.LogFormat = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.RecordDB); v != "" {
		c.RecordDB = mustExpand(v)
	}
	// "0" keeps samples forever.
	if v := strings.TrimSpace(raw.RecordTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl < 0 {
			return fmt.Errorf("parse config: record_ttl %q: want a non-negative duration such as \"24h\"", v)
		}
		c.RecordTTL = ttl
	}
	return nil
}

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

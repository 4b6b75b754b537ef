package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/comfyq/internal/comfyui"
	"github.com/five82/comfyq/internal/config"
	"github.com/five82/comfyq/internal/logger"
	"github.com/five82/comfyq/internal/prefs"
	"github.com/five82/comfyq/internal/state"
	"github.com/five82/comfyq/internal/storage"
	"github.com/five82/comfyq/internal/ui"
)

// Options configure the comfyq monitor.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/comfyq/prefs.toml
	URL        string // overrides comfyui_url when set
	PollEvery  int    // seconds; zero uses the config value
	Debug      bool
}

// Run boots the TUI monitor until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts.ConfigPath, opts.URL, opts.Debug)
	if err != nil {
		return err
	}

	log := logger.Discard()
	if cfg.LogFile != "" {
		logFile, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer logFile.Close()
		log = logger.New(logFile, cfg.LogFormat, logger.ParseLevel(cfg.LogLevel))
	}

	samples, err := OpenSamples(cfg)
	if err != nil {
		return err
	}
	defer samples.Close()

	client := NewClient(cfg, log)
	store := &state.Store{}

	interval := time.Duration(cfg.PollSeconds) * time.Second
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	poller := &Poller{
		Store:        store,
		Client:       client,
		Samples:      samples,
		Log:          log,
		Interval:     interval,
		HistoryItems: cfg.HistoryItems,
		SampleTTL:    cfg.RecordTTL,
	}
	poller.Start(ctx)
	log.Info("monitor started", "address", client.Address(), "interval", interval)

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Samples:   samples,
		Refresh:   poller.Refresh,
		Config:    &cfg,
		PollTick:  time.Second,
		ThemeName: userPrefs.Theme,
		View:      userPrefs.View,
		PrefsPath: opts.PrefsPath,
	})
}

// LoadConfig loads the config file and applies command-line overrides.
func LoadConfig(path, url string, debug bool) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if url != "" {
		cfg.ComfyUIURL = url
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// requestTimeout bounds every call the monitor and CLI make. The client
// itself has no default timeout.
const requestTimeout = 10 * time.Second

// NewClient builds the single client instance shared by every consumer.
func NewClient(cfg config.Config, log *slog.Logger) *comfyui.Client {
	return comfyui.NewClient(cfg.ComfyUIURL,
		comfyui.WithLogger(log),
		comfyui.WithTimeout(requestTimeout),
	)
}

// OpenSamples returns the sqlite recorder when record_db is set, otherwise
// an in-memory one.
func OpenSamples(cfg config.Config) (storage.Storage, error) {
	if cfg.RecordDB == "" {
		return storage.NewMemoryStorage(0), nil
	}
	s, err := storage.NewSQLiteStorage(cfg.RecordDB)
	if err != nil {
		return nil, fmt.Errorf("open record db: %w", err)
	}
	return s, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/five82/comfyq/internal/app"
	"github.com/five82/comfyq/internal/storage"
)

// WatchCmd runs the TUI.
type WatchCmd struct {
	Poll  int    `name:"poll" help:"Refresh interval in seconds (default from config)"`
	Prefs string `name:"prefs" type:"path" help:"Preferences file (default ~/.config/comfyq/prefs.toml)"`
}

func (cmd *WatchCmd) Run(g *Globals) error {
	return app.Run(g.ctx, app.Options{
		ConfigPath: g.Config,
		PrefsPath:  cmd.Prefs,
		URL:        g.URL,
		PollEvery:  cmd.Poll,
		Debug:      g.Debug,
	})
}

type QueueCmd struct{}

func (cmd *QueueCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	queue, err := client.QueueStatus(g.ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, queue)
}

type StatsCmd struct{}

func (cmd *StatsCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	stats, err := client.SystemStats(g.ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, stats)
}

type InfoCmd struct{}

func (cmd *InfoCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	info, err := client.ServerInfo(g.ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, info)
}

type InterruptCmd struct{}

func (cmd *InterruptCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	result, err := client.Interrupt(g.ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, result)
}

// HistoryCmd prints /history. Without --max-items the config's
// history_items is used; zero or less asks for the server default.
type HistoryCmd struct {
	MaxItems *int `name:"max-items" help:"Number of entries to request"`
}

func (cmd *HistoryCmd) Run(g *Globals) error {
	client, cfg, err := g.client()
	if err != nil {
		return err
	}
	maxItems := cfg.HistoryItems
	if cmd.MaxItems != nil {
		maxItems = *cmd.MaxItems
	}
	page, err := client.History(g.ctx, maxItems)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout, page)
}

// TrendCmd prints samples recorded by the monitor into record_db.
type TrendCmd struct {
	Count int           `name:"count" default:"60" help:"Number of most recent samples"`
	Since time.Duration `name:"since" help:"Print every sample from this far back (e.g. 1h); overrides --count"`
}

func (cmd *TrendCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if cfg.RecordDB == "" {
		return fmt.Errorf("trend: record_db is not set in the config")
	}
	samples, err := app.OpenSamples(cfg)
	if err != nil {
		return err
	}
	defer samples.Close()

	var result []storage.Sample
	if cmd.Since > 0 {
		now := time.Now()
		result, err = samples.Range(now.Add(-cmd.Since), now)
	} else {
		result, err = samples.Latest(cmd.Count)
	}
	if err != nil {
		return fmt.Errorf("trend: %w", err)
	}
	return writeJSON(g.stdout, result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

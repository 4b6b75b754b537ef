package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/five82/comfyq/internal/app"
	"github.com/five82/comfyq/internal/comfyui"
	"github.com/five82/comfyq/internal/config"
	"github.com/five82/comfyq/internal/logger"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config string `name:"config" type:"path" help:"Config file (default ~/.config/comfyq/config.toml)"`
	URL    string `name:"url" env:"COMFYUI_URL" help:"ComfyUI base URL, overrides comfyui_url"`
	Debug  bool   `name:"debug" help:"Log HTTP calls to stderr"`

	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
}

// CLI is the root command.
type CLI struct {
	Globals

	Watch     WatchCmd     `cmd:"" default:"withargs" help:"Open the terminal monitor (default)"`
	Queue     QueueCmd     `cmd:"" help:"Print running and pending jobs"`
	Stats     StatsCmd     `cmd:"" help:"Print /system_stats"`
	Info      InfoCmd      `cmd:"" help:"Check that the server answers"`
	Interrupt InterruptCmd `cmd:"" help:"Interrupt the running job"`
	History   HistoryCmd   `cmd:"" help:"Print recent prompt history"`
	Trend     TrendCmd     `cmd:"" help:"Print recorded queue depth samples"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("comfyq"),
		kong.Description("Monitor and control a remote ComfyUI queue"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "comfyq: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "comfyq: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.stdout = stdout
	cli.Globals.stderr = stderr

	if err := kctx.Run(&cli.Globals); err != nil {
		if label := comfyui.Classify(err); comfyui.IsRemoteCallError(err) && label != "" {
			fmt.Fprintf(stderr, "comfyq: %s: %v\n", label, err)
		} else {
			fmt.Fprintf(stderr, "comfyq: %v\n", err)
		}
		return 1
	}
	return 0
}

func (g *Globals) config() (config.Config, error) {
	return app.LoadConfig(g.Config, g.URL, g.Debug)
}

// client builds the one-shot client. Logs go to stderr only with --debug
// so stdout stays valid JSON.
func (g *Globals) client() (*comfyui.Client, config.Config, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, config.Config{}, err
	}
	log := logger.Discard()
	if g.Debug {
		log = logger.New(g.stderr, cfg.LogFormat, slog.LevelDebug)
	}
	return app.NewClient(cfg, log), cfg, nil
}

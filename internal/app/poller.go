package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/comfyq/internal/comfyui"
	"github.com/five82/comfyq/internal/state"
	"github.com/five82/comfyq/internal/storage"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
	cleanupEvery        = time.Minute
)

// Poller refreshes a state.Store from the server at a fixed cadence, slowing
// down while the server is unreachable.
type Poller struct {
	Store        *state.Store
	Client       comfyui.QueueMonitor
	Samples      storage.Storage // optional
	Log          *slog.Logger
	Interval     time.Duration
	HistoryItems int

	// SampleTTL prunes recorded samples older than this; zero keeps them.
	SampleTTL time.Duration

	mu          sync.Mutex
	lastCleanup time.Time
}

// Start launches a background goroutine that refreshes the store until ctx
// is cancelled. It returns immediately.
func (p *Poller) Start(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			_ = p.Refresh(ctx)
			timer.Reset(calculateBackoff(p.Store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// Refresh performs one poll: queue, system stats and history. The first
// failure aborts the poll and is recorded in the store.
func (p *Poller) Refresh(ctx context.Context) error {
	log := p.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	queue, err := p.Client.QueueStatus(ctx)
	if err != nil {
		p.Store.Fail(err)
		log.Warn("queue poll failed", "error", err)
		return err
	}
	stats, err := p.Client.SystemStats(ctx)
	if err != nil {
		p.Store.Fail(err)
		log.Warn("stats poll failed", "error", err)
		return err
	}
	history, err := p.Client.History(ctx, p.HistoryItems)
	if err != nil {
		p.Store.Fail(err)
		log.Warn("history poll failed", "error", err)
		return err
	}
	p.Store.Update(state.Update{Queue: queue, Stats: stats, History: history})

	if p.Samples != nil {
		now := time.Now()
		sample := storage.Sample{Timestamp: now, Running: queue.Running, Pending: queue.Pending}
		if err := p.Samples.Save(sample); err != nil {
			log.Warn("record queue sample failed", "error", err)
		}
		p.pruneSamples(now, log)
	}
	return nil
}

// pruneSamples drops samples older than SampleTTL, at most once per
// cleanupEvery.
func (p *Poller) pruneSamples(now time.Time, log *slog.Logger) {
	if p.SampleTTL <= 0 {
		return
	}
	p.mu.Lock()
	due := now.Sub(p.lastCleanup) >= cleanupEvery
	if due {
		p.lastCleanup = now
	}
	p.mu.Unlock()
	if !due {
		return
	}
	if err := p.Samples.Cleanup(now.Add(-p.SampleTTL)); err != nil {
		log.Warn("prune queue samples failed", "error", err)
	}
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}

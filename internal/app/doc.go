// Package app is the composition root of the comfyq monitor.
//
// # Overview
//
// Run wires configuration, logging, the ComfyUI client, the sample recorder,
// the snapshot store, the poller and the TUI:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> LoadConfig()         config file + flag overrides
//	       ├─────> logger.New()         slog to the log file
//	       ├─────> OpenSamples()        memory or sqlite recorder
//	       ├─────> NewClient()          one client, injected everywhere
//	       ├─────> Poller.Start()       background refresh
//	       └─────> ui.Run()             TUI (blocks)
//
// The client is built exactly once here and handed to the poller and the UI;
// there is no package-level client.
//
// # Polling Behavior
//
// Each refresh fetches the queue, system stats and history, in that order.
// The first failure ends the refresh and is recorded in the store; the
// previous data stays visible. After consecutive failures the poller waits
// interval*2^failures (capped at 30s) before the next attempt. This is
// pacing of the monitor, not a retry of the failed call.
//
// Successful queue fetches are recorded as storage.Sample values for the
// depth sparkline and the trend command.
package app

// Package state provides the snapshot store shared by the poller and the UI.
//
// # Overview
//
// The poller writes the latest queue, system stats and history into a Store;
// the UI reads copies at its own cadence:
//
//	Producer (Poller):             Consumer (UI):
//	┌──────────────────┐          ┌──────────────────┐
//	│ QueueStatus()    │          │                  │
//	│ SystemStats()    │          │                  │
//	│ History()        │          │                  │
//	│      ↓           │          │                  │
//	│ store.Update()   │─────────→│ store.Snapshot() │
//	│ store.Fail()     │ (mutex)  │      ↓           │
//	│  repeat...       │          │  render UI       │
//	└──────────────────┘          └──────────────────┘
//
// # Update Semantics
//
//	store.Update(state.Update{Queue: q, Stats: s, History: h})
//	→ queue replaced, nil stats/history keep the previous value
//	→ LastError cleared, ConsecutiveFailures reset
//
//	store.Fail(err)
//	→ previous data kept
//	→ LastError = err, ConsecutiveFailures++
//
// Snapshot returns deep copies of the queue records, stats map and history
// bytes, so callers may mutate what they receive.
//
// # Offline Detection
//
// IsOffline reports true after two consecutive failed polls. A single
// failure is shown as an error but not as an outage.
package state

package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/comfyq/internal/comfyui"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Queue               comfyui.QueueSnapshot
	HasQueue            bool
	Stats               comfyui.SystemStats
	History             comfyui.HistoryPage
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// Update is one successful poll. Nil Stats or History leave the previous
// values in place.
type Update struct {
	Queue   comfyui.QueueSnapshot
	Stats   comfyui.SystemStats
	History comfyui.HistoryPage
}

// IsOffline returns true when the server has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot.
func (s *Store) Update(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Queue = u.Queue.Clone()
	s.snapshot.HasQueue = true
	if u.Stats != nil {
		s.snapshot.Stats = u.Stats.Clone()
	}
	if u.History != nil {
		s.snapshot.History = append(comfyui.HistoryPage(nil), u.History...)
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records a failed poll. The previous data is kept but the error is
// recorded for visibility.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Queue = s.snapshot.Queue.Clone()
	snap.Stats = s.snapshot.Stats.Clone()
	if s.snapshot.History != nil {
		snap.History = append(comfyui.HistoryPage(nil), s.snapshot.History...)
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

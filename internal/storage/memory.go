package storage

import (
	"sync"
	"time"
)

const defaultMemoryLimit = 3600

type memoryStorage struct {
	mu      sync.RWMutex
	limit   int
	samples []Sample
}

// NewMemoryStorage keeps at most limit samples, dropping the oldest.
// limit <= 0 uses a default of one hour at one sample per second.
func NewMemoryStorage(limit int) Storage {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	return &memoryStorage{limit: limit}
}

func (m *memoryStorage) Save(s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples = append(m.samples, s)
	if over := len(m.samples) - m.limit; over > 0 {
		m.samples = append(m.samples[:0:0], m.samples[over:]...)
	}
	return nil
}

func (m *memoryStorage) Latest(n int) ([]Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || len(m.samples) == 0 {
		return nil, nil
	}
	start := 0
	if len(m.samples) > n {
		start = len(m.samples) - n
	}
	result := make([]Sample, len(m.samples)-start)
	copy(result, m.samples[start:])
	return result, nil
}

func (m *memoryStorage) Range(from, to time.Time) ([]Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Sample
	for _, s := range m.samples {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *memoryStorage) Cleanup(olderThan time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.samples[:0]
	for _, s := range m.samples {
		if !s.Timestamp.Before(olderThan) {
			kept = append(kept, s)
		}
	}
	m.samples = kept
	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}

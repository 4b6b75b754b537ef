// Package storage records queue depth samples taken by the poller.
package storage

import "time"

// Sample is the queue depth observed at one poll.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Running   int       `json:"running"`
	Pending   int       `json:"pending"`
}

// Total returns Running + Pending.
func (s Sample) Total() int {
	return s.Running + s.Pending
}

// Storage keeps samples ordered by time.
type Storage interface {
	// Save appends a sample.
	Save(s Sample) error

	// Latest returns up to n most recent samples, oldest first.
	Latest(n int) ([]Sample, error)

	// Range returns samples with from <= Timestamp <= to, oldest first.
	Range(from, to time.Time) ([]Sample, error)

	// Cleanup removes samples older than the given time.
	Cleanup(olderThan time.Time) error

	// Close releases resources.
	Close() error
}

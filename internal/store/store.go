// Package store holds the in-memory record dataset. A Store owns one
// immutable Snapshot at a time; reloads build a complete new snapshot off to
// the side and publish it with an atomic pointer swap, so readers always see
// a fully-formed dataset and queries parallelize without locks.
package store

import (
	"sync/atomic"
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
)

// Snapshot is an immutable view of the dataset at one load. Records must
// not be mutated by callers.
type Snapshot struct {
	records  []domain.Record
	loadedAt time.Time
}

// Records returns the snapshot's records in load order.
func (s *Snapshot) Records() []domain.Record {
	return s.records
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// LoadedAt returns when the snapshot was published.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Store publishes dataset snapshots to readers.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// New creates a store serving an empty snapshot.
func New() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{loadedAt: time.Now()})
	return s
}

// Publish swaps in a new snapshot built from the given records. The store
// takes ownership of the slice; the previous snapshot stays valid for
// readers that already hold it.
func (s *Store) Publish(records []domain.Record) *Snapshot {
	snap := &Snapshot{records: records, loadedAt: time.Now()}
	s.current.Store(snap)
	return snap
}

// Snapshot returns the currently served snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Package snapshot holds the latest published fleet snapshot in memory.
// Snapshots have no identity beyond the current tick; the store keeps
// exactly one and discards anything older.
package snapshot

import (
	"sync"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// Store is a single-slot snapshot store shared between the simulation
// ticker (writer) and the HTTP handlers (readers).
type Store struct {
	mu     sync.RWMutex
	seq    uint64
	latest models.FleetSnapshot
	ready  bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Publish installs a snapshot computed under the given tick sequence.
// A tick that finished after a newer tick has already published is stale
// and is dropped: last snapshot wins. Reports whether the snapshot was
// accepted.
func (s *Store) Publish(seq uint64, snap models.FleetSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready && seq < s.seq {
		return false
	}
	s.seq = seq
	s.latest = snap
	s.ready = true
	return true
}

// Latest returns the most recently published snapshot. The second return
// is false until the first tick has published.
func (s *Store) Latest() (models.FleetSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.ready
}

// Position returns the latest position of one train by ID.
func (s *Store) Position(trainID string) (models.PositionSnapshot, bool) {
	snap, ok := s.Latest()
	if !ok {
		return models.PositionSnapshot{}, false
	}
	for _, p := range snap.Positions {
		if p.TrainID == trainID {
			return p, true
		}
	}
	return models.PositionSnapshot{}, false
}

// Positions returns the positions of the latest snapshot, optionally
// filtered by line. Callers must not rely on the slice ordering.
func (s *Store) Positions(lineID string) []models.PositionSnapshot {
	snap, ok := s.Latest()
	if !ok {
		return nil
	}
	if lineID == "" {
		return snap.Positions
	}
	var filtered []models.PositionSnapshot
	for _, p := range snap.Positions {
		if p.LineID == lineID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

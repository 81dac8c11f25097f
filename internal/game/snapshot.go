package game

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable copy of a World for readers. It owns its
// slices, so renderers may hold it as long as they like.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`  // Monotonic publish counter
	Timestamp time.Time `json:"timestamp"` // When it was published
	World
}

// BulletCounts splits the in-flight bullets by owner.
func (s *Snapshot) BulletCounts() (player, enemy int) {
	for _, b := range s.Bullets {
		if b.Owner == OwnerPlayer {
			player++
		} else {
			enemy++
		}
	}
	return player, enemy
}

// SnapshotStore publishes snapshots from the tick goroutine to any number
// of readers. Publishing swaps a pointer, so a reader sees either the old
// snapshot or the new one, never a mix.
type SnapshotStore struct {
	current  atomic.Pointer[Snapshot]
	sequence atomic.Uint64
}

// NewSnapshotStore creates a store seeded with w so Load never returns nil.
func NewSnapshotStore(w World) *SnapshotStore {
	s := &SnapshotStore{}
	s.Publish(w)
	return s
}

// Publish copies w into a new snapshot and makes it current.
func (s *SnapshotStore) Publish(w World) *Snapshot {
	snap := &Snapshot{
		Sequence:  s.sequence.Add(1),
		Timestamp: time.Now(),
		World:     w.Clone(),
	}
	s.current.Store(snap)
	return snap
}

// Load returns the latest snapshot.
func (s *SnapshotStore) Load() *Snapshot {
	return s.current.Load()
}

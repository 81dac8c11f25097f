package game

import (
	"math/rand"
	"sync"
	"testing"
)

// TestSnapshotIsolation verifies published snapshots own their data
func TestSnapshotIsolation(t *testing.T) {
	w := NewWorld(DefaultTuning(), rand.New(rand.NewSource(1)))
	store := NewSnapshotStore(w)
	snap := store.Load()

	w.Enemies[0].X = -1
	w.Player.Health = 1

	if snap.Enemies[0].X == -1 || snap.Player.Health == 1 {
		t.Error("Snapshot shares state with the live world")
	}
}

// TestSnapshotSequence verifies sequences increase with each publish
func TestSnapshotSequence(t *testing.T) {
	w := NewWorld(DefaultTuning(), rand.New(rand.NewSource(1)))
	store := NewSnapshotStore(w)

	prev := store.Load().Sequence
	for i := 0; i < 5; i++ {
		snap := store.Publish(w)
		if snap.Sequence != prev+1 {
			t.Fatalf("Expected sequence %d, got %d", prev+1, snap.Sequence)
		}
		if store.Load() != snap {
			t.Fatal("Load should return the latest publish")
		}
		prev = snap.Sequence
	}
}

// TestSnapshotConcurrentReaders verifies readers never see a torn snapshot
func TestSnapshotConcurrentReaders(t *testing.T) {
	sim := newTestSimulation(2)
	w := sim.NewWorld()
	store := NewSnapshotStore(w)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := store.Load()
				if snap.Match.Alive != len(snap.Enemies)+1 {
					t.Errorf("Torn snapshot: alive %d with %d enemies", snap.Match.Alive, len(snap.Enemies))
					return
				}
			}
		}()
	}

	for i := 0; i < 500 && !w.Match.Status.IsTerminal(); i++ {
		w, _ = sim.Step(w, Input{FireHeld: true, AimAssist: true, AimX: 600, AimY: 0})
		store.Publish(w)
	}
	close(stop)
	wg.Wait()
}

// TestBulletCounts verifies the owner split
func TestBulletCounts(t *testing.T) {
	snap := &Snapshot{World: World{Bullets: []Bullet{
		{Owner: OwnerPlayer}, {Owner: OwnerEnemy}, {Owner: OwnerEnemy},
	}}}

	player, enemy := snap.BulletCounts()
	if player != 1 || enemy != 2 {
		t.Errorf("Expected 1/2, got %d/%d", player, enemy)
	}
}

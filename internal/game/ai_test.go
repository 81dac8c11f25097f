package game

import (
	"math"
	"math/rand"
	"testing"
)

// TestEnemyFireDecision verifies range and cooldown gating of enemy shots
func TestEnemyFireDecision(t *testing.T) {
	tuning := DefaultTuning()
	player := NewPlayer(tuning)

	tests := []struct {
		name     string
		dx       float64
		lastShot int64
		now      int64
		fires    bool
	}{
		{"first shot in range", 100, NeverFired, 0, true},
		{"out of range", 300, NeverFired, 0, false},
		{"cooling down", 100, 0, 1000, false},
		{"cooldown elapsed", 100, 0, 1001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			e := Enemy{
				X: player.X + tt.dx, Y: player.Y, Health: 100,
				TargetX: 0, TargetY: 0, LastShotMs: tt.lastShot,
			}

			out, bullets, events := UpdateEnemies([]Enemy{e}, player, tt.now, 1, tuning, rng)
			if (len(bullets) == 1) != tt.fires {
				t.Fatalf("Expected fires=%v, got %d bullets", tt.fires, len(bullets))
			}
			if !tt.fires {
				return
			}

			b := bullets[0]
			if b.Owner != OwnerEnemy {
				t.Error("Enemy bullet has wrong owner")
			}
			if b.X != e.X || b.Y != e.Y {
				t.Errorf("Shot should leave the pre-move position, got (%v, %v)", b.X, b.Y)
			}
			if math.Abs(b.VX+tuning.EnemyBulletSpeed) > 1e-9 {
				t.Errorf("Shot should head at the player, vx %v", b.VX)
			}
			if out[0].LastShotMs != tt.now {
				t.Errorf("LastShotMs not updated")
			}
			if len(events) != 1 || events[0].Type != EventTypeShot || events[0].Source != SourceEnemy {
				t.Errorf("Expected one enemy shot event, got %+v", events)
			}
		})
	}
}

// TestEnemyWander verifies stepping toward the target and re-rolling on arrival
func TestEnemyWander(t *testing.T) {
	tuning := DefaultTuning()
	player := NewPlayer(tuning)
	player.X, player.Y = 1100, 700
	rng := rand.New(rand.NewSource(7))

	walking := Enemy{X: 100, Y: 100, Health: 100, TargetX: 200, TargetY: 100, LastShotMs: NeverFired}
	arrived := Enemy{X: 100, Y: 100, Health: 100, TargetX: 105, TargetY: 100, LastShotMs: NeverFired}

	out, _, _ := UpdateEnemies([]Enemy{walking, arrived}, player, 0, 1, tuning, rng)

	if math.Abs(out[0].X-(100+tuning.EnemySpeed)) > 1e-9 || math.Abs(out[0].Y-100) > 1e-9 {
		t.Errorf("Walking enemy should step %v toward target, at (%v, %v)", tuning.EnemySpeed, out[0].X, out[0].Y)
	}

	if out[1].X != 100 || out[1].Y != 100 {
		t.Error("Arriving enemy should not move on the re-roll tick")
	}
	if out[1].TargetX == 105 && out[1].TargetY == 100 {
		t.Error("Arriving enemy should pick a new target")
	}
	if !tuning.InBounds(out[1].TargetX, out[1].TargetY) {
		t.Errorf("New target outside arena: (%v, %v)", out[1].TargetX, out[1].TargetY)
	}
}

// TestEnemyMovesAndFiresSameTick verifies firing never costs an enemy its
// movement or re-target for the tick
func TestEnemyMovesAndFiresSameTick(t *testing.T) {
	tuning := DefaultTuning()
	player := NewPlayer(tuning)

	tests := []struct {
		name     string
		targetDX float64
		retarget bool
	}{
		{"walking", 200, false},
		{"reaching target", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			e := Enemy{
				X: player.X + 100, Y: player.Y, Health: 100,
				TargetX: player.X + 100 + tt.targetDX, TargetY: player.Y,
				LastShotMs: NeverFired,
			}

			out, bullets, _ := UpdateEnemies([]Enemy{e}, player, 0, 1, tuning, rng)
			if len(bullets) != 1 {
				t.Fatalf("Expected 1 bullet, got %d", len(bullets))
			}
			if bullets[0].X != e.X || bullets[0].Y != e.Y {
				t.Errorf("Shot should leave the pre-move position, got (%v, %v)", bullets[0].X, bullets[0].Y)
			}

			got := out[0]
			if tt.retarget {
				if got.X != e.X || got.Y != e.Y {
					t.Errorf("Re-targeting enemy should hold position, at (%v, %v)", got.X, got.Y)
				}
				if got.TargetX == e.TargetX && got.TargetY == e.TargetY {
					t.Error("Enemy within reach of its target should pick a new one")
				}
				return
			}

			if math.Abs(got.X-(e.X+tuning.EnemySpeed)) > 1e-9 || math.Abs(got.Y-e.Y) > 1e-9 {
				t.Errorf("Firing enemy should still step %v, at (%v, %v)", tuning.EnemySpeed, got.X, got.Y)
			}
			if got.TargetX != e.TargetX {
				t.Error("Walking enemy should keep its target")
			}
		})
	}
}

// TestUpdateEnemiesDoesNotMutateInput verifies the caller's slice is untouched
func TestUpdateEnemiesDoesNotMutateInput(t *testing.T) {
	tuning := DefaultTuning()
	in := []Enemy{{X: 100, Y: 100, Health: 100, TargetX: 500, TargetY: 500, LastShotMs: NeverFired}}
	UpdateEnemies(in, NewPlayer(tuning), 0, 1, tuning, rand.New(rand.NewSource(1)))

	if in[0].X != 100 || in[0].Y != 100 || in[0].LastShotMs != NeverFired {
		t.Errorf("Input enemy changed: %+v", in[0])
	}
}

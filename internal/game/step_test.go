package game

import (
	"math/rand"
	"reflect"
	"testing"
)

func newTestSimulation(seed int64) *Simulation {
	return NewSimulation(DefaultTuning(), rand.New(rand.NewSource(seed)))
}

// quietWorld is a match with no enemies or pickups that is still in play
func quietWorld(sim *Simulation) World {
	w := sim.NewWorld()
	w.Enemies = nil
	w.Weapons = nil
	return w
}

// TestStepDoesNotMutateInput verifies Step leaves its input world untouched
func TestStepDoesNotMutateInput(t *testing.T) {
	sim := newTestSimulation(1)
	w := sim.NewWorld()
	saved := w.Clone()

	in := Input{MoveX: 1, AimX: 0, AimY: 0, FireHeld: true, AimAssist: true, Interact: true}
	for i := 0; i < 5; i++ {
		sim.Step(w, in)
	}

	if !reflect.DeepEqual(w, saved) {
		t.Error("Step mutated its input world")
	}
}

// TestStepInvariants runs random matches and checks per-tick invariants
func TestStepInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		sim := newTestSimulation(seed)
		tuning := sim.Tuning()
		inputs := rand.New(rand.NewSource(seed * 100))
		w := sim.NewWorld()

		for tick := 0; tick < 3000 && !w.Match.Status.IsTerminal(); tick++ {
			in := Input{
				MoveX:       inputs.Float64()*2 - 1,
				MoveY:       inputs.Float64()*2 - 1,
				AimX:        inputs.Float64() * tuning.ArenaWidth,
				AimY:        inputs.Float64() * tuning.ArenaHeight,
				FireHeld:    inputs.Intn(2) == 0,
				AimAssist:   inputs.Intn(2) == 0,
				FirePressed: inputs.Intn(4) == 0,
				Interact:    inputs.Intn(10) == 0,
			}

			next, events := sim.Step(w, in)

			spawned := 0
			for _, ev := range events {
				if ev.Type == EventTypeShot {
					spawned++
				}
			}
			if len(next.Bullets) > len(w.Bullets)+spawned {
				t.Fatalf("seed %d tick %d: bullets grew %d -> %d with %d spawned", seed, tick, len(w.Bullets), len(next.Bullets), spawned)
			}

			if next.Player.Health < 0 || next.Player.Health > tuning.MaxHealth {
				t.Fatalf("seed %d tick %d: player health %v out of range", seed, tick, next.Player.Health)
			}
			for _, e := range next.Enemies {
				if e.Health <= 0 || e.Health > tuning.MaxHealth {
					t.Fatalf("seed %d tick %d: enemy health %v out of range", seed, tick, e.Health)
				}
			}

			if len(next.Enemies) > len(w.Enemies) {
				t.Fatalf("seed %d tick %d: enemies respawned", seed, tick)
			}
			if next.Match.Alive != len(next.Enemies)+1 {
				t.Fatalf("seed %d tick %d: alive %d does not match %d enemies", seed, tick, next.Match.Alive, len(next.Enemies))
			}
			if next.Match.Eliminations != tuning.EnemyCount-len(next.Enemies) {
				t.Fatalf("seed %d tick %d: eliminations %d out of step", seed, tick, next.Match.Eliminations)
			}
			if next.Tick != w.Tick+1 {
				t.Fatalf("seed %d tick %d: tick did not advance", seed, tick)
			}

			w = next
		}
	}
}

// TestVictoryThenFrozen verifies victory is reached and nothing moves afterwards
func TestVictoryThenFrozen(t *testing.T) {
	sim := newTestSimulation(3)
	w := quietWorld(sim)
	w.Match.Alive = 1

	next, events := sim.Step(w, Input{})
	if next.Match.Status != StatusVictory {
		t.Fatalf("Expected victory, got %s", next.Match.Status)
	}
	if len(events) == 0 || events[len(events)-1].Type != EventTypeVictory {
		t.Errorf("Expected a victory event, got %+v", events)
	}

	busy := Input{MoveX: 1, MoveY: 1, FireHeld: true, FirePressed: true, Interact: true, AimX: 0, AimY: 0}
	frozen, events := sim.Step(next, busy)
	if len(events) != 0 {
		t.Errorf("Terminal world produced events: %+v", events)
	}
	if !reflect.DeepEqual(frozen, next) {
		t.Error("Terminal world changed")
	}
}

// TestVictoryNeedsEmptyEnemySet verifies a low alive count alone is not enough
func TestVictoryNeedsEmptyEnemySet(t *testing.T) {
	sim := newTestSimulation(3)
	w := quietWorld(sim)
	w.Enemies = []Enemy{{X: 50, Y: 50, Health: 100, TargetX: 60, TargetY: 60, LastShotMs: NeverFired}}
	w.Match.Alive = 1

	next, _ := sim.Step(w, Input{})
	if next.Match.Status != StatusPlaying {
		t.Errorf("Expected playing with an enemy left, got %s", next.Match.Status)
	}
}

// TestZoneDefeat verifies out-of-zone damage can end the match
func TestZoneDefeat(t *testing.T) {
	sim := newTestSimulation(4)
	w := quietWorld(sim)
	w.Player.X, w.Player.Y = 30, 30
	w.Player.Health = 0.5

	next, events := sim.Step(w, Input{AimX: 30, AimY: 30})
	if next.Match.Status != StatusDefeat {
		t.Fatalf("Expected defeat, got %s", next.Match.Status)
	}
	if next.Player.Health != 0 {
		t.Errorf("Expected health 0, got %v", next.Player.Health)
	}
	if events[len(events)-1].Type != EventTypeDefeat {
		t.Errorf("Expected a defeat event last")
	}
}

// TestZoneSkippedAfterCombatDefeat verifies a defeated player's tick stops before the zone
func TestZoneSkippedAfterCombatDefeat(t *testing.T) {
	sim := newTestSimulation(5)
	w := quietWorld(sim)
	w.Player.Health = 10
	w.Match.ZoneTimer = 1
	w.Bullets = []Bullet{{X: w.Player.X, Y: w.Player.Y, Owner: OwnerEnemy}}

	next, _ := sim.Step(w, Input{AimX: w.Player.X, AimY: w.Player.Y})
	if next.Match.Status != StatusDefeat {
		t.Fatalf("Expected defeat, got %s", next.Match.Status)
	}
	if next.Match.ZoneTimer != 1 || next.Zone != w.Zone {
		t.Error("Zone advanced after defeat")
	}
}

// TestStepPlayerFire verifies shots spawn, consume ammo and respect the cooldown
func TestStepPlayerFire(t *testing.T) {
	sim := newTestSimulation(6)
	w := quietWorld(sim)
	aim := Input{AimX: w.Player.X + 100, AimY: w.Player.Y, FirePressed: true}

	w1, events := sim.Step(w, aim)
	if len(w1.Bullets) != 1 {
		t.Fatalf("Expected 1 bullet, got %d", len(w1.Bullets))
	}
	if w1.Bullets[0].X != w.Player.X+sim.Tuning().PlayerBulletSpeed {
		t.Errorf("Bullet should have flown one tick, at x=%v", w1.Bullets[0].X)
	}
	if w1.Player.Ammo != w.Player.Ammo-1 {
		t.Errorf("Expected ammo %d, got %d", w.Player.Ammo-1, w1.Player.Ammo)
	}
	if len(events) != 1 || events[0].Type != EventTypeShot || events[0].Source != SourcePlayer {
		t.Errorf("Expected a player shot event, got %+v", events)
	}

	w2, _ := sim.Step(w1, aim)
	if w2.Player.Ammo != w1.Player.Ammo {
		t.Error("Second shot one tick later should be rejected by the cooldown")
	}

	// Pistol cooldown is 300ms = 18 ticks
	w3 := w2
	for i := 0; i < 17; i++ {
		w3, _ = sim.Step(w3, aim)
	}
	if w3.Player.Ammo != w1.Player.Ammo-1 {
		t.Errorf("Shot after the cooldown should fire, ammo %d", w3.Player.Ammo)
	}
}

// TestStepPickup verifies interact swaps weapons once
func TestStepPickup(t *testing.T) {
	sim := newTestSimulation(7)
	w := quietWorld(sim)
	w.Weapons = []WeaponPickup{NewWeaponPickup(w.Player.X, w.Player.Y, GetWeapon("SMG"))}

	w1, events := sim.Step(w, Input{Interact: true})
	if w1.Player.Weapon != "SMG" || len(w1.Weapons) != 0 {
		t.Fatalf("Pickup failed: weapon %s, %d on floor", w1.Player.Weapon, len(w1.Weapons))
	}
	if len(events) != 1 || events[0].Type != EventTypePickup {
		t.Errorf("Expected a pickup event, got %+v", events)
	}

	w2, events := sim.Step(w1, Input{Interact: true})
	if w2.Player != w1.Player || len(events) != 0 {
		t.Error("Second interact should be a no-op")
	}
}

// TestMovePlayer verifies joystick precedence, keys, clamping and facing
func TestMovePlayer(t *testing.T) {
	tuning := DefaultTuning()
	base := NewPlayer(tuning)

	tests := []struct {
		name   string
		startX float64
		in     Input
		wantX  float64
		wantY  float64
	}{
		{"joystick", 600, Input{MoveX: 1}, 603, 400},
		{"joystick beats keys", 600, Input{MoveX: 1, Left: true}, 603, 400},
		{"joystick axis clamped", 600, Input{MoveX: 5, MoveY: -5}, 603, 397},
		{"keys", 600, Input{Up: true, Left: true}, 597, 397},
		{"opposite keys cancel", 600, Input{Left: true, Right: true}, 600, 400},
		{"clamped to margin", 21, Input{MoveX: -1}, 20, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.X = tt.startX
			tt.in.AimX, tt.in.AimY = 1200, 400

			got := MovePlayer(p, tt.in, tuning)
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.wantX, tt.wantY, got.X, got.Y)
			}
		})
	}

	p := MovePlayer(base, Input{AimX: base.X + 50, AimY: base.Y}, tuning)
	if p.Angle != 0 {
		t.Errorf("Expected facing 0, got %v", p.Angle)
	}
}

// TestNewWorld verifies a fresh match layout
func TestNewWorld(t *testing.T) {
	sim := newTestSimulation(8)
	tuning := sim.Tuning()
	w := sim.NewWorld()

	if len(w.Enemies) != tuning.EnemyCount {
		t.Errorf("Expected %d enemies, got %d", tuning.EnemyCount, len(w.Enemies))
	}
	if len(w.Weapons) != tuning.PickupCount {
		t.Errorf("Expected %d weapons, got %d", tuning.PickupCount, len(w.Weapons))
	}
	if w.Match.Alive != tuning.EnemyCount+1 || w.Match.Status != StatusPlaying {
		t.Errorf("Unexpected match state %+v", w.Match)
	}
	if w.Player.Weapon != DefaultWeaponID || w.Player.Health != tuning.MaxHealth {
		t.Errorf("Unexpected player %+v", w.Player)
	}

	m := tuning.SpawnMargin
	for _, e := range w.Enemies {
		if e.X < m || e.X > tuning.ArenaWidth-m || e.Y < m || e.Y > tuning.ArenaHeight-m {
			t.Errorf("Enemy spawned inside the margin: (%v, %v)", e.X, e.Y)
		}
	}
	for _, wp := range w.Weapons {
		if wp.Type == DefaultWeaponID {
			t.Error("Pistol should not spawn as a pickup")
		}
	}
}

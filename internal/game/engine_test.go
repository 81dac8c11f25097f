package game

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"apex-arena/internal/haptics"
)

type recordingSink struct {
	mu     sync.Mutex
	levels []haptics.Level
}

func (r *recordingSink) Pulse(l haptics.Level) {
	r.mu.Lock()
	r.levels = append(r.levels, l)
	r.mu.Unlock()
}

func (r *recordingSink) count(l haptics.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.levels {
		if got == l {
			n++
		}
	}
	return n
}

// TestNewEngine verifies engine creation with correct defaults
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		tickRate int
		want     int
	}{
		{"default rate", 0, 60},
		{"explicit 60 TPS", 60, 60},
		{"low 15 TPS", 15, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(EngineConfig{TickRate: tt.tickRate, Seed: 1})
			if engine == nil {
				t.Fatal("NewEngine returned nil")
			}
			if engine.tickRate != tt.want {
				t.Errorf("Expected %d TPS, got %d", tt.want, engine.tickRate)
			}
			snap := engine.GetSnapshot()
			if snap == nil || snap.Tick != 0 || snap.Match.Status != StatusPlaying {
				t.Errorf("Expected an initial playing snapshot, got %+v", snap)
			}
		})
	}
}

// TestEngineStartStop verifies engine can start and stop without panics
func TestEngineStartStop(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 1})

	engine.Start()
	engine.Start()
	if !engine.IsRunning() {
		t.Fatal("Engine should be running")
	}
	time.Sleep(100 * time.Millisecond)

	engine.Stop()
	engine.Stop()

	if engine.GetSnapshot().Tick == 0 {
		t.Error("Expected the loop to have ticked")
	}
}

// TestEngineStartAfterStop verifies a stopped engine ticks again when restarted
func TestEngineStartAfterStop(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 1})

	engine.Start()
	time.Sleep(50 * time.Millisecond)
	engine.Stop()

	stopped := engine.GetSnapshot().Tick
	engine.Start()
	defer engine.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for engine.GetSnapshot().Tick <= stopped {
		if time.Now().After(deadline) {
			t.Fatalf("Engine did not tick after restart, still at tick %d", stopped)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestEngineSeedIsDeterministic verifies equal seeds build equal matches
func TestEngineSeedIsDeterministic(t *testing.T) {
	a := NewEngine(EngineConfig{Seed: 99})
	b := NewEngine(EngineConfig{Seed: 99})

	if !reflect.DeepEqual(a.World().Enemies, b.World().Enemies) {
		t.Error("Same seed produced different enemies")
	}
	if a.Seed() != 99 {
		t.Errorf("Expected seed 99, got %d", a.Seed())
	}
}

// TestEngineTickPublishes verifies each tick publishes a newer snapshot
func TestEngineTickPublishes(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 2})
	before := engine.GetSnapshot()

	engine.tick()
	after := engine.GetSnapshot()

	if after.Sequence <= before.Sequence {
		t.Errorf("Sequence did not advance: %d -> %d", before.Sequence, after.Sequence)
	}
	if after.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", after.Tick)
	}
	if before.Tick != 0 {
		t.Error("Old snapshot changed after publish")
	}
}

// TestEngineRestart verifies restart replaces the match atomically
func TestEngineRestart(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 3})
	first := engine.GetSnapshot().MatchID

	for i := 0; i < 10; i++ {
		engine.tick()
	}

	snap := engine.Restart()
	if snap.MatchID == first {
		t.Error("Restart should start a new match")
	}
	if snap.Tick != 0 || snap.Match.Status != StatusPlaying {
		t.Errorf("Restarted snapshot not fresh: tick %d status %s", snap.Tick, snap.Match.Status)
	}
	if engine.GetSnapshot() != snap {
		t.Error("Restart should publish its snapshot")
	}
}

// TestEngineRestartIntent verifies a restart intent from the input buffer
func TestEngineRestartIntent(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 4})

	engine.mu.Lock()
	engine.world.Player.Health = 0
	engine.world.Match.Status = StatusDefeat
	first := engine.world.MatchID
	engine.mu.Unlock()

	engine.tick()
	if engine.GetSnapshot().Match.Status != StatusDefeat {
		t.Fatal("Terminal match should stay terminal without restart")
	}

	engine.Input().PressRestart()
	engine.tick()

	snap := engine.GetSnapshot()
	if snap.MatchID == first || snap.Match.Status != StatusPlaying || snap.Player.Health != 100 {
		t.Errorf("Restart intent did not reinitialise: %+v", snap.Match)
	}
	if engine.Input().Peek().Restart {
		t.Error("Restart intent should be consumed")
	}
}

// TestEngineHaptics verifies shots, kills and defeat map to impulse levels
func TestEngineHaptics(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 5})
	sink := &recordingSink{}
	engine.SetHaptics(sink)

	engine.mu.Lock()
	p := engine.world.Player
	engine.world.Enemies = []Enemy{{X: p.X + 100, Y: p.Y, Health: 30, TargetX: p.X + 100, TargetY: p.Y, LastShotMs: 0}}
	engine.world.Bullets = []Bullet{{X: p.X + 100, Y: p.Y, Owner: OwnerPlayer}}
	engine.world.Weapons = nil
	engine.mu.Unlock()

	engine.Input().SetAim(p.X, p.Y-100)
	engine.Input().PressFire()
	engine.tick()

	if sink.count(haptics.Light) != 1 {
		t.Errorf("Expected 1 light impulse, got %d", sink.count(haptics.Light))
	}
	if sink.count(haptics.Medium) != 1 {
		t.Errorf("Expected 1 medium impulse, got %d", sink.count(haptics.Medium))
	}

	engine.mu.Lock()
	engine.world.Player.Health = 5
	engine.world.Bullets = []Bullet{{X: p.X, Y: p.Y, Owner: OwnerEnemy}}
	engine.mu.Unlock()
	engine.tick()

	if sink.count(haptics.Heavy) != 1 {
		t.Errorf("Expected 1 heavy impulse, got %d", sink.count(haptics.Heavy))
	}
}

// TestEngineCallbacks verifies tick stats and the match-end summary
func TestEngineCallbacks(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 6})

	var ticks []TickStats
	var summaries []MatchSummary
	engine.SetCallbacks(
		func(s TickStats) { ticks = append(ticks, s) },
		func(s MatchSummary) { summaries = append(summaries, s) },
	)

	engine.tick()
	if len(ticks) != 1 || ticks[0].Tick != 1 || ticks[0].Enemies != 9 {
		t.Fatalf("Unexpected tick stats %+v", ticks)
	}

	engine.mu.Lock()
	engine.world.Enemies = nil
	engine.world.Bullets = nil
	engine.world.Match.Alive = 1
	engine.world.Match.Eliminations = 9
	engine.mu.Unlock()

	engine.tick()
	engine.tick()

	if len(summaries) != 1 {
		t.Fatalf("Expected exactly one summary, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Status != StatusVictory || s.Eliminations != 9 || s.MatchID == "" {
		t.Errorf("Unexpected summary %+v", s)
	}
}

// TestEnginePickup verifies the pickup request is an edge consumed by the next tick
func TestEnginePickup(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 7})

	engine.mu.Lock()
	p := engine.world.Player
	engine.world.Enemies = nil
	engine.world.Match.Alive = 10
	engine.world.Weapons = []WeaponPickup{NewWeaponPickup(p.X, p.Y, GetWeapon("RIFLE"))}
	engine.mu.Unlock()

	engine.Pickup()
	engine.tick()

	if got := engine.GetSnapshot().Player.Weapon; got != "RIFLE" {
		t.Errorf("Expected RIFLE, got %s", got)
	}
	if engine.Input().Peek().Interact {
		t.Error("Interact should be consumed")
	}
}

// TestEngineEventLog verifies match events reach the log
func TestEngineEventLog(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 8})
	if err := engine.StartEventLog(""); err != nil {
		t.Fatalf("StartEventLog failed: %v", err)
	}

	engine.Input().SetAim(0, 0)
	engine.Input().PressFire()
	engine.tick()
	engine.StopEventLog()

	stats := engine.GetEventLogStats()
	if stats["total"].(uint64) < 2 {
		t.Errorf("Expected match start and shot events, got %v", stats["total"])
	}
}

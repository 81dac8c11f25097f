package game

import (
	"math/rand"
	"testing"
)

// TestAdvanceZoneCountdown verifies the timer ticks down without shrinking
func TestAdvanceZoneCountdown(t *testing.T) {
	tuning := DefaultTuning()
	rng := rand.New(rand.NewSource(1))
	zone := NewWorld(tuning, rng).Zone

	next, timer, shrunk := AdvanceZone(zone, 5, tuning, rng)
	if shrunk {
		t.Error("Zone should not shrink before the countdown ends")
	}
	if timer != 4 {
		t.Errorf("Expected timer 4, got %d", timer)
	}
	if next != zone {
		t.Error("Zone changed during countdown")
	}
}

// TestZoneShrinkMonotonic verifies next radius never grows and floors at 150
func TestZoneShrinkMonotonic(t *testing.T) {
	tuning := DefaultTuning()
	rng := rand.New(rand.NewSource(42))
	zone := NewWorld(tuning, rng).Zone

	for i := 0; i < 10; i++ {
		prev := zone
		var timer int
		var shrunk bool
		zone, timer, shrunk = AdvanceZone(zone, 1, tuning, rng)

		if !shrunk {
			t.Fatalf("Shrink %d: expected shrink when timer expires", i)
		}
		if timer != tuning.ZoneShrinkTicks {
			t.Errorf("Shrink %d: timer not reset, got %d", i, timer)
		}
		if zone.Radius != prev.NextRadius || zone.X != prev.NextX || zone.Y != prev.NextY {
			t.Errorf("Shrink %d: current zone should adopt the planned one", i)
		}
		if zone.NextRadius > prev.NextRadius {
			t.Errorf("Shrink %d: next radius grew %v -> %v", i, prev.NextRadius, zone.NextRadius)
		}
		if zone.NextRadius < tuning.ZoneMinRadius {
			t.Errorf("Shrink %d: next radius %v below floor", i, zone.NextRadius)
		}
		if zone.NextX < tuning.CenterX()-tuning.ZoneJitter || zone.NextX > tuning.CenterX()+tuning.ZoneJitter {
			t.Errorf("Shrink %d: next centre x %v outside jitter", i, zone.NextX)
		}
		if zone.NextY < tuning.CenterY()-tuning.ZoneJitter || zone.NextY > tuning.CenterY()+tuning.ZoneJitter {
			t.Errorf("Shrink %d: next centre y %v outside jitter", i, zone.NextY)
		}
	}

	if zone.NextRadius != tuning.ZoneMinRadius {
		t.Errorf("Expected radius to settle at %v, got %v", tuning.ZoneMinRadius, zone.NextRadius)
	}
}

// TestApplyZoneDamage verifies out-of-zone damage and clamping
func TestApplyZoneDamage(t *testing.T) {
	tuning := DefaultTuning()
	zone := SafeZone{X: 600, Y: 400, Radius: 100}

	tests := []struct {
		name   string
		x, y   float64
		health float64
		want   float64
		dead   bool
	}{
		{"inside", 600, 400, 100, 100, false},
		{"on the edge", 700, 400, 100, 100, false},
		{"outside", 701, 400, 100, 99.5, false},
		{"outside nearly dead", 900, 400, 0.3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(tuning)
			p.X, p.Y, p.Health = tt.x, tt.y, tt.health

			dead := ApplyZoneDamage(&p, zone, tuning)
			if dead != tt.dead {
				t.Errorf("Expected dead=%v, got %v", tt.dead, dead)
			}
			if p.Health != tt.want {
				t.Errorf("Expected health %v, got %v", tt.want, p.Health)
			}
		})
	}
}

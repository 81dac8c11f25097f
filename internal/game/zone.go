package game

import "math/rand"

// AdvanceZone runs the shrink countdown one tick. When the countdown hits
// zero the current circle jumps to the planned one, a new plan is rolled
// around the arena centre and the countdown restarts. shrunk reports
// whether that happened this tick.
func AdvanceZone(zone SafeZone, timer int, t Tuning, rng *rand.Rand) (next SafeZone, nextTimer int, shrunk bool) {
	timer--
	if timer > 0 {
		return zone, timer, false
	}

	next = SafeZone{
		X:          zone.NextX,
		Y:          zone.NextY,
		Radius:     zone.NextRadius,
		NextX:      t.CenterX() + (rng.Float64()-0.5)*2*t.ZoneJitter,
		NextY:      t.CenterY() + (rng.Float64()-0.5)*2*t.ZoneJitter,
		NextRadius: zone.NextRadius - t.ZoneShrinkStep,
	}
	if next.NextRadius < t.ZoneMinRadius {
		next.NextRadius = t.ZoneMinRadius
	}
	return next, t.ZoneShrinkTicks, true
}

// ApplyZoneDamage hurts the player when standing outside the current
// circle. Returns true when that damage was fatal.
func ApplyZoneDamage(p *Player, zone SafeZone, t Tuning) bool {
	if zone.Contains(p.X, p.Y) {
		return false
	}
	return p.TakeDamage(t.ZoneDamage)
}

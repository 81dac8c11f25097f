package game

import "math"

// AimAssist nudges a raw firing angle toward the nearest enemy inside the
// assist cone. Enemies count when closer than AimMaxRange and within
// AimConeHalfAngle of raw; the strictly nearest wins, so equal distances
// keep the first one in slice order. With no candidate raw comes back
// untouched.
//
// The correction runs along the shorter arc, which matches
// raw*(1-w) + target*w whenever the two angles do not straddle +/-Pi.
func AimAssist(raw, px, py float64, enemies []Enemy, t Tuning) float64 {
	found := false
	nearest := t.AimMaxRange
	var diff float64

	for _, e := range enemies {
		dist := Distance(px, py, e.X, e.Y)
		if dist >= nearest {
			continue
		}
		d := NormalizeAngle(AngleTo(px, py, e.X, e.Y) - raw)
		if math.Abs(d) >= t.AimConeHalfAngle {
			continue
		}
		found = true
		nearest = dist
		diff = d
	}

	if !found {
		return raw
	}
	return raw + diff*t.AimAssistWeight
}

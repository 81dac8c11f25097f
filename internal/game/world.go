package game

import (
	"math/rand"

	uuid "github.com/satori/go.uuid"
)

// World is the complete state of one match. Step treats it as a value:
// it is copied, never mutated in place, so a World handed to a reader
// stays valid forever.
type World struct {
	MatchID uuid.UUID      `json:"matchId"`
	Tick    uint64         `json:"tick"`
	Player  Player         `json:"player"`
	Enemies []Enemy        `json:"enemies"`
	Bullets []Bullet       `json:"bullets"`
	Weapons []WeaponPickup `json:"weapons"`
	Zone    SafeZone       `json:"safeZone"`
	Match   MatchState     `json:"gameState"`
}

// NewWorld builds a fresh match: player at centre, enemies and pickups
// scattered with rng.
func NewWorld(t Tuning, rng *rand.Rand) World {
	w := World{
		MatchID: uuid.NewV4(),
		Player:  NewPlayer(t),
		Enemies: make([]Enemy, 0, t.EnemyCount),
		Bullets: make([]Bullet, 0, 64),
		Weapons: make([]WeaponPickup, 0, t.PickupCount),
		Zone: SafeZone{
			X:          t.CenterX(),
			Y:          t.CenterY(),
			Radius:     t.ZoneRadius,
			NextX:      t.CenterX(),
			NextY:      t.CenterY(),
			NextRadius: t.ZoneNextRadius,
		},
		Match: MatchState{
			Alive:     t.EnemyCount + 1,
			Status:    StatusPlaying,
			ZoneTimer: t.ZoneShrinkTicks,
		},
	}

	for i := 0; i < t.EnemyCount; i++ {
		x, y := spawnPoint(t, rng)
		w.Enemies = append(w.Enemies, Enemy{
			X:          x,
			Y:          y,
			Health:     t.MaxHealth,
			TargetX:    rng.Float64() * t.ArenaWidth,
			TargetY:    rng.Float64() * t.ArenaHeight,
			LastShotMs: NeverFired,
		})
	}

	for i := 0; i < t.PickupCount; i++ {
		x, y := spawnPoint(t, rng)
		id := PickupWeaponIDs[rng.Intn(len(PickupWeaponIDs))]
		w.Weapons = append(w.Weapons, NewWeaponPickup(x, y, GetWeapon(id)))
	}

	return w
}

// spawnPoint returns a uniform point inset by SpawnMargin from every wall.
func spawnPoint(t Tuning, rng *rand.Rand) (float64, float64) {
	m := t.SpawnMargin
	x := rng.Float64()*(t.ArenaWidth-2*m) + m
	y := rng.Float64()*(t.ArenaHeight-2*m) + m
	return x, y
}

// Clone returns a deep copy with its own entity slices.
func (w World) Clone() World {
	c := w
	c.Enemies = append(make([]Enemy, 0, len(w.Enemies)), w.Enemies...)
	c.Bullets = append(make([]Bullet, 0, len(w.Bullets)+8), w.Bullets...)
	c.Weapons = append(make([]WeaponPickup, 0, len(w.Weapons)), w.Weapons...)
	return c
}

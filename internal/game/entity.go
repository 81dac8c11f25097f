package game

import "math"

// NeverFired marks a shooter that has not fired yet this match.
// Far enough in the past that any cooldown has elapsed, close enough to
// zero that subtracting it from a timestamp cannot overflow.
const NeverFired int64 = math.MinInt64 / 4

// Owner tells which side fired a bullet.
type Owner uint8

const (
	OwnerPlayer Owner = iota
	OwnerEnemy
)

// String returns the owner label used in logs and JSON.
func (o Owner) String() string {
	if o == OwnerPlayer {
		return "player"
	}
	return "enemy"
}

// MarshalText encodes the owner as its label.
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Status is the match outcome state machine.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusVictory Status = "victory"
	StatusDefeat  Status = "defeat"
)

// IsTerminal reports whether the match is over.
func (s Status) IsTerminal() bool {
	return s == StatusVictory || s == StatusDefeat
}

// Player is the human-controlled combatant.
type Player struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Health     float64 `json:"health"`
	Angle      float64 `json:"angle"` // Facing, radians
	Speed      float64 `json:"speed"`
	Weapon     string  `json:"weapon"`
	Ammo       int     `json:"ammo"`
	MaxAmmo    int     `json:"maxAmmo"`
	LastShotMs int64   `json:"-"`
	FireRateMs int64   `json:"fireRateMs"`
}

// NewPlayer creates the player at the arena centre with the default loadout.
func NewPlayer(t Tuning) Player {
	w := GetWeapon(DefaultWeaponID)
	return Player{
		X:          t.CenterX(),
		Y:          t.CenterY(),
		Health:     t.MaxHealth,
		Speed:      t.PlayerSpeed,
		Weapon:     w.ID,
		Ammo:       w.Ammo,
		MaxAmmo:    w.Ammo,
		LastShotMs: NeverFired,
		FireRateMs: w.FireRateMs,
	}
}

// TakeDamage subtracts health, clamping at zero. Returns true when the
// player is dead afterwards.
func (p *Player) TakeDamage(amount float64) bool {
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		return true
	}
	return false
}

// IsDead reports whether the player has no health left.
func (p Player) IsDead() bool {
	return p.Health <= 0
}

// Enemy is an AI opponent. Enemies at zero health leave the active set.
type Enemy struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Health     float64 `json:"health"`
	TargetX    float64 `json:"targetX"`
	TargetY    float64 `json:"targetY"`
	LastShotMs int64   `json:"-"`
}

// TakeDamage subtracts health, clamping at zero. Returns true on elimination.
func (e *Enemy) TakeDamage(amount float64) bool {
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		return true
	}
	return false
}

// Bullet is a projectile in flight.
type Bullet struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Owner Owner   `json:"owner"`
}

// NewBullet creates a bullet leaving (x, y) along angle at speed.
func NewBullet(x, y, angle, speed float64, owner Owner) Bullet {
	return Bullet{
		X:     x,
		Y:     y,
		VX:    math.Cos(angle) * speed,
		VY:    math.Sin(angle) * speed,
		Owner: owner,
	}
}

// WeaponPickup is a weapon lying on the floor.
type WeaponPickup struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Type       string  `json:"type"`
	Ammo       int     `json:"ammo"`
	FireRateMs int64   `json:"fireRateMs"`
}

// NewWeaponPickup places a catalog weapon at (x, y).
func NewWeaponPickup(x, y float64, w Weapon) WeaponPickup {
	return WeaponPickup{X: x, Y: y, Type: w.ID, Ammo: w.Ammo, FireRateMs: w.FireRateMs}
}

// SafeZone is the current circle plus the one it will shrink to.
type SafeZone struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	NextX      float64 `json:"nextX"`
	NextY      float64 `json:"nextY"`
	NextRadius float64 `json:"nextRadius"`
}

// Contains reports whether (x, y) is inside the current circle.
func (z SafeZone) Contains(x, y float64) bool {
	return Distance(z.X, z.Y, x, y) <= z.Radius
}

// MatchState tracks the outcome and the zone countdown.
type MatchState struct {
	Eliminations int    `json:"eliminations"`
	Alive        int    `json:"alive"`
	Status       Status `json:"status"`
	ZoneTimer    int    `json:"safeZoneTimer"` // Ticks until the next shrink
}

package game

import "math"

// Tuning holds every balance constant the simulation reads.
// Distances are arena units, speeds are units per tick, times are
// simulation milliseconds unless the name says ticks.
type Tuning struct {
	// Arena
	ArenaWidth  float64
	ArenaHeight float64
	TickRate    int     // Logical ticks per second
	MoveMargin  float64 // Player clamp margin from each wall
	SpawnMargin float64 // Keep spawns this far from the walls

	// Population
	EnemyCount  int
	PickupCount int

	// Player
	MaxHealth         float64
	PlayerSpeed       float64
	PlayerBulletSpeed float64
	PickupRadius      float64

	// Combat
	HitRadius          float64
	PlayerBulletDamage float64
	EnemyBulletDamage  float64

	// Enemy AI
	EnemySpeed          float64
	WanderReachRadius   float64
	EnemyFireRange      float64
	EnemyFireCooldownMs int64
	EnemyBulletSpeed    float64

	// Aim-assist
	AimConeHalfAngle float64 // radians
	AimMaxRange      float64
	AimAssistWeight  float64 // Share of the correction toward the target

	// Safe zone
	ZoneShrinkTicks int
	ZoneRadius      float64
	ZoneNextRadius  float64
	ZoneShrinkStep  float64
	ZoneMinRadius   float64
	ZoneJitter      float64 // Max offset of the next centre from arena centre
	ZoneDamage      float64 // Per tick outside the zone

	// Spatial broad phase
	GridCellSize float64
}

// DefaultTuning returns the stock balance values.
func DefaultTuning() Tuning {
	return Tuning{
		ArenaWidth:  1200,
		ArenaHeight: 800,
		TickRate:    60,
		MoveMargin:  20,
		SpawnMargin: 50,

		EnemyCount:  9,
		PickupCount: 5,

		MaxHealth:         100,
		PlayerSpeed:       3,
		PlayerBulletSpeed: 8,
		PickupRadius:      30,

		HitRadius:          20,
		PlayerBulletDamage: 34, // three hits kill
		EnemyBulletDamage:  10,

		EnemySpeed:          1.5,
		WanderReachRadius:   10,
		EnemyFireRange:      300,
		EnemyFireCooldownMs: 1000,
		EnemyBulletSpeed:    6,

		AimConeHalfAngle: math.Pi / 4,
		AimMaxRange:      300,
		AimAssistWeight:  0.4,

		ZoneShrinkTicks: 600, // 10s at 60 TPS
		ZoneRadius:      350,
		ZoneNextRadius:  250,
		ZoneShrinkStep:  50,
		ZoneMinRadius:   150,
		ZoneJitter:      100,
		ZoneDamage:      0.5,

		GridCellSize: 100,
	}
}

// CenterX returns the arena centre on the x axis.
func (t Tuning) CenterX() float64 { return t.ArenaWidth / 2 }

// CenterY returns the arena centre on the y axis.
func (t Tuning) CenterY() float64 { return t.ArenaHeight / 2 }

// TickMs converts a tick number to simulation milliseconds.
func (t Tuning) TickMs(tick uint64) int64 {
	rate := t.TickRate
	if rate <= 0 {
		rate = 60
	}
	return int64(tick) * 1000 / int64(rate)
}

// InBounds reports whether a point lies inside the arena rectangle.
func (t Tuning) InBounds(x, y float64) bool {
	return x >= 0 && x <= t.ArenaWidth && y >= 0 && y <= t.ArenaHeight
}

package game

import (
	"math/rand"

	"apex-arena/internal/game/spatial"
)

// Simulation owns the tuning, the random source and scratch space, and
// turns one World into the next. It is not safe for concurrent use; the
// Engine serialises calls.
type Simulation struct {
	tuning Tuning
	rng    *rand.Rand
	grid   *spatial.Grid
}

// NewSimulation creates a simulation drawing randomness from rng.
func NewSimulation(t Tuning, rng *rand.Rand) *Simulation {
	return &Simulation{
		tuning: t,
		rng:    rng,
		grid:   spatial.NewGrid(t.ArenaWidth, t.ArenaHeight, t.GridCellSize),
	}
}

// Tuning returns the balance values in use.
func (s *Simulation) Tuning() Tuning {
	return s.tuning
}

// NewWorld builds a fresh match.
func (s *Simulation) NewWorld() World {
	return NewWorld(s.tuning, s.rng)
}

// Step advances w by one tick and returns the next world plus what
// happened. w itself is never modified. A finished match is returned as is.
//
// Order: move + pickup, player fire, enemy AI, bullet flight and culling,
// collisions, zone, victory check.
func (s *Simulation) Step(w World, in Input) (World, []Event) {
	if w.Match.Status.IsTerminal() {
		return w, nil
	}

	t := s.tuning
	next := w.Clone()
	next.Tick++
	now := t.TickMs(next.Tick)
	var events []Event

	// 1. Movement, facing, pickup
	next.Player = MovePlayer(next.Player, in, t)
	if in.Interact {
		p, weapons, ok := Pickup(next.Player, next.Weapons, t)
		if ok {
			next.Player, next.Weapons = p, weapons
			events = append(events, NewEvent(EventTypePickup, next.Tick, SourcePlayer, PickupPayload{
				Weapon: p.Weapon,
				Ammo:   p.Ammo,
			}))
		}
	}

	// 2. Player fire
	if in.FireHeld || in.FirePressed {
		angle := AngleTo(next.Player.X, next.Player.Y, in.AimX, in.AimY)
		if in.AimAssist {
			angle = AimAssist(angle, next.Player.X, next.Player.Y, next.Enemies, t)
		}
		if p, b, ok := Fire(next.Player, angle, now, t); ok {
			next.Player = p
			next.Bullets = append(next.Bullets, b)
			events = append(events, NewEvent(EventTypeShot, next.Tick, SourcePlayer, ShotPayload{
				X:     b.X,
				Y:     b.Y,
				Angle: angle,
				Ammo:  p.Ammo,
			}))
		}
	}

	// 3. Enemy AI
	enemies, fired, aiEvents := UpdateEnemies(next.Enemies, next.Player, now, next.Tick, t, s.rng)
	next.Enemies = enemies
	next.Bullets = append(next.Bullets, fired...)
	events = append(events, aiEvents...)

	// 4. Bullet flight
	next.Bullets = AdvanceBullets(next.Bullets, t)

	// 5. Collisions
	res := ResolveCombat(next.Bullets, next.Enemies, next.Player, next.Tick, t, s.grid)
	next.Bullets = res.Bullets
	next.Enemies = res.Enemies
	next.Player = res.Player
	next.Match.Eliminations += res.Eliminations
	next.Match.Alive -= res.Eliminations
	events = append(events, res.Events...)
	if res.Defeated {
		next.Match.Status = StatusDefeat
	}

	// 6. Zone
	if next.Match.Status == StatusPlaying {
		zone, timer, shrunk := AdvanceZone(next.Zone, next.Match.ZoneTimer, t, s.rng)
		next.Zone = zone
		next.Match.ZoneTimer = timer
		if shrunk {
			events = append(events, NewEvent(EventTypeZoneShrink, next.Tick, SourceZone, ZoneShrinkPayload{
				X:          zone.X,
				Y:          zone.Y,
				Radius:     zone.Radius,
				NextRadius: zone.NextRadius,
			}))
		}
		if ApplyZoneDamage(&next.Player, next.Zone, t) {
			next.Match.Status = StatusDefeat
		}
	}

	// 7. Outcome
	if next.Match.Status == StatusPlaying && len(next.Enemies) == 0 && next.Match.Alive <= 1 {
		next.Match.Status = StatusVictory
	}

	switch next.Match.Status {
	case StatusDefeat:
		events = append(events, NewEvent(EventTypeDefeat, next.Tick, SourceMatch, OutcomePayload{
			Eliminations: next.Match.Eliminations,
			Health:       next.Player.Health,
		}))
	case StatusVictory:
		events = append(events, NewEvent(EventTypeVictory, next.Tick, SourceMatch, OutcomePayload{
			Eliminations: next.Match.Eliminations,
			Health:       next.Player.Health,
		}))
	}

	return next, events
}

// MovePlayer applies one tick of movement, clamps to the arena margin and
// turns the player toward the aim point.
func MovePlayer(p Player, in Input, t Tuning) Player {
	x, y := p.X, p.Y

	if in.HasJoystick() {
		x += Clamp(in.MoveX, -1, 1) * p.Speed
		y += Clamp(in.MoveY, -1, 1) * p.Speed
	} else {
		if in.Up {
			y -= p.Speed
		}
		if in.Down {
			y += p.Speed
		}
		if in.Left {
			x -= p.Speed
		}
		if in.Right {
			x += p.Speed
		}
	}

	p.X = Clamp(x, t.MoveMargin, t.ArenaWidth-t.MoveMargin)
	p.Y = Clamp(y, t.MoveMargin, t.ArenaHeight-t.MoveMargin)
	p.Angle = AngleTo(p.X, p.Y, in.AimX, in.AimY)
	return p
}

package game

import "apex-arena/internal/game/spatial"

// CombatResult is the outcome of one collision pass.
type CombatResult struct {
	Bullets      []Bullet // Survivors, in original order
	Enemies      []Enemy  // Survivors with updated health, in original order
	Player       Player
	Eliminations int
	Defeated     bool
	Events       []Event
}

// AdvanceBullets moves every bullet by its velocity and drops those that
// leave the arena. Returns a new slice.
func AdvanceBullets(bullets []Bullet, t Tuning) []Bullet {
	out := make([]Bullet, 0, len(bullets))
	for _, b := range bullets {
		b.X += b.VX
		b.Y += b.VY
		if !t.InBounds(b.X, b.Y) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ResolveCombat tests each bullet against the opposing side.
// Player bullets only test enemies, enemy bullets only test the player.
// A bullet hits at most one target; among overlapping enemies the first in
// slice order takes it. Once the player is dead, enemy bullets pass through.
//
// grid is scratch space for the enemy broad phase and may be nil.
func ResolveCombat(bullets []Bullet, enemies []Enemy, player Player, tick uint64, t Tuning, grid *spatial.Grid) CombatResult {
	res := CombatResult{
		Bullets: make([]Bullet, 0, len(bullets)),
		Player:  player,
	}

	working := append(make([]Enemy, 0, len(enemies)), enemies...)
	removed := make([]bool, len(working))

	if grid == nil {
		grid = spatial.NewGrid(t.ArenaWidth, t.ArenaHeight, t.GridCellSize)
	}
	grid.Clear()
	for i, e := range working {
		grid.Insert(i, e.X, e.Y)
	}

	alive := len(working)
	for _, b := range bullets {
		if b.Owner == OwnerPlayer {
			idx := firstEnemyHit(b, working, removed, t.HitRadius, grid)
			if idx < 0 {
				res.Bullets = append(res.Bullets, b)
				continue
			}

			e := &working[idx]
			dead := e.TakeDamage(t.PlayerBulletDamage)
			res.Events = append(res.Events, NewEvent(EventTypeHit, tick, SourcePlayer, HitPayload{
				Target: SourceEnemy,
				Damage: t.PlayerBulletDamage,
				Health: e.Health,
			}))
			if dead {
				removed[idx] = true
				alive--
				res.Eliminations++
				res.Events = append(res.Events, NewEvent(EventTypeKill, tick, SourcePlayer, KillPayload{
					X:            e.X,
					Y:            e.Y,
					Eliminations: res.Eliminations,
					Alive:        alive,
				}))
			}
			continue
		}

		if res.Defeated || Distance(b.X, b.Y, res.Player.X, res.Player.Y) >= t.HitRadius {
			res.Bullets = append(res.Bullets, b)
			continue
		}

		res.Defeated = res.Player.TakeDamage(t.EnemyBulletDamage)
		res.Events = append(res.Events, NewEvent(EventTypeHit, tick, SourceEnemy, HitPayload{
			Target: SourcePlayer,
			Damage: t.EnemyBulletDamage,
			Health: res.Player.Health,
		}))
	}

	res.Enemies = make([]Enemy, 0, alive)
	for i, e := range working {
		if !removed[i] {
			res.Enemies = append(res.Enemies, e)
		}
	}

	return res
}

// firstEnemyHit returns the lowest index of a live enemy within radius of b,
// or -1.
func firstEnemyHit(b Bullet, enemies []Enemy, removed []bool, radius float64, grid *spatial.Grid) int {
	for _, i := range grid.QueryRadius(b.X, b.Y, radius) {
		if removed[i] {
			continue
		}
		if Distance(b.X, b.Y, enemies[i].X, enemies[i].Y) < radius {
			return i
		}
	}
	return -1
}

// Fire attempts a player shot along angle at simulation time nowMs.
// Requires the cooldown to have elapsed and ammo > 0; otherwise the player
// is returned unchanged with ok == false.
func Fire(p Player, angle float64, nowMs int64, t Tuning) (Player, Bullet, bool) {
	if nowMs-p.LastShotMs < p.FireRateMs || p.Ammo <= 0 {
		return p, Bullet{}, false
	}

	b := NewBullet(p.X, p.Y, angle, t.PlayerBulletSpeed, OwnerPlayer)
	p.Ammo--
	p.LastShotMs = nowMs
	return p, b, true
}

// Pickup swaps in the first weapon within reach of the player.
// Returns the inputs unchanged with ok == false when nothing is in range.
func Pickup(p Player, weapons []WeaponPickup, t Tuning) (Player, []WeaponPickup, bool) {
	for i, w := range weapons {
		if Distance(p.X, p.Y, w.X, w.Y) > t.PickupRadius {
			continue
		}

		p.Weapon = w.Type
		p.Ammo = w.Ammo
		p.MaxAmmo = w.Ammo
		p.FireRateMs = w.FireRateMs

		rest := make([]WeaponPickup, 0, len(weapons)-1)
		rest = append(rest, weapons[:i]...)
		rest = append(rest, weapons[i+1:]...)
		return p, rest, true
	}
	return p, weapons, false
}

package game

import (
	"math"
	"math/rand"
)

// UpdateEnemies advances every enemy one tick and returns the moved set
// plus any bullets they fired.
//
// Movement: re-roll the wander target once within WanderReachRadius,
// otherwise step EnemySpeed toward it. Firing is decided independently:
// player within EnemyFireRange and more than EnemyFireCooldownMs since the
// last shot. Shots leave from the pre-move position and aim straight at
// the player, no leading.
func UpdateEnemies(enemies []Enemy, player Player, nowMs int64, tick uint64, t Tuning, rng *rand.Rand) ([]Enemy, []Bullet, []Event) {
	out := make([]Enemy, 0, len(enemies))
	var spawned []Bullet
	var events []Event

	for _, e := range enemies {
		if Distance(e.X, e.Y, player.X, player.Y) < t.EnemyFireRange && nowMs-e.LastShotMs > t.EnemyFireCooldownMs {
			angle := AngleTo(e.X, e.Y, player.X, player.Y)
			spawned = append(spawned, NewBullet(e.X, e.Y, angle, t.EnemyBulletSpeed, OwnerEnemy))
			e.LastShotMs = nowMs
			events = append(events, NewEvent(EventTypeShot, tick, SourceEnemy, ShotPayload{
				X:     e.X,
				Y:     e.Y,
				Angle: angle,
			}))
		}

		if Distance(e.X, e.Y, e.TargetX, e.TargetY) < t.WanderReachRadius {
			e.TargetX = rng.Float64() * t.ArenaWidth
			e.TargetY = rng.Float64() * t.ArenaHeight
		} else {
			angle := AngleTo(e.X, e.Y, e.TargetX, e.TargetY)
			e.X += math.Cos(angle) * t.EnemySpeed
			e.Y += math.Sin(angle) * t.EnemySpeed
		}

		out = append(out, e)
	}

	return out, spawned, events
}

package ipc

import (
	"time"

	"apex-arena/internal/game"

	uuid "github.com/satori/go.uuid"
)

// SnapshotMessage is the wire form of a game.Snapshot. It carries only
// what a spectator draws.
type SnapshotMessage struct {
	Sequence  uint64
	Timestamp int64 // Unix nano
	MatchID   [16]byte
	Tick      uint64

	Player  PlayerData
	Enemies []EntityData
	Bullets []BulletData
	Weapons []WeaponData
	Zone    game.SafeZone
	Match   MatchData
}

// PlayerData is the IPC representation of the player
type PlayerData struct {
	X, Y    float64
	Health  float64
	Angle   float64
	Weapon  string
	Ammo    int
	MaxAmmo int
}

// EntityData is the IPC representation of an enemy
type EntityData struct {
	X, Y   float64
	Health float64
}

// BulletData is the IPC representation of a bullet
type BulletData struct {
	X, Y, VX, VY float64
	Enemy        bool
}

// WeaponData is the IPC representation of a pickup
type WeaponData struct {
	X, Y float64
	Type string
	Ammo int
}

// MatchData is the IPC representation of the match state
type MatchData struct {
	Eliminations int
	Alive        int
	Status       string
	ZoneTimer    int
}

// snapshotToMessage converts a game snapshot to its wire form
func snapshotToMessage(s *game.Snapshot) *SnapshotMessage {
	msg := &SnapshotMessage{
		Sequence:  s.Sequence,
		Timestamp: s.Timestamp.UnixNano(),
		MatchID:   s.MatchID,
		Tick:      s.Tick,
		Player: PlayerData{
			X:       s.Player.X,
			Y:       s.Player.Y,
			Health:  s.Player.Health,
			Angle:   s.Player.Angle,
			Weapon:  s.Player.Weapon,
			Ammo:    s.Player.Ammo,
			MaxAmmo: s.Player.MaxAmmo,
		},
		Zone: s.Zone,
		Match: MatchData{
			Eliminations: s.Match.Eliminations,
			Alive:        s.Match.Alive,
			Status:       string(s.Match.Status),
			ZoneTimer:    s.Match.ZoneTimer,
		},
	}

	msg.Enemies = make([]EntityData, len(s.Enemies))
	for i, e := range s.Enemies {
		msg.Enemies[i] = EntityData{X: e.X, Y: e.Y, Health: e.Health}
	}

	msg.Bullets = make([]BulletData, len(s.Bullets))
	for i, b := range s.Bullets {
		msg.Bullets[i] = BulletData{X: b.X, Y: b.Y, VX: b.VX, VY: b.VY, Enemy: b.Owner == game.OwnerEnemy}
	}

	msg.Weapons = make([]WeaponData, len(s.Weapons))
	for i, w := range s.Weapons {
		msg.Weapons[i] = WeaponData{X: w.X, Y: w.Y, Type: w.Type, Ammo: w.Ammo}
	}

	return msg
}

// ToSnapshot converts the wire form back into a snapshot renderers accept
func (msg *SnapshotMessage) ToSnapshot() *game.Snapshot {
	snap := &game.Snapshot{
		Sequence:  msg.Sequence,
		Timestamp: time.Unix(0, msg.Timestamp),
	}
	snap.MatchID = uuid.UUID(msg.MatchID)
	snap.Tick = msg.Tick
	snap.Zone = msg.Zone
	snap.Match = game.MatchState{
		Eliminations: msg.Match.Eliminations,
		Alive:        msg.Match.Alive,
		Status:       game.Status(msg.Match.Status),
		ZoneTimer:    msg.Match.ZoneTimer,
	}

	w := game.GetWeapon(msg.Player.Weapon)
	snap.Player = game.Player{
		X:          msg.Player.X,
		Y:          msg.Player.Y,
		Health:     msg.Player.Health,
		Angle:      msg.Player.Angle,
		Weapon:     msg.Player.Weapon,
		Ammo:       msg.Player.Ammo,
		MaxAmmo:    msg.Player.MaxAmmo,
		LastShotMs: game.NeverFired,
		FireRateMs: w.FireRateMs,
	}

	snap.Enemies = make([]game.Enemy, len(msg.Enemies))
	for i, e := range msg.Enemies {
		snap.Enemies[i] = game.Enemy{X: e.X, Y: e.Y, Health: e.Health}
	}

	snap.Bullets = make([]game.Bullet, len(msg.Bullets))
	for i, b := range msg.Bullets {
		owner := game.OwnerPlayer
		if b.Enemy {
			owner = game.OwnerEnemy
		}
		snap.Bullets[i] = game.Bullet{X: b.X, Y: b.Y, VX: b.VX, VY: b.VY, Owner: owner}
	}

	snap.Weapons = make([]game.WeaponPickup, len(msg.Weapons))
	for i, p := range msg.Weapons {
		snap.Weapons[i] = game.WeaponPickup{
			X:          p.X,
			Y:          p.Y,
			Type:       p.Type,
			Ammo:       p.Ammo,
			FireRateMs: game.GetWeapon(p.Type).FireRateMs,
		}
	}

	return snap
}

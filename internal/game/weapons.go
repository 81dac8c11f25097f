package game

import "sort"

// Weapon is a firearm loadout the player can carry.
type Weapon struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Ammo       int    `json:"ammo"`       // Granted on pickup, also the new max
	FireRateMs int64  `json:"fireRateMs"` // Minimum gap between shots
	Color      string `json:"color"`
}

// DefaultWeaponID is the loadout every match starts with.
const DefaultWeaponID = "PISTOL"

// Weapons is the catalog of all firearms.
var Weapons = map[string]Weapon{
	"PISTOL": {
		ID:         "PISTOL",
		Name:       "Pistol",
		Ammo:       50,
		FireRateMs: 300,
		Color:      "#ffeb3b",
	},
	"RIFLE": {
		ID:         "RIFLE",
		Name:       "Assault Rifle",
		Ammo:       100,
		FireRateMs: 150,
		Color:      "#2196f3",
	},
	"SMG": {
		ID:         "SMG",
		Name:       "SMG",
		Ammo:       120,
		FireRateMs: 100,
		Color:      "#8bc34a",
	},
	"SHOTGUN": {
		ID:         "SHOTGUN",
		Name:       "Shotgun",
		Ammo:       30,
		FireRateMs: 800,
		Color:      "#ff5722",
	},
}

// PickupWeaponIDs lists the types that can spawn as floor pickups.
// The pistol is starting gear only.
var PickupWeaponIDs = []string{"RIFLE", "SMG", "SHOTGUN"}

// GetWeapon returns a weapon by ID, defaults to the pistol.
func GetWeapon(id string) Weapon {
	if w, ok := Weapons[id]; ok {
		return w
	}
	return Weapons[DefaultWeaponID]
}

// GetAllWeapons returns all weapons sorted by ID.
func GetAllWeapons() []Weapon {
	weapons := make([]Weapon, 0, len(Weapons))
	for _, w := range Weapons {
		weapons = append(weapons, w)
	}
	sort.Slice(weapons, func(i, j int) bool { return weapons[i].ID < weapons[j].ID })
	return weapons
}

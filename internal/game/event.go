package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeMatchStart
	EventTypeShot
	EventTypeHit
	EventTypeKill
	EventTypePickup
	EventTypeZoneShrink
	EventTypeVictory
	EventTypeDefeat
)

// EventVersion for backwards compatibility of the log format
const EventVersion uint8 = 1

// Event sources
const (
	SourcePlayer = "player"
	SourceEnemy  = "enemy"
	SourceZone   = "zone"
	SourceMatch  = "match"
)

// Event is one thing that happened during a tick
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano, stamped when logged
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeMatchStart:
		return "match_start"
	case EventTypeShot:
		return "shot"
	case EventTypeHit:
		return "hit"
	case EventTypeKill:
		return "kill"
	case EventTypePickup:
		return "pickup"
	case EventTypeZoneShrink:
		return "zone_shrink"
	case EventTypeVictory:
		return "victory"
	case EventTypeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name so the log stays readable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads

// MatchStartPayload describes a freshly initialised match
type MatchStartPayload struct {
	MatchID string `json:"matchId"`
	Enemies int    `json:"enemies"`
	Weapons int    `json:"weapons"`
}

// ShotPayload describes a bullet leaving a barrel
type ShotPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	Ammo  int     `json:"ammo,omitempty"`
}

// HitPayload describes a bullet connecting
type HitPayload struct {
	Target string  `json:"target"`
	Damage float64 `json:"damage"`
	Health float64 `json:"health"`
}

// KillPayload describes an enemy elimination
type KillPayload struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Eliminations int     `json:"eliminations"`
	Alive        int     `json:"alive"`
}

// PickupPayload describes a weapon swap
type PickupPayload struct {
	Weapon string `json:"weapon"`
	Ammo   int    `json:"ammo"`
}

// ZoneShrinkPayload describes the zone stepping inward
type ZoneShrinkPayload struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	NextRadius float64 `json:"nextRadius"`
}

// OutcomePayload describes a terminal transition
type OutcomePayload struct {
	Eliminations int     `json:"eliminations"`
	Health       float64 `json:"health"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates an unstamped event; the engine sets Timestamp when it
// hands the event to the log.
func NewEvent(eventType EventType, tickNum uint64, source string, payload interface{}) Event {
	return Event{
		Version: EventVersion,
		Type:    eventType,
		TickNum: tickNum,
		Source:  source,
		Payload: EncodePayload(payload),
	}
}

// Stamp sets the wall-clock timestamp if missing.
func (e *Event) Stamp(now time.Time) {
	if e.Timestamp == 0 {
		e.Timestamp = now.UnixNano()
	}
}

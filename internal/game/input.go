package game

import "sync"

// Input is the set of intents the clock reads at the start of a tick.
// Level fields hold until changed; edge fields fire once per press.
type Input struct {
	// Joystick vector, each axis in [-1, 1]. Takes precedence over keys
	// when non-zero.
	MoveX, MoveY float64

	// Discrete directional keys
	Up, Down, Left, Right bool

	// Aim point in arena coordinates
	AimX, AimY float64

	FireHeld  bool // Continuous fire (touch fire button)
	AimAssist bool // Apply aim-assist to shots

	// Edge triggered
	FirePressed bool // Single click shot
	Interact    bool // Weapon pickup
	Restart     bool // Reinitialise the match
}

// HasJoystick reports whether the joystick vector is active.
func (in Input) HasJoystick() bool {
	return in.MoveX != 0 || in.MoveY != 0
}

// InputBuffer collects intents from any number of adapters. Writers never
// block on the simulation; the clock takes a copy with Poll.
type InputBuffer struct {
	mu    sync.Mutex
	state Input
}

// NewInputBuffer creates an empty buffer.
func NewInputBuffer() *InputBuffer {
	return &InputBuffer{}
}

// SetMove sets the joystick vector, clamping each axis to [-1, 1].
func (b *InputBuffer) SetMove(x, y float64) {
	b.mu.Lock()
	b.state.MoveX = Clamp(x, -1, 1)
	b.state.MoveY = Clamp(y, -1, 1)
	b.mu.Unlock()
}

// SetKeys replaces the directional key state.
func (b *InputBuffer) SetKeys(up, down, left, right bool) {
	b.mu.Lock()
	b.state.Up, b.state.Down, b.state.Left, b.state.Right = up, down, left, right
	b.mu.Unlock()
}

// SetAim sets the aim point.
func (b *InputBuffer) SetAim(x, y float64) {
	b.mu.Lock()
	b.state.AimX, b.state.AimY = x, y
	b.mu.Unlock()
}

// SetFireHeld starts or stops continuous fire.
func (b *InputBuffer) SetFireHeld(held bool) {
	b.mu.Lock()
	b.state.FireHeld = held
	b.mu.Unlock()
}

// SetAimAssist toggles aim-assist for subsequent shots.
func (b *InputBuffer) SetAimAssist(on bool) {
	b.mu.Lock()
	b.state.AimAssist = on
	b.mu.Unlock()
}

// PressFire latches a single shot.
func (b *InputBuffer) PressFire() {
	b.mu.Lock()
	b.state.FirePressed = true
	b.mu.Unlock()
}

// PressInteract latches a pickup attempt.
func (b *InputBuffer) PressInteract() {
	b.mu.Lock()
	b.state.Interact = true
	b.mu.Unlock()
}

// PressRestart latches a match restart.
func (b *InputBuffer) PressRestart() {
	b.mu.Lock()
	b.state.Restart = true
	b.mu.Unlock()
}

// Poll returns the current intents and clears the edge triggers.
func (b *InputBuffer) Poll() Input {
	b.mu.Lock()
	defer b.mu.Unlock()

	in := b.state
	b.state.FirePressed = false
	b.state.Interact = false
	b.state.Restart = false
	return in
}

// Peek returns the current intents without consuming edges.
func (b *InputBuffer) Peek() Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// InputUpdate is a partial intent change as sent by remote adapters.
// Nil fields leave the buffer untouched.
type InputUpdate struct {
	MoveX     *float64 `json:"moveX,omitempty"`
	MoveY     *float64 `json:"moveY,omitempty"`
	Up        *bool    `json:"up,omitempty"`
	Down      *bool    `json:"down,omitempty"`
	Left      *bool    `json:"left,omitempty"`
	Right     *bool    `json:"right,omitempty"`
	AimX      *float64 `json:"aimX,omitempty"`
	AimY      *float64 `json:"aimY,omitempty"`
	FireHeld  *bool    `json:"fireHeld,omitempty"`
	AimAssist *bool    `json:"aimAssist,omitempty"`
	Fire      bool     `json:"fire,omitempty"`
	Interact  bool     `json:"interact,omitempty"`
	Restart   bool     `json:"restart,omitempty"`
}

// Apply writes the update into b under a single lock.
func (u InputUpdate) Apply(b *InputBuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &b.state
	if u.MoveX != nil {
		s.MoveX = Clamp(*u.MoveX, -1, 1)
	}
	if u.MoveY != nil {
		s.MoveY = Clamp(*u.MoveY, -1, 1)
	}
	if u.Up != nil {
		s.Up = *u.Up
	}
	if u.Down != nil {
		s.Down = *u.Down
	}
	if u.Left != nil {
		s.Left = *u.Left
	}
	if u.Right != nil {
		s.Right = *u.Right
	}
	if u.AimX != nil {
		s.AimX = *u.AimX
	}
	if u.AimY != nil {
		s.AimY = *u.AimY
	}
	if u.FireHeld != nil {
		s.FireHeld = *u.FireHeld
	}
	if u.AimAssist != nil {
		s.AimAssist = *u.AimAssist
	}
	if u.Fire {
		s.FirePressed = true
	}
	if u.Interact {
		s.Interact = true
	}
	if u.Restart {
		s.Restart = true
	}
}

package tui

import (
	"sync"
	"time"

	"apex-arena/internal/game"

	"github.com/gdamore/tcell/v2"
)

// HoldWindow is how long a movement key counts as held after its last
// press. Terminals report key repeats but never releases.
const HoldWindow = 150 * time.Millisecond

type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
	dirCount
)

// Controller translates terminal events into intents.
type Controller struct {
	mu       sync.Mutex
	buf      *game.InputBuffer
	view     Viewport
	held     [dirCount]time.Time
	assist   bool
	fireDown bool
	now      func() time.Time
}

// NewController creates a controller writing into buf. Aim-assist starts on.
func NewController(buf *game.InputBuffer, view Viewport) *Controller {
	c := &Controller{
		buf:    buf,
		view:   view,
		assist: true,
		now:    time.Now,
	}
	buf.SetAimAssist(true)
	return c
}

// SetViewport updates the cell mapping after a resize.
func (c *Controller) SetViewport(v Viewport) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}

// AimAssist reports whether aim-assist is enabled.
func (c *Controller) AimAssist() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assist
}

// HandleEvent applies one terminal event. It returns false when the
// player asked to quit.
func (c *Controller) HandleEvent(ev tcell.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev)
	case *tcell.EventMouse:
		c.handleMouse(ev)
	}
	return true
}

func (c *Controller) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		c.hold(dirUp)
	case tcell.KeyDown:
		c.hold(dirDown)
	case tcell.KeyLeft:
		c.hold(dirLeft)
	case tcell.KeyRight:
		c.hold(dirRight)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'w', 'W':
			c.hold(dirUp)
		case 's', 'S':
			c.hold(dirDown)
		case 'a', 'A':
			c.hold(dirLeft)
		case 'd', 'D':
			c.hold(dirRight)
		case ' ':
			c.buf.PressFire()
		case 'e', 'E':
			c.buf.PressInteract()
		case 'r', 'R':
			c.buf.PressRestart()
		case 'f', 'F':
			c.assist = !c.assist
			c.buf.SetAimAssist(c.assist)
		}
	}
	return true
}

func (c *Controller) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := c.view.ToArena(col, row)
	c.buf.SetAim(x, y)

	down := ev.Buttons()&tcell.Button1 != 0
	if down != c.fireDown {
		c.fireDown = down
		c.buf.SetFireHeld(down)
	}
}

// hold must be called with c.mu held
func (c *Controller) hold(d direction) {
	c.held[d] = c.now()
	c.syncKeys()
}

// Refresh releases movement keys whose hold window has expired. Call it
// once per frame.
func (c *Controller) Refresh() {
	c.mu.Lock()
	c.syncKeys()
	c.mu.Unlock()
}

func (c *Controller) syncKeys() {
	now := c.now()
	active := func(d direction) bool {
		return !c.held[d].IsZero() && now.Sub(c.held[d]) < HoldWindow
	}
	c.buf.SetKeys(active(dirUp), active(dirDown), active(dirLeft), active(dirRight))
}

package tui

import (
	"context"
	"log"
	"time"

	"apex-arena/internal/game"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// FrameRate is how often the terminal is redrawn.
const FrameRate = 30

// Source supplies snapshots to draw: a local engine or a spectator feed.
type Source interface {
	GetSnapshot() *game.Snapshot
}

// App owns the terminal for one session.
type App struct {
	screen tcell.Screen
	source Source
	ctrl   *Controller
	arenaW float64
	arenaH float64
}

// NewApp initialises screen (pass nil for the real terminal) and draws
// snapshots from source. Intents go to input; spectators pass a buffer
// nobody reads.
func NewApp(screen tcell.Screen, source Source, input *game.InputBuffer, arenaW, arenaH float64) (*App, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, errors.Wrap(err, "create terminal screen")
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "init terminal screen")
	}
	screen.EnableMouse()
	screen.HideCursor()

	a := &App{
		screen: screen,
		source: source,
		arenaW: arenaW,
		arenaH: arenaH,
	}
	a.ctrl = NewController(input, a.viewport())
	return a, nil
}

func (a *App) viewport() Viewport {
	cols, rows := a.screen.Size()
	return NewViewport(cols, rows, a.arenaW, a.arenaH)
}

// Run draws frames and feeds events to the controller until the player
// quits or ctx is cancelled. The screen is released on return.
func (a *App) Run(ctx context.Context) {
	defer a.screen.Fini()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				a.screen.Sync()
				a.ctrl.SetViewport(a.viewport())
				continue
			}
			if !a.ctrl.HandleEvent(ev) {
				log.Println("👋 Leaving the arena")
				return
			}

		case <-ticker.C:
			a.ctrl.Refresh()
			Draw(a.screen, a.source.GetSnapshot(), a.viewport(), a.ctrl.AimAssist())
			a.screen.Show()
		}
	}
}

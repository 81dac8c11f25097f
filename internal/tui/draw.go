package tui

import (
	"fmt"
	"image/color"
	"math"

	"apex-arena/internal/game"
	"apex-arena/internal/render"

	"github.com/gdamore/tcell/v2"
)

// Canvas is the part of tcell.Screen the drawing code needs.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// Glyphs
const (
	glyphPlayer      = '@'
	glyphEnemy       = 'E'
	glyphBullet      = '•'
	glyphWeapon      = 'w'
	glyphZoneEdge    = '·'
	glyphNextZone    = ':'
	glyphOutsideZone = '░'
)

var (
	styleBase       = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleOutside    = styleBase.Foreground(tcell.ColorMaroon)
	styleZoneEdge   = styleBase.Foreground(cellColor(render.ZoneEdgeColor))
	styleNextZone   = styleBase.Foreground(cellColor(render.NextZoneColor))
	stylePlayer     = styleBase.Foreground(cellColor(render.PlayerColor)).Bold(true)
	styleEnemy      = styleBase.Foreground(cellColor(render.EnemyColor)).Bold(true)
	stylePlayerShot = styleBase.Foreground(cellColor(render.PlayerBulletColor))
	styleEnemyShot  = styleBase.Foreground(cellColor(render.EnemyBulletColor))
	styleWeapon     = styleBase.Foreground(tcell.ColorYellow)
	styleHUD        = styleBase.Foreground(cellColor(render.HUDColor)).Reverse(true)
	styleBanner     = styleBase.Foreground(tcell.ColorWhite).Bold(true).Reverse(true)
)

// cellColor converts a palette entry shared with the PNG renderer
func cellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Draw paints one snapshot. assist is shown in the HUD.
func Draw(cv Canvas, snap *game.Snapshot, view Viewport, assist bool) {
	cols, rows := cv.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cv.SetContent(x, y, ' ', nil, styleBase)
		}
	}
	if snap == nil {
		return
	}

	drawOutside(cv, snap.Zone, view)
	drawCircle(cv, view, snap.Zone.NextX, snap.Zone.NextY, snap.Zone.NextRadius, glyphNextZone, styleNextZone)
	drawCircle(cv, view, snap.Zone.X, snap.Zone.Y, snap.Zone.Radius, glyphZoneEdge, styleZoneEdge)

	for _, w := range snap.Weapons {
		put(cv, view, w.X, w.Y, glyphWeapon, styleWeapon)
	}
	for _, b := range snap.Bullets {
		style := styleEnemyShot
		if b.Owner == game.OwnerPlayer {
			style = stylePlayerShot
		}
		put(cv, view, b.X, b.Y, glyphBullet, style)
	}
	for _, e := range snap.Enemies {
		put(cv, view, e.X, e.Y, glyphEnemy, styleEnemy)
	}
	put(cv, view, snap.Player.X, snap.Player.Y, glyphPlayer, stylePlayer)

	drawHUD(cv, snap, cols, assist)

	switch snap.Match.Status {
	case game.StatusVictory:
		drawBanner(cv, cols, rows, fmt.Sprintf(" VICTORY  %d eliminations  (r to restart) ", snap.Match.Eliminations))
	case game.StatusDefeat:
		drawBanner(cv, cols, rows, fmt.Sprintf(" DEFEATED  %d eliminations  (r to restart) ", snap.Match.Eliminations))
	}
}

func put(cv Canvas, view Viewport, x, y float64, r rune, style tcell.Style) {
	if col, row, ok := view.ToCell(x, y); ok {
		cv.SetContent(col, row, r, nil, style)
	}
}

// drawOutside shades every field cell whose centre lies outside the zone
func drawOutside(cv Canvas, zone game.SafeZone, view Viewport) {
	rows := view.fieldRows()
	for row := HUDRows; row < HUDRows+rows; row++ {
		for col := 0; col < view.Cols; col++ {
			x, y := view.ToArena(col, row)
			if !zone.Contains(x, y) {
				cv.SetContent(col, row, glyphOutsideZone, nil, styleOutside)
			}
		}
	}
}

// drawCircle traces a circle outline with enough samples to close it at
// terminal resolution
func drawCircle(cv Canvas, view Viewport, cx, cy, radius float64, r rune, style tcell.Style) {
	if radius <= 0 {
		return
	}
	steps := int(2*math.Pi*radius/view.ArenaW*float64(view.Cols)) * 2
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		put(cv, view, cx+math.Cos(a)*radius, cy+math.Sin(a)*radius, r, style)
	}
}

func drawHUD(cv Canvas, snap *game.Snapshot, cols int, assist bool) {
	mode := "manual"
	if assist {
		mode = "assist"
	}
	line := fmt.Sprintf(" HP %3.0f | %s %d/%d | Kills %d | Alive %d | Zone %.0f | %s ",
		snap.Player.Health, snap.Player.Weapon, snap.Player.Ammo, snap.Player.MaxAmmo,
		snap.Match.Eliminations, snap.Match.Alive, snap.Zone.Radius, mode)
	drawText(cv, 0, 0, cols, line, styleHUD)
}

func drawBanner(cv Canvas, cols, rows int, text string) {
	width := len([]rune(text))
	x := (cols - width) / 2
	if x < 0 {
		x = 0
	}
	drawText(cv, x, HUDRows+(rows-HUDRows)/2, cols, text, styleBanner)
}

// drawText writes text from (x, y), padding the HUD row to the full width
func drawText(cv Canvas, x, y, cols int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= cols {
			return
		}
		cv.SetContent(col, y, r, nil, style)
		col++
	}
	if y == 0 {
		for ; col < cols; col++ {
			cv.SetContent(col, y, ' ', nil, style)
		}
	}
}

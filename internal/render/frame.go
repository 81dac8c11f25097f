// Package render draws arena snapshots into images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"apex-arena/internal/game"
)

// Palette
var (
	BackgroundColor   = color.RGBA{12, 12, 28, 255}
	GridColor         = color.RGBA{30, 30, 45, 255}
	ZoneFillColor     = color.RGBA{33, 150, 243, 28}
	ZoneEdgeColor     = color.RGBA{33, 150, 243, 255}
	NextZoneColor     = color.RGBA{255, 255, 255, 140}
	PlayerColor       = color.RGBA{66, 165, 245, 255}
	EnemyColor        = color.RGBA{239, 83, 80, 255}
	PlayerBulletColor = color.RGBA{255, 235, 59, 255}
	EnemyBulletColor  = color.RGBA{255, 152, 0, 255}
	HUDColor          = color.RGBA{240, 240, 250, 255}
)

const (
	entityRadius = 15.0
	bulletRadius = 3.0
	gridStep     = 100.0
)

// Renderer draws snapshots at a fixed canvas size. One Renderer reuses a
// single canvas, so calls are serialised.
type Renderer struct {
	mu       sync.Mutex
	width    int
	height   int
	dc       *gg.Context
	fontPath string
}

// NewRenderer creates a renderer for an arena of the given size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:    width,
		height:   height,
		dc:       gg.NewContext(width, height),
		fontPath: findFont(),
	}
}

// Size returns the canvas dimensions.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// EncodePNG draws snap and writes it to w as PNG.
func (r *Renderer) EncodePNG(w io.Writer, snap *game.Snapshot) error {
	if snap == nil {
		return errors.New("no snapshot to render")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	if err := r.dc.EncodePNG(w); err != nil {
		return errors.Wrap(err, "encode frame")
	}
	return nil
}

// Render draws snap and returns a copy of the frame.
func (r *Renderer) Render(snap *game.Snapshot) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	src := r.dc.Image()
	out := image.NewRGBA(src.Bounds())
	for y := src.Bounds().Min.Y; y < src.Bounds().Max.Y; y++ {
		for x := src.Bounds().Min.X; x < src.Bounds().Max.X; x++ {
			out.Set(x, y, src.At(x, y))
		}
	}
	return out
}

func (r *Renderer) draw(snap *game.Snapshot) {
	dc := r.dc
	r.drawBackground(dc)
	r.drawZone(dc, snap.Zone)
	r.drawWeapons(dc, snap.Weapons)
	r.drawEnemies(dc, snap.Enemies)
	r.drawBullets(dc, snap.Bullets)
	r.drawPlayer(dc, snap.Player)
	r.drawHUD(dc, snap)
	if snap.Match.Status.IsTerminal() {
		r.drawGameOver(dc, snap)
	}
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(BackgroundColor)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()

	dc.SetColor(GridColor)
	dc.SetLineWidth(1)
	for x := gridStep; x < float64(r.width); x += gridStep {
		dc.DrawLine(x, 0, x, float64(r.height))
		dc.Stroke()
	}
	for y := gridStep; y < float64(r.height); y += gridStep {
		dc.DrawLine(0, y, float64(r.width), y)
		dc.Stroke()
	}
}

func (r *Renderer) drawZone(dc *gg.Context, z game.SafeZone) {
	dc.SetColor(ZoneFillColor)
	dc.DrawCircle(z.X, z.Y, z.Radius)
	dc.Fill()

	dc.SetColor(ZoneEdgeColor)
	dc.SetLineWidth(3)
	dc.DrawCircle(z.X, z.Y, z.Radius)
	dc.Stroke()

	// Planned circle, dashed
	dc.SetColor(NextZoneColor)
	dc.SetLineWidth(2)
	dc.SetDash(10, 8)
	dc.DrawCircle(z.NextX, z.NextY, z.NextRadius)
	dc.Stroke()
	dc.SetDash()
}

func (r *Renderer) drawWeapons(dc *gg.Context, weapons []game.WeaponPickup) {
	for _, w := range weapons {
		dc.SetColor(parseHexColor(game.GetWeapon(w.Type).Color))
		dc.DrawRectangle(w.X-8, w.Y-8, 16, 16)
		dc.Fill()

		dc.SetColor(HUDColor)
		dc.DrawStringAnchored(w.Type, w.X, w.Y+20, 0.5, 0.5)
	}
}

func (r *Renderer) drawEnemies(dc *gg.Context, enemies []game.Enemy) {
	for _, e := range enemies {
		dc.SetColor(EnemyColor)
		dc.DrawCircle(e.X, e.Y, entityRadius)
		dc.Fill()
		drawHealthBar(dc, e.X, e.Y-entityRadius-8, e.Health/100)
	}
}

func (r *Renderer) drawBullets(dc *gg.Context, bullets []game.Bullet) {
	for _, b := range bullets {
		if b.Owner == game.OwnerPlayer {
			dc.SetColor(PlayerBulletColor)
		} else {
			dc.SetColor(EnemyBulletColor)
		}
		dc.DrawCircle(b.X, b.Y, bulletRadius)
		dc.Fill()
	}
}

func (r *Renderer) drawPlayer(dc *gg.Context, p game.Player) {
	dc.SetColor(PlayerColor)
	dc.DrawCircle(p.X, p.Y, entityRadius)
	dc.Fill()

	// Facing
	dc.SetColor(color.White)
	dc.SetLineWidth(3)
	dc.DrawLine(p.X, p.Y, p.X+math.Cos(p.Angle)*(entityRadius+10), p.Y+math.Sin(p.Angle)*(entityRadius+10))
	dc.Stroke()
}

func drawHealthBar(dc *gg.Context, cx, y, pct float64) {
	const w, h = 30.0, 4.0
	pct = game.Clamp(pct, 0, 1)

	dc.SetColor(color.RGBA{51, 51, 51, 255})
	dc.DrawRectangle(cx-w/2, y, w, h)
	dc.Fill()

	if pct > 0.5 {
		dc.SetColor(color.RGBA{83, 255, 69, 255})
	} else if pct > 0.25 {
		dc.SetColor(color.RGBA{255, 149, 0, 255})
	} else {
		dc.SetColor(color.RGBA{255, 62, 62, 255})
	}
	dc.DrawRectangle(cx-w/2, y, w*pct, h)
	dc.Fill()
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *game.Snapshot) {
	r.setFont(dc, 18)
	dc.SetColor(HUDColor)

	p := snap.Player
	lines := []string{
		fmt.Sprintf("HP %.0f", p.Health),
		fmt.Sprintf("%s %d/%d", p.Weapon, p.Ammo, p.MaxAmmo),
		fmt.Sprintf("Alive %d  Kills %d", snap.Match.Alive, snap.Match.Eliminations),
		fmt.Sprintf("Zone %ds", snap.Match.ZoneTimer/60),
	}
	for i, line := range lines {
		dc.DrawString(line, 16, 28+float64(i)*22)
	}

	drawHealthBar(dc, 16+60, 28+float64(len(lines))*22-8, p.Health/100)
}

func (r *Renderer) drawGameOver(dc *gg.Context, snap *game.Snapshot) {
	dc.SetColor(color.RGBA{0, 0, 0, 160})
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()

	title := "DEFEATED"
	titleColor := EnemyColor
	if snap.Match.Status == game.StatusVictory {
		title = "VICTORY"
		titleColor = color.RGBA{255, 215, 0, 255}
	}

	cx, cy := float64(r.width)/2, float64(r.height)/2
	r.setFont(dc, 56)
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(title, cx, cy-30, 0.5, 0.5)

	r.setFont(dc, 22)
	dc.SetColor(HUDColor)
	dc.DrawStringAnchored(fmt.Sprintf("Eliminations: %d", snap.Match.Eliminations), cx, cy+20, 0.5, 0.5)
	dc.DrawStringAnchored("Press R to play again", cx, cy+50, 0.5, 0.5)
}

// setFont loads a TrueType face when one was found; otherwise gg's
// built-in bitmap face stays in use.
func (r *Renderer) setFont(dc *gg.Context, points float64) {
	if r.fontPath == "" {
		return
	}
	if err := dc.LoadFontFace(r.fontPath, points); err != nil {
		r.fontPath = ""
	}
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}

func findFont() string {
	if p := os.Getenv("ARENA_FONT"); p != "" {
		return p
	}

	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	matches, _ := filepath.Glob("*.ttf")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

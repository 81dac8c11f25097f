// Package tui plays the arena in a terminal: tcell events become intents
// in the engine's input buffer and snapshots are drawn as character cells.
package tui

import "math"

// HUDRows is the number of terminal rows reserved above the arena.
const HUDRows = 1

// Viewport maps arena coordinates onto a grid of terminal cells.
type Viewport struct {
	Cols, Rows     int     // Terminal size
	ArenaW, ArenaH float64 // Arena size in world units
}

// NewViewport creates a viewport for a cols x rows terminal.
func NewViewport(cols, rows int, arenaW, arenaH float64) Viewport {
	return Viewport{Cols: cols, Rows: rows, ArenaW: arenaW, ArenaH: arenaH}
}

// fieldRows is the number of rows available to the arena itself.
func (v Viewport) fieldRows() int {
	if n := v.Rows - HUDRows; n > 0 {
		return n
	}
	return 0
}

// ToCell converts an arena position to a terminal cell. ok is false when
// the position falls outside the drawable field.
func (v Viewport) ToCell(x, y float64) (col, row int, ok bool) {
	rows := v.fieldRows()
	if v.Cols <= 0 || rows == 0 || x < 0 || y < 0 || x >= v.ArenaW || y >= v.ArenaH {
		return 0, 0, false
	}
	col = int(x / v.ArenaW * float64(v.Cols))
	row = int(y/v.ArenaH*float64(rows)) + HUDRows
	return col, row, true
}

// ToArena converts a terminal cell to the arena position at its centre.
// Cells outside the field are clamped to its edge.
func (v Viewport) ToArena(col, row int) (x, y float64) {
	rows := v.fieldRows()
	if v.Cols <= 0 || rows == 0 {
		return v.ArenaW / 2, v.ArenaH / 2
	}
	c := math.Max(0, math.Min(float64(col), float64(v.Cols-1)))
	r := math.Max(0, math.Min(float64(row-HUDRows), float64(rows-1)))
	x = (c + 0.5) / float64(v.Cols) * v.ArenaW
	y = (r + 0.5) / float64(rows) * v.ArenaH
	return x, y
}

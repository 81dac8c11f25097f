// Package spatial provides a uniform grid for broad-phase queries over
// small entity sets.
//
// The grid stores slice indices, not pointers, so callers can rebuild it
// from a fresh entity slice every tick without touching the entities.
package spatial

import (
	"math"
	"sort"
)

// Grid buckets entity indices into fixed-size square cells.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col]).
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]int
	scratch     []int // reused for query results
	count       int
}

// NewGrid creates a grid covering width x height.
// cellSize should be at least the usual query radius.
func NewGrid(width, height, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 100
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]int, 0, 32),
	}
}

// Clear empties all cells but keeps their capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert files index at (x, y). Points outside the grid land in the
// nearest edge cell.
func (g *Grid) Insert(index int, x, y float64) {
	col, row := g.clampCell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
	g.count++
}

// Len returns the number of inserted indices.
func (g *Grid) Len() int {
	return g.count
}

// QueryRadius returns the indices in every cell overlapping the square
// around (cx, cy), sorted ascending so callers can keep insertion-order
// tie-breaks. Candidates may lie outside radius; the caller does the exact
// distance check.
//
// The returned slice is reused by the next query.
func (g *Grid) QueryRadius(cx, cy, radius float64) []int {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.clampCell(cx-radius, cy-radius)
	maxCol, maxRow := g.clampCell(cx+radius, cy+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}

	sort.Ints(g.scratch)
	return g.scratch
}

// Dimensions returns the grid dimensions.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}

func (g *Grid) clampCell(x, y float64) (int, int) {
	col := int(math.Floor(x * g.invCellSize))
	row := int(math.Floor(y * g.invCellSize))
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

package plot

import (
	"math"
	"strings"
)

// Grid is a character-cell surface for terminals; one cell is one pixel.
type Grid struct {
	width, height int
	cells         [][]rune
	Background    rune
	Ink           rune
}

// NewGrid creates a blank grid. Non-positive dimensions are raised to 1.
func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{width: width, height: height, Background: '.', Ink: '*'}
	g.cells = make([][]rune, height)
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
	}
	g.Clear()
	return g
}

func (g *Grid) Size() (int, int) { return g.width, g.height }

func (g *Grid) Clear() {
	for _, row := range g.cells {
		for i := range row {
			row[i] = g.Background
		}
	}
}

// FillCircle inks every cell whose center lies within r of (cx, cy), plus the cell holding the
// center itself so that sub-cell radii stay visible. Cells outside the grid are skipped; a
// center on the far edge lands in the last cell.
func (g *Grid) FillCircle(cx, cy, r float64) {
	g.set(g.clampCol(cx), g.clampRow(cy))
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				g.set(x, y)
			}
		}
	}
}

// At returns the rune at column x, row y.
func (g *Grid) At(x, y int) rune {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0
	}
	return g.cells[y][x]
}

func (g *Grid) String() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func (g *Grid) set(x, y int) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.cells[y][x] = g.Ink
}

func (g *Grid) clampCol(v float64) int { return clamp(int(math.Floor(v)), g.width-1) }

func (g *Grid) clampRow(v float64) int { return clamp(int(math.Floor(v)), g.height-1) }

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille runes; each rune holds 2x4 pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas is
// Width*2 by Height*4 sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Isotherm marks every point of a field slice at or above level. rows is
// indexed [j][i]; the slice is stretched over a canvas width runes wide
// and drawn with j growing upwards.
func Isotherm(rows [][]float64, level float64, width int) *Canvas {
	if len(rows) == 0 || len(rows[0]) == 0 || width <= 0 {
		return NewCanvas(0, 0)
	}
	ny, nx := len(rows), len(rows[0])
	px := width * 2
	// keep the aspect ratio of the slice; terminal cells are twice as tall
	// as they are wide, which the 2x4 braille cell already accounts for
	py := max(4, px*ny/nx)
	c := NewCanvas(width, (py+3)/4)

	for y := range py {
		j := ny - 1 - y*ny/py
		for x := range px {
			i := x * nx / px
			if i < len(rows[j]) && rows[j][i] >= level {
				c.Set(x, y)
			}
		}
	}
	return c
}

package models

import (
	"math"

	"github.com/san-kum/heatlab/internal/grid"
)

// Initial fills a temperature field over the whole grid, border included.
type Initial interface {
	Name() string
	Fill(f *grid.Field, geom grid.Geometry)
}

// Gaussian is a blob exp(-r²/w²) scaled by Amplitude on top of Background.
// Center is given as fractions of the domain extent.
type Gaussian struct {
	Amplitude  float64
	Width      float64
	Background float64
	Center     [3]float64
}

func NewGaussian(amplitude, width float64) *Gaussian {
	return &Gaussian{
		Amplitude: amplitude,
		Width:     width,
		Center:    [3]float64{0.5, 0.5, 0.5},
	}
}

func (g *Gaussian) Name() string { return "gaussian" }

func (g *Gaussian) Fill(f *grid.Field, geom grid.Geometry) {
	cx, cy, cz := g.Center[0]*geom.Lx, g.Center[1]*geom.Ly, g.Center[2]*geom.Lz
	w2 := g.Width * g.Width
	s := f.Shape()
	for k := 0; k < s.Nz; k++ {
		for j := 0; j < s.Ny; j++ {
			for i := 0; i < s.Nx; i++ {
				x, y, z := geom.Coord(i, j, k)
				r2 := (x-cx)*(x-cx) + (y-cy)*(y-cy)
				if s.Dims() == 3 {
					r2 += (z - cz) * (z - cz)
				}
				f.Set(i, j, k, g.Background+g.Amplitude*math.Exp(-r2/w2))
			}
		}
	}
}

// Spike sets a single cell to Amplitude and every other cell to Background.
type Spike struct {
	Amplitude  float64
	Background float64
	// Cell is the spike position; a negative component selects the middle
	// of that dimension.
	Cell [3]int
}

func NewSpike(amplitude float64) *Spike {
	return &Spike{Amplitude: amplitude, Cell: [3]int{-1, -1, -1}}
}

func (p *Spike) Name() string { return "spike" }

func (p *Spike) Fill(f *grid.Field, _ grid.Geometry) {
	f.Fill(p.Background)
	s := f.Shape()
	n := s.Array()
	var c [3]int
	for d := 0; d < 3; d++ {
		c[d] = p.Cell[d]
		if c[d] < 0 || c[d] >= n[d] {
			c[d] = n[d] / 2
		}
	}
	if s.Dims() == 2 {
		c[2] = 0
	}
	f.Set(c[0], c[1], c[2], p.Amplitude)
}

type Constant struct {
	Value float64
}

func (c *Constant) Name() string { return "constant" }

func (c *Constant) Fill(f *grid.Field, _ grid.Geometry) { f.Fill(c.Value) }

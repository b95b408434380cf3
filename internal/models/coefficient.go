package models

import (
	"math"

	"github.com/san-kum/heatlab/internal/grid"
)

// Coefficient fills the Ci field of the diffusion step. Ci is the inverse
// heat capacity, Ci = 1/Cp.
type Coefficient interface {
	Name() string
	Fill(ci *grid.Field, geom grid.Geometry)
}

type UniformCi struct {
	Ci float64
}

func (u *UniformCi) Name() string { return "constant" }

func (u *UniformCi) Fill(ci *grid.Field, _ grid.Geometry) { ci.Fill(u.Ci) }

// CapacityBump raises the heat capacity Cp = 1/Base by Amplitude inside a
// Gaussian bump at the centre of the domain, slowing diffusion there.
type CapacityBump struct {
	Base      float64
	Amplitude float64
	Width     float64
}

func NewCapacityBump(base float64) *CapacityBump {
	return &CapacityBump{Base: base, Amplitude: 1, Width: 1}
}

func (b *CapacityBump) Name() string { return "bump" }

func (b *CapacityBump) Fill(ci *grid.Field, geom grid.Geometry) {
	cp0 := 1 / b.Base
	w2 := b.Width * b.Width
	s := ci.Shape()
	for k := 0; k < s.Nz; k++ {
		for j := 0; j < s.Ny; j++ {
			for i := 0; i < s.Nx; i++ {
				x, y, z := geom.Coord(i, j, k)
				x -= geom.Lx / 2
				y -= geom.Ly / 2
				r2 := x*x + y*y
				if s.Dims() == 3 {
					z -= geom.Lz / 2
					r2 += z * z
				}
				cp := cp0 + b.Amplitude*math.Exp(-r2/w2)
				ci.Set(i, j, k, 1/cp)
			}
		}
	}
}

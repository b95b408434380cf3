package grid

import (
	"fmt"
	"math"
)

// Geometry holds the physical extents and spacings of a grid. It is built
// once and shared read-only by every kernel invocation.
type Geometry struct {
	Shape               Shape
	Lx, Ly, Lz          float64
	Dx, Dy, Dz          float64
	InvDx, InvDy, InvDz float64
}

// NewGeometry spreads each extent over N-1 intervals. Lz is ignored for
// planar shapes.
func NewGeometry(shape Shape, lx, ly, lz float64) (Geometry, error) {
	if err := shape.Validate(); err != nil {
		return Geometry{}, err
	}
	if lx <= 0 || ly <= 0 || (shape.Dims() == 3 && lz <= 0) {
		return Geometry{}, fmt.Errorf("%w: lx=%g ly=%g lz=%g", ErrInvalidGeometry, lx, ly, lz)
	}
	dz := 1.0
	if shape.Dims() == 3 {
		dz = lz / float64(shape.Nz-1)
	}
	return WithSpacing(shape, lx/float64(shape.Nx-1), ly/float64(shape.Ny-1), dz)
}

// WithSpacing builds a geometry from explicit cell spacings.
func WithSpacing(shape Shape, dx, dy, dz float64) (Geometry, error) {
	if err := shape.Validate(); err != nil {
		return Geometry{}, err
	}
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return Geometry{}, fmt.Errorf("%w: dx=%g dy=%g dz=%g", ErrInvalidGeometry, dx, dy, dz)
	}
	g := Geometry{
		Shape: shape,
		Dx:    dx, Dy: dy, Dz: dz,
		InvDx: 1 / dx, InvDy: 1 / dy, InvDz: 1 / dz,
		Lx: dx * float64(shape.Nx-1),
		Ly: dy * float64(shape.Ny-1),
	}
	if shape.Dims() == 3 {
		g.Lz = dz * float64(shape.Nz-1)
	}
	return g, nil
}

// Coord returns the physical position of cell (i, j, k).
func (g Geometry) Coord(i, j, k int) (x, y, z float64) {
	x, y = float64(i)*g.Dx, float64(j)*g.Dy
	if g.Shape.Dims() == 3 {
		z = float64(k) * g.Dz
	}
	return x, y, z
}

// StableDt returns the explicit-scheme stability limit for a coefficient
// field whose largest value is maxCi.
func (g Geometry) StableDt(maxCi float64) float64 {
	d2 := math.Min(g.Dx*g.Dx, g.Dy*g.Dy)
	if g.Shape.Dims() == 3 {
		d2 = math.Min(d2, g.Dz*g.Dz)
	}
	if maxCi <= 0 {
		maxCi = 1
	}
	return d2 / maxCi / (2*float64(g.Shape.Dims()) + 0.1)
}

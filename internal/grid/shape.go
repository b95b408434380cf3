package grid

import "fmt"

// Shape is the extent of a field in cells. Nz == 1 marks a 2-D grid.
type Shape struct {
	Nx, Ny, Nz int
}

// Shape2D returns a 2-D shape.
func Shape2D(nx, ny int) Shape { return Shape{Nx: nx, Ny: ny, Nz: 1} }

// Shape3D returns a 3-D shape.
func Shape3D(nx, ny, nz int) Shape { return Shape{Nx: nx, Ny: ny, Nz: nz} }

// Dims returns 2 for planar shapes and 3 otherwise.
func (s Shape) Dims() int {
	if s.Nz <= 1 {
		return 2
	}
	return 3
}

func (s Shape) Len() int { return s.Nx * s.Ny * s.Nz }

// Extent returns the number of cells along dim (0=x, 1=y, 2=z).
func (s Shape) Extent(dim int) int {
	switch dim {
	case 0:
		return s.Nx
	case 1:
		return s.Ny
	case 2:
		return s.Nz
	}
	panic(fmt.Sprintf("grid: dimension %d out of range", dim))
}

// Array returns the extents as an array indexed by dimension.
func (s Shape) Array() [3]int { return [3]int{s.Nx, s.Ny, s.Nz} }

// FromArray builds a shape from per-dimension extents.
func FromArray(n [3]int) Shape { return Shape{Nx: n[0], Ny: n[1], Nz: n[2]} }

// PlaneLen returns the number of cells in a plane normal to dim.
func (s Shape) PlaneLen(dim int) int {
	return s.Len() / s.Extent(dim)
}

func (s Shape) Validate() error {
	if s.Nx < 3 || s.Ny < 3 {
		return fmt.Errorf("%w: got %s", ErrInvalidShape, s)
	}
	if s.Nz != 1 && s.Nz < 3 {
		return fmt.Errorf("%w: got %s", ErrInvalidShape, s)
	}
	return nil
}

func (s Shape) String() string {
	if s.Dims() == 2 {
		return fmt.Sprintf("%dx%d", s.Nx, s.Ny)
	}
	return fmt.Sprintf("%dx%dx%d", s.Nx, s.Ny, s.Nz)
}

// InteriorBounds returns the half-open index box that excludes the one-cell
// border. A planar shape has no border along z.
func (s Shape) InteriorBounds() (lo, hi [3]int) {
	lo = [3]int{1, 1, 1}
	hi = [3]int{s.Nx - 1, s.Ny - 1, s.Nz - 1}
	if s.Dims() == 2 {
		lo[2], hi[2] = 0, 1
	}
	return lo, hi
}

package grid

import "fmt"

// eachPlaneCell calls fn with the flat offset of every cell in the plane
// normal to dim at index, in a fixed order shared by pack and unpack.
func (f *Field) eachPlaneCell(dim, index int, fn func(n, off int)) {
	s := f.shape
	if index < 0 || index >= s.Extent(dim) {
		panic(fmt.Sprintf("grid: plane %d out of range along dim %d for shape %s", index, dim, s))
	}
	n := 0
	switch dim {
	case 0:
		for k := 0; k < s.Nz; k++ {
			for j := 0; j < s.Ny; j++ {
				fn(n, index+s.Nx*(j+s.Ny*k))
				n++
			}
		}
	case 1:
		for k := 0; k < s.Nz; k++ {
			base := s.Nx * (index + s.Ny*k)
			for i := 0; i < s.Nx; i++ {
				fn(n, base+i)
				n++
			}
		}
	case 2:
		base := s.Nx * s.Ny * index
		for i := 0; i < s.Nx*s.Ny; i++ {
			fn(n, base+i)
			n++
		}
	}
}

// PackPlane copies the plane normal to dim at index into buf, growing it
// when too small, and returns the filled prefix.
func (f *Field) PackPlane(dim, index int, buf []float64) []float64 {
	n := f.shape.PlaneLen(dim)
	if cap(buf) < n {
		buf = make([]float64, n)
	}
	buf = buf[:n]
	f.eachPlaneCell(dim, index, func(n, off int) {
		buf[n] = f.data[off]
	})
	return buf
}

// UnpackPlane writes buf into the plane normal to dim at index.
func (f *Field) UnpackPlane(dim, index int, buf []float64) error {
	if len(buf) != f.shape.PlaneLen(dim) {
		return fmt.Errorf("%w: plane of %d values, want %d", ErrShapeMismatch, len(buf), f.shape.PlaneLen(dim))
	}
	f.eachPlaneCell(dim, index, func(n, off int) {
		f.data[off] = buf[n]
	})
	return nil
}

// CopyPlane overwrites plane dst with plane src, both normal to dim.
func (f *Field) CopyPlane(dim, dst, src int) {
	stride := 1
	switch dim {
	case 1:
		stride = f.shape.Nx
	case 2:
		stride = f.shape.Nx * f.shape.Ny
	}
	shift := (src - dst) * stride
	if src < 0 || src >= f.shape.Extent(dim) {
		panic(fmt.Sprintf("grid: plane %d out of range along dim %d for shape %s", src, dim, f.shape))
	}
	f.eachPlaneCell(dim, dst, func(_, off int) {
		f.data[off] = f.data[off+shift]
	})
}

package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field is a dense scalar field stored flat with x varying fastest.
type Field struct {
	shape Shape
	data  []float64
}

func NewField(shape Shape) *Field {
	return &Field{shape: shape, data: make([]float64, shape.Len())}
}

// FieldFrom wraps data without copying. len(data) must equal shape.Len().
func FieldFrom(shape Shape, data []float64) (*Field, error) {
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrShapeMismatch, len(data), shape)
	}
	return &Field{shape: shape, data: data}, nil
}

func (f *Field) Shape() Shape { return f.shape }

// Data exposes the backing array. Writes through it mutate the field.
func (f *Field) Data() []float64 { return f.data }

// Index returns the flat offset of (i, j, k) and panics when any index is
// outside the field.
func (f *Field) Index(i, j, k int) int {
	s := f.shape
	if uint(i) >= uint(s.Nx) || uint(j) >= uint(s.Ny) || uint(k) >= uint(s.Nz) {
		panic(fmt.Sprintf("grid: index (%d,%d,%d) out of range for shape %s", i, j, k, s))
	}
	return i + s.Nx*(j+s.Ny*k)
}

func (f *Field) At(i, j, k int) float64     { return f.data[f.Index(i, j, k)] }
func (f *Field) Set(i, j, k int, v float64) { f.data[f.Index(i, j, k)] = v }

func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

func (f *Field) CopyFrom(src *Field) error {
	if f.shape != src.shape {
		return fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, f.shape, src.shape)
	}
	copy(f.data, src.data)
	return nil
}

func (f *Field) Clone() *Field {
	c := NewField(f.shape)
	copy(c.data, f.data)
	return c
}

// Equal reports whether both fields have the same shape and identical values.
func (f *Field) Equal(other *Field) bool {
	return f.shape == other.shape && floats.Equal(f.data, other.data)
}

// EqualApprox is Equal with an absolute tolerance.
func (f *Field) EqualApprox(other *Field, tol float64) bool {
	return f.shape == other.shape && floats.EqualApprox(f.data, other.data, tol)
}

func (f *Field) IsValid() bool {
	for _, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (f *Field) Sum() float64 { return floats.Sum(f.data) }
func (f *Field) Max() float64 { return floats.Max(f.data) }
func (f *Field) Min() float64 { return floats.Min(f.data) }

// InteriorSum adds up every cell outside the one-cell border.
func (f *Field) InteriorSum() float64 {
	lo, hi := f.shape.InteriorBounds()
	sum := 0.0
	for k := lo[2]; k < hi[2]; k++ {
		for j := lo[1]; j < hi[1]; j++ {
			row := f.shape.Nx * (j + f.shape.Ny*k)
			sum += floats.Sum(f.data[row+lo[0] : row+hi[0]])
		}
	}
	return sum
}

// InteriorExtrema returns the smallest and largest interior values.
func (f *Field) InteriorExtrema() (lo, hi float64) {
	blo, bhi := f.shape.InteriorBounds()
	lo, hi = math.Inf(1), math.Inf(-1)
	for k := blo[2]; k < bhi[2]; k++ {
		for j := blo[1]; j < bhi[1]; j++ {
			row := f.shape.Nx * (j + f.shape.Ny*k)
			r := f.data[row+blo[0] : row+bhi[0]]
			lo = math.Min(lo, floats.Min(r))
			hi = math.Max(hi, floats.Max(r))
		}
	}
	return lo, hi
}

package grid

import (
	"errors"
	"math"
	"testing"
)

func TestShape_Validate(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		valid bool
	}{
		{"2d minimal", Shape2D(3, 3), true},
		{"3d", Shape3D(4, 5, 6), true},
		{"too narrow", Shape2D(2, 8), false},
		{"flat z", Shape{Nx: 8, Ny: 8, Nz: 2}, false},
		{"zero z", Shape{Nx: 8, Ny: 8, Nz: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tt.valid)
			}
			if err != nil && !errors.Is(err, ErrInvalidShape) {
				t.Errorf("expected ErrInvalidShape, got %v", err)
			}
		})
	}
}

func TestField_IndexLayout(t *testing.T) {
	f := NewField(Shape3D(4, 3, 5))
	if got := f.Index(1, 0, 0); got != 1 {
		t.Errorf("x stride: got %d, want 1", got)
	}
	if got := f.Index(0, 1, 0); got != 4 {
		t.Errorf("y stride: got %d, want 4", got)
	}
	if got := f.Index(0, 0, 1); got != 12 {
		t.Errorf("z stride: got %d, want 12", got)
	}

	f.Set(3, 2, 4, 7.5)
	if f.Data()[len(f.Data())-1] != 7.5 {
		t.Error("last cell not addressed by (nx-1, ny-1, nz-1)")
	}
}

func TestField_IndexOutOfRangePanics(t *testing.T) {
	f := NewField(Shape2D(4, 4))
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range index")
		}
	}()
	f.At(4, 0, 0)
}

func TestField_CloneIsIndependent(t *testing.T) {
	f := NewField(Shape2D(3, 3))
	f.Fill(2)
	c := f.Clone()
	c.Set(1, 1, 0, 99)
	if f.At(1, 1, 0) != 2 {
		t.Error("Clone shares storage with the original")
	}
	if f.Equal(c) {
		t.Error("Equal reported true for different fields")
	}
}

func TestField_CopyFromShapeMismatch(t *testing.T) {
	a := NewField(Shape2D(3, 3))
	b := NewField(Shape2D(4, 3))
	if err := a.CopyFrom(b); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestField_IsValid(t *testing.T) {
	f := NewField(Shape2D(3, 3))
	if !f.IsValid() {
		t.Error("zero field reported invalid")
	}
	f.Set(1, 1, 0, math.NaN())
	if f.IsValid() {
		t.Error("NaN not detected")
	}
	f.Set(1, 1, 0, math.Inf(-1))
	if f.IsValid() {
		t.Error("-Inf not detected")
	}
}

func TestField_InteriorSum(t *testing.T) {
	f := NewField(Shape2D(4, 4))
	f.Fill(1)
	if got := f.InteriorSum(); got != 4 {
		t.Errorf("2d interior sum = %v, want 4", got)
	}
	if got := f.Sum(); got != 16 {
		t.Errorf("2d sum = %v, want 16", got)
	}

	g := NewField(Shape3D(4, 5, 6))
	g.Fill(0.5)
	if got := g.InteriorSum(); got != 0.5*2*3*4 {
		t.Errorf("3d interior sum = %v, want %v", got, 0.5*2*3*4)
	}
}

func TestField_InteriorExtrema(t *testing.T) {
	f := NewField(Shape2D(5, 5))
	f.Set(0, 0, 0, 100) // border, ignored
	f.Set(2, 2, 0, 3)
	f.Set(1, 3, 0, -1)
	lo, hi := f.InteriorExtrema()
	if lo != -1 || hi != 3 {
		t.Errorf("InteriorExtrema() = (%v, %v), want (-1, 3)", lo, hi)
	}
}

func TestField_PackUnpackPlane(t *testing.T) {
	shape := Shape3D(3, 4, 5)
	f := NewField(shape)
	for i := range f.Data() {
		f.Data()[i] = float64(i)
	}

	for dim := 0; dim < 3; dim++ {
		buf := f.PackPlane(dim, 1, nil)
		if len(buf) != shape.PlaneLen(dim) {
			t.Fatalf("dim %d: packed %d values, want %d", dim, len(buf), shape.PlaneLen(dim))
		}
		g := NewField(shape)
		if err := g.UnpackPlane(dim, 1, buf); err != nil {
			t.Fatalf("dim %d: unpack failed: %v", dim, err)
		}
		for k := 0; k < shape.Nz; k++ {
			for j := 0; j < shape.Ny; j++ {
				for i := 0; i < shape.Nx; i++ {
					on := [3]int{i, j, k}[dim] == 1
					if on && g.At(i, j, k) != f.At(i, j, k) {
						t.Errorf("dim %d: cell (%d,%d,%d) not restored", dim, i, j, k)
					}
					if !on && g.At(i, j, k) != 0 {
						t.Errorf("dim %d: cell (%d,%d,%d) off the plane was written", dim, i, j, k)
					}
				}
			}
		}
	}

	if err := f.UnpackPlane(0, 0, make([]float64, 3)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for short plane, got %v", err)
	}
}

func TestField_CopyPlane(t *testing.T) {
	f := NewField(Shape2D(4, 3))
	for i := range f.Data() {
		f.Data()[i] = float64(i)
	}
	f.CopyPlane(0, 0, 2)
	for j := 0; j < 3; j++ {
		if f.At(0, j, 0) != f.At(2, j, 0) {
			t.Errorf("row %d: x plane not copied", j)
		}
	}
	f.CopyPlane(1, 2, 0)
	for i := 0; i < 4; i++ {
		if f.At(i, 2, 0) != f.At(i, 0, 0) {
			t.Errorf("column %d: y plane not copied", i)
		}
	}
}

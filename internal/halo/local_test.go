package halo

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/san-kum/heatlab/internal/grid"
)

func randomField(shape grid.Shape, seed int64) *grid.Field {
	rng := rand.New(rand.NewSource(seed))
	f := grid.NewField(shape)
	for i := range f.Data() {
		f.Data()[i] = rng.NormFloat64()
	}
	return f
}

func TestLocal_PeriodicX(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		shape := grid.Shape2D(7, 5)
		f := randomField(shape, seed)
		ex := NewLocal(shape, Policy{Periodic, Fixed, Fixed})

		if err := ex.Exchange(context.Background(), f); err != nil {
			t.Fatalf("exchange failed: %v", err)
		}

		nx := shape.Nx
		for j := 0; j < shape.Ny; j++ {
			if f.At(0, j, 0) != f.At(nx-2, j, 0) {
				t.Errorf("seed %d row %d: field[0] != field[nx-2]", seed, j)
			}
			if f.At(nx-1, j, 0) != f.At(1, j, 0) {
				t.Errorf("seed %d row %d: field[nx-1] != field[1]", seed, j)
			}
		}
	}
}

func TestLocal_Closed(t *testing.T) {
	shape := grid.Shape3D(5, 6, 4)
	f := randomField(shape, 11)
	ex := NewLocal(shape, Uniform(Closed))
	if err := ex.Exchange(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	for k := 0; k < shape.Nz; k++ {
		for j := 0; j < shape.Ny; j++ {
			if f.At(0, j, k) != f.At(1, j, k) || f.At(4, j, k) != f.At(3, j, k) {
				t.Fatalf("x faces not mirrored at (%d,%d)", j, k)
			}
		}
	}
	for j := 0; j < shape.Ny; j++ {
		for i := 0; i < shape.Nx; i++ {
			if f.At(i, j, 0) != f.At(i, j, 1) || f.At(i, j, 3) != f.At(i, j, 2) {
				t.Fatalf("z faces not mirrored at (%d,%d)", i, j)
			}
		}
	}
}

func TestLocal_FixedLeavesBorder(t *testing.T) {
	shape := grid.Shape2D(5, 5)
	f := randomField(shape, 3)
	want := f.Clone()
	if err := NewLocal(shape, Uniform(Fixed)).Exchange(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if !f.Equal(want) {
		t.Error("fixed boundary modified the field")
	}
}

func TestLocal_ShapeMismatch(t *testing.T) {
	ex := NewLocal(grid.Shape2D(5, 5), Uniform(Periodic))
	err := ex.Exchange(context.Background(), grid.NewField(grid.Shape2D(6, 5)))
	if !errors.Is(err, grid.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestLocal_Neighbor(t *testing.T) {
	ex := NewLocal(grid.Shape2D(5, 5), Policy{Periodic, Closed, Fixed})
	if ex.Neighbor(0, 0) != 0 || ex.Neighbor(0, 1) != 0 {
		t.Error("periodic dimension should wrap to rank 0")
	}
	if ex.Neighbor(1, 0) != NoNeighbor {
		t.Error("closed dimension should have no neighbour")
	}
}

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		in   string
		want Boundary
		err  bool
	}{
		{"periodic", Periodic, false},
		{"Closed", Closed, false},
		{"neumann", Closed, false},
		{"", Fixed, false},
		{"dirichlet", Fixed, false},
		{"open", Fixed, true},
	}
	for _, tt := range tests {
		got, err := ParseBoundary(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownBoundary) {
				t.Errorf("ParseBoundary(%q): expected ErrUnknownBoundary, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseBoundary(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

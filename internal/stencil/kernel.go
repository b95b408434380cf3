package stencil

import (
	"fmt"

	"github.com/san-kum/heatlab/internal/grid"
)

// Params are the scalars the kernel needs besides the fields.
type Params struct {
	Dt                     float64
	InvDx2, InvDy2, InvDz2 float64
}

func NewParams(geom grid.Geometry, dt float64) Params {
	p := Params{
		Dt:     dt,
		InvDx2: geom.InvDx * geom.InvDx,
		InvDy2: geom.InvDy * geom.InvDy,
	}
	if geom.Shape.Dims() == 3 {
		p.InvDz2 = geom.InvDz * geom.InvDz
	}
	return p
}

// CheckShapes panics unless the three fields share a shape.
func CheckShapes(cur, next, ci *grid.Field) {
	if cur.Shape() != next.Shape() || cur.Shape() != ci.Shape() {
		panic(fmt.Sprintf("stencil: field shapes differ: T=%s T2=%s Ci=%s", cur.Shape(), next.Shape(), ci.Shape()))
	}
}

// Cell updates the single cell (i, j, k) of next. Cells on the border or
// outside the field are skipped.
func Cell(cur, next, ci *grid.Field, p Params, i, j, k int) {
	s := cur.Shape()
	if i < 1 || i >= s.Nx-1 || j < 1 || j >= s.Ny-1 {
		return
	}
	t, t2, c := cur.Data(), next.Data(), ci.Data()
	sx, sy := 1, s.Nx
	if s.Dims() == 2 {
		if k != 0 {
			return
		}
		n := i + sy*j
		tc := t[n]
		lap := (t[n+sx]-2*tc+t[n-sx])*p.InvDx2 + (t[n+sy]-2*tc+t[n-sy])*p.InvDy2
		t2[n] = tc + p.Dt*c[n]*lap
		return
	}
	if k < 1 || k >= s.Nz-1 {
		return
	}
	sz := s.Nx * s.Ny
	n := i + sy*j + sz*k
	tc := t[n]
	lap := (t[n+sx]-2*tc+t[n-sx])*p.InvDx2 +
		(t[n+sy]-2*tc+t[n-sy])*p.InvDy2 +
		(t[n+sz]-2*tc+t[n-sz])*p.InvDz2
	t2[n] = tc + p.Dt*c[n]*lap
}

// Diffuse applies one explicit step to every interior cell of r, reading
// cur and writing next. It is the serial reference the dispatched kernels
// are checked against.
func Diffuse(cur, next, ci *grid.Field, p Params, r Region) {
	CheckShapes(cur, next, ci)
	r = Clip(cur.Shape(), r)
	if r.Empty() {
		return
	}
	s := cur.Shape()
	t, t2, c := cur.Data(), next.Data(), ci.Data()
	sy, sz := s.Nx, s.Nx*s.Ny
	planar := s.Dims() == 2

	for k := r.Lo[2]; k < r.Hi[2]; k++ {
		for j := r.Lo[1]; j < r.Hi[1]; j++ {
			row := sy*j + sz*k
			for i := r.Lo[0]; i < r.Hi[0]; i++ {
				n := row + i
				tc := t[n]
				lap := (t[n+1]-2*tc+t[n-1])*p.InvDx2 + (t[n+sy]-2*tc+t[n-sy])*p.InvDy2
				if !planar {
					lap += (t[n+sz] - 2*tc + t[n-sz]) * p.InvDz2
				}
				t2[n] = tc + p.Dt*c[n]*lap
			}
		}
	}
}

// Clip intersects r with the interior of shape.
func Clip(shape grid.Shape, r Region) Region {
	in := Interior(shape)
	for d := 0; d < 3; d++ {
		r.Lo[d] = max(r.Lo[d], in.Lo[d])
		r.Hi[d] = min(r.Hi[d], in.Hi[d])
	}
	return r
}

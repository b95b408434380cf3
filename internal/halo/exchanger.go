package halo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/heatlab/internal/grid"
)

var (
	// ErrFinalized indicates an exchange on a grid that has been finalized.
	ErrFinalized = errors.New("halo: global grid finalized")

	// ErrDecomposition indicates a process topology that cannot tile the grid.
	ErrDecomposition = errors.New("halo: invalid decomposition")

	// ErrUnknownBoundary indicates a boundary name with no policy.
	ErrUnknownBoundary = errors.New("halo: unknown boundary")
)

// NoNeighbor is returned by Neighbor for faces on the edge of the domain.
const NoNeighbor = -1

// Exchanger refreshes the halo of a field.
type Exchanger interface {
	// Exchange blocks until every halo cell of f is consistent.
	Exchange(ctx context.Context, f *grid.Field) error
	LocalShape() grid.Shape
	// Neighbor returns the rank across face side (0 low, 1 high) of dim.
	Neighbor(dim, side int) int
	Rank() int
	Size() int
}

// ReduceOp combines one value from every rank.
type ReduceOp int

const (
	Sum ReduceOp = iota
	Max
	Min
)

func (op ReduceOp) apply(a, b float64) float64 {
	switch op {
	case Max:
		return max(a, b)
	case Min:
		return min(a, b)
	}
	return a + b
}

// Reducer is implemented by exchangers spanning several ranks. Every rank
// must call AllReduce the same number of times.
type Reducer interface {
	AllReduce(ctx context.Context, v float64, op ReduceOp) (float64, error)
}

// Boundary is the condition applied on a domain face with no neighbour.
type Boundary int

const (
	// Fixed leaves the border at its initial value.
	Fixed Boundary = iota
	// Closed mirrors the first interior plane, giving zero flux.
	Closed
	// Periodic wraps to the opposite side of the domain.
	Periodic
)

func (b Boundary) String() string {
	switch b {
	case Closed:
		return "closed"
	case Periodic:
		return "periodic"
	}
	return "fixed"
}

func ParseBoundary(name string) (Boundary, error) {
	switch strings.ToLower(name) {
	case "", "fixed", "dirichlet":
		return Fixed, nil
	case "closed", "neumann", "zero-flux":
		return Closed, nil
	case "periodic":
		return Periodic, nil
	}
	return Fixed, fmt.Errorf("%w: %q", ErrUnknownBoundary, name)
}

// Policy holds the boundary of each dimension.
type Policy [3]Boundary

// Uniform applies b on every dimension.
func Uniform(b Boundary) Policy { return Policy{b, b, b} }

// applyFace sets face side of dim from the field itself.
func applyFace(f *grid.Field, dim, side int, b Boundary) {
	n := f.Shape().Extent(dim)
	switch b {
	case Periodic:
		if side == 0 {
			f.CopyPlane(dim, 0, n-2)
		} else {
			f.CopyPlane(dim, n-1, 1)
		}
	case Closed:
		if side == 0 {
			f.CopyPlane(dim, 0, 1)
		} else {
			f.CopyPlane(dim, n-1, n-2)
		}
	}
}

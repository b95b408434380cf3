package halo

import (
	"fmt"
	"sync"

	"github.com/san-kum/heatlab/internal/grid"
)

// GlobalGrid decomposes a global grid over in-process ranks laid out on a
// dims[0] x dims[1] x dims[2] topology, x fastest. Neighbouring local grids
// overlap by two cells: the halo of one rank is the first interior plane of
// the next.
//
// A grid carries channel and reduction state from one exchange to the
// next, so it is single-use once a rank has stopped early: a cancelled or
// failed run can leave planes in the inboxes and a half-filled reduction.
// Finalize it and build a new one.
type GlobalGrid struct {
	local  grid.Shape
	dims   [3]int
	policy Policy
	ranks  []*Rank

	// inbox[r][d][s] receives the plane for face s of dim d on rank r.
	inbox [][3][2]chan []float64
	pools [3]*grid.PlanePool

	done      chan struct{}
	closeOnce sync.Once

	red *reducer
}

// InitGlobalGrid builds the topology. Periodic dimensions in policy wrap
// across the ranks; the other dimensions apply their boundary on the outer
// faces of the edge ranks.
func InitGlobalGrid(local grid.Shape, dims [3]int, policy Policy) (*GlobalGrid, error) {
	if err := local.Validate(); err != nil {
		return nil, err
	}
	for d := 0; d < 3; d++ {
		if dims[d] < 1 {
			return nil, fmt.Errorf("%w: dims %v", ErrDecomposition, dims)
		}
	}
	if local.Dims() == 2 && dims[2] != 1 {
		return nil, fmt.Errorf("%w: planar grid cannot be split along z (dims %v)", ErrDecomposition, dims)
	}

	size := dims[0] * dims[1] * dims[2]
	g := &GlobalGrid{
		local:  local,
		dims:   dims,
		policy: policy,
		ranks:  make([]*Rank, size),
		inbox:  make([][3][2]chan []float64, size),
		done:   make(chan struct{}),
		red:    newReducer(size),
	}
	for d := 0; d < local.Dims(); d++ {
		g.pools[d] = grid.NewPlanePool(local.PlaneLen(d))
	}
	for r := 0; r < size; r++ {
		for d := 0; d < 3; d++ {
			for s := 0; s < 2; s++ {
				g.inbox[r][d][s] = make(chan []float64, 2)
			}
		}
	}
	for r := 0; r < size; r++ {
		g.ranks[r] = g.newRank(r)
	}
	return g, nil
}

// DecomposeShape returns the local shape that tiles global over dims.
func DecomposeShape(global grid.Shape, dims [3]int) (grid.Shape, error) {
	n := global.Array()
	var local [3]int
	for d := 0; d < 3; d++ {
		if dims[d] < 1 {
			return grid.Shape{}, fmt.Errorf("%w: dims %v", ErrDecomposition, dims)
		}
		if d == 2 && global.Dims() == 2 {
			if dims[2] != 1 {
				return grid.Shape{}, fmt.Errorf("%w: planar grid cannot be split along z", ErrDecomposition)
			}
			local[2] = 1
			continue
		}
		if (n[d]-2)%dims[d] != 0 {
			return grid.Shape{}, fmt.Errorf("%w: %d interior cells along dim %d do not split over %d ranks",
				ErrDecomposition, n[d]-2, d, dims[d])
		}
		local[d] = (n[d]-2)/dims[d] + 2
	}
	shape := grid.FromArray(local)
	if err := shape.Validate(); err != nil {
		return grid.Shape{}, fmt.Errorf("%w: %v", ErrDecomposition, err)
	}
	return shape, nil
}

func (g *GlobalGrid) Size() int              { return len(g.ranks) }
func (g *GlobalGrid) Dims() [3]int           { return g.dims }
func (g *GlobalGrid) LocalShape() grid.Shape { return g.local }
func (g *GlobalGrid) Policy() Policy         { return g.policy }
func (g *GlobalGrid) Ranks() []*Rank         { return g.ranks }
func (g *GlobalGrid) Rank(r int) *Rank       { return g.ranks[r] }

// GlobalShape is the shape of the assembled grid including its outer border.
func (g *GlobalGrid) GlobalShape() grid.Shape {
	n := g.local.Array()
	var out [3]int
	for d := 0; d < 3; d++ {
		if d == 2 && g.local.Dims() == 2 {
			out[2] = 1
			continue
		}
		out[d] = g.dims[d]*(n[d]-2) + 2
	}
	return grid.FromArray(out)
}

// Coords returns the topology position of rank r.
func (g *GlobalGrid) Coords(r int) [3]int {
	return [3]int{
		r % g.dims[0],
		(r / g.dims[0]) % g.dims[1],
		r / (g.dims[0] * g.dims[1]),
	}
}

func (g *GlobalGrid) rankAt(c [3]int) int {
	return c[0] + g.dims[0]*(c[1]+g.dims[1]*c[2])
}

// GlobalIndex maps a local cell of rank r to its global cell.
func (g *GlobalGrid) GlobalIndex(r, i, j, k int) (int, int, int) {
	c := g.Coords(r)
	off := g.offset(c)
	return i + off[0], j + off[1], k + off[2]
}

func (g *GlobalGrid) offset(c [3]int) [3]int {
	n := g.local.Array()
	var off [3]int
	for d := 0; d < g.local.Dims(); d++ {
		off[d] = c[d] * (n[d] - 2)
	}
	return off
}

// Scatter copies the part of global owned by each rank, halo included.
func (g *GlobalGrid) Scatter(global *grid.Field) ([]*grid.Field, error) {
	if global.Shape() != g.GlobalShape() {
		return nil, fmt.Errorf("%w: global field %s, grid %s", grid.ErrShapeMismatch, global.Shape(), g.GlobalShape())
	}
	out := make([]*grid.Field, len(g.ranks))
	for r := range g.ranks {
		off := g.offset(g.Coords(r))
		f := grid.NewField(g.local)
		for k := 0; k < g.local.Nz; k++ {
			for j := 0; j < g.local.Ny; j++ {
				for i := 0; i < g.local.Nx; i++ {
					f.Set(i, j, k, global.At(i+off[0], j+off[1], k+off[2]))
				}
			}
		}
		out[r] = f
	}
	return out, nil
}

// Gather assembles the global field. Each rank contributes its interior,
// and ranks on the domain edge also contribute their outer halo.
func (g *GlobalGrid) Gather(locals []*grid.Field) (*grid.Field, error) {
	if len(locals) != len(g.ranks) {
		return nil, fmt.Errorf("%w: %d fields for %d ranks", ErrDecomposition, len(locals), len(g.ranks))
	}
	global := grid.NewField(g.GlobalShape())
	n := g.local.Array()
	for r, f := range locals {
		if f.Shape() != g.local {
			return nil, fmt.Errorf("%w: rank %d field %s, local %s", grid.ErrShapeMismatch, r, f.Shape(), g.local)
		}
		c := g.Coords(r)
		off := g.offset(c)
		var lo, hi [3]int
		for d := 0; d < 3; d++ {
			if d == 2 && g.local.Dims() == 2 {
				lo[2], hi[2] = 0, 1
				continue
			}
			lo[d], hi[d] = 1, n[d]-1
			if c[d] == 0 {
				lo[d] = 0
			}
			if c[d] == g.dims[d]-1 {
				hi[d] = n[d]
			}
		}
		for k := lo[2]; k < hi[2]; k++ {
			for j := lo[1]; j < hi[1]; j++ {
				for i := lo[0]; i < hi[0]; i++ {
					global.Set(i+off[0], j+off[1], k+off[2], f.At(i, j, k))
				}
			}
		}
	}
	return global, nil
}

// Finalize releases the grid. Pending and later exchanges and reductions
// return ErrFinalized.
func (g *GlobalGrid) Finalize() {
	g.closeOnce.Do(func() { close(g.done) })
}

func (g *GlobalGrid) finalized() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

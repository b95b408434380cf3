package halo

import (
	"context"
	"fmt"

	"github.com/san-kum/heatlab/internal/grid"
)

// Rank is one subgrid owner of a GlobalGrid. It implements Exchanger and
// Reducer. A Rank must be driven by a single goroutine.
type Rank struct {
	g         *GlobalGrid
	id        int
	coords    [3]int
	neighbors [3][2]int
}

func (g *GlobalGrid) newRank(id int) *Rank {
	r := &Rank{g: g, id: id, coords: g.Coords(id)}
	for d := 0; d < 3; d++ {
		for s := 0; s < 2; s++ {
			r.neighbors[d][s] = NoNeighbor
		}
		if d == 2 && g.local.Dims() == 2 {
			continue
		}
		for s, step := range [2]int{-1, 1} {
			c := r.coords
			c[d] += step
			switch {
			case c[d] >= 0 && c[d] < g.dims[d]:
				r.neighbors[d][s] = g.rankAt(c)
			case g.policy[d] == Periodic:
				c[d] = (c[d] + g.dims[d]) % g.dims[d]
				r.neighbors[d][s] = g.rankAt(c)
			}
		}
	}
	return r
}

func (r *Rank) Rank() int              { return r.id }
func (r *Rank) Size() int              { return len(r.g.ranks) }
func (r *Rank) Coords() [3]int         { return r.coords }
func (r *Rank) LocalShape() grid.Shape { return r.g.local }
func (r *Rank) Grid() *GlobalGrid      { return r.g }
func (r *Rank) Policy() Policy         { return r.g.policy }

func (r *Rank) Neighbor(dim, side int) int {
	return r.neighbors[dim][side]
}

// Exchange sends the planes next to each face to the neighbouring ranks,
// then fills each halo plane from the matching neighbour. Faces on the
// domain edge take the grid's boundary policy instead.
func (r *Rank) Exchange(ctx context.Context, f *grid.Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.g.finalized() {
		return ErrFinalized
	}
	if f.Shape() != r.g.local {
		return fmt.Errorf("%w: rank %d field %s, local %s", grid.ErrShapeMismatch, r.id, f.Shape(), r.g.local)
	}
	for d := 0; d < r.g.local.Dims(); d++ {
		if err := r.exchangeDim(ctx, f, d); err != nil {
			return fmt.Errorf("rank %d dim %d: %w", r.id, d, err)
		}
	}
	return nil
}

func (r *Rank) exchangeDim(ctx context.Context, f *grid.Field, d int) error {
	n := r.g.local.Extent(d)
	pool := r.g.pools[d]

	// The low neighbour's high halo mirrors our plane 1; the high
	// neighbour's low halo mirrors our plane n-2.
	sendPlane := [2]int{1, n - 2}
	for s := 0; s < 2; s++ {
		nb := r.neighbors[d][s]
		if nb == NoNeighbor {
			continue
		}
		buf := f.PackPlane(d, sendPlane[s], pool.Get())
		if err := r.send(ctx, r.g.inbox[nb][d][1-s], buf); err != nil {
			return err
		}
	}

	recvPlane := [2]int{0, n - 1}
	for s := 0; s < 2; s++ {
		if r.neighbors[d][s] == NoNeighbor {
			applyFace(f, d, s, r.g.policy[d])
			continue
		}
		buf, err := r.recv(ctx, r.g.inbox[r.id][d][s])
		if err != nil {
			return err
		}
		err = f.UnpackPlane(d, recvPlane[s], buf)
		pool.Put(buf)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Rank) send(ctx context.Context, ch chan<- []float64, buf []float64) error {
	select {
	case ch <- buf:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.g.done:
		return ErrFinalized
	}
}

func (r *Rank) recv(ctx context.Context, ch <-chan []float64) ([]float64, error) {
	select {
	case buf := <-ch:
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.g.done:
		return nil, ErrFinalized
	}
}

// AllReduce combines v across every rank of the grid.
func (r *Rank) AllReduce(ctx context.Context, v float64, op ReduceOp) (float64, error) {
	if r.g.finalized() {
		return 0, ErrFinalized
	}
	return r.g.red.allReduce(ctx, r.g.done, r.id, v, op)
}

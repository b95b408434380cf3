package solver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
	"github.com/san-kum/heatlab/internal/halo"
)

// RunDistributed scatters the global problem over the ranks of g, runs one
// solver per rank on its own goroutine and gathers the final field. geom
// describes the global grid. Metrics and observers in opts are attached to
// rank 0 only; the samples they see are already reduced over all ranks.
//
// The caller owns g and must Finalize it. When any rank fails, g is
// finalized before returning since its halo and reduction state no longer
// line up across ranks.
func RunDistributed(ctx context.Context, g *halo.GlobalGrid, initial, ci *grid.Field, geom grid.Geometry, dt float64, iterations int, opts ...Option) (*diffusion.Result, error) {
	if geom.Shape != g.GlobalShape() {
		return nil, fmt.Errorf("%w: geometry %s, decomposition %s", grid.ErrShapeMismatch, geom.Shape, g.GlobalShape())
	}
	temps, err := g.Scatter(initial)
	if err != nil {
		return nil, err
	}
	coeffs, err := g.Scatter(ci)
	if err != nil {
		return nil, err
	}
	local, err := grid.WithSpacing(g.LocalShape(), geom.Dx, geom.Dy, geom.Dz)
	if err != nil {
		return nil, err
	}

	solvers := make([]*Solver, g.Size())
	for r, rank := range g.Ranks() {
		s, err := New(temps[r], coeffs[r], local, dt, append(opts, WithExchanger(rank))...)
		if err != nil {
			return nil, fmt.Errorf("rank %d: %w", r, err)
		}
		if r != 0 {
			s.metrics, s.observers = nil, nil
		}
		solvers[r] = s
	}

	start := time.Now()
	results := make([]*diffusion.Result, len(solvers))
	eg, gctx := errgroup.WithContext(ctx)
	for r, s := range solvers {
		eg.Go(func() error {
			res, err := s.Run(gctx, iterations)
			results[r] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		g.Finalize()
		return results[0], err
	}

	finals := make([]*grid.Field, len(results))
	for r, res := range results {
		finals[r] = res.Final
	}
	global, err := g.Gather(finals)
	if err != nil {
		return nil, err
	}

	res := results[0]
	res.Final = global
	res.Elapsed = time.Since(start)
	return res, nil
}

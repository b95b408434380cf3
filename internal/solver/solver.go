package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/heatlab/internal/compute"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
	"github.com/san-kum/heatlab/internal/halo"
	"github.com/san-kum/heatlab/internal/stencil"
)

// Solver advances a temperature field with the explicit diffusion stencil.
// Each iteration updates the interior of the next buffer, refreshes its
// halo and swaps the buffers.
type Solver struct {
	backend   compute.Backend
	launch    compute.LaunchGeometry
	exchanger halo.Exchanger

	buf    *grid.DoubleBuffer
	ci     *grid.Field
	geom   grid.Geometry
	params stencil.Params

	overlap      bool
	width        [3]int
	boundary     []stencil.Region
	inner        stencil.Region
	skipExchange bool
	sampleEvery  int

	metrics   []diffusion.Metric
	observers []diffusion.Observer

	iteration int
	primed    bool
	cells     int
}

// New allocates the solver's buffers. initial is copied; ci is used in
// place and must not change during a run.
func New(initial, ci *grid.Field, geom grid.Geometry, dt float64, opts ...Option) (*Solver, error) {
	shape := geom.Shape
	if initial.Shape() != shape || ci.Shape() != shape {
		return nil, fmt.Errorf("%w: geometry %s, initial %s, Ci %s",
			grid.ErrShapeMismatch, shape, initial.Shape(), ci.Shape())
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return nil, fmt.Errorf("%w: dt must be finite and non-negative, got %g", diffusion.ErrInvalidConfig, dt)
	}
	if !initial.IsValid() || !ci.IsValid() {
		return nil, fmt.Errorf("%w: initial or Ci field holds NaN/Inf", grid.ErrInvalidField)
	}

	s := &Solver{
		ci:     ci,
		geom:   geom,
		params: stencil.NewParams(geom, dt),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = compute.GetBackend()
	}
	if s.exchanger == nil {
		s.exchanger = halo.NewLocal(shape, halo.Uniform(halo.Fixed))
	}
	if s.exchanger.LocalShape() != shape {
		return nil, fmt.Errorf("%w: exchanger %s, field %s", grid.ErrShapeMismatch, s.exchanger.LocalShape(), shape)
	}

	launch, err := s.backend.Launch(shape)
	if err != nil {
		return nil, err
	}
	s.launch = launch

	if s.overlap {
		if err := s.checkWidth(); err != nil {
			return nil, err
		}
		s.boundary, s.inner = stencil.Split(shape, s.width)
	}

	s.buf = grid.DoubleBufferFrom(initial)
	return s, nil
}

// checkWidth rejects overlap splits that would let the inner pass write a
// plane the exchange reads or writes.
func (s *Solver) checkWidth() error {
	for d := 0; d < s.geom.Shape.Dims(); d++ {
		if s.width[d] < 1 && exchangesDim(s.exchanger, d) {
			return fmt.Errorf("%w: width %d along dim %d", diffusion.ErrBoundaryWidth, s.width[d], d)
		}
	}
	return nil
}

type policyHolder interface {
	Policy() halo.Policy
}

func exchangesDim(ex halo.Exchanger, d int) bool {
	if ex.Neighbor(d, 0) != halo.NoNeighbor || ex.Neighbor(d, 1) != halo.NoNeighbor {
		return true
	}
	if p, ok := ex.(policyHolder); ok {
		return p.Policy()[d] != halo.Fixed
	}
	return true
}

func (s *Solver) Field() *grid.Field             { return s.buf.Current() }
func (s *Solver) Geometry() grid.Geometry        { return s.geom }
func (s *Solver) Iteration() int                 { return s.iteration }
func (s *Solver) Launch() compute.LaunchGeometry { return s.launch }
func (s *Solver) Exchanger() halo.Exchanger      { return s.exchanger }

// Run advances the field by iterations steps. It can be called repeatedly;
// each call continues from the field the previous one left.
func (s *Solver) Run(ctx context.Context, iterations int) (*diffusion.Result, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("%w: iterations must be non-negative, got %d", diffusion.ErrInvalidConfig, iterations)
	}

	result := &diffusion.Result{
		Metrics:     make(map[string]float64),
		Diagnostics: make([]diffusion.Sample, 0, s.expectedSamples(iterations)),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	if err := s.prime(ctx); err != nil {
		return nil, s.wrap(err)
	}
	if err := s.sample(ctx, result, start); err != nil {
		return result, err
	}

	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return result, s.wrap(ctx.Err())
		default:
		}

		if err := s.step(ctx); err != nil {
			return result, s.wrap(err)
		}
		result.Iterations++

		last := i == iterations-1
		if last || (s.sampleEvery > 0 && result.Iterations%s.sampleEvery == 0) {
			if err := s.sample(ctx, result, start); err != nil {
				return result, err
			}
		}
	}

	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.buf.Current().Clone()
	return result, nil
}

func (s *Solver) expectedSamples(iterations int) int {
	if s.sampleEvery <= 0 {
		return 2
	}
	return iterations/s.sampleEvery + 2
}

// prime makes the initial halo consistent with the boundary policy and
// counts the interior cells of the domain. It runs once per solver.
func (s *Solver) prime(ctx context.Context) error {
	if s.primed {
		return nil
	}
	if !s.skipExchange {
		if err := s.exchanger.Exchange(ctx, s.buf.Current()); err != nil {
			return err
		}
		if err := s.buf.Next().CopyFrom(s.buf.Current()); err != nil {
			return err
		}
	}
	cells := float64(stencil.Interior(s.geom.Shape).Cells())
	if r, ok := s.exchanger.(halo.Reducer); ok {
		var err error
		if cells, err = r.AllReduce(ctx, cells, halo.Sum); err != nil {
			return err
		}
	}
	s.cells = int(cells)
	s.primed = true
	return nil
}

func (s *Solver) step(ctx context.Context) error {
	cur, next := s.buf.Current(), s.buf.Next()

	if !s.overlap {
		s.diffuse(cur, next, stencil.Interior(cur.Shape()))
		if !s.skipExchange {
			if err := s.exchanger.Exchange(ctx, next); err != nil {
				return err
			}
		}
		s.buf.Swap()
		s.iteration++
		return nil
	}

	for _, r := range s.boundary {
		s.diffuse(cur, next, r)
	}
	g, gctx := errgroup.WithContext(ctx)
	if !s.skipExchange {
		g.Go(func() error {
			return s.exchanger.Exchange(gctx, next)
		})
	}
	g.Go(func() error {
		s.diffuse(cur, next, s.inner)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.buf.Swap()
	s.iteration++
	return nil
}

func (s *Solver) diffuse(cur, next *grid.Field, r stencil.Region) {
	ci, p := s.ci, s.params
	compute.Run(s.backend, s.launch, r, func(i, j, k int) {
		stencil.Cell(cur, next, ci, p, i, j, k)
	})
}

func (s *Solver) sample(ctx context.Context, result *diffusion.Result, start time.Time) error {
	f := s.buf.Current()
	heat := f.InteriorSum()
	lo, hi := f.InteriorExtrema()
	fieldLo, fieldHi := f.Min(), f.Max()

	if r, ok := s.exchanger.(halo.Reducer); ok {
		var err error
		if heat, err = r.AllReduce(ctx, heat, halo.Sum); err != nil {
			return s.wrap(err)
		}
		if hi, err = r.AllReduce(ctx, hi, halo.Max); err != nil {
			return s.wrap(err)
		}
		if lo, err = r.AllReduce(ctx, lo, halo.Min); err != nil {
			return s.wrap(err)
		}
		if fieldHi, err = r.AllReduce(ctx, fieldHi, halo.Max); err != nil {
			return s.wrap(err)
		}
		if fieldLo, err = r.AllReduce(ctx, fieldLo, halo.Min); err != nil {
			return s.wrap(err)
		}
	}

	smp := diffusion.Sample{
		Iteration: s.iteration,
		Heat:      heat,
		Max:       hi,
		Min:       lo,
		FieldMax:  fieldHi,
		FieldMin:  fieldLo,
		Cells:     s.cells,
		Elapsed:   time.Since(start),
	}
	result.Diagnostics = append(result.Diagnostics, smp)
	for _, m := range s.metrics {
		m.Observe(smp)
	}
	for _, o := range s.observers {
		o.OnSample(smp)
	}

	if math.IsNaN(heat) || math.IsInf(heat, 0) {
		return s.wrap(diffusion.ErrUnstable)
	}
	return nil
}

func (s *Solver) wrap(err error) error {
	return &diffusion.StepError{Iteration: s.iteration, Rank: s.exchanger.Rank(), Wrapped: err}
}

// Step applies one stencil update to the interior of next using the active
// backend. It performs no halo exchange.
func Step(cur, next, ci *grid.Field, dt float64, geom grid.Geometry) error {
	if cur.Shape() != geom.Shape {
		return fmt.Errorf("%w: geometry %s, field %s", grid.ErrShapeMismatch, geom.Shape, cur.Shape())
	}
	stencil.CheckShapes(cur, next, ci)

	b := compute.GetBackend()
	launch, err := b.Launch(cur.Shape())
	if err != nil {
		return err
	}
	p := stencil.NewParams(geom, dt)
	compute.Run(b, launch, stencil.Interior(cur.Shape()), func(i, j, k int) {
		stencil.Cell(cur, next, ci, p, i, j, k)
	})
	return nil
}

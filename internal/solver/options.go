package solver

import (
	"github.com/san-kum/heatlab/internal/compute"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/halo"
)

type Option func(*Solver)

// WithBackend selects the kernel dispatch backend. The default is
// compute.GetBackend().
func WithBackend(b compute.Backend) Option {
	return func(s *Solver) { s.backend = b }
}

// WithExchanger sets the halo exchanger. The default is a single-grid
// exchanger with fixed boundaries.
func WithExchanger(ex halo.Exchanger) Option {
	return func(s *Solver) { s.exchanger = ex }
}

// WithOverlap overlaps the halo exchange with the update of the inner box.
// width is the thickness of the boundary slab along each dimension.
func WithOverlap(width [3]int) Option {
	return func(s *Solver) {
		s.overlap = true
		s.width = width
	}
}

// WithSkipExchange disables the halo exchange. Halo cells then go stale and
// the results are wrong; no error is raised.
func WithSkipExchange() Option {
	return func(s *Solver) { s.skipExchange = true }
}

// WithSampleEvery takes a diagnostic sample every n iterations. The first
// and last iterations of a run are always sampled; n <= 0 samples only
// those.
func WithSampleEvery(n int) Option {
	return func(s *Solver) { s.sampleEvery = n }
}

func WithMetric(m diffusion.Metric) Option {
	return func(s *Solver) { s.metrics = append(s.metrics, m) }
}

func WithObserver(o diffusion.Observer) Option {
	return func(s *Solver) { s.observers = append(s.observers, o) }
}

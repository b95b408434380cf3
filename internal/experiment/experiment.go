package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/heatlab/internal/compute"
	"github.com/san-kum/heatlab/internal/config"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
	"github.com/san-kum/heatlab/internal/halo"
	"github.com/san-kum/heatlab/internal/models"
	"github.com/san-kum/heatlab/internal/solver"
)

// Experiment is one configured run: global fields, geometry, backend and
// either a single solver or a decomposition.
type Experiment struct {
	cfg      *config.Config
	registry *Registry

	geom    grid.Geometry
	dt      float64
	initial *grid.Field
	ci      *grid.Field
	backend compute.Backend
	launch  compute.LaunchGeometry
	global  *halo.GlobalGrid
	solver  *solver.Solver
	opts    []solver.Option
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

// Setup validates the configuration and allocates every field. Observers
// receive the diagnostic samples of the run.
func (e *Experiment) Setup(observers ...diffusion.Observer) error {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	geom, err := cfg.Geometry()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	dims, err := cfg.Dims()
	if err != nil {
		return err
	}
	wg, err := cfg.Group()
	if err != nil {
		return err
	}

	init, err := e.registry.GetInitial(cfg.Initial.Kind, models.Params{
		Amplitude:  cfg.Initial.Amplitude,
		Width:      cfg.Initial.Width,
		Background: cfg.Initial.Background,
		Center:     cfg.Initial.Center,
		Cell:       cfg.Initial.Cell,
	})
	if err != nil {
		return err
	}
	coeff, err := e.registry.GetCoefficient(cfg.Initial.CiKind, cfg.Initial.Ci)
	if err != nil {
		return err
	}

	backend, err := e.registry.GetBackend(cfg.Backend, wg, cfg.Workers)
	if err != nil {
		return err
	}

	local := geom.Shape
	if cfg.Decomposed() {
		if local, err = halo.DecomposeShape(geom.Shape, dims); err != nil {
			backend.Cleanup()
			return err
		}
	}
	// Launch geometry is checked on the shape each kernel actually sees.
	if e.launch, err = backend.Launch(local); err != nil {
		backend.Cleanup()
		return err
	}

	e.geom = geom
	e.backend = backend
	e.initial = grid.NewField(geom.Shape)
	init.Fill(e.initial, geom)
	e.ci = grid.NewField(geom.Shape)
	coeff.Fill(e.ci, geom)

	e.dt = cfg.Dt
	if e.dt == 0 {
		factor := cfg.DtFactor
		if factor == 0 {
			factor = 1
		}
		e.dt = factor * geom.StableDt(e.ci.Max())
	}

	e.opts = []solver.Option{solver.WithBackend(backend), solver.WithSampleEvery(cfg.Output.SampleEvery)}
	if cfg.Overlap {
		width, err := cfg.Width()
		if err != nil {
			backend.Cleanup()
			return err
		}
		e.opts = append(e.opts, solver.WithOverlap(width))
	}
	if cfg.SkipExchange {
		e.opts = append(e.opts, solver.WithSkipExchange())
	}
	if err := e.addMetrics(); err != nil {
		backend.Cleanup()
		return err
	}
	for _, o := range observers {
		e.opts = append(e.opts, solver.WithObserver(o))
	}

	if cfg.Decomposed() {
		if e.global, err = halo.InitGlobalGrid(local, dims, policy); err != nil {
			backend.Cleanup()
			return err
		}
		return nil
	}

	opts := append(e.opts, solver.WithExchanger(halo.NewLocal(geom.Shape, policy)))
	if e.solver, err = solver.New(e.initial, e.ci, geom, e.dt, opts...); err != nil {
		backend.Cleanup()
		return err
	}
	return nil
}

func (e *Experiment) addMetrics() error {
	if len(e.cfg.Metrics) == 0 {
		for _, m := range e.registry.DefaultMetrics() {
			e.opts = append(e.opts, solver.WithMetric(m))
		}
		return nil
	}
	for _, name := range e.cfg.Metrics {
		m, err := e.registry.GetMetric(name)
		if err != nil {
			return err
		}
		e.opts = append(e.opts, solver.WithMetric(m))
	}
	return nil
}

// Run executes the configured number of iterations and releases the
// backend and decomposition.
func (e *Experiment) Run(ctx context.Context) (*diffusion.Result, error) {
	if e.solver == nil && e.global == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	defer e.Close()

	if e.global != nil {
		return solver.RunDistributed(ctx, e.global, e.initial, e.ci, e.geom, e.dt, e.cfg.Iterations, e.opts...)
	}
	return e.solver.Run(ctx, e.cfg.Iterations)
}

// Close releases the backend and decomposition. It is safe to call twice.
func (e *Experiment) Close() {
	if e.global != nil {
		e.global.Finalize()
	}
	if e.backend != nil {
		e.backend.Cleanup()
	}
}

func (e *Experiment) Config() *config.Config         { return e.cfg }
func (e *Experiment) Geometry() grid.Geometry        { return e.geom }
func (e *Experiment) Dt() float64                    { return e.dt }
func (e *Experiment) Initial() *grid.Field           { return e.initial }
func (e *Experiment) Launch() compute.LaunchGeometry { return e.launch }

// Coefficient is the Ci field of the global grid.
func (e *Experiment) Coefficient() *grid.Field { return e.ci }

// Ranks is the number of subgrids the run is decomposed into.
func (e *Experiment) Ranks() int {
	if e.global != nil {
		return e.global.Size()
	}
	return 1
}

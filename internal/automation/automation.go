package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatlab/internal/config"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/experiment"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and applies the
// fields given under config on top of it.
type ScenarioStep struct {
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	SaveAs string    `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *diffusion.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepConfig resolves the configuration of a step.
func (s *ScenarioStep) StepConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p, ok := config.Lookup(s.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		cfg = p
	}
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes every step in order and reports progress on out.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		cfg, err := step.StepConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s (%s, %d iterations)\n",
			i+1, len(scenario.Steps), cfg.Name, cfg.Shape(), cfg.Iterations)

		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Name: cfg.Name, Config: cfg, Result: result})
	}
	return results, nil
}

// ParameterSweep varies one configuration field over Values.
type ParameterSweep struct {
	Base   *config.Config
	Param  string
	Values []float64
	// Parallel bounds the number of concurrent runs; zero runs them one
	// at a time.
	Parallel int
}

type SweepResult struct {
	ParamValue float64
	Iterations int
	Heat       float64
	Peak       float64
	HeatDrift  float64
	Throughput float64
	// Stable is false when the field diverged or left its initial range.
	Stable bool
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// SweepParams lists the fields a sweep can vary.
func SweepParams() []string {
	return []string{"dt", "dt_factor", "iterations", "nx", "ny", "nz", "ci", "width", "workers"}
}

func apply(cfg *config.Config, param string, v float64) error {
	switch param {
	case "dt":
		cfg.Dt = v
	case "dt_factor":
		cfg.Dt, cfg.DtFactor = 0, v
	case "iterations":
		cfg.Iterations = int(v)
	case "nx":
		cfg.Grid.Nx = int(v)
	case "ny":
		cfg.Grid.Ny = int(v)
	case "nz":
		cfg.Grid.Nz = int(v)
	case "ci":
		cfg.Initial.Ci = v
	case "width":
		cfg.Initial.Width = v
	case "workers":
		cfg.Workers = int(v)
	default:
		return fmt.Errorf("cannot sweep %q (available: %v)", param, SweepParams())
	}
	return nil
}

// RunSweep runs one experiment per value and reports progress on out.
// Divergence is recorded in the result rather than returned as an error.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, out io.Writer) ([]SweepResult, error) {
	if len(sweep.Values) == 0 {
		return nil, fmt.Errorf("sweep over %s has no values", sweep.Param)
	}
	if err := apply(sweep.Base.Clone(), sweep.Param, sweep.Values[0]); err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(sweep.Values))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(sweep.Parallel, 1))
	for i, v := range sweep.Values {
		g.Go(func() error {
			res, err := runPoint(gctx, sweep, registry, v)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}
			results[i] = res

			mu.Lock()
			done++
			fmt.Fprintf(out, "Sweep %d/%d: %s=%.4g\n", done, len(sweep.Values), sweep.Param, v)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runPoint(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, v float64) (SweepResult, error) {
	cfg := sweep.Base.Clone()
	if err := apply(cfg, sweep.Param, v); err != nil {
		return SweepResult{}, err
	}
	cfg.Metrics = []string{"heat_drift", "peak_temperature", "overshoot", "throughput_gbs"}

	exp := experiment.New(cfg, registry)
	if err := exp.Setup(); err != nil {
		return SweepResult{}, err
	}
	result, err := exp.Run(ctx)

	sr := SweepResult{ParamValue: v, Stable: true}
	switch {
	case errors.Is(err, diffusion.ErrUnstable):
		sr.Stable = false
	case err != nil:
		return SweepResult{}, err
	}
	if result == nil {
		return sr, nil
	}

	sr.Iterations = result.Iterations
	if last, ok := result.LastSample(); ok {
		sr.Heat, sr.Peak = last.Heat, last.Max
	}
	if sr.Stable {
		sr.HeatDrift = result.Metrics["heat_drift"]
		sr.Throughput = result.Metrics["throughput_gbs"]
		sr.Stable = result.Metrics["overshoot"] == 0
	}
	return sr, nil
}

// StabilityCount splits sweep results into stable and unstable runs.
func StabilityCount(results []SweepResult) (stable int, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}

package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatlab/internal/compute"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
	"github.com/san-kum/heatlab/internal/halo"
)

const (
	DefaultNx          = 64
	DefaultNy          = 64
	DefaultLength      = 10.0
	DefaultIterations  = 1000
	DefaultSampleEvery = 50
	DefaultAmplitude   = 2.0
	DefaultWidth       = 1.0
	DefaultCi          = 1.0
)

type Config struct {
	Name string     `yaml:"name"`
	Grid GridConfig `yaml:"grid"`
	// Dt of zero selects DtFactor times the stability limit of the grid.
	Dt            float64        `yaml:"dt"`
	DtFactor      float64        `yaml:"dt_factor,omitempty"`
	Iterations    int            `yaml:"iterations"`
	Backend       string         `yaml:"backend"`
	Workers       int            `yaml:"workers,omitempty"`
	WorkGroup     []int          `yaml:"work_group,flow,omitempty"`
	Boundary      BoundaryConfig `yaml:"boundary"`
	Overlap       bool           `yaml:"overlap"`
	BoundaryWidth []int          `yaml:"boundary_width,flow,omitempty"`
	SkipExchange  bool           `yaml:"skip_exchange,omitempty"`
	Decomposition DecompConfig   `yaml:"decomposition"`
	Initial       InitialConfig  `yaml:"initial"`
	Output        OutputConfig   `yaml:"output"`
	Metrics       []string       `yaml:"metrics,omitempty"`
}

// GridConfig describes the global grid. Nz of 1 (or 0) is a planar grid.
type GridConfig struct {
	Nx int     `yaml:"nx"`
	Ny int     `yaml:"ny"`
	Nz int     `yaml:"nz"`
	Lx float64 `yaml:"lx"`
	Ly float64 `yaml:"ly"`
	Lz float64 `yaml:"lz"`
}

type BoundaryConfig struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
	Z string `yaml:"z"`
}

type DecompConfig struct {
	// Dims is the number of ranks along each dimension; empty runs
	// undecomposed.
	Dims []int `yaml:"dims,flow,omitempty"`
}

type InitialConfig struct {
	Kind       string    `yaml:"kind"`
	Amplitude  float64   `yaml:"amplitude"`
	Width      float64   `yaml:"width"`
	Background float64   `yaml:"background"`
	Center     []float64 `yaml:"center,flow,omitempty"`
	Cell       []int     `yaml:"cell,flow,omitempty"`
	Ci         float64   `yaml:"ci"`
	CiKind     string    `yaml:"ci_kind"`
}

type OutputConfig struct {
	SampleEvery int  `yaml:"sample_every"`
	SaveField   bool `yaml:"save_field"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "gaussian-2d",
		Grid: GridConfig{
			Nx: DefaultNx, Ny: DefaultNy, Nz: 1,
			Lx: DefaultLength, Ly: DefaultLength, Lz: DefaultLength,
		},
		Iterations: DefaultIterations,
		Backend:    "auto",
		Boundary:   BoundaryConfig{X: "fixed", Y: "fixed", Z: "fixed"},
		Initial: InitialConfig{
			Kind:      "gaussian",
			Amplitude: DefaultAmplitude,
			Width:     DefaultWidth,
			Ci:        DefaultCi,
			CiKind:    "constant",
		},
		Output: OutputConfig{SampleEvery: DefaultSampleEvery},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes yaml over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.WorkGroup = append([]int(nil), c.WorkGroup...)
	out.BoundaryWidth = append([]int(nil), c.BoundaryWidth...)
	out.Decomposition.Dims = append([]int(nil), c.Decomposition.Dims...)
	out.Initial.Center = append([]float64(nil), c.Initial.Center...)
	out.Initial.Cell = append([]int(nil), c.Initial.Cell...)
	out.Metrics = append([]string(nil), c.Metrics...)
	return &out
}

func (c *Config) Shape() grid.Shape {
	nz := c.Grid.Nz
	if nz <= 1 {
		nz = 1
	}
	return grid.Shape{Nx: c.Grid.Nx, Ny: c.Grid.Ny, Nz: nz}
}

func (c *Config) Geometry() (grid.Geometry, error) {
	return grid.NewGeometry(c.Shape(), c.Grid.Lx, c.Grid.Ly, c.Grid.Lz)
}

func (c *Config) Policy() (halo.Policy, error) {
	var p halo.Policy
	for d, name := range []string{c.Boundary.X, c.Boundary.Y, c.Boundary.Z} {
		b, err := halo.ParseBoundary(name)
		if err != nil {
			return p, err
		}
		p[d] = b
	}
	return p, nil
}

func (c *Config) Dims() ([3]int, error) {
	return triple("decomposition.dims", c.Decomposition.Dims, 1)
}

func (c *Config) Decomposed() bool {
	dims, err := c.Dims()
	return err == nil && dims[0]*dims[1]*dims[2] > 1
}

func (c *Config) Group() (compute.WorkGroup, error) {
	if len(c.WorkGroup) == 0 {
		return compute.WorkGroup{}, nil
	}
	w, err := triple("work_group", c.WorkGroup, 1)
	return compute.WorkGroup{X: w[0], Y: w[1], Z: w[2]}, err
}

// Width is the overlap boundary width; it defaults to 1 everywhere.
func (c *Config) Width() ([3]int, error) {
	return triple("boundary_width", c.BoundaryWidth, 1)
}

func triple(field string, v []int, fill int) ([3]int, error) {
	out := [3]int{fill, fill, fill}
	if len(v) == 0 {
		return out, nil
	}
	if len(v) > 3 {
		return out, fmt.Errorf("%w: %s takes at most 3 values, got %v", diffusion.ErrInvalidConfig, field, v)
	}
	copy(out[:], v)
	return out, nil
}

// Validate checks everything that does not require allocating fields.
func (c *Config) Validate() error {
	if err := c.Shape().Validate(); err != nil {
		return err
	}
	if _, err := c.Geometry(); err != nil {
		return err
	}
	if c.Dt < 0 {
		return fmt.Errorf("%w: dt must be non-negative, got %g", diffusion.ErrInvalidConfig, c.Dt)
	}
	if c.DtFactor < 0 {
		return fmt.Errorf("%w: dt_factor must be non-negative, got %g", diffusion.ErrInvalidConfig, c.DtFactor)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative, got %d", diffusion.ErrInvalidConfig, c.Iterations)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Backend != "" && !slices.Contains(compute.Names(), c.Backend) {
		return fmt.Errorf("%w: %q", compute.ErrUnknownBackend, c.Backend)
	}
	if _, err := c.Group(); err != nil {
		return err
	}
	if _, err := c.Width(); err != nil {
		return err
	}
	dims, err := c.Dims()
	if err != nil {
		return err
	}
	if _, err := halo.DecomposeShape(c.Shape(), dims); err != nil {
		return err
	}
	if c.Output.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must be non-negative", diffusion.ErrInvalidConfig)
	}
	return nil
}

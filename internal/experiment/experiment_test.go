package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/heatlab/internal/compute"
	"github.com/san-kum/heatlab/internal/config"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/halo"
	"github.com/san-kum/heatlab/internal/models"
)

func preset(t *testing.T, name string) *config.Config {
	t.Helper()
	cfg, ok := config.Lookup(name)
	if !ok {
		t.Fatalf("preset %s missing", name)
	}
	return cfg
}

func TestExperiment_Spike(t *testing.T) {
	exp := New(preset(t, "spike-4x4"), nil)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := res.Final.At(1, 1, 0); math.Abs(got-0.8) > 1e-15 {
		t.Errorf("spike after one step = %v, want 0.8", got)
	}
	if len(res.Diagnostics) != 2 {
		t.Errorf("expected 2 samples, got %d", len(res.Diagnostics))
	}
	if _, ok := res.Metrics["heat_drift"]; !ok {
		t.Error("default metrics missing from result")
	}
}

func TestExperiment_DecomposedMatchesSingle(t *testing.T) {
	base := preset(t, "decomposed-2x2")
	base.Grid.Nx, base.Grid.Ny = 34, 18
	base.Iterations = 40
	base.Overlap = true
	base.BoundaryWidth = []int{2, 1}

	single := base.Clone()
	single.Decomposition.Dims = nil

	run := func(cfg *config.Config) *diffusion.Result {
		exp := New(cfg, nil)
		if err := exp.Setup(); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return res
	}

	want := run(single)
	got := run(base)
	if !got.Final.Equal(want.Final) {
		t.Error("decomposed experiment differs from the single-grid run")
	}
}

func TestExperiment_StableDtDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Grid.Nx, cfg.Grid.Ny = 16, 16
	cfg.Iterations = 2
	exp := New(cfg, nil)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	defer exp.Close()
	if want := exp.Geometry().StableDt(1); exp.Dt() != want {
		t.Errorf("dt = %v, want stability limit %v", exp.Dt(), want)
	}
	if exp.Ranks() != 1 {
		t.Errorf("ranks = %d", exp.Ranks())
	}
}

func TestExperiment_SetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   error
	}{
		{"indivisible work group", func(c *config.Config) { c.WorkGroup = []int{5, 8} }, compute.ErrIndivisibleShape},
		{"unknown initial", func(c *config.Config) { c.Initial.Kind = "vortex" }, nil},
		{"bad boundary", func(c *config.Config) { c.Boundary.X = "open" }, halo.ErrUnknownBoundary},
		{"overlap too thin", func(c *config.Config) {
			c.Boundary.X = "periodic"
			c.Overlap = true
			c.BoundaryWidth = []int{0, 1}
		}, diffusion.ErrBoundaryWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := New(cfg, nil).Setup()
			if err == nil {
				t.Fatal("expected setup error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExperiment_RunWithoutSetup(t *testing.T) {
	if _, err := New(config.DefaultConfig(), nil).Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.RegisterInitial("hot", func(p models.Params) (models.Initial, error) {
		return &models.Constant{Value: 100}, nil
	})
	init, err := r.GetInitial("hot", models.Params{})
	if err != nil || init.Name() != "constant" {
		t.Errorf("custom initial not registered: %v", err)
	}
	if len(r.ListInitials()) != len(models.InitialNames())+1 {
		t.Errorf("initials = %v", r.ListInitials())
	}
	if _, err := r.GetMetric("heat_gain"); err != nil {
		t.Error(err)
	}
	if _, err := r.GetCoefficient("", 1); err != nil {
		t.Error(err)
	}
	if _, err := r.GetCoefficient("marble", 1); err == nil {
		t.Error("expected unknown coefficient error")
	}
}

package automation

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/heatlab/internal/config"
	"github.com/san-kum/heatlab/internal/experiment"
)

const scenarioYAML = `
name: smoke
description: spike then a small periodic run
steps:
  - preset: spike-4x4
  - preset: periodic-x
    save_as: periodic-small
    config:
      iterations: 20
      grid: {nx: 24, ny: 12, nz: 1, lx: 5, ly: 2.5}
      output: {sample_every: 5}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	cfg, err := sc.Steps[1].StepConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "periodic-small" || cfg.Iterations != 20 || cfg.Grid.Nx != 24 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Boundary.X != "periodic" {
		t.Error("preset fields should survive the overrides")
	}
	if config.GetPreset("boundary", "periodic-x").Iterations == 20 {
		t.Error("overrides leaked into the preset table")
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestLoadAndRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), &out)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if math.Abs(results[0].Result.Final.At(1, 1, 0)-0.8) > 1e-15 {
		t.Error("spike step gave the wrong field")
	}
	if results[1].Name != "periodic-small" || results[1].Result.Iterations != 20 {
		t.Errorf("second step: %s, %d iterations", results[1].Name, results[1].Result.Iterations)
	}
	if !strings.Contains(out.String(), "Running step 2/2: periodic-small") {
		t.Errorf("missing progress output:\n%s", out.String())
	}
}

func TestRunScenario_UnknownPreset(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []ScenarioStep{{Preset: "nope"}}}
	if _, err := RunScenario(context.Background(), sc, nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func smallBase() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Nx, cfg.Grid.Ny = 18, 18
	cfg.Iterations = 200
	cfg.Output.SampleEvery = 10
	return cfg
}

func TestRunSweep_StabilityLimit(t *testing.T) {
	sweep := &ParameterSweep{
		Base:     smallBase(),
		Param:    "dt_factor",
		Values:   []float64{0.25, 0.5, 1, 2, 4},
		Parallel: 2,
	}
	var out bytes.Buffer
	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), &out)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if r.ParamValue != sweep.Values[i] {
			t.Errorf("result %d for %v, want %v", i, r.ParamValue, sweep.Values[i])
		}
		wantStable := r.ParamValue <= 1
		if r.Stable != wantStable {
			t.Errorf("dt_factor=%v: stable=%v, want %v", r.ParamValue, r.Stable, wantStable)
		}
	}
	stable, unstable := StabilityCount(results)
	if stable != 3 || unstable != 2 {
		t.Errorf("stable=%d unstable=%d", stable, unstable)
	}
	if strings.Count(out.String(), "Sweep ") != 5 {
		t.Errorf("expected 5 progress lines:\n%s", out.String())
	}
}

func TestRunSweep_WideBlobOnColdBorders(t *testing.T) {
	base := config.DefaultConfig()
	base.Grid.Nx, base.Grid.Ny = 32, 32
	base.Iterations = 200
	base.Output.SampleEvery = 20
	base.DtFactor = 0.5

	sweep := &ParameterSweep{Base: base, Param: "width", Values: []float64{1, 20}}
	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	for _, r := range results {
		if !r.Stable {
			t.Errorf("width=%v at half the stability limit marked unstable (peak %v)", r.ParamValue, r.Peak)
		}
	}
}

func TestRunSweep_Errors(t *testing.T) {
	reg := experiment.NewRegistry()
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: smallBase(), Param: "colour", Values: []float64{1}}, reg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: smallBase(), Param: "dt"}, reg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for empty sweep")
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: smallBase(), Param: "nx", Values: []float64{2}}, reg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for an invalid grid")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Linspace = %v", got)
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("single-point linspace")
	}
}

package config

import "sort"

var Presets = map[string]map[string]*Config{
	"basic": {
		"spike-4x4": {
			Name: "spike-4x4", Iterations: 1, Dt: 0.05, Backend: "serial",
			Grid:     GridConfig{Nx: 4, Ny: 4, Nz: 1, Lx: 3, Ly: 3},
			Boundary: BoundaryConfig{X: "fixed", Y: "fixed", Z: "fixed"},
			Initial:  InitialConfig{Kind: "spike", Amplitude: 1, Cell: []int{1, 1, 0}, Ci: 1, CiKind: "constant"},
			Output:   OutputConfig{SampleEvery: 1, SaveField: true},
		},
		"gaussian-2d": {
			Name: "gaussian-2d", Iterations: 2000, Backend: "auto",
			Grid:     GridConfig{Nx: 128, Ny: 128, Nz: 1, Lx: 10, Ly: 10},
			Boundary: BoundaryConfig{X: "closed", Y: "closed", Z: "fixed"},
			Initial:  InitialConfig{Kind: "gaussian", Amplitude: 2, Width: 1, Ci: 1, CiKind: "constant"},
			Output:   OutputConfig{SampleEvery: 50, SaveField: true},
		},
		"gaussian-3d": {
			Name: "gaussian-3d", Iterations: 500, Backend: "pool",
			Grid:     GridConfig{Nx: 48, Ny: 48, Nz: 48, Lx: 10, Ly: 10, Lz: 10},
			Boundary: BoundaryConfig{X: "fixed", Y: "fixed", Z: "fixed"},
			Initial:  InitialConfig{Kind: "gaussian", Amplitude: 1.7, Width: 1, Ci: 1, CiKind: "bump"},
			Output:   OutputConfig{SampleEvery: 25},
		},
	},
	"boundary": {
		"periodic-x": {
			Name: "periodic-x", Iterations: 1500, Backend: "auto",
			Grid:     GridConfig{Nx: 96, Ny: 48, Nz: 1, Lx: 20, Ly: 10},
			Boundary: BoundaryConfig{X: "periodic", Y: "closed", Z: "fixed"},
			Initial:  InitialConfig{Kind: "gaussian", Amplitude: 2, Width: 1.5, Center: []float64{0.05, 0.5, 0.5}, Ci: 1, CiKind: "constant"},
			Output:   OutputConfig{SampleEvery: 50, SaveField: true},
		},
		"cold-walls": {
			Name: "cold-walls", Iterations: 1000, Backend: "auto",
			Grid:     GridConfig{Nx: 64, Ny: 64, Nz: 1, Lx: 10, Ly: 10},
			Boundary: BoundaryConfig{X: "fixed", Y: "fixed", Z: "fixed"},
			Initial:  InitialConfig{Kind: "constant", Amplitude: 1, Ci: 1, CiKind: "bump"},
			Output:   OutputConfig{SampleEvery: 50, SaveField: true},
		},
	},
	"parallel": {
		"decomposed-2x2": {
			Name: "decomposed-2x2", Iterations: 1000, Backend: "cpu",
			Grid:          GridConfig{Nx: 130, Ny: 130, Nz: 1, Lx: 10, Ly: 10},
			Boundary:      BoundaryConfig{X: "periodic", Y: "periodic", Z: "fixed"},
			Decomposition: DecompConfig{Dims: []int{2, 2, 1}},
			Initial:       InitialConfig{Kind: "gaussian", Amplitude: 2, Width: 1, Ci: 1, CiKind: "constant"},
			Output:        OutputConfig{SampleEvery: 50, SaveField: true},
		},
		"overlap-3d": {
			Name: "overlap-3d", Iterations: 300, Backend: "pool",
			Grid:          GridConfig{Nx: 66, Ny: 34, Nz: 34, Lx: 20, Ly: 10, Lz: 10},
			Boundary:      BoundaryConfig{X: "periodic", Y: "closed", Z: "closed"},
			Decomposition: DecompConfig{Dims: []int{2, 1, 1}},
			Overlap:       true,
			BoundaryWidth: []int{4, 2, 2},
			Initial:       InitialConfig{Kind: "gaussian", Amplitude: 1.7, Width: 1, Ci: 1, CiKind: "bump"},
			Output:        OutputConfig{SampleEvery: 20},
		},
	},
}

func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// Lookup finds a preset by name in any group and returns a copy.
func Lookup(preset string) (*Config, bool) {
	for _, group := range Presets {
		if cfg, ok := group[preset]; ok {
			return cfg.Clone(), true
		}
	}
	return nil, false
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Groups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/heatlab/internal/diffusion"
)

var factories = map[string]func() diffusion.Metric{
	"heat_content":     func() diffusion.Metric { return NewHeatContent() },
	"heat_drift":       func() diffusion.Metric { return NewHeatDrift() },
	"heat_gain":        func() diffusion.Metric { return NewHeatGain() },
	"peak_temperature": func() diffusion.Metric { return NewPeakTemperature() },
	"overshoot":        func() diffusion.Metric { return NewOvershoot(1e-9) },
	"throughput_gbs":   func() diffusion.Metric { return NewThroughput() },
}

// New returns a fresh metric by name.
func New(name string) (diffusion.Metric, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default is the set attached to a run when none is configured.
func Default() []diffusion.Metric {
	return []diffusion.Metric{NewHeatContent(), NewHeatDrift(), NewPeakTemperature(), NewThroughput()}
}

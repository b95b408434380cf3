package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatlab/internal/diffusion"
)

// Series lists the diagnostics PlotDiagnostics can draw.
func Series() []string {
	return []string{"heat", "max", "min"}
}

// SeriesValues extracts one diagnostic from samples.
func SeriesValues(samples []diffusion.Sample, series string) ([]float64, error) {
	pick := map[string]func(diffusion.Sample) float64{
		"heat": func(s diffusion.Sample) float64 { return s.Heat },
		"max":  func(s diffusion.Sample) float64 { return s.Max },
		"min":  func(s diffusion.Sample) float64 { return s.Min },
	}[series]
	if pick == nil {
		return nil, fmt.Errorf("unknown series %q (available: %v)", series, Series())
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = pick(s)
	}
	return out, nil
}

// PlotDiagnostics draws one diagnostic against the sample index.
func PlotDiagnostics(samples []diffusion.Sample, series string, width, height int) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("no samples to plot")
	}
	data, err := SeriesValues(samples, series)
	if err != nil {
		return "", err
	}
	caption := fmt.Sprintf("%s over iterations %d..%d", series,
		samples[0].Iteration, samples[len(samples)-1].Iteration)
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}

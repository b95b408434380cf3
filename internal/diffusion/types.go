package diffusion

import (
	"time"

	"github.com/san-kum/heatlab/internal/grid"
)

// Sample is taken over the whole domain. On a decomposed grid every rank
// sees the same values.
type Sample struct {
	Iteration int
	// Heat is the sum of the interior temperatures.
	Heat float64
	Max  float64
	Min  float64
	// FieldMax and FieldMin also cover the border, which bounds the
	// interior for as long as the scheme is stable.
	FieldMax float64
	FieldMin float64
	// Cells is the number of interior cells of the domain.
	Cells   int
	Elapsed time.Duration
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Result struct {
	Iterations  int
	Elapsed     time.Duration
	Metrics     map[string]float64
	Diagnostics []Sample
	Final       *grid.Field
}

// LastSample returns the final diagnostic sample, or false if none was taken.
func (r *Result) LastSample() (Sample, bool) {
	if r == nil || len(r.Diagnostics) == 0 {
		return Sample{}, false
	}
	return r.Diagnostics[len(r.Diagnostics)-1], true
}

package metrics

import (
	"math"

	"github.com/san-kum/heatlab/internal/diffusion"
)

type PeakTemperature struct {
	name    string
	peak    float64
	samples int
}

func NewPeakTemperature() *PeakTemperature {
	return &PeakTemperature{name: "peak_temperature", peak: math.Inf(-1)}
}

func (p *PeakTemperature) Name() string { return p.name }

func (p *PeakTemperature) Observe(s diffusion.Sample) {
	p.peak = s.Max
	p.samples++
}

// Value is the interior maximum at the last sample.
func (p *PeakTemperature) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.peak
}

func (p *PeakTemperature) Reset() {
	p.peak = math.Inf(-1)
	p.samples = 0
}

// Overshoot counts samples whose interior extrema leave the range of the
// whole first field, border included. Diffusion obeys a maximum principle,
// so any count above zero means the time step exceeds the stability limit.
type Overshoot struct {
	name       string
	tolerance  float64
	lo, hi     float64
	violations int
	samples    int
}

func NewOvershoot(tolerance float64) *Overshoot {
	return &Overshoot{name: "overshoot", tolerance: tolerance}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(s diffusion.Sample) {
	if o.samples == 0 {
		o.lo, o.hi = s.FieldMin, s.FieldMax
	}
	o.samples++
	if s.Max > o.hi+o.tolerance || s.Min < o.lo-o.tolerance {
		o.violations++
	}
}

func (o *Overshoot) Value() float64 { return float64(o.violations) }

func (o *Overshoot) Reset() {
	o.lo, o.hi = 0, 0
	o.violations = 0
	o.samples = 0
}

package metrics

import (
	"github.com/san-kum/heatlab/internal/diffusion"
)

// Throughput estimates the effective memory throughput in GB/s,
// A_eff/t_it with A_eff = (2*updated + readOnly) * cells * 8 bytes per
// iteration. The diffusion step updates the temperature and reads Ci.
type Throughput struct {
	name     string
	updated  int
	readOnly int
	first    diffusion.Sample
	last     diffusion.Sample
	samples  int
}

func NewThroughput() *Throughput {
	return &Throughput{name: "throughput_gbs", updated: 1, readOnly: 1}
}

func (t *Throughput) Name() string { return t.name }

func (t *Throughput) Observe(s diffusion.Sample) {
	if t.samples == 0 {
		t.first = s
	}
	t.last = s
	t.samples++
}

// BytesPerIteration is A_eff for the last observed domain.
func (t *Throughput) BytesPerIteration() float64 {
	return float64(2*t.updated+t.readOnly) * float64(t.last.Cells) * 8
}

func (t *Throughput) Value() float64 {
	iters := t.last.Iteration - t.first.Iteration
	secs := (t.last.Elapsed - t.first.Elapsed).Seconds()
	if iters <= 0 || secs <= 0 {
		return 0
	}
	return t.BytesPerIteration() * float64(iters) / secs / 1e9
}

func (t *Throughput) Reset() {
	t.first = diffusion.Sample{}
	t.last = diffusion.Sample{}
	t.samples = 0
}

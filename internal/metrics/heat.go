package metrics

import (
	"math"

	"github.com/san-kum/heatlab/internal/diffusion"
)

// HeatContent reports the interior heat at the last sample.
type HeatContent struct {
	name    string
	heat    float64
	samples int
}

func NewHeatContent() *HeatContent {
	return &HeatContent{name: "heat_content"}
}

func (h *HeatContent) Name() string { return h.name }

func (h *HeatContent) Observe(s diffusion.Sample) {
	h.heat = s.Heat
	h.samples++
}

func (h *HeatContent) Value() float64 { return h.heat }

func (h *HeatContent) Reset() {
	h.heat = 0
	h.samples = 0
}

// HeatDrift is the largest relative change of the interior heat with
// respect to the first sample. With closed or periodic boundaries and a
// constant coefficient it stays at rounding level.
type HeatDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewHeatDrift() *HeatDrift {
	return &HeatDrift{name: "heat_drift"}
}

func (h *HeatDrift) Name() string { return h.name }

func (h *HeatDrift) Observe(s diffusion.Sample) {
	if h.samples == 0 {
		h.initial = s.Heat
	}
	h.samples++

	diff := math.Abs(s.Heat - h.initial)
	if h.initial != 0 {
		diff /= math.Abs(h.initial)
	}
	h.maxDrift = math.Max(h.maxDrift, diff)
}

func (h *HeatDrift) Value() float64 { return h.maxDrift }

func (h *HeatDrift) Reset() {
	h.initial = 0
	h.maxDrift = 0
	h.samples = 0
}

// HeatGain is the largest increase of the interior heat over the first
// sample. Without sources the explicit scheme never adds heat, so a
// positive value flags a broken halo or an unstable step.
type HeatGain struct {
	name    string
	initial float64
	gain    float64
	samples int
}

func NewHeatGain() *HeatGain {
	return &HeatGain{name: "heat_gain"}
}

func (h *HeatGain) Name() string { return h.name }

func (h *HeatGain) Observe(s diffusion.Sample) {
	if h.samples == 0 {
		h.initial = s.Heat
	}
	h.samples++
	h.gain = math.Max(h.gain, s.Heat-h.initial)
}

func (h *HeatGain) Value() float64 { return h.gain }

func (h *HeatGain) Reset() {
	h.initial = 0
	h.gain = 0
	h.samples = 0
}

package models

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownModel = errors.New("models: unknown model")

// Params are the configurable knobs shared by the initial conditions.
type Params struct {
	Amplitude  float64
	Width      float64
	Background float64
	// Center is in fractions of the extent; nil keeps the middle.
	Center []float64
	// Cell is the spike position; nil keeps the middle.
	Cell []int
}

var initials = map[string]func(Params) Initial{
	"gaussian": func(p Params) Initial {
		g := NewGaussian(p.Amplitude, p.Width)
		g.Background = p.Background
		copy(g.Center[:], p.Center)
		return g
	},
	"spike": func(p Params) Initial {
		s := NewSpike(p.Amplitude)
		s.Background = p.Background
		copy(s.Cell[:], p.Cell)
		return s
	},
	"constant": func(p Params) Initial {
		return &Constant{Value: p.Amplitude}
	},
}

func InitialByName(name string, p Params) (Initial, error) {
	fn, ok := initials[name]
	if !ok {
		return nil, fmt.Errorf("%w: initial condition %q", ErrUnknownModel, name)
	}
	if name == "gaussian" && p.Width <= 0 {
		return nil, fmt.Errorf("%w: gaussian width must be positive", ErrUnknownModel)
	}
	return fn(p), nil
}

// CoefficientByName builds a Ci profile with base value ci.
func CoefficientByName(name string, ci float64) (Coefficient, error) {
	if ci <= 0 {
		return nil, fmt.Errorf("ci must be positive, got %g", ci)
	}
	switch name {
	case "", "constant":
		return &UniformCi{Ci: ci}, nil
	case "bump":
		return NewCapacityBump(ci), nil
	}
	return nil, fmt.Errorf("%w: coefficient %q", ErrUnknownModel, name)
}

func InitialNames() []string {
	names := make([]string, 0, len(initials))
	for n := range initials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func CoefficientNames() []string {
	return []string{"bump", "constant"}
}

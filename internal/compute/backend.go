package compute

import (
	"errors"
	"fmt"

	"github.com/san-kum/heatlab/internal/grid"
)

var (
	// ErrIndivisibleShape indicates a grid extent that is not a multiple of
	// the requested work-group size.
	ErrIndivisibleShape = errors.New("compute: grid extent not divisible by work-group size")

	// ErrUnknownBackend indicates a backend name with no implementation.
	ErrUnknownBackend = errors.New("compute: unknown backend")
)

type Backend interface {
	Name() string
	Available() bool
	// Launch derives the block partition for a field of the given shape.
	Launch(shape grid.Shape) (LaunchGeometry, error)
	// ParallelFor runs fn over disjoint chunks of [0, n) and returns once
	// every chunk has finished.
	ParallelFor(n int, fn func(start, end int))
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil && activeBackend != b {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelectBackend picks the goroutine backend with the default work group.
func AutoSelectBackend() Backend {
	return NewCPUBackend(WorkGroup{})
}

// ByName builds a backend from its configuration name. "auto" and the empty
// string select the default.
func ByName(name string, wg WorkGroup, workers int) (Backend, error) {
	switch name {
	case "", "auto":
		b := AutoSelectBackend().(*CPUBackend)
		b.group = wg
		if workers > 0 {
			b.workers = workers
		}
		return b, nil
	case "serial":
		return NewSerialBackend(wg), nil
	case "cpu":
		b := NewCPUBackend(wg)
		if workers > 0 {
			b.workers = workers
		}
		return b, nil
	case "pool":
		return NewPoolBackend(wg, workers), nil
	}
	return nil, fmt.Errorf("%w: %q (available: serial, cpu, pool)", ErrUnknownBackend, name)
}

// Names lists the backends accepted by ByName.
func Names() []string {
	return []string{"auto", "serial", "cpu", "pool"}
}

package compute

import (
	"runtime"
	"sync"

	"github.com/san-kum/heatlab/internal/grid"
)

// CPUBackend spawns one goroutine per chunk on every launch.
type CPUBackend struct {
	workers int
	group   WorkGroup
}

func NewCPUBackend(wg WorkGroup) *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
		group:   wg,
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) Launch(shape grid.Shape) (LaunchGeometry, error) {
	return DeriveLaunch(shape, c.group)
}

func (c *CPUBackend) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := min(c.workers, n)
	if workers <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := min(start+chunkSize, n)

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// SerialBackend runs every block on the calling goroutine.
type SerialBackend struct {
	group WorkGroup
}

func NewSerialBackend(wg WorkGroup) *SerialBackend {
	return &SerialBackend{group: wg}
}

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) Launch(shape grid.Shape) (LaunchGeometry, error) {
	return DeriveLaunch(shape, s.group)
}

func (s *SerialBackend) ParallelFor(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

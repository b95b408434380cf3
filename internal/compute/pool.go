package compute

import (
	"runtime"
	"sync"

	"github.com/san-kum/heatlab/internal/grid"
)

// PoolBackend keeps a fixed set of worker goroutines alive across launches
// so a time loop does not pay goroutine start-up on every step.
type PoolBackend struct {
	group      WorkGroup
	numWorkers int
	workC      chan poolItem

	// mu is held for reading while a launch sends on workC and for
	// writing while Cleanup closes it.
	mu     sync.RWMutex
	closed bool
}

type poolItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// NewPoolBackend starts workers immediately. workers <= 0 uses GOMAXPROCS.
func NewPoolBackend(wg WorkGroup, workers int) *PoolBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &PoolBackend{
		group:      wg,
		numWorkers: workers,
		workC:      make(chan poolItem, workers*2),
	}
	for range workers {
		go p.worker()
	}
	return p
}

func (p *PoolBackend) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

func (p *PoolBackend) Name() string { return "pool" }
func (p *PoolBackend) Workers() int { return p.numWorkers }

func (p *PoolBackend) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

func (p *PoolBackend) Launch(shape grid.Shape) (LaunchGeometry, error) {
	return DeriveLaunch(shape, p.group)
}

// Cleanup stops the workers once launches in flight have queued their
// work. Later launches run on the caller.
func (p *PoolBackend) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.workC)
	}
}

func (p *PoolBackend) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := min(p.numWorkers, n)
	if workers == 1 {
		fn(0, n)
		return
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		fn(0, n)
		return
	}
	chunkSize := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for i := range workers {
		start := i * chunkSize
		if start >= n {
			break
		}
		end := min(start+chunkSize, n)
		wg.Add(1)
		p.workC <- poolItem{
			fn:      func() { fn(start, end) },
			barrier: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}

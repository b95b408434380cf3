package grid

import "sync"

// PlanePool recycles halo message buffers of a fixed length.
type PlanePool struct {
	pool sync.Pool
	size int
}

func NewPlanePool(size int) *PlanePool {
	return &PlanePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *PlanePool) Get() []float64 {
	return p.pool.Get().([]float64)
}

// Put returns buf to the pool. Buffers of the wrong length are dropped.
func (p *PlanePool) Put(buf []float64) {
	if cap(buf) < p.size {
		return
	}
	p.pool.Put(buf[:p.size])
}

package halo

import (
	"context"
	"sync"
)

// reducer is a reusable all-reduce barrier. Values are combined in rank
// order so the result does not depend on arrival order.
type reducer struct {
	mu  sync.Mutex
	n   int
	cur *reducePhase
}

type reducePhase struct {
	vals    []float64
	arrived int
	result  float64
	done    chan struct{}
}

func newReducer(n int) *reducer {
	return &reducer{n: n, cur: newReducePhase(n)}
}

func newReducePhase(n int) *reducePhase {
	return &reducePhase{vals: make([]float64, n), done: make(chan struct{})}
}

func (r *reducer) allReduce(ctx context.Context, finalized <-chan struct{}, rank int, v float64, op ReduceOp) (float64, error) {
	r.mu.Lock()
	p := r.cur
	p.vals[rank] = v
	p.arrived++
	if p.arrived == r.n {
		acc := p.vals[0]
		for _, x := range p.vals[1:] {
			acc = op.apply(acc, x)
		}
		p.result = acc
		close(p.done)
		r.cur = newReducePhase(r.n)
	}
	r.mu.Unlock()

	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-finalized:
		return 0, ErrFinalized
	}
}

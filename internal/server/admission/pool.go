package admission

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool runs functions in their own goroutines with at most size of them
// running at once. A Pool of size <= 0 is unbounded.
type Pool struct {
	sem      *semaphore.Weighted
	size     int
	inFlight atomic.Int64
}

// NewPool creates a pool of the given size.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	if size > 0 {
		p.sem = semaphore.NewWeighted(int64(size))
	}
	return p
}

// Go blocks until a slot is free, then runs fn in a new goroutine.
// It returns ctx.Err() if ctx is done before a slot frees up; fn is
// not run in that case.
func (p *Pool) Go(ctx context.Context, fn func()) error {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	p.inFlight.Add(1)
	go func() {
		defer func() {
			p.inFlight.Add(-1)
			if p.sem != nil {
				p.sem.Release(1)
			}
		}()
		fn()
	}()
	return nil
}

// InFlight returns the number of functions currently running.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Size returns the configured bound, 0 meaning unbounded.
func (p *Pool) Size() int {
	if p.size < 0 {
		return 0
	}
	return p.size
}

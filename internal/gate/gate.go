package gate

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of concurrently running resource-heavy operations.
// A Gate has a fixed capacity; callers acquire a slot before spawning an
// external process and must release it on every exit path, including spawn
// failure.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int
	active   atomic.Int64
}

// New creates a Gate with the given capacity. Capacity below 1 is raised to 1.
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// TryAcquire claims a slot without blocking. A false return is the
// load-shedding signal: the caller should report busy, not queue.
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.active.Add(1)
	return true
}

// Acquire blocks until a slot is available or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.active.Add(1)
	return nil
}

// Release returns a previously acquired slot. Releasing more than was
// acquired panics, which surfaces double-release bugs immediately.
func (g *Gate) Release() {
	g.active.Add(-1)
	g.sem.Release(1)
}

// Active returns the number of slots currently held.
func (g *Gate) Active() int {
	return int(g.active.Load())
}

// Capacity returns the fixed slot count.
func (g *Gate) Capacity() int {
	return g.capacity
}

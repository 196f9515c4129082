// Package pool provides the shared worker-pool executor used by the
// RotationBank, Matcher, and Updater to parallelize their per-slot and
// per-cell regions, mirroring the persistent ants.Pool field idiom used
// for hot-path fan-out elsewhere in the corpus.
package pool

import (
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Executor runs a fixed number of independent, disjoint-write tasks
// concurrently and blocks until all have completed.
type Executor struct {
	pool *ants.Pool
}

// New creates an Executor backed by an ants.Pool with the given worker
// capacity. A capacity <= 0 makes ants create a pool with no limit on
// the number of workers.
func New(capacity int) (*Executor, error) {
	var opts []ants.Option
	p, err := ants.NewPool(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &Executor{pool: p}, nil
}

// Release tears down the underlying pool. Call once the training run
// finishes.
func (e *Executor) Release() {
	e.pool.Release()
}

// ForEach submits n independent tasks, one per index in [0,n), and waits
// for all to complete. A panic inside a task is recovered and logged by
// the ants worker and is not reported through the returned error.
func (e *Executor) ForEach(n int, task func(i int)) error {
	if n <= 0 {
		return nil
	}
	var wg sync.WaitGroup
	wg.Add(n)
	var firstErr error
	var errOnce sync.Once
	for i := 0; i < n; i++ {
		i := i
		err := e.pool.Submit(func() {
			defer wg.Done()
			task(i)
		})
		if err != nil {
			wg.Done()
			errOnce.Do(func() { firstErr = err })
		}
	}
	wg.Wait()
	return firstErr
}

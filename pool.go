package fastcsr

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	csrerrors "github.com/tamirms/fastcsr/errors"
)

// DefaultWorkers returns the default pool size, runtime.NumCPU()+2.
func DefaultWorkers() int {
	return runtime.NumCPU() + 2
}

// Pool bounds the number of tasks running at once across every accumulator
// that shares it. Tasks are submitted in groups and joined per group.
//
// A Pool holds no goroutines of its own. Submitting a task blocks until a
// slot is free and only then starts a goroutine for it, so at most Size()
// task goroutines exist at a time however many tasks are queued.
type Pool struct {
	sem    *semaphore.Weighted
	size   int
	closed atomic.Bool
}

// NewPool creates a pool running at most workers tasks concurrently.
// Zero selects DefaultWorkers().
func NewPool(workers int) (*Pool, error) {
	if workers < 0 {
		return nil, csrerrors.ErrInvalidWorkers
	}
	if workers == 0 {
		workers = DefaultWorkers()
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(workers)),
		size: workers,
	}, nil
}

// Size returns the maximum number of concurrent tasks.
func (p *Pool) Size() int {
	return p.size
}

// Close rejects further tasks. Tasks already running are not interrupted.
func (p *Pool) Close() {
	p.closed.Store(true)
}

// taskGroup is a set of tasks joined together. The first failure cancels
// the group's context so queued tasks are skipped.
type taskGroup struct {
	pool     *Pool
	g        *errgroup.Group
	ctx      context.Context
	failOnce sync.Once
}

func (p *Pool) group(ctx context.Context) *taskGroup {
	g, gctx := errgroup.WithContext(ctx)
	return &taskGroup{pool: p, g: g, ctx: gctx}
}

// Go acquires a slot, blocking the caller while the pool is full, and then
// runs fn on a new goroutine. Cancellation is observed before a task
// starts, never while it runs; once the group has failed, further tasks
// are dropped.
func (t *taskGroup) Go(fn func() error) {
	if t.pool.closed.Load() {
		t.fail(csrerrors.ErrPoolClosed)
		return
	}
	if err := t.pool.sem.Acquire(t.ctx, 1); err != nil {
		t.fail(err)
		return
	}
	if err := t.ctx.Err(); err != nil {
		t.pool.sem.Release(1)
		t.fail(err)
		return
	}
	t.g.Go(func() error {
		defer t.pool.sem.Release(1)
		return fn()
	})
}

// fail records err as the group's result without holding a slot.
func (t *taskGroup) fail(err error) {
	t.failOnce.Do(func() {
		t.g.Go(func() error { return err })
	})
}

// Wait blocks until every task has returned and reports the first error.
func (t *taskGroup) Wait() error {
	return t.g.Wait()
}

package fastcsr

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/tamirms/fastcsr/csr"
)

// ReadCSR drains src into a new accumulator and finalizes it.
//
// The next chunk is fetched on the pool while the current one is appended,
// so source I/O overlaps with re-indexing. Options are those of
// NewAccumulator.
func ReadCSR[V csr.Value](ctx context.Context, src Source[V], rows, cols AxisIndex, opts ...AccumulatorOption) (*Result[V], error) {
	acc, err := NewAccumulator[V](ctx, rows, cols, opts...)
	if err != nil {
		return nil, err
	}
	defer acc.Close()

	start := time.Now()
	batches := 0
	err = drain(ctx, acc.pool, src, func(c Chunk[V]) error {
		batches++
		return acc.Append(c.Rows, c.Cols, c.Values)
	})
	if err != nil {
		acc.log.LogRead(ctx, batches, acc.nnz, time.Since(start), err)
		return nil, err
	}

	nnz := acc.nnz
	res, err := acc.Finalize()
	acc.log.LogRead(ctx, batches, nnz, time.Since(start), err)
	return res, err
}

// fetch is a pending Next call running on the pool.
type fetch[V csr.Value] struct {
	g     *taskGroup
	chunk Chunk[V]
}

func startFetch[V csr.Value](ctx context.Context, pool *Pool, src Source[V]) *fetch[V] {
	f := &fetch[V]{g: pool.group(ctx)}
	f.g.Go(func() error {
		var err error
		f.chunk, err = src.Next(ctx)
		return err
	})
	return f
}

func (f *fetch[V]) wait() (Chunk[V], error) {
	err := f.g.Wait()
	return f.chunk, err
}

// drain calls fn for every chunk of src, keeping one fetch in flight.
// Each chunk is released after fn returns.
func drain[V csr.Value](ctx context.Context, pool *Pool, src Source[V], fn func(Chunk[V]) error) error {
	next := startFetch(ctx, pool, src)
	for {
		c, err := next.wait()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			c.release()
			return err
		}

		next = startFetch(ctx, pool, src)
		err = fn(c)
		c.release()
		if err != nil {
			// src must not be in use once drain returns.
			if pending, perr := next.wait(); perr == nil {
				pending.release()
			}
			return err
		}
	}
}

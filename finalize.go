package fastcsr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamirms/fastcsr/csr"
	csrerrors "github.com/tamirms/fastcsr/errors"
	"github.com/tamirms/fastcsr/internal/scatter"
)

// Finalize builds the CSR result from all appended chunks. It is terminal:
// the accumulator is closed afterwards whether or not it succeeds.
//
// Output indptr and indices share one width, chosen so that both nnz and
// every column position fit.
func (a *Accumulator[V]) Finalize() (res *Result[V], err error) {
	if a.closed {
		return nil, csrerrors.ErrAccumulatorClosed
	}
	start := time.Now()
	st := a.Stats()
	w := outputWidth(a.nnz, a.nCols)
	parts := scatter.Partitions(a.nRows, a.cfg.partitionBits)

	res, err = a.finalize(w)
	a.closed = true
	if rerr := a.release(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("release accumulator: %w", rerr))
	}
	if err != nil {
		res = nil
	}

	elapsed := time.Since(start)
	a.metrics.RecordFinalize(st.NNZ, elapsed, err)
	a.log.LogFinalize(a.ctx, st, w, parts, elapsed, err)
	return res, err
}

func (a *Accumulator[V]) finalize(w csr.Width) (*Result[V], error) {
	if a.nnz == 0 {
		return emptyResult[V](a.nRows, a.nCols, w), nil
	}
	if err := a.ctx.Err(); err != nil {
		return nil, err
	}
	chunks, err := a.loadChunks()
	if err != nil {
		return nil, err
	}

	res := &Result[V]{Shape: [2]int{a.nRows, a.nCols}}
	switch w {
	case csr.Width32:
		indptr, indices, data, err := build[int32](a.ctx, a.pool, chunks, a.hist, a.nnz, a.cfg.partitionBits)
		if err != nil {
			return nil, err
		}
		res.Indptr, res.Indices, res.Data = csr.Int32Array(indptr), csr.Int32Array(indices), data
	default:
		indptr, indices, data, err := build[int64](a.ctx, a.pool, chunks, a.hist, a.nnz, a.cfg.partitionBits)
		if err != nil {
			return nil, err
		}
		res.Indptr, res.Indices, res.Data = csr.Int64Array(indptr), csr.Int64Array(indices), data
	}
	return res, nil
}

// outputWidth selects the width of indptr and indices.
func outputWidth(nnz int64, nCols int) csr.Width {
	return csr.SelectWidth(max(nnz, int64(nCols)))
}

func emptyResult[V csr.Value](nRows, nCols int, w csr.Width) *Result[V] {
	return &Result[V]{
		Shape:   [2]int{nRows, nCols},
		Data:    []V{},
		Indptr:  csr.NewIndexArray(w, nRows+1),
		Indices: csr.NewIndexArray(w, 0),
	}
}

// build runs the prefix sum, the partitioned scatter and the unshift.
// hist has one entry per row and sums to nnz.
func build[O scatter.Index, V csr.Value](ctx context.Context, pool *Pool, chunks []chunk[V], hist []int64, nnz int64, bits uint) (indptr, indices []O, data []V, err error) {
	nRows := len(hist)
	indptr = make([]O, nRows+1)
	if total := scatter.PrefixSum(indptr, hist); total != nnz {
		return nil, nil, nil, fmt.Errorf("row histogram sums to %d, want %d", total, nnz)
	}
	indices = make([]O, nnz)
	data = make([]V, nnz)

	// Each task owns the rows [lo, hi) and with them the cursors
	// indptr[lo:hi] and the output slots of those rows.
	g := pool.group(ctx)
	for job := range scatter.Partitions(nRows, bits) {
		lo, hi := scatter.Range(job, nRows, bits)
		if lo == hi {
			continue
		}
		g.Go(func() error {
			for _, c := range chunks {
				scatterChunk(c, indices, data, indptr, lo, hi)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	scatter.Unshift(indptr)
	return indptr, indices, data, nil
}

// scatterChunk dispatches on the stored widths of the chunk's positions.
func scatterChunk[O scatter.Index, V csr.Value](c chunk[V], indices []O, data []V, cursor []O, lo, hi int) {
	rows32 := c.rows.Width() == csr.Width32
	cols32 := c.cols.Width() == csr.Width32
	switch {
	case rows32 && cols32:
		scatter.ScatterRange(c.rows.Int32s(), c.cols.Int32s(), c.vals, indices, data, cursor, int32(lo), int32(hi))
	case rows32:
		scatter.ScatterRange(c.rows.Int32s(), c.cols.Int64s(), c.vals, indices, data, cursor, int32(lo), int32(hi))
	case cols32:
		scatter.ScatterRange(c.rows.Int64s(), c.cols.Int32s(), c.vals, indices, data, cursor, int64(lo), int64(hi))
	default:
		scatter.ScatterRange(c.rows.Int64s(), c.cols.Int64s(), c.vals, indices, data, cursor, int64(lo), int64(hi))
	}
}

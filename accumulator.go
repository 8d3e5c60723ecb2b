package fastcsr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tamirms/fastcsr/csr"
	csrerrors "github.com/tamirms/fastcsr/errors"
	"github.com/tamirms/fastcsr/internal/encoding"
	"github.com/tamirms/fastcsr/internal/scatter"
	"github.com/tamirms/fastcsr/internal/spill"
)

// Accumulator collects COO chunks and builds a CSR matrix from them.
//
// Usage:
//
//	acc, err := fastcsr.NewAccumulator[float32](ctx, rows, cols)
//	if err != nil { return err }
//	defer acc.Close() // Clean up on error
//
//	for chunk := range chunks {
//	    if err := acc.Append(chunk.Rows, chunk.Cols, chunk.Values); err != nil { return err }
//	}
//	res, err := acc.Finalize()
//
// Append and Finalize must not be called concurrently. Within one Append
// the row and column lookups run in parallel on the pool; Finalize scatters
// one partition of rows per task.
type Accumulator[V csr.Value] struct {
	ctx     context.Context
	cfg     *accumulatorConfig
	pool    *Pool
	ownPool bool
	log     *Logger
	metrics MetricsCollector

	rows     AxisIndex
	cols     AxisIndex
	nRows    int
	nCols    int
	rowWidth csr.Width
	colWidth csr.Width

	hist []int64 // entries per output row
	nnz  int64

	chunks  []chunk[V]     // in-memory mode
	spill   *spill.File    // spill mode
	spilled []spilledChunk // extents of spilled chunks, in append order

	closed bool
}

// chunk is one re-indexed COO chunk.
type chunk[V csr.Value] struct {
	rows csr.IndexArray
	cols csr.IndexArray
	vals []V
}

type spilledChunk struct {
	n    int
	rows spill.Extent
	cols spill.Extent
	vals spill.Extent
}

// Stats describes the state of an accumulator.
type Stats struct {
	Rows       int
	Cols       int
	Chunks     int
	NNZ        int64
	RowWidth   csr.Width // width of re-indexed row positions
	ColWidth   csr.Width // width of re-indexed column positions
	Spilled    bool
	SpillBytes int64
}

// NewAccumulator creates an accumulator for a matrix of shape
// (rows.Len(), cols.Len()). Both axis indexes must be non-nil.
//
// The context is observed between tasks of Append and Finalize.
func NewAccumulator[V csr.Value](ctx context.Context, rows, cols AxisIndex, opts ...AccumulatorOption) (*Accumulator[V], error) {
	cfg := defaultAccumulatorConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.workers < 0 {
		return nil, csrerrors.ErrInvalidWorkers
	}
	if cfg.partitionBits < 1 || cfg.partitionBits > maxPartitionBits {
		return nil, fmt.Errorf("%w: got %d", csrerrors.ErrInvalidPartitionBits, cfg.partitionBits)
	}

	a := &Accumulator[V]{
		ctx:      ctx,
		cfg:      cfg,
		log:      cfg.logger,
		metrics:  cfg.metrics,
		rows:     rows,
		cols:     cols,
		nRows:    rows.Len(),
		nCols:    cols.Len(),
		rowWidth: csr.SelectWidth(int64(rows.Len())),
		colWidth: csr.SelectWidth(int64(cols.Len())),
		hist:     make([]int64, rows.Len()),
	}
	if a.log == nil {
		a.log = NoopLogger()
	}
	if a.metrics == nil {
		a.metrics = NoopMetricsCollector{}
	}

	a.pool = cfg.pool
	if a.pool == nil {
		p, err := NewPool(cfg.workers)
		if err != nil {
			return nil, err
		}
		a.pool = p
		a.ownPool = true
	}

	if cfg.spill {
		f, err := spill.Create(cfg.spillDir)
		if err != nil {
			primaryErr := fmt.Errorf("init spill mode: %w", err)
			return nil, errors.Join(primaryErr, a.release())
		}
		a.spill = f
	}
	return a, nil
}

// Append adds one chunk of entries. rowIDs, colIDs and values must have
// equal length; an empty chunk is ignored.
//
// Row and column ids are re-indexed concurrently. The ids are not retained
// after Append returns; values are copied.
func (a *Accumulator[V]) Append(rowIDs, colIDs []int64, values []V) (err error) {
	if a.closed {
		return csrerrors.ErrAccumulatorClosed
	}
	n := len(values)
	if len(rowIDs) != n || len(colIDs) != n {
		return fmt.Errorf("%w: %d rows, %d cols, %d values",
			csrerrors.ErrLengthMismatch, len(rowIDs), len(colIDs), n)
	}
	if n == 0 {
		return nil
	}
	if err := a.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		a.metrics.RecordAppend(n, time.Since(start), err)
		a.log.LogAppend(a.ctx, a.numChunks(), n, err)
	}()

	var rows, cols csr.IndexArray
	g := a.pool.group(a.ctx)
	g.Go(func() error {
		var err error
		rows, err = reindex(a.rows, "row", rowIDs, a.rowWidth, a.cfg.validate)
		return err
	})
	g.Go(func() error {
		var err error
		cols, err = reindex(a.cols, "column", colIDs, a.colWidth, a.cfg.validate)
		return err
	})
	if err = g.Wait(); err != nil {
		return err
	}

	// Store before counting so a failed write leaves the histogram intact.
	if err = a.store(rows, cols, values); err != nil {
		return err
	}
	if a.rowWidth == csr.Width64 {
		scatter.CountRows(a.hist, rows.Int64s())
	} else {
		scatter.CountRows(a.hist, rows.Int32s())
	}
	a.nnz += int64(n)
	return nil
}

func (a *Accumulator[V]) store(rows, cols csr.IndexArray, values []V) error {
	if a.spill == nil {
		a.chunks = append(a.chunks, chunk[V]{rows: rows, cols: cols, vals: slices.Clone(values)})
		return nil
	}

	sc := spilledChunk{n: len(values)}
	var err error
	if sc.rows, err = a.spill.Write(indexBytes(rows)); err != nil {
		return err
	}
	if sc.cols, err = a.spill.Write(indexBytes(cols)); err != nil {
		return err
	}
	if sc.vals, err = a.spill.Write(encoding.Bytes(values)); err != nil {
		return err
	}
	a.spilled = append(a.spilled, sc)
	return nil
}

// loadChunks returns every appended chunk. In spill mode the file is
// mapped and the chunks view the mapping.
func (a *Accumulator[V]) loadChunks() ([]chunk[V], error) {
	if a.spill == nil {
		return a.chunks, nil
	}
	if _, err := a.spill.Map(); err != nil {
		return nil, err
	}
	chunks := make([]chunk[V], len(a.spilled))
	for i, sc := range a.spilled {
		chunks[i] = chunk[V]{
			rows: indexView(a.spill.Bytes(sc.rows), a.rowWidth, sc.n),
			cols: indexView(a.spill.Bytes(sc.cols), a.colWidth, sc.n),
			vals: encoding.View[V](a.spill.Bytes(sc.vals), sc.n),
		}
	}
	return chunks, nil
}

func indexBytes(a csr.IndexArray) []byte {
	if a.Width() == csr.Width64 {
		return encoding.Bytes(a.Int64s())
	}
	return encoding.Bytes(a.Int32s())
}

func indexView(b []byte, w csr.Width, n int) csr.IndexArray {
	if w == csr.Width64 {
		return csr.Int64Array(encoding.View[int64](b, n))
	}
	return csr.Int32Array(encoding.View[int32](b, n))
}

func (a *Accumulator[V]) numChunks() int {
	if a.spill != nil {
		return len(a.spilled)
	}
	return len(a.chunks)
}

// Stats returns the current accumulation state.
func (a *Accumulator[V]) Stats() Stats {
	st := Stats{
		Rows:     a.nRows,
		Cols:     a.nCols,
		Chunks:   a.numChunks(),
		NNZ:      a.nnz,
		RowWidth: a.rowWidth,
		ColWidth: a.colWidth,
		Spilled:  a.cfg.spill,
	}
	if a.spill != nil {
		st.SpillBytes = a.spill.Size()
	}
	return st
}

// Close discards all accumulated chunks and releases the spill file and
// private pool. Safe to call multiple times and after Finalize.
func (a *Accumulator[V]) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.release()
}

func (a *Accumulator[V]) release() error {
	var err error
	if a.spill != nil {
		err = a.spill.Close()
		a.spill = nil
		a.spilled = nil
	}
	if a.ownPool && a.pool != nil {
		a.pool.Close()
	}
	a.chunks = nil
	a.hist = nil
	return err
}

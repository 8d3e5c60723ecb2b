// Package fastcsr accumulates a stream of sparse COO chunks keyed by
// arbitrary int64 join ids into a compressed sparse row (CSR) matrix.
//
// Each chunk is re-indexed against the row and column axis domains on a
// bounded worker pool as it arrives, and a running per-row histogram is
// kept. Finalize turns the histogram into indptr with a prefix sum and
// scatters every chunk into the output buffers in parallel, one task per
// contiguous range of rows, without locks or atomics.
//
// # Basic Usage
//
//	rows, _ := fastcsr.NewAxisIndex(rowIDs)
//	cols, _ := fastcsr.NewAxisIndex(colIDs)
//	acc, err := fastcsr.NewAccumulator[float32](ctx, rows, cols)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer acc.Close()
//	for batch := range batches {
//	    if err := acc.Append(batch.Rows, batch.Cols, batch.Values); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	res, err := acc.Finalize()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := res.Matrix()
//
// Reading from a Source with one batch of read-ahead:
//
//	res, err := fastcsr.ReadCSR(ctx, src, rows, cols, fastcsr.WithWorkers(8))
//
// # Package Structure
//
//   - Public API: accumulator.go (NewAccumulator, Append, Finalize), read.go (ReadCSR)
//   - Configuration: options.go (AccumulatorOption, With* functions)
//   - Scheduling: pool.go (Pool)
//   - Axis domains: axis.go, reindex.go; implementations in internal/joinindex/
//   - Kernels: finalize.go dispatches to internal/scatter/
//   - Spill storage: internal/spill/
//   - Matrix value type: csr/; Arrow interop: arrowcsr/
package fastcsr

package fastcsr

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics from accumulators.
// Implementations must be safe for concurrent use when shared.
type MetricsCollector interface {
	// RecordAppend is called after each Append. entries is the chunk length.
	RecordAppend(entries int, duration time.Duration, err error)

	// RecordFinalize is called after each Finalize with the resulting nnz.
	RecordFinalize(nnz int64, duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordFinalize(int64, time.Duration, error) {}

// BasicMetricsCollector keeps simple in-memory counters.
type BasicMetricsCollector struct {
	AppendCount        atomic.Int64
	AppendErrors       atomic.Int64
	AppendEntries      atomic.Int64
	AppendTotalNanos   atomic.Int64
	FinalizeCount      atomic.Int64
	FinalizeErrors     atomic.Int64
	FinalizeNNZ        atomic.Int64
	FinalizeTotalNanos atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(entries int, duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
		return
	}
	b.AppendEntries.Add(int64(entries))
}

// RecordFinalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFinalize(nnz int64, duration time.Duration, err error) {
	b.FinalizeCount.Add(1)
	b.FinalizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FinalizeErrors.Add(1)
		return
	}
	b.FinalizeNNZ.Add(nnz)
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AppendCount:      b.AppendCount.Load(),
		AppendErrors:     b.AppendErrors.Load(),
		AppendEntries:    b.AppendEntries.Load(),
		AppendAvgNanos:   avg(b.AppendTotalNanos.Load(), b.AppendCount.Load()),
		FinalizeCount:    b.FinalizeCount.Load(),
		FinalizeErrors:   b.FinalizeErrors.Load(),
		FinalizeNNZ:      b.FinalizeNNZ.Load(),
		FinalizeAvgNanos: avg(b.FinalizeTotalNanos.Load(), b.FinalizeCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount      int64
	AppendErrors     int64
	AppendEntries    int64
	AppendAvgNanos   int64
	FinalizeCount    int64
	FinalizeErrors   int64
	FinalizeNNZ      int64
	FinalizeAvgNanos int64
}

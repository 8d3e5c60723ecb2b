package fastcsr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"testing"

	csrerrors "github.com/tamirms/fastcsr/errors"
)

// countingSource wraps a Source, tracks released chunks and can fail after
// a number of chunks.
type countingSource struct {
	inner    Source[float64]
	served   int
	failAt   int // 0 disables
	err      error
	released atomic.Int32
	active   atomic.Int32
}

func (s *countingSource) Next(ctx context.Context) (Chunk[float64], error) {
	if s.active.Add(1) != 1 {
		panic("concurrent Next calls")
	}
	defer s.active.Add(-1)

	if s.failAt > 0 && s.served == s.failAt {
		return Chunk[float64]{}, s.err
	}
	c, err := s.inner.Next(ctx)
	if err != nil {
		return c, err
	}
	s.served++
	c.Release = func() { s.released.Add(1) }
	return c, nil
}

func TestReadCSR(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			rng := newTestRNG(t)
			rowIDs, colIDs := domain(rng, 120, true), domain(rng, 60, false)
			chunks := randomChunks(rng, rowIDs, colIDs, 15, 100)

			src := &countingSource{inner: NewSliceSource(chunks...)}
			res, err := ReadCSR[float64](context.Background(), src, mustIndex(t, rowIDs), mustIndex(t, colIDs),
				WithWorkers(workers), WithPartitionBits(4))
			if err != nil {
				t.Fatal(err)
			}
			checkShape(t, res, 120, 60, totalEntries(chunks))
			if !slices.EqualFunc(resultRows(res), expectedRows(rowIDs, colIDs, chunks), slices.Equal[[]entry]) {
				t.Fatal("rows differ from expected")
			}
			if got := src.released.Load(); int(got) != len(chunks) {
				t.Fatalf("released %d chunks, want %d", got, len(chunks))
			}
		})
	}
}

func TestReadCSREmptySource(t *testing.T) {
	ids := []int64{1, 2, 3}
	res, err := ReadCSR[int32](context.Background(), NewSliceSource[int32](), mustIndex(t, ids), mustIndex(t, ids))
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, res, 3, 3, 0)
}

func TestReadCSRSourceError(t *testing.T) {
	rng := newTestRNG(t)
	rowIDs, colIDs := domain(rng, 10, true), domain(rng, 10, true)
	chunks := randomChunks(rng, rowIDs, colIDs, 5, 10)

	boom := errors.New("storage read failed")
	src := &countingSource{inner: NewSliceSource(chunks...), failAt: 3, err: boom}
	res, err := ReadCSR[float64](context.Background(), src, mustIndex(t, rowIDs), mustIndex(t, colIDs))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if res != nil {
		t.Fatal("result returned with error")
	}
	if got := src.released.Load(); got != 3 {
		t.Fatalf("released %d chunks, want 3", got)
	}
}

func TestReadCSRAppendError(t *testing.T) {
	rowIDs, colIDs := []int64{1, 2}, []int64{1, 2}
	src := &countingSource{inner: NewSliceSource(
		Chunk[float64]{Rows: []int64{1}, Cols: []int64{2}, Values: []float64{1}},
		Chunk[float64]{Rows: []int64{3}, Cols: []int64{2}, Values: []float64{1}},
		Chunk[float64]{Rows: []int64{2}, Cols: []int64{2}, Values: []float64{1}},
	)}
	_, err := ReadCSR[float64](context.Background(), src, mustIndex(t, rowIDs), mustIndex(t, colIDs))
	if !errors.Is(err, csrerrors.ErrUnknownID) {
		t.Fatalf("err = %v, want ErrUnknownID", err)
	}
	// The failed chunk and the prefetched one are both released.
	if got := src.released.Load(); got != 3 {
		t.Fatalf("released %d chunks, want 3", got)
	}
}

func TestReadCSRCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ids := []int64{1}
	src := NewSliceSource(Chunk[float64]{Rows: ids, Cols: ids, Values: []float64{1}})
	if _, err := ReadCSR[float64](ctx, src, mustIndex(t, ids), mustIndex(t, ids)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSliceSource(t *testing.T) {
	c := Chunk[float64]{Rows: []int64{1}, Cols: []int64{2}, Values: []float64{3}}
	src := NewSliceSource(c, c)
	ctx := context.Background()
	for i := range 2 {
		if _, err := src.Next(ctx); err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
	}
	if _, err := src.Next(ctx); err != io.EOF {
		t.Fatalf("Next after last chunk: err = %v, want io.EOF", err)
	}
}

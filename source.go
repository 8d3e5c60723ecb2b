package fastcsr

import (
	"context"
	"io"

	"github.com/tamirms/fastcsr/csr"
)

// Chunk is one batch of COO entries keyed by join ids.
// Rows, Cols and Values have equal length.
type Chunk[V csr.Value] struct {
	Rows   []int64
	Cols   []int64
	Values []V

	// Release, if set, is called once the chunk is no longer referenced.
	// Sources that hand out borrowed buffers use it to return them.
	Release func()
}

func (c Chunk[V]) release() {
	if c.Release != nil {
		c.Release()
	}
}

// Source yields chunks. Next returns io.EOF after the last chunk.
// A Source is used by one goroutine at a time.
type Source[V csr.Value] interface {
	Next(ctx context.Context) (Chunk[V], error)
}

// SliceSource serves chunks from memory.
type SliceSource[V csr.Value] struct {
	chunks []Chunk[V]
	next   int
}

// NewSliceSource returns a Source yielding chunks in order.
func NewSliceSource[V csr.Value](chunks ...Chunk[V]) *SliceSource[V] {
	return &SliceSource[V]{chunks: chunks}
}

// Next implements Source.
func (s *SliceSource[V]) Next(ctx context.Context) (Chunk[V], error) {
	if err := ctx.Err(); err != nil {
		return Chunk[V]{}, err
	}
	if s.next >= len(s.chunks) {
		return Chunk[V]{}, io.EOF
	}
	c := s.chunks[s.next]
	s.next++
	return c, nil
}

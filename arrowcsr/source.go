package arrowcsr

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/tamirms/fastcsr"
	"github.com/tamirms/fastcsr/csr"
	csrerrors "github.com/tamirms/fastcsr/errors"
)

// Column names of a COO record.
const (
	RowColumn   = "soma_dim_0"
	ColColumn   = "soma_dim_1"
	ValueColumn = "soma_data"
)

// RecordSource adapts an array.RecordReader to fastcsr.Source.
type RecordSource[V csr.Value] struct {
	rdr array.RecordReader
}

// NewRecordSource wraps rdr. The caller keeps ownership of rdr.
func NewRecordSource[V csr.Value](rdr array.RecordReader) *RecordSource[V] {
	return &RecordSource[V]{rdr: rdr}
}

// Next implements fastcsr.Source. The record behind the returned chunk is
// retained until the chunk's Release is called.
func (s *RecordSource[V]) Next(ctx context.Context) (fastcsr.Chunk[V], error) {
	if err := ctx.Err(); err != nil {
		return fastcsr.Chunk[V]{}, err
	}
	if !s.rdr.Next() {
		if err := s.rdr.Err(); err != nil {
			return fastcsr.Chunk[V]{}, fmt.Errorf("read record: %w", err)
		}
		return fastcsr.Chunk[V]{}, io.EOF
	}
	rec := s.rdr.Record()
	c, err := ChunkFromRecord[V](rec)
	if err != nil {
		return fastcsr.Chunk[V]{}, err
	}
	rec.Retain()
	c.Release = rec.Release
	return c, nil
}

// ChunkFromRecord views the COO columns of rec as a chunk. The chunk
// shares memory with rec and is valid only while rec is.
func ChunkFromRecord[V csr.Value](rec arrow.Record) (fastcsr.Chunk[V], error) {
	rows, err := int64Column(rec, RowColumn)
	if err != nil {
		return fastcsr.Chunk[V]{}, err
	}
	cols, err := int64Column(rec, ColColumn)
	if err != nil {
		return fastcsr.Chunk[V]{}, err
	}
	col, err := column(rec, ValueColumn)
	if err != nil {
		return fastcsr.Chunk[V]{}, err
	}
	vals, err := values[V](col)
	if err != nil {
		return fastcsr.Chunk[V]{}, fmt.Errorf("column %s: %w", ValueColumn, err)
	}
	return fastcsr.Chunk[V]{Rows: rows, Cols: cols, Values: vals}, nil
}

func column(rec arrow.Record, name string) (arrow.Array, error) {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: %s", csrerrors.ErrMissingColumn, name)
	}
	col := rec.Column(idx[0])
	if col.NullN() > 0 {
		return nil, fmt.Errorf("%w: %s has %d nulls", csrerrors.ErrNullValues, name, col.NullN())
	}
	return col, nil
}

func int64Column(rec arrow.Record, name string) ([]int64, error) {
	col, err := column(rec, name)
	if err != nil {
		return nil, err
	}
	ids, ok := col.(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s, want int64", csrerrors.ErrColumnType, name, col.DataType())
	}
	return ids.Int64Values(), nil
}

// values returns the backing slice of a primitive array whose element type
// is exactly V.
func values[V csr.Value](col arrow.Array) ([]V, error) {
	var vals any
	switch col := col.(type) {
	case *array.Int8:
		vals = col.Int8Values()
	case *array.Int16:
		vals = col.Int16Values()
	case *array.Int32:
		vals = col.Int32Values()
	case *array.Int64:
		vals = col.Int64Values()
	case *array.Uint8:
		vals = col.Uint8Values()
	case *array.Uint16:
		vals = col.Uint16Values()
	case *array.Uint32:
		vals = col.Uint32Values()
	case *array.Uint64:
		vals = col.Uint64Values()
	case *array.Float32:
		vals = col.Float32Values()
	case *array.Float64:
		vals = col.Float64Values()
	}
	out, ok := vals.([]V)
	if !ok {
		var zero V
		return nil, fmt.Errorf("%w: %s, want %T", csrerrors.ErrColumnType, col.DataType(), zero)
	}
	return out, nil
}

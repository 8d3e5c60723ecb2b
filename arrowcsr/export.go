package arrowcsr

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/tamirms/fastcsr/csr"
	csrerrors "github.com/tamirms/fastcsr/errors"
	"github.com/tamirms/fastcsr/internal/encoding"
)

// Arrays is a CSR matrix as three Arrow arrays plus its shape.
type Arrays struct {
	Rows    int
	Cols    int
	Data    arrow.Array
	Indptr  arrow.Array
	Indices arrow.Array
}

// Release releases the three arrays.
func (a *Arrays) Release() {
	for _, arr := range []arrow.Array{a.Data, a.Indptr, a.Indices} {
		if arr != nil {
			arr.Release()
		}
	}
}

// Export wraps the buffers of m as Arrow arrays without copying. The arrays
// alias m and must not outlive it. Value types without an Arrow primitive
// counterpart (int, uint, uintptr and named types) are rejected.
func Export[V csr.Value](m *csr.Matrix[V]) (*Arrays, error) {
	dt, err := arrowType[V]()
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	return &Arrays{
		Rows:    rows,
		Cols:    cols,
		Data:    wrap(dt, len(m.Data()), encoding.Bytes(m.Data())),
		Indptr:  wrapIndex(m.Indptr()),
		Indices: wrapIndex(m.Indices()),
	}, nil
}

func wrap(dt arrow.DataType, n int, b []byte) arrow.Array {
	data := array.NewData(dt, n, []*memory.Buffer{nil, memory.NewBufferBytes(b)}, nil, 0, 0)
	defer data.Release()
	return array.MakeFromData(data)
}

func wrapIndex(a csr.IndexArray) arrow.Array {
	if a.Width() == csr.Width64 {
		return wrap(arrow.PrimitiveTypes.Int64, a.Len(), encoding.Bytes(a.Int64s()))
	}
	return wrap(arrow.PrimitiveTypes.Int32, a.Len(), encoding.Bytes(a.Int32s()))
}

func arrowType[V csr.Value]() (arrow.DataType, error) {
	var zero V
	switch any(zero).(type) {
	case int8:
		return arrow.PrimitiveTypes.Int8, nil
	case int16:
		return arrow.PrimitiveTypes.Int16, nil
	case int32:
		return arrow.PrimitiveTypes.Int32, nil
	case int64:
		return arrow.PrimitiveTypes.Int64, nil
	case uint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case uint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case uint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case uint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case float32:
		return arrow.PrimitiveTypes.Float32, nil
	case float64:
		return arrow.PrimitiveTypes.Float64, nil
	}
	return nil, fmt.Errorf("%w: %T", csrerrors.ErrUnsupportedValueType, zero)
}

// Import builds a validated matrix from Arrow arrays, for example ones
// received from another process. The matrix shares memory with the arrays.
func Import[V csr.Value](rows, cols int, data, indptr, indices arrow.Array) (*csr.Matrix[V], error) {
	if data.NullN() > 0 {
		return nil, fmt.Errorf("data: %w", csrerrors.ErrNullValues)
	}
	vals, err := values[V](data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	ip, err := indexArray(indptr)
	if err != nil {
		return nil, fmt.Errorf("indptr: %w", err)
	}
	ix, err := indexArray(indices)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	return csr.New(rows, cols, vals, ip, ix)
}

func indexArray(arr arrow.Array) (csr.IndexArray, error) {
	if arr.NullN() > 0 {
		return csr.IndexArray{}, csrerrors.ErrNullValues
	}
	switch arr := arr.(type) {
	case *array.Int32:
		return csr.Int32Array(arr.Int32Values()), nil
	case *array.Int64:
		return csr.Int64Array(arr.Int64Values()), nil
	}
	return csr.IndexArray{}, fmt.Errorf("%w: %s, want int32 or int64", csrerrors.ErrColumnType, arr.DataType())
}

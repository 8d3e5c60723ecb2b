// Package csr provides a compressed sparse row matrix value and the index
// width selection shared by the accumulator.
//
// A Matrix is a plain container for the four CSR components
//
//	data    []V        nonzero values, length nnz
//	indices IndexArray column positions, length nnz
//	indptr  IndexArray row boundaries, length rows+1
//	shape   (rows, cols)
//
// Row r occupies data[indptr[r]:indptr[r+1]]. Column order inside a row is
// unspecified and duplicate (row, col) entries are kept as distinct entries.
package csr

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"

	csrerrors "github.com/tamirms/fastcsr/errors"
)

// Value is the set of element types a Matrix can hold.
type Value interface {
	constraints.Integer | constraints.Float
}

// Matrix is an immutable CSR matrix. Construct with New or NewTrusted.
type Matrix[V Value] struct {
	rows, cols int
	data       []V
	indptr     IndexArray
	indices    IndexArray
}

// New builds a Matrix after checking every CSR invariant in O(nnz):
// component lengths, indptr monotonicity and bounds, and column range.
// Use it for components from an untrusted origin.
func New[V Value](rows, cols int, data []V, indptr, indices IndexArray) (*Matrix[V], error) {
	m := NewTrusted(rows, cols, data, indptr, indices)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewTrusted builds a Matrix without inspecting the components. It runs in
// O(1) and takes ownership of the slices; the caller guarantees the CSR
// invariants hold, as the accumulator's finalize does by construction.
func NewTrusted[V Value](rows, cols int, data []V, indptr, indices IndexArray) *Matrix[V] {
	return &Matrix[V]{
		rows:    rows,
		cols:    cols,
		data:    data,
		indptr:  indptr,
		indices: indices,
	}
}

// Validate checks the CSR invariants. It is O(nnz).
func (m *Matrix[V]) Validate() error {
	if m.rows < 0 || m.cols < 0 {
		return fmt.Errorf("%w: negative shape (%d, %d)", csrerrors.ErrShapeMismatch, m.rows, m.cols)
	}
	if m.indptr.Len() != m.rows+1 {
		return fmt.Errorf("%w: len(indptr)=%d, rows=%d", csrerrors.ErrShapeMismatch, m.indptr.Len(), m.rows)
	}
	if m.indices.Len() != len(m.data) {
		return fmt.Errorf("%w: len(indices)=%d, len(data)=%d", csrerrors.ErrShapeMismatch, m.indices.Len(), len(m.data))
	}
	if m.indptr.At(0) != 0 {
		return fmt.Errorf("%w: indptr[0]=%d", csrerrors.ErrInvalidIndptr, m.indptr.At(0))
	}
	for r := 0; r < m.rows; r++ {
		if m.indptr.At(r+1) < m.indptr.At(r) {
			return fmt.Errorf("%w: decreasing at row %d", csrerrors.ErrInvalidIndptr, r)
		}
	}
	if nnz := m.indptr.At(m.rows); nnz != int64(len(m.data)) {
		return fmt.Errorf("%w: indptr[rows]=%d, nnz=%d", csrerrors.ErrInvalidIndptr, nnz, len(m.data))
	}
	cols := int64(m.cols)
	for i := 0; i < m.indices.Len(); i++ {
		if c := m.indices.At(i); c < 0 || c >= cols {
			return fmt.Errorf("%w: indices[%d]=%d, cols=%d", csrerrors.ErrIndexOutOfRange, i, c, m.cols)
		}
	}
	return nil
}

// Dims returns the shape.
func (m *Matrix[V]) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored entries, duplicates included.
func (m *Matrix[V]) NNZ() int {
	return len(m.data)
}

// Data returns the value buffer. Callers must not modify it.
func (m *Matrix[V]) Data() []V { return m.data }

// Indptr returns the row pointer array. Callers must not modify it.
func (m *Matrix[V]) Indptr() IndexArray { return m.indptr }

// Indices returns the column index array. Callers must not modify it.
func (m *Matrix[V]) Indices() IndexArray { return m.indices }

// Row returns views of the column positions and values stored for row r.
func (m *Matrix[V]) Row(r int) (IndexArray, []V) {
	lo, hi := int(m.indptr.At(r)), int(m.indptr.At(r+1))
	return m.indices.Slice(lo, hi), m.data[lo:hi]
}

// At returns the value at (r, c), summing duplicate entries. Zero if absent.
func (m *Matrix[V]) At(r, c int) V {
	cols, vals := m.Row(r)
	var sum V
	for i := range vals {
		if cols.At(i) == int64(c) {
			sum += vals[i]
		}
	}
	return sum
}

// Dense expands the matrix into a row-major slice of rows*cols values,
// summing duplicates. Intended for small matrices and tests.
func (m *Matrix[V]) Dense() []V {
	out := make([]V, m.rows*m.cols)
	for r := 0; r < m.rows; r++ {
		cols, vals := m.Row(r)
		for i := range vals {
			out[r*m.cols+int(cols.At(i))] += vals[i]
		}
	}
	return out
}

// Digest returns a 64-bit fingerprint of the shape and the multiset of
// (row, col, value) entries. It does not depend on the order of entries
// within a row, so two finalizations of the same input agree regardless of
// chunk order or worker count.
func (m *Matrix[V]) Digest() uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.rows))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.cols))
	sum := xxhash.Sum64(buf[:16])

	isFloat := isFloatType[V]()
	for r := 0; r < m.rows; r++ {
		cols, vals := m.Row(r)
		binary.LittleEndian.PutUint64(buf[0:8], uint64(r))
		for i, v := range vals {
			binary.LittleEndian.PutUint64(buf[8:16], uint64(cols.At(i)))
			binary.LittleEndian.PutUint64(buf[16:24], valueBits(v, isFloat))
			sum += xxhash.Sum64(buf[:])
		}
	}
	return sum
}

// isFloatType reports whether V is a floating point type.
func isFloatType[V Value]() bool {
	half := 0.5
	return V(half) != 0
}

func valueBits[V Value](v V, isFloat bool) uint64 {
	if isFloat {
		return math.Float64bits(float64(v))
	}
	return uint64(v)
}

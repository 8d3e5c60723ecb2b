package fastcsr

import (
	"unsafe"

	"github.com/tamirms/fastcsr/csr"
)

// Result holds the components of a finalized CSR matrix.
//
// For every row r, Indices[Indptr[r]:Indptr[r+1]] holds the column
// positions of that row in unspecified order, with Data alongside.
// Duplicate (row, column) entries are kept, not summed.
type Result[V csr.Value] struct {
	Shape   [2]int
	Data    []V
	Indptr  csr.IndexArray
	Indices csr.IndexArray
}

// NNZ returns the number of stored entries.
func (r *Result[V]) NNZ() int {
	return len(r.Data)
}

// SizeBytes returns the memory held by the three buffers.
func (r *Result[V]) SizeBytes() int {
	var v V
	return r.Indptr.SizeBytes() + r.Indices.SizeBytes() + len(r.Data)*int(unsafe.Sizeof(v))
}

// Matrix wraps the components as a csr.Matrix without copying or
// validating them.
func (r *Result[V]) Matrix() *csr.Matrix[V] {
	return csr.NewTrusted(r.Shape[0], r.Shape[1], r.Data, r.Indptr, r.Indices)
}

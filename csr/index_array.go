package csr

// IndexArray is a slice of signed positional indices stored in either 32-bit
// or 64-bit form. Exactly one of the backing slices is in use, selected by
// the width. The zero value is an empty 32-bit array.
//
// IndexArray is a view: copies share the backing memory.
type IndexArray struct {
	width Width
	i32   []int32
	i64   []int64
}

// NewIndexArray allocates a zeroed array of n indices of width w.
func NewIndexArray(w Width, n int) IndexArray {
	if w == Width64 {
		return IndexArray{width: Width64, i64: make([]int64, n)}
	}
	return IndexArray{width: Width32, i32: make([]int32, n)}
}

// Int32Array wraps s without copying.
func Int32Array(s []int32) IndexArray {
	return IndexArray{width: Width32, i32: s}
}

// Int64Array wraps s without copying.
func Int64Array(s []int64) IndexArray {
	return IndexArray{width: Width64, i64: s}
}

// Width returns the element width.
func (a IndexArray) Width() Width {
	if a.width == 0 {
		return Width32
	}
	return a.width
}

// Len returns the number of elements.
func (a IndexArray) Len() int {
	if a.width == Width64 {
		return len(a.i64)
	}
	return len(a.i32)
}

// At returns element i widened to int64.
func (a IndexArray) At(i int) int64 {
	if a.width == Width64 {
		return a.i64[i]
	}
	return int64(a.i32[i])
}

// Int32s returns the backing slice of a 32-bit array, nil otherwise.
func (a IndexArray) Int32s() []int32 {
	if a.width == Width64 {
		return nil
	}
	return a.i32
}

// Int64s returns the backing slice of a 64-bit array, nil otherwise.
func (a IndexArray) Int64s() []int64 {
	if a.width == Width64 {
		return a.i64
	}
	return nil
}

// Slice returns the sub-array [lo, hi) sharing memory with a.
func (a IndexArray) Slice(lo, hi int) IndexArray {
	if a.width == Width64 {
		return IndexArray{width: Width64, i64: a.i64[lo:hi]}
	}
	return IndexArray{width: Width32, i32: a.i32[lo:hi]}
}

// SizeBytes returns the memory footprint of the elements.
func (a IndexArray) SizeBytes() int {
	return a.Len() * a.Width().Size()
}

// Int64Values returns the elements widened to a fresh []int64.
func (a IndexArray) Int64Values() []int64 {
	out := make([]int64, a.Len())
	if a.width == Width64 {
		copy(out, a.i64)
		return out
	}
	for i, v := range a.i32 {
		out[i] = int64(v)
	}
	return out
}

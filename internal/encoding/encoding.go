// Package encoding provides byte views of fixed-width typed slices.
//
// Views share memory with their source and use native byte order. Data
// written through Bytes and read back through View on the same machine is
// therefore exact; the encoding is not portable across architectures and is
// only used for process-private spill files.
package encoding

import "unsafe"

// Bytes returns the memory backing s as a byte slice. No copy is made.
// T must be a fixed-width type without pointers.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// View reinterprets b as a slice of n elements of T. No copy is made.
//
// Panics if b is too short or not aligned for T. Spill extents are always
// written at offsets aligned to Align, and mmap regions are page aligned, so
// a panic here indicates a bookkeeping bug rather than bad input.
func View[T any](b []byte, n int) []T {
	if n == 0 {
		return []T{}
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(b) < n*size {
		panic("encoding: View: buffer too short")
	}
	ptr := unsafe.Pointer(unsafe.SliceData(b))
	if uintptr(ptr)%unsafe.Alignof(zero) != 0 {
		panic("encoding: View: misaligned buffer")
	}
	return unsafe.Slice((*T)(ptr), n)
}

// Align is the offset alignment used for every extent in a spill file.
// It satisfies the alignment of every supported element type.
const Align = 8

// AlignUp rounds n up to the next multiple of Align.
func AlignUp(n int64) int64 {
	return (n + Align - 1) &^ (Align - 1)
}

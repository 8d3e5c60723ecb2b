// Package errors defines all exported error sentinels for the fastcsr library.
//
// This is the single source of truth for error values. The top-level fastcsr
// package, the csr and arrowcsr packages, and the internal kernels all import
// from here, ensuring errors.Is checks work across package boundaries.
package errors

import "errors"

// Accumulation errors
var (
	ErrAccumulatorClosed    = errors.New("fastcsr: accumulator is closed")
	ErrLengthMismatch       = errors.New("fastcsr: row, column and value arrays differ in length")
	ErrUnknownID            = errors.New("fastcsr: join id is not in the axis domain")
	ErrInvalidPartitionBits = errors.New("fastcsr: partition bits must be in [1, 62]")
	ErrInvalidWorkers       = errors.New("fastcsr: worker count must be positive")
	ErrPoolClosed           = errors.New("fastcsr: worker pool is closed")
)

// Axis index construction errors
var (
	ErrDuplicateID = errors.New("fastcsr: duplicate join id in axis domain")
	ErrUnsortedIDs = errors.New("fastcsr: axis domain is not strictly ascending")
	ErrNegativeID  = errors.New("fastcsr: negative join id in axis domain")
)

// Matrix errors
var (
	ErrShapeMismatch   = errors.New("fastcsr: component lengths do not match shape")
	ErrInvalidIndptr   = errors.New("fastcsr: indptr is not a valid row pointer array")
	ErrIndexOutOfRange = errors.New("fastcsr: column index out of range")
)

// Arrow interop errors
var (
	ErrMissingColumn        = errors.New("fastcsr: record is missing a required column")
	ErrColumnType           = errors.New("fastcsr: column has an unexpected arrow type")
	ErrNullValues           = errors.New("fastcsr: column contains nulls")
	ErrUnsupportedValueType = errors.New("fastcsr: value type has no arrow equivalent")
)

// Spill errors
var (
	ErrSpillClosed = errors.New("fastcsr: spill file is closed")
)

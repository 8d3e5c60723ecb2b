package csr

import (
	"fmt"
	"math"
)

// Width is the bit width of a signed positional index.
type Width uint8

const (
	Width32 Width = 32
	Width64 Width = 64
)

// SelectWidth returns the narrowest signed width able to hold maxValue:
// Width32 when maxValue <= math.MaxInt32, otherwise Width64.
//
// Row positions, column positions and nnz offsets each cross the 32-bit
// boundary independently, so callers select a width per domain.
func SelectWidth(maxValue int64) Width {
	if maxValue > math.MaxInt32 {
		return Width64
	}
	return Width32
}

// Size returns the number of bytes per element.
func (w Width) Size() int {
	return int(w) / 8
}

func (w Width) String() string {
	switch w {
	case Width32:
		return "int32"
	case Width64:
		return "int64"
	default:
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
}

package fastcsr

import "github.com/tamirms/fastcsr/internal/joinindex"

// NotFound is the position an AxisIndex reports for an id outside its domain.
const NotFound = joinindex.NotFound

// AxisIndex maps the join ids of one axis domain to dense positions [0, Len()).
// Implementations must be safe for concurrent Lookup calls.
type AxisIndex interface {
	// Len returns the number of ids in the domain.
	Len() int

	// Lookup writes the position of ids[i] to dst[i], or NotFound.
	// len(dst) must be at least len(ids).
	Lookup(ids []int64, dst []int64)
}

// Index implementations.
type (
	HashIndex   = joinindex.Hash
	SortedIndex = joinindex.Sorted
	BitmapIndex = joinindex.Bitmap
)

// NewHashIndex builds an open-addressing index; ids[i] maps to position i.
func NewHashIndex(ids []int64) (*HashIndex, error) {
	return joinindex.NewHash(ids)
}

// NewSortedIndex builds a binary-search index; ids[i] maps to position i.
func NewSortedIndex(ids []int64) (*SortedIndex, error) {
	return joinindex.NewSorted(ids)
}

// NewBitmapIndex builds a roaring bitmap index. ids must be strictly
// ascending and non-negative.
func NewBitmapIndex(ids []int64) (*BitmapIndex, error) {
	return joinindex.NewBitmap(ids)
}

// NewAxisIndex picks an index layout for ids: a BitmapIndex when ids are
// strictly ascending and non-negative, a HashIndex otherwise.
func NewAxisIndex(ids []int64) (AxisIndex, error) {
	if joinindex.CheckAscending(ids) == nil {
		b, err := joinindex.NewBitmap(ids)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	h, err := joinindex.NewHash(ids)
	if err != nil {
		return nil, err
	}
	return h, nil
}

package joinindex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	csrerrors "github.com/tamirms/fastcsr/errors"
)

// Bitmap stores an ascending domain as a roaring64 bitmap. The position of
// an id is its rank minus one, so no per-id position table is kept.
type Bitmap struct {
	rb *roaring64.Bitmap
	n  int
}

// NewBitmap builds a Bitmap over ids, which must be strictly ascending and
// non-negative.
func NewBitmap(ids []int64) (*Bitmap, error) {
	if err := CheckAscending(ids); err != nil {
		return nil, err
	}
	rb := roaring64.New()
	for _, id := range ids {
		rb.Add(uint64(id))
	}
	rb.RunOptimize()
	return &Bitmap{rb: rb, n: len(ids)}, nil
}

// CheckAscending reports whether ids qualify for a Bitmap index.
func CheckAscending(ids []int64) error {
	for i, id := range ids {
		if id < 0 {
			return fmt.Errorf("%w: %d at position %d", csrerrors.ErrNegativeID, id, i)
		}
		if i > 0 && id <= ids[i-1] {
			return fmt.Errorf("%w: %d follows %d at position %d", csrerrors.ErrUnsortedIDs, id, ids[i-1], i)
		}
	}
	return nil
}

// Len returns the domain size.
func (b *Bitmap) Len() int { return b.n }

// Lookup writes the position of each id to dst. len(dst) must be >= len(ids).
func (b *Bitmap) Lookup(ids []int64, dst []int64) {
	dst = dst[:len(ids)]
	for i, id := range ids {
		if id < 0 || !b.rb.Contains(uint64(id)) {
			dst[i] = NotFound
			continue
		}
		dst[i] = int64(b.rb.Rank(uint64(id))) - 1
	}
}

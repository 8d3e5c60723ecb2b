package joinindex

import (
	"cmp"
	"fmt"
	"slices"

	csrerrors "github.com/tamirms/fastcsr/errors"
)

// Sorted answers lookups by binary search over a sorted copy of the domain.
type Sorted struct {
	keys []int64 // ascending
	pos  []int64 // pos[i] is the position of keys[i]
}

// NewSorted builds a Sorted index over ids; ids[i] maps to position i.
// Returns ErrDuplicateID if an id occurs twice.
func NewSorted(ids []int64) (*Sorted, error) {
	perm := make([]int64, len(ids))
	for i := range perm {
		perm[i] = int64(i)
	}
	slices.SortFunc(perm, func(a, b int64) int {
		return cmp.Compare(ids[a], ids[b])
	})

	s := &Sorted{
		keys: make([]int64, len(ids)),
		pos:  perm,
	}
	for i, p := range perm {
		s.keys[i] = ids[p]
		if i > 0 && s.keys[i] == s.keys[i-1] {
			return nil, fmt.Errorf("%w: %d", csrerrors.ErrDuplicateID, s.keys[i])
		}
	}
	return s, nil
}

// Len returns the domain size.
func (s *Sorted) Len() int { return len(s.keys) }

// Lookup writes the position of each id to dst. len(dst) must be >= len(ids).
func (s *Sorted) Lookup(ids []int64, dst []int64) {
	dst = dst[:len(ids)]
	for i, id := range ids {
		if j, ok := slices.BinarySearch(s.keys, id); ok {
			dst[i] = s.pos[j]
		} else {
			dst[i] = NotFound
		}
	}
}

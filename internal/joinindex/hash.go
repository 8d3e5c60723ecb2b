package joinindex

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	csrerrors "github.com/tamirms/fastcsr/errors"
	"github.com/tamirms/fastcsr/internal/bits"
)

// minTableSize keeps tiny domains from degenerating into long probe chains.
const minTableSize = 8

// Hash is an open-addressing table from join id to position.
// Load factor is at most 1/2; collisions are resolved by linear probing.
type Hash struct {
	keys []int64
	pos  []int64 // NotFound marks an empty slot
	mask uint64
	n    int
}

// NewHash builds a Hash over ids; ids[i] maps to position i.
// Returns ErrDuplicateID if an id occurs twice.
func NewHash(ids []int64) (*Hash, error) {
	size := bits.NextPow2(uint64(2 * len(ids)))
	if size < minTableSize {
		size = minTableSize
	}
	h := &Hash{
		keys: make([]int64, size),
		pos:  make([]int64, size),
		mask: size - 1,
		n:    len(ids),
	}
	for i := range h.pos {
		h.pos[i] = NotFound
	}
	for i, id := range ids {
		slot := h.home(id)
		for h.pos[slot] != NotFound {
			if h.keys[slot] == id {
				return nil, fmt.Errorf("%w: %d at positions %d and %d", csrerrors.ErrDuplicateID, id, h.pos[slot], i)
			}
			slot = (slot + 1) & h.mask
		}
		h.keys[slot] = id
		h.pos[slot] = int64(i)
	}
	return h, nil
}

// home returns the first probe slot for id.
func (h *Hash) home(id int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))
	return bits.FastRange(xxh3.Hash(buf[:]), h.mask+1)
}

// Len returns the domain size.
func (h *Hash) Len() int { return h.n }

// Lookup writes the position of each id to dst. len(dst) must be >= len(ids).
func (h *Hash) Lookup(ids []int64, dst []int64) {
	dst = dst[:len(ids)]
	for i, id := range ids {
		dst[i] = h.find(id)
	}
}

func (h *Hash) find(id int64) int64 {
	slot := h.home(id)
	for {
		p := h.pos[slot]
		if p == NotFound || h.keys[slot] == id {
			return p
		}
		slot = (slot + 1) & h.mask
	}
}

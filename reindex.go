package fastcsr

import (
	"fmt"
	"sync"

	"github.com/tamirms/fastcsr/csr"
	csrerrors "github.com/tamirms/fastcsr/errors"
)

// scratchPool recycles the int64 lookup buffers of 32-bit re-indexing.
var scratchPool = sync.Pool{
	New: func() any { return new([]int64) },
}

func getScratch(n int) *[]int64 {
	p := scratchPool.Get().(*[]int64)
	if cap(*p) < n {
		*p = make([]int64, n)
	}
	*p = (*p)[:n]
	return p
}

// reindex maps ids to positions in idx, stored at width w.
// An id outside the domain fails with ErrUnknownID. At Width64 the check
// is a separate pass and only runs with validate set.
func reindex(idx AxisIndex, axis string, ids []int64, w csr.Width, validate bool) (csr.IndexArray, error) {
	if w == csr.Width64 {
		pos := make([]int64, len(ids))
		idx.Lookup(ids, pos)
		if validate {
			if err := checkFound(axis, ids, pos); err != nil {
				return csr.IndexArray{}, err
			}
		}
		return csr.Int64Array(pos), nil
	}

	scratch := getScratch(len(ids))
	defer scratchPool.Put(scratch)
	pos := *scratch
	idx.Lookup(ids, pos)
	// Unknown ids are rejected here whether or not validation is enabled.
	out := make([]int32, len(pos))
	for i, p := range pos {
		if p < 0 {
			return csr.IndexArray{}, unknownID(axis, ids[i])
		}
		out[i] = int32(p)
	}
	return csr.Int32Array(out), nil
}

func checkFound(axis string, ids, pos []int64) error {
	for i, p := range pos {
		if p == NotFound {
			return unknownID(axis, ids[i])
		}
	}
	return nil
}

func unknownID(axis string, id int64) error {
	return fmt.Errorf("%w: %s id %d", csrerrors.ErrUnknownID, axis, id)
}

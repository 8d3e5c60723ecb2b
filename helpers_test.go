package fastcsr

import (
	"cmp"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/tamirms/fastcsr/csr"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a PCG seeded from the test name, so every subtest gets
// a distinct but reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// entry is one (column, value) pair of a row, for multiset comparison.
type entry struct {
	col int64
	val float64
}

// domain returns n distinct join ids. Ascending domains are sparse but
// ordered; the others are shuffled and may be negative.
func domain(rng *rand.Rand, n int, asc bool) []int64 {
	seen := make(map[int64]struct{}, n)
	ids := make([]int64, 0, n)
	for len(ids) < n {
		id := rng.Int64N(int64(n) * 16)
		if !asc {
			id -= int64(n) * 8
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if asc {
		slices.Sort(ids)
	}
	return ids
}

// randomChunks draws count chunks of up to maxLen entries from the domains.
// Duplicate (row, col) pairs occur naturally.
func randomChunks(rng *rand.Rand, rowIDs, colIDs []int64, count, maxLen int) []Chunk[float64] {
	chunks := make([]Chunk[float64], count)
	for i := range chunks {
		n := rng.IntN(maxLen + 1)
		c := Chunk[float64]{
			Rows:   make([]int64, n),
			Cols:   make([]int64, n),
			Values: make([]float64, n),
		}
		for j := range n {
			c.Rows[j] = rowIDs[rng.IntN(len(rowIDs))]
			c.Cols[j] = colIDs[rng.IntN(len(colIDs))]
			c.Values[j] = float64(rng.IntN(1000))
		}
		chunks[i] = c
	}
	return chunks
}

func positions(ids []int64) map[int64]int64 {
	m := make(map[int64]int64, len(ids))
	for i, id := range ids {
		m[id] = int64(i)
	}
	return m
}

// expectedRows computes the sorted per-row entries the chunks must produce.
func expectedRows[V csr.Value](rowIDs, colIDs []int64, chunks []Chunk[V]) [][]entry {
	rowPos, colPos := positions(rowIDs), positions(colIDs)
	rows := make([][]entry, len(rowIDs))
	for _, c := range chunks {
		for i := range c.Values {
			r := rowPos[c.Rows[i]]
			rows[r] = append(rows[r], entry{col: colPos[c.Cols[i]], val: float64(c.Values[i])})
		}
	}
	for _, r := range rows {
		sortEntries(r)
	}
	return rows
}

// resultRows extracts the sorted per-row entries of a result.
func resultRows[V csr.Value](res *Result[V]) [][]entry {
	rows := make([][]entry, res.Shape[0])
	for r := range rows {
		lo, hi := int(res.Indptr.At(r)), int(res.Indptr.At(r+1))
		for p := lo; p < hi; p++ {
			rows[r] = append(rows[r], entry{col: res.Indices.At(p), val: float64(res.Data[p])})
		}
		sortEntries(rows[r])
	}
	return rows
}

func sortEntries(es []entry) {
	slices.SortFunc(es, func(a, b entry) int {
		if c := cmp.Compare(a.col, b.col); c != 0 {
			return c
		}
		return cmp.Compare(a.val, b.val)
	})
}

// checkShape verifies the structural CSR invariants of res.
func checkShape[V csr.Value](t *testing.T, res *Result[V], nRows, nCols int, nnz int64) {
	t.Helper()
	if res.Shape != [2]int{nRows, nCols} {
		t.Fatalf("shape = %v, want [%d %d]", res.Shape, nRows, nCols)
	}
	if got := res.Indptr.Len(); got != nRows+1 {
		t.Fatalf("len(indptr) = %d, want %d", got, nRows+1)
	}
	if res.Indptr.At(0) != 0 {
		t.Fatalf("indptr[0] = %d", res.Indptr.At(0))
	}
	for r := range nRows {
		if res.Indptr.At(r) > res.Indptr.At(r+1) {
			t.Fatalf("indptr decreases at row %d: %d > %d", r, res.Indptr.At(r), res.Indptr.At(r+1))
		}
	}
	if got := res.Indptr.At(nRows); got != nnz {
		t.Fatalf("indptr[n_rows] = %d, want %d", got, nnz)
	}
	if int64(len(res.Data)) != nnz || int64(res.Indices.Len()) != nnz {
		t.Fatalf("len(data) = %d, len(indices) = %d, want %d", len(res.Data), res.Indices.Len(), nnz)
	}
	if res.Indptr.Width() != res.Indices.Width() {
		t.Fatalf("indptr width %v != indices width %v", res.Indptr.Width(), res.Indices.Width())
	}
	if err := res.Matrix().Validate(); err != nil {
		t.Fatalf("result does not validate: %v", err)
	}
}

func totalEntries[V csr.Value](chunks []Chunk[V]) int64 {
	var n int64
	for _, c := range chunks {
		n += int64(len(c.Values))
	}
	return n
}

func mustIndex(t testing.TB, ids []int64) AxisIndex {
	t.Helper()
	idx, err := NewAxisIndex(ids)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

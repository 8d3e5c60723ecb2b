// Package scatter implements the flat-buffer kernels behind CSR construction:
// row histogram, prefix sum, row-range partitioned scatter and the final
// indptr unshift.
//
// Construction is a counting sort keyed by row:
//
//  1. CountRows accumulates per-row entry counts as chunks arrive.
//  2. PrefixSum turns the counts into indptr, so indptr[r] is the first
//     output slot of row r.
//  3. ScatterRange uses indptr[r] as the write cursor of row r and advances
//     it once per entry. Afterwards indptr[r] holds the end of row r, i.e.
//     the original indptr[r+1].
//  4. Unshift moves every entry up by one row and writes indptr[0] = 0.
//
// Partitions never share a row, so ScatterRange calls for different ranges
// touch disjoint cursors and disjoint output slots and may run concurrently
// without atomics.
package scatter

import "github.com/tamirms/fastcsr/csr"

// Index is the set of positional index types the kernels operate on.
type Index interface {
	~int32 | ~int64
}

// CountRows adds one to hist[r] for every r in rows.
func CountRows[R Index](hist []int64, rows []R) {
	for _, r := range rows {
		hist[r]++
	}
}

// PrefixSum writes the exclusive prefix sum of hist into indptr:
// indptr[0] = 0 and indptr[r+1] = indptr[r] + hist[r].
// len(indptr) must be len(hist)+1. Returns the total.
func PrefixSum[O Index](indptr []O, hist []int64) int64 {
	indptr = indptr[:len(hist)+1]
	var total int64
	indptr[0] = 0
	for r, n := range hist {
		total += n
		indptr[r+1] = O(total)
	}
	return total
}

// ScatterRange copies the entries of one chunk whose row lies in [lo, hi)
// to their output slots. cursor[r] is the next free slot of row r and is
// advanced per entry.
func ScatterRange[R, C, O Index, V csr.Value](rows []R, cols []C, vals []V, indices []O, data []V, cursor []O, lo, hi R) {
	n := len(rows)
	cols = cols[:n]
	vals = vals[:n]
	for i, r := range rows {
		if r < lo || r >= hi {
			continue
		}
		p := cursor[r]
		indices[p] = O(cols[i])
		data[p] = vals[i]
		cursor[r] = p + 1
	}
}

// Unshift restores indptr after ScatterRange has advanced every row cursor
// to the end of its row: indptr[r] = old indptr[r-1] and indptr[0] = 0.
// The end of the last row equals nnz, so the final element keeps its value.
func Unshift[O Index](indptr []O) {
	var prev O
	for r, t := range indptr {
		indptr[r] = prev
		prev = t
	}
}

// Partitions returns the number of row ranges of 2^bits rows needed to
// cover nRows rows. There is always at least one.
func Partitions(nRows int, bits uint) int {
	return (nRows >> bits) + 1
}

// Range returns the half-open row range [lo, hi) of partition job, clamped
// to nRows. The last partition may be empty.
func Range(job, nRows int, bits uint) (lo, hi int) {
	lo = job << bits
	hi = lo + 1<<bits
	if lo > nRows {
		lo = nRows
	}
	if hi > nRows {
		hi = nRows
	}
	return lo, hi
}

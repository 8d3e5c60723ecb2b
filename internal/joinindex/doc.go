// Package joinindex maps sparse int64 join ids to dense positions [0, n).
//
// Three layouts are provided, all immutable after construction and safe for
// concurrent Lookup calls:
//
//   - Hash: open addressing over an xxh3-mixed table. Any id order.
//   - Sorted: sorted copy plus permutation, binary search. Any id order,
//     smallest footprint for large domains.
//   - Bitmap: roaring64 bitmap, position = rank - 1. Requires strictly
//     ascending non-negative ids, which is the common shape of a full axis.
//
// Lookup writes NotFound for ids outside the domain.
package joinindex

// NotFound is the position reported for an id outside the domain.
const NotFound = -1

//go:build linux

package spill

import "golang.org/x/sys/unix"

// MADV_POPULATE_READ was added in Linux 5.14.
const madvPopulateRead = 22

// prefaultRegion faults in the mapped spill file ahead of the scatter so
// that partition tasks do not serialize on page faults.
// Falls back to MADV_WILLNEED when MADV_POPULATE_READ is unsupported.
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	if err := unix.Madvise(data, madvPopulateRead); err != nil {
		_ = unix.Madvise(data, unix.MADV_WILLNEED)
	}
}

//go:build linux

package spill

import (
	"os"

	"golang.org/x/sys/unix"
)

// openTmpFile creates an O_TMPFILE anonymous file in dir (Linux 3.11+).
// The file is deleted automatically when its descriptor is closed.
func openTmpFile(dir string) (*os.File, error) {
	fd, err := unix.Open(dir, unix.O_RDWR|unix.O_TMPFILE|unix.O_CLOEXEC, 0600)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), ""), nil
}

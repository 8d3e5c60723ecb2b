//go:build !linux

package spill

import (
	"errors"
	"os"
)

// openTmpFile is unsupported outside Linux; Create falls back to a named file.
func openTmpFile(string) (*os.File, error) {
	return nil, errors.New("O_TMPFILE not supported")
}

// Package spill stores accumulated chunk buffers in an anonymous temp file
// and exposes them again through a read-only memory mapping.
//
// The life cycle is strictly two-phase: Write while accumulating, then Map
// once and read extents. Writes after Map are rejected. Every extent starts
// at an offset aligned to encoding.Align, and the mapping is page aligned,
// so extents can be reinterpreted as typed slices in place.
package spill

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	csrerrors "github.com/tamirms/fastcsr/errors"
	"github.com/tamirms/fastcsr/internal/encoding"
)

// writeBufferSize batches small chunk writes into larger syscalls.
const writeBufferSize = 1 << 20

var padding [encoding.Align]byte

// Extent locates one buffer inside the spill file.
type Extent struct {
	Off int64
	Len int64
}

// File is a write-once, map-once temp file.
type File struct {
	f      *os.File
	path   string // empty for anonymous (O_TMPFILE) files
	w      *bufio.Writer
	size   int64
	mm     mmap.MMap
	mapped bool
	closed bool
}

// Create opens a new spill file in dir (os.TempDir() if empty).
// Tries O_TMPFILE on Linux so the file vanishes with the descriptor, and
// falls back to a named temp file that Close removes.
func Create(dir string) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	s := &File{}
	f, err := openTmpFile(dir)
	if err != nil {
		f, err = os.CreateTemp(dir, "fastcsr-*.spill")
		if err != nil {
			return nil, fmt.Errorf("create spill file: %w", err)
		}
		s.path = f.Name()
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, writeBufferSize)
	return s, nil
}

// Write appends b at the next aligned offset and returns its extent.
func (s *File) Write(b []byte) (Extent, error) {
	if s.closed || s.mapped {
		return Extent{}, csrerrors.ErrSpillClosed
	}
	if pad := encoding.AlignUp(s.size) - s.size; pad > 0 {
		if _, err := s.w.Write(padding[:pad]); err != nil {
			return Extent{}, fmt.Errorf("write spill padding: %w", err)
		}
		s.size += pad
	}
	ext := Extent{Off: s.size, Len: int64(len(b))}
	if _, err := s.w.Write(b); err != nil {
		return Extent{}, fmt.Errorf("write spill data: %w", err)
	}
	s.size += ext.Len
	return ext, nil
}

// Size returns the number of bytes written so far, padding included.
func (s *File) Size() int64 {
	return s.size
}

// Map flushes pending writes and maps the whole file read-only.
// Calling Map again returns the existing mapping.
func (s *File) Map() ([]byte, error) {
	if s.closed {
		return nil, csrerrors.ErrSpillClosed
	}
	if s.mapped {
		return []byte(s.mm), nil
	}
	if err := s.w.Flush(); err != nil {
		return nil, fmt.Errorf("flush spill file: %w", err)
	}
	s.mapped = true
	if s.size == 0 {
		// mmap(2) rejects zero-length mappings.
		return nil, nil
	}
	// Finalize scans every chunk front to back.
	fadviseSequential(int(s.f.Fd()), 0, s.size)
	mm, err := mmap.Map(s.f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap spill file: %w", err)
	}
	s.mm = mm
	prefaultRegion(mm)
	return []byte(mm), nil
}

// Bytes returns the mapped bytes of ext. Map must have been called.
func (s *File) Bytes(ext Extent) []byte {
	return s.mm[ext.Off : ext.Off+ext.Len]
}

// Close unmaps and releases the file. Idempotent: safe to call on error
// paths and again after a successful finalize.
func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	// Unmap first (required before close on some platforms)
	if s.mm != nil {
		if err := s.mm.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}
		s.mm = nil
	}
	if s.f != nil {
		if err := s.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spill file: %w", err))
		}
		s.f = nil
	}
	// Remove only if using fallback (O_TMPFILE auto-deleted on close)
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove spill file: %w", err))
		}
		s.path = ""
	}
	return errors.Join(errs...)
}

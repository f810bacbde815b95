// Package sysfs is a thin layer over the Linux file syscalls a sparse-aware copy needs:
// copy_file_range(2), lseek(2) with SEEK_DATA/SEEK_HOLE, fstat(2) and ftruncate(2).
//
// Every function maps to exactly one blocking syscall. Nothing here retries, falls back to a
// user-space copy or logs; callers own that policy. Descriptors are borrowed for the duration of
// one call and never closed.
package sysfs

import (
	"fmt"
	"os"
	"syscall"
)

// File is an open file owned by the caller.
type File interface {
	Fd() uintptr
}

// Whence selects how Seek interprets its offset.
type Whence uint8

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
	// SeekData moves to the next offset at or after the given one that holds data.
	SeekData
	// SeekHole moves to the next hole at or after the given offset. The end of the file counts
	// as a hole.
	SeekHole
)

func (w Whence) String() string {
	switch w {
	case SeekStart:
		return "start"
	case SeekCurrent:
		return "current"
	case SeekEnd:
		return "end"
	case SeekData:
		return "data"
	case SeekHole:
		return "hole"
	}

	return fmt.Sprintf("Whence(%d)", uint8(w))
}

// FileStatus is a snapshot of fstat(2). It is not updated when the file changes.
type FileStatus struct {
	Dev       uint64
	Ino       uint64
	Nlink     uint64
	Mode      uint32
	Size      int64
	Blocks    int64 // 512-byte units
	BlockSize int64 // preferred I/O size
}

func (s FileStatus) IsRegular() bool {
	return s.Mode&syscall.S_IFMT == syscall.S_IFREG
}

func (s FileStatus) Perm() os.FileMode {
	return os.FileMode(s.Mode).Perm()
}

// SeekResult is the outcome of a successful Seek.
// EOF is set when a SeekData or SeekHole found nothing after the requested offset, Offset is
// meaningless in that case.
type SeekResult struct {
	Offset int64
	EOF    bool
}

func (r SeekResult) String() string {
	if r.EOF {
		return "EOF"
	}

	return fmt.Sprintf("offset %d", r.Offset)
}

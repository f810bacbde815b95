package sysfs

import (
	"errors"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

func (w Whence) sys() (int, bool) {
	switch w {
	case SeekStart:
		return unix.SEEK_SET, true
	case SeekCurrent:
		return unix.SEEK_CUR, true
	case SeekEnd:
		return unix.SEEK_END, true
	case SeekData:
		return unix.SEEK_DATA, true
	case SeekHole:
		return unix.SEEK_HOLE, true
	}

	return 0, false
}

// Seek repositions f with lseek(2).
//
// For SeekData and SeekHole the kernel reports ENXIO when no such region exists at or after
// offset; that is returned as SeekResult{EOF: true} with a nil error. The descriptor position is
// whatever the kernel left it at.
func Seek(f File, offset int64, whence Whence) (SeekResult, error) {
	sys, ok := whence.sys()
	if !ok {
		return toResult("lseek", -1, syscall.EINVAL, SeekResult{})
	}

	off, err := unix.Seek(int(f.Fd()), offset, sys)
	runtime.KeepAlive(f)

	if errors.Is(err, unix.ENXIO) && (whence == SeekData || whence == SeekHole) {
		return SeekResult{EOF: true}, nil
	}

	return fromErr("lseek", err, SeekResult{Offset: off})
}

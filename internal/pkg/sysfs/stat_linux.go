package sysfs

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Stat returns the kernel's view of f at the time of the call.
func Stat(f File) (FileStatus, error) {
	// zeroed so a failed call never exposes garbage
	var st unix.Stat_t
	err := unix.Fstat(int(f.Fd()), &st)
	runtime.KeepAlive(f)
	if err != nil {
		return fromErr("fstat", err, FileStatus{})
	}

	return FileStatus{
		Dev:       uint64(st.Dev),
		Ino:       uint64(st.Ino),
		Nlink:     uint64(st.Nlink),
		Mode:      uint32(st.Mode),
		Size:      st.Size,
		Blocks:    int64(st.Blocks),
		BlockSize: int64(st.Blksize),
	}, nil
}

// Allocate sets the logical length of f with ftruncate(2).
//
// This does not reserve blocks: growing a file this way leaves a hole behind the old end, so
// the file becomes sparse. Use fallocate(2) when space must be guaranteed.
func Allocate(f File, length uint64) error {
	err := unix.Ftruncate(int(f.Fd()), int64(length))
	runtime.KeepAlive(f)

	_, err = fromErr("ftruncate", err, struct{}{})
	return err
}

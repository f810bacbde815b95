//go:build linux && !(cfr_libc && cgo)

package sysfs

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// copyFileRange issues SYS_copy_file_range directly. This works on kernels >= 4.5 even when
// the C library predates the copy_file_range symbol (glibc < 2.27).
//
// offIn and offOut are borrowed for the duration of the call. A nil offset makes the kernel
// use and advance the descriptor's current position instead, a non-nil one is advanced by the
// kernel and the descriptor position is left alone.
func copyFileRange(fdIn int, offIn *int64, fdOut int, offOut *int64, length int, flags uint) (int64, syscall.Errno) {
	r, _, errno := unix.Syscall6(
		unix.SYS_COPY_FILE_RANGE,
		uintptr(fdIn),
		uintptr(unsafe.Pointer(offIn)),
		uintptr(fdOut),
		uintptr(unsafe.Pointer(offOut)),
		uintptr(length),
		uintptr(flags),
	)
	if errno != 0 {
		return -1, errno
	}

	return int64(r), 0
}

//go:build linux && cfr_libc && cgo

package sysfs

/*
#define _GNU_SOURCE
#include <sys/types.h>
#include <unistd.h>
*/
import "C"

import (
	"syscall"
	"unsafe"
)

// copyFileRange calls copy_file_range(3) from the C library (glibc >= 2.27).
// Selected with the cfr_libc build tag, it has the same contract as the raw syscall backend.
func copyFileRange(fdIn int, offIn *int64, fdOut int, offOut *int64, length int, flags uint) (int64, syscall.Errno) {
	n, err := C.copy_file_range(
		C.int(fdIn),
		(*C.loff_t)(unsafe.Pointer(offIn)),
		C.int(fdOut),
		(*C.loff_t)(unsafe.Pointer(offOut)),
		C.size_t(length),
		C.uint(flags),
	)
	if n == -1 {
		errno, _ := err.(syscall.Errno)
		return -1, errno
	}

	return int64(n), 0
}
